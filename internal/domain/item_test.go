package domain

import (
	"testing"
)

func newTestItem(t *testing.T) (*Workflow, *Item) {
	t.Helper()
	wf, err := NewWorkflow("Garment Production", linearStages())
	if err != nil {
		t.Fatalf("NewWorkflow() error = %v", err)
	}
	first, _ := wf.FirstStage()
	item := NewItem(wf, first, "worker-1", nil, map[string]string{"color": "navy"}, "creator")
	return wf, item
}

func TestItemStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status ItemStatus
		want   bool
	}{
		{"active is valid", ItemStatusActive, true},
		{"paused is valid", ItemStatusPaused, true},
		{"error is valid", ItemStatusError, true},
		{"completed is valid", ItemStatusCompleted, true},
		{"unknown status is invalid", ItemStatus("shipped"), false},
		{"empty status is invalid", ItemStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.want {
				t.Errorf("ItemStatus.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewItem(t *testing.T) {
	_, item := newTestItem(t)

	if item.Status != ItemStatusActive {
		t.Errorf("Status = %v, want active", item.Status)
	}
	if item.CurrentStageID != "cut" {
		t.Errorf("CurrentStageID = %v, want cut", item.CurrentStageID)
	}
	if item.Version != 1 {
		t.Errorf("Version = %v, want 1", item.Version)
	}

	history := item.PendingHistory()
	if len(history) != 1 {
		t.Fatalf("pending history length = %v, want 1", len(history))
	}
	if history[0].Action != ActionStarted {
		t.Errorf("history action = %v, want started", history[0].Action)
	}
	if history[0].StageID != "cut" {
		t.Errorf("history stage = %v, want cut", history[0].StageID)
	}

	events := item.Events()
	if len(events) != 1 {
		t.Fatalf("events length = %v, want 1", len(events))
	}
	if events[0].EventType() != "item.created" {
		t.Errorf("event type = %v, want item.created", events[0].EventType())
	}
}

func TestItem_AdvanceTo(t *testing.T) {
	t.Run("advances active item and records history", func(t *testing.T) {
		wf, item := newTestItem(t)
		item.PendingHistory()
		item.Events()

		sew, _ := wf.StageByID("sew")
		if err := item.AdvanceTo(sew, "worker-1", "done cutting"); err != nil {
			t.Fatalf("AdvanceTo() error = %v", err)
		}

		if item.CurrentStageID != "sew" {
			t.Errorf("CurrentStageID = %v, want sew", item.CurrentStageID)
		}

		history := item.PendingHistory()
		if len(history) != 1 || history[0].Action != ActionAdvanced {
			t.Fatalf("history = %+v, want one advanced entry", history)
		}
		if history[0].Notes != "done cutting" {
			t.Errorf("history notes = %v, want done cutting", history[0].Notes)
		}
		if history[0].Sequence != 2 {
			t.Errorf("history sequence = %v, want 2", history[0].Sequence)
		}
	})

	t.Run("rejects advancing a paused item", func(t *testing.T) {
		wf, item := newTestItem(t)
		if err := item.Pause("worker-1", "lunch"); err != nil {
			t.Fatalf("Pause() error = %v", err)
		}

		sew, _ := wf.StageByID("sew")
		if err := item.AdvanceTo(sew, "worker-1", ""); err == nil {
			t.Error("AdvanceTo() error = nil, want error")
		}
		if item.CurrentStageID != "cut" {
			t.Errorf("CurrentStageID = %v, want cut (unchanged)", item.CurrentStageID)
		}
	})
}

func TestItem_Complete(t *testing.T) {
	t.Run("completes active item", func(t *testing.T) {
		_, item := newTestItem(t)
		item.PendingHistory()

		if err := item.Complete("Quality Control", "worker-1", ""); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
		if item.Status != ItemStatusCompleted {
			t.Errorf("Status = %v, want completed", item.Status)
		}
		if item.CompletedAt == nil {
			t.Error("CompletedAt is nil")
		}

		history := item.PendingHistory()
		if len(history) != 1 || history[0].Action != ActionCompleted {
			t.Fatalf("history = %+v, want one completed entry", history)
		}
	})

	t.Run("rejects completing twice", func(t *testing.T) {
		_, item := newTestItem(t)
		_ = item.Complete("Quality Control", "worker-1", "")
		if err := item.Complete("Quality Control", "worker-1", ""); err == nil {
			t.Error("Complete() error = nil, want error")
		}
	})

	t.Run("rejects completing a paused item", func(t *testing.T) {
		_, item := newTestItem(t)
		_ = item.Pause("worker-1", "")
		if err := item.Complete("Quality Control", "worker-1", ""); err == nil {
			t.Error("Complete() error = nil, want error")
		}
	})
}

func TestItem_PauseResume(t *testing.T) {
	t.Run("pause then resume", func(t *testing.T) {
		_, item := newTestItem(t)

		if err := item.Pause("worker-1", "machine down"); err != nil {
			t.Fatalf("Pause() error = %v", err)
		}
		if item.Status != ItemStatusPaused {
			t.Errorf("Status = %v, want paused", item.Status)
		}

		if err := item.Resume("worker-1"); err != nil {
			t.Fatalf("Resume() error = %v", err)
		}
		if item.Status != ItemStatusActive {
			t.Errorf("Status = %v, want active", item.Status)
		}
	})

	t.Run("rejects pausing twice", func(t *testing.T) {
		_, item := newTestItem(t)
		_ = item.Pause("worker-1", "")
		if err := item.Pause("worker-1", ""); err == nil {
			t.Error("Pause() error = nil, want error")
		}
	})

	t.Run("rejects resuming an active item", func(t *testing.T) {
		_, item := newTestItem(t)
		if err := item.Resume("worker-1"); err == nil {
			t.Error("Resume() error = nil, want error")
		}
	})

	t.Run("resume recovers from error state", func(t *testing.T) {
		_, item := newTestItem(t)
		if err := item.MarkError("system", "scan mismatch"); err != nil {
			t.Fatalf("MarkError() error = %v", err)
		}
		if item.Status != ItemStatusError {
			t.Errorf("Status = %v, want error", item.Status)
		}

		if err := item.Resume("supervisor"); err != nil {
			t.Fatalf("Resume() error = %v", err)
		}
		if item.Status != ItemStatusActive {
			t.Errorf("Status = %v, want active", item.Status)
		}
	})
}

func TestItem_Exceptions(t *testing.T) {
	t.Run("marking defective does not change status or stage", func(t *testing.T) {
		_, item := newTestItem(t)

		if err := item.ApplyException(ExceptionKindDefective, "inspector", "tear in seam"); err != nil {
			t.Fatalf("ApplyException() error = %v", err)
		}
		if !item.IsDefective {
			t.Error("IsDefective = false, want true")
		}
		if item.Status != ItemStatusActive {
			t.Errorf("Status = %v, want active", item.Status)
		}
		if item.CurrentStageID != "cut" {
			t.Errorf("CurrentStageID = %v, want cut", item.CurrentStageID)
		}
	})

	t.Run("defective item remains advanceable", func(t *testing.T) {
		wf, item := newTestItem(t)
		_ = item.ApplyException(ExceptionKindDefective, "inspector", "tear in seam")

		sew, _ := wf.StageByID("sew")
		if err := item.AdvanceTo(sew, "worker-1", ""); err != nil {
			t.Fatalf("AdvanceTo() after defect error = %v", err)
		}
	})

	t.Run("flag then clear", func(t *testing.T) {
		_, item := newTestItem(t)

		_ = item.ApplyException(ExceptionKindFlagged, "inspector", "needs review")
		if !item.IsFlagged {
			t.Error("IsFlagged = false, want true")
		}

		if err := item.ResolveException(ExceptionKindFlagged, "supervisor", "reviewed"); err != nil {
			t.Fatalf("ResolveException() error = %v", err)
		}
		if item.IsFlagged {
			t.Error("IsFlagged = true, want false")
		}
	})

	t.Run("rejects flagging a completed item", func(t *testing.T) {
		_, item := newTestItem(t)
		_ = item.Complete("Quality Control", "worker-1", "")

		if err := item.ApplyException(ExceptionKindFlagged, "inspector", "late"); err == nil {
			t.Error("ApplyException() error = nil, want error")
		}
	})
}

func TestItem_HistorySequence(t *testing.T) {
	wf, item := newTestItem(t)

	sew, _ := wf.StageByID("sew")
	qc, _ := wf.StageByID("qc")
	_ = item.AdvanceTo(sew, "w", "")
	_ = item.AdvanceTo(qc, "w", "")
	_ = item.Complete("Quality Control", "w", "")

	history := item.PendingHistory()
	if len(history) != 4 {
		t.Fatalf("history length = %v, want 4", len(history))
	}
	for i, entry := range history {
		if entry.Sequence != int64(i+1) {
			t.Errorf("entry %d sequence = %v, want %v", i, entry.Sequence, i+1)
		}
		if i > 0 && entry.Timestamp.Before(history[i-1].Timestamp) {
			t.Errorf("entry %d timestamp before previous", i)
		}
	}

	// Drained history does not come back
	if again := item.PendingHistory(); len(again) != 0 {
		t.Errorf("second drain length = %v, want 0", len(again))
	}
}

func TestItemException_Resolve(t *testing.T) {
	exc, err := NewItemException("ITM-1", ExceptionKindDefective, "tear in seam", "inspector")
	if err != nil {
		t.Fatalf("NewItemException() error = %v", err)
	}
	if exc.IsResolved() {
		t.Error("IsResolved() = true, want false")
	}

	if err := exc.Resolve("supervisor", "re-sewn"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !exc.IsResolved() {
		t.Error("IsResolved() = false, want true")
	}
	if exc.Reason != "tear in seam" {
		t.Errorf("Reason = %v, want preserved after resolution", exc.Reason)
	}

	if err := exc.Resolve("supervisor", "again"); err == nil {
		t.Error("Resolve() twice error = nil, want error")
	}
}

func TestNewItemException_Validation(t *testing.T) {
	if _, err := NewItemException("ITM-1", ExceptionKind("broken"), "r", "a"); err == nil {
		t.Error("NewItemException() with bad kind error = nil, want error")
	}
	if _, err := NewItemException("ITM-1", ExceptionKindFlagged, "", "a"); err == nil {
		t.Error("NewItemException() with empty reason error = nil, want error")
	}
}

func TestLocation(t *testing.T) {
	t.Run("capacity check", func(t *testing.T) {
		capacity := 1
		loc, err := NewLocation("Bin 1", LocationTypeBin, &capacity)
		if err != nil {
			t.Fatalf("NewLocation() error = %v", err)
		}
		if !loc.HasCapacity() {
			t.Error("HasCapacity() = false, want true")
		}

		loc.CurrentOccupancy = 1
		if loc.HasCapacity() {
			t.Error("HasCapacity() = true at capacity, want false")
		}
	})

	t.Run("unlimited capacity", func(t *testing.T) {
		loc, _ := NewLocation("Zone A", LocationTypeZone, nil)
		loc.CurrentOccupancy = 10000
		if !loc.HasCapacity() {
			t.Error("HasCapacity() = false for unlimited location, want true")
		}
	})

	t.Run("rejects invalid type and capacity", func(t *testing.T) {
		if _, err := NewLocation("X", LocationType("drawer"), nil); err == nil {
			t.Error("NewLocation() with bad type error = nil, want error")
		}
		zero := 0
		if _, err := NewLocation("X", LocationTypeBin, &zero); err == nil {
			t.Error("NewLocation() with zero capacity error = nil, want error")
		}
	})
}
