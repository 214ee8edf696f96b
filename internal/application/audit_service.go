package application

import (
	"context"
	"time"

	"github.com/youcodecowboy/groovy-demo-sub007/internal/domain"
	"github.com/youcodecowboy/groovy-demo-sub007/pkg/logging"
)

// AuditService exposes the append-only audit log for querying and stats
type AuditService struct {
	auditRepo domain.AuditRepository
	logger    *logging.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo domain.AuditRepository, logger *logging.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Record appends an audit event
func (s *AuditService) Record(ctx context.Context, actor, action, entityType, entityID, description string, metadata map[string]string) error {
	event := domain.NewAuditEvent(actor, action, entityType, entityID, description, metadata)
	return s.auditRepo.Append(ctx, event)
}

// Query retrieves audit events matching the filters, newest first
func (s *AuditService) Query(ctx context.Context, query domain.AuditQuery) ([]*domain.AuditEvent, error) {
	if query.Limit <= 0 || query.Limit > 500 {
		query.Limit = 100
	}
	return s.auditRepo.Query(ctx, query)
}

// Stats computes aggregate counts over the audit log; the recent window
// covers the last 24 hours
func (s *AuditService) Stats(ctx context.Context) (*domain.AuditStats, error) {
	return s.auditRepo.Stats(ctx, 24*time.Hour)
}
