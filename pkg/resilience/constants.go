package resilience

import "time"

// Circuit breaker defaults
const (
	DefaultMaxRequests           uint32  = 5
	DefaultFailureThreshold      uint32  = 5
	DefaultSuccessThreshold      uint32  = 2
	DefaultFailureRatioThreshold float64 = 0.5
	DefaultMinRequestsToTrip     uint32  = 10

	DefaultInterval = 60 * time.Second
	DefaultTimeout  = 30 * time.Second
)

// Retry defaults
const (
	DefaultRetryMaxAttempts   = 3
	DefaultRetryInitialDelay  = 100 * time.Millisecond
	DefaultRetryMaxDelay      = 5 * time.Second
	DefaultRetryBackoffFactor = 2.0
)
