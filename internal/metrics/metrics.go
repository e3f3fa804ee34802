package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Admission decision results, used as label values.
const (
	ResultAccepted   = "accepted"
	ResultNoCapacity = "no_capacity"
	ResultInvalid    = "invalid_window"
	ResultError      = "error"
)

var (
	// AdmissionDecisions counts booking admission checks by outcome.
	AdmissionDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parkshare",
		Name:      "admission_decisions_total",
		Help:      "Booking admission decisions by result.",
	}, []string{"result"})

	// BookingsCancelled counts successful cancellations.
	BookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parkshare",
		Name:      "bookings_cancelled_total",
		Help:      "Bookings transitioned to cancelled.",
	})

	// StorageConflictRetries counts internal retries after a detected
	// concurrent-write conflict.
	StorageConflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parkshare",
		Name:      "storage_conflict_retries_total",
		Help:      "Mutating calls retried after a storage write conflict.",
	})
)
