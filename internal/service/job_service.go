package service

import (
	"context"
	"log"
	"time"
)

// JobService runs scheduled housekeeping. The only job is purging cancelled
// bookings past their retention window; pending and confirmed bookings are
// never expired automatically.
type JobService struct {
	bookings  BookingStore
	retention time.Duration
}

func NewJobService(bookings BookingStore, retention time.Duration) *JobService {
	return &JobService{bookings: bookings, retention: retention}
}

func (s *JobService) PurgeOldCancelledBookings() {
	cutoff := time.Now().UTC().Add(-s.retention)
	n, err := s.bookings.DeleteCancelledBefore(context.Background(), cutoff)
	if err != nil {
		log.Printf("Cron Job: failed to purge cancelled bookings: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Cron Job: purged %d cancelled bookings older than %s", n, cutoff.Format("2006-01-02"))
	}
}
