package entities

import "time"

type TimeSlotAvailability struct {
	SlotLabel      string    `json:"slot_label"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	IsAvailable    bool      `json:"is_available"`
	AvailableSpots int       `json:"available_spots"`
}

type AvailabilityResponse struct {
	GarageID                  int64                  `json:"garage_id"`
	RequestedStartTime        time.Time              `json:"requested_start_time"`
	RequestedEndTime          time.Time              `json:"requested_end_time"`
	RemainingSpots            int                    `json:"remaining_spots"`
	IsOverallAvailable        bool                   `json:"is_overall_available"`
	SlotDetails               []TimeSlotAvailability `json:"slot_details,omitempty"`
	FirstUnavailableSlotStart *time.Time             `json:"first_unavailable_slot_start,omitempty"`
}
