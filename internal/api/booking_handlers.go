package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"parkshare/internal/auth"
	"parkshare/internal/entities"
	httperrors "parkshare/internal/errors"
	"parkshare/internal/repository"
	"parkshare/internal/service"
)

type BookingHandler struct {
	Service *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// CheckAvailability is public: it powers the slot picker before login.
func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	resp, err := h.Service.CheckAvailability(r.Context(), req.GarageID, req.BookingWindowRequest)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	garageID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid garage ID", http.StatusBadRequest)
		return
	}
	var req entities.BookingWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	renter := service.Renter{ID: user.ID, Name: user.Name, Email: user.Email, Phone: user.Phone}
	b, err := h.Service.RequestBooking(r.Context(), garageID, renter, req)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toBookingResponse(*b))
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	code := mux.Vars(r)["code"]
	b, err := h.Service.GetBooking(r.Context(), code, user.ID)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, toBookingResponse(*b))
}

func (h *BookingHandler) ModifyBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	code := mux.Vars(r)["code"]
	var req ModifyBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Service.ModifyBooking(r.Context(), code, user.ID, req.StartTime, req.EndTime); err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Booking updated"})
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	code := mux.Vars(r)["code"]
	if err := h.Service.CancelBooking(r.Context(), code, user.ID); err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Booking cancelled"})
}

func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bookings, err := h.Service.ListUserBookings(r.Context(), user.ID)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, toBookingsList(bookings))
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	code := mux.Vars(r)["code"]
	if err := h.Service.ConfirmBooking(r.Context(), code, user.ID); err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, map[string]string{"message": "Booking confirmed"})
}

// ListGarageBookings is the owner-side listing with optional status and
// date query filters.
func (h *BookingHandler) ListGarageBookings(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	garageID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid garage ID", http.StatusBadRequest)
		return
	}
	filter := repository.BookingsFilter{
		GarageID: garageID,
		Status:   r.URL.Query().Get("status"),
	}
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			http.Error(w, "Invalid date filter", http.StatusBadRequest)
			return
		}
		filter.Date = date
	}
	bookings, err := h.Service.ListGarageBookings(r.Context(), user.ID, filter)
	if err != nil {
		httperrors.Write(w, err)
		return
	}
	writeJSON(w, toBookingsList(bookings))
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[key], 10, 64)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
