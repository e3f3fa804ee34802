package service

import (
	"fmt"
	"log"
	"time"

	"parkshare/internal/db"
	"parkshare/internal/entities"
)

// NotifyService delivers booking lifecycle emails (and SMS when a phone
// number is present). Every delivery runs in its own goroutine; a failure is
// logged and never propagated, so notification problems cannot roll back a
// booking state change.
type NotifyService struct{}

func NewNotifyService() *NotifyService {
	return &NotifyService{}
}

func (s *NotifyService) BookingCreated(b db.Booking, g db.Garage) {
	s.send(b, g, "pending")
}

func (s *NotifyService) BookingCancelled(b db.Booking, g db.Garage) {
	s.send(b, g, "cancelled")
}

func (s *NotifyService) send(b db.Booking, g db.Garage, status string) {
	data := entities.BookingEmailData{
		UserName:           b.UserName,
		BookingCode:        b.Code,
		GarageAddress:      g.Address,
		ReservationType:    b.Type,
		StartTimeFormatted: b.StartTime.Format("02 Jan 2006 15:04"),
		EndTimeFormatted:   b.EndTime.Format("02 Jan 2006 15:04"),
		Price:              b.Price,
		Status:             status,
		CurrentYear:        time.Now().Year(),
	}

	subject := fmt.Sprintf("Your ParkShare booking is %s - Code: %s", data.Status, data.BookingCode)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour parking reservation is %s.\n\n"+
			"Booking details:\n"+
			"Booking code: %s\n"+
			"Garage: %s\n"+
			"Type: %s\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n"+
			"Price: $%.2f\n\n"+
			"Thank you for choosing ParkShare.\n\n"+
			"ParkShare %d",
		data.UserName, data.Status, data.BookingCode, data.GarageAddress,
		data.ReservationType, data.StartTimeFormatted, data.EndTimeFormatted, data.Price,
		data.CurrentYear,
	)

	go func() {
		if err := SendEmailWithSendGrid(b.UserEmail, b.UserName, subject, body); err != nil {
			log.Printf("booking %s: email notification failed: %v", b.Code, err)
		}
	}()

	if b.UserPhone != "" {
		sms := fmt.Sprintf("ParkShare: booking %s is %s. Check-in: %s. Details in your email.",
			data.BookingCode, status, b.StartTime.Format("02/01 15:04"))
		go func() {
			if err := SendSMS(b.UserPhone, sms); err != nil {
				log.Printf("booking %s: SMS notification failed: %v", b.Code, err)
			}
		}()
	}
}
