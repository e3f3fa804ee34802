package entities

type BookingEmailData struct {
	UserName           string
	BookingCode        string
	GarageAddress      string
	ReservationType    string
	StartTimeFormatted string
	EndTimeFormatted   string
	Price              float64
	Status             string
	CurrentYear        int
}
