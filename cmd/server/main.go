package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"parkshare/internal/api"
	"parkshare/internal/auth"
	"parkshare/internal/repository"
	"parkshare/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	database, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := database.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	bookingRepo := repository.NewBookingRepository(database)
	garageRepo := repository.NewGarageRepository(database)
	userRepo := repository.NewUserRepository(database)

	notifier := service.NewNotifyService()
	bookingSvc := service.NewBookingService(garageRepo, bookingRepo, notifier)
	garageSvc := service.NewGarageService(garageRepo)
	authSvc := service.NewAuthService(userRepo)
	jobSvc := service.NewJobService(bookingRepo, cancelledRetention())

	bookingHandler := api.NewBookingHandler(bookingSvc)
	garageHandler := api.NewGarageHandler(garageSvc)
	authHandler := api.NewAuthHandler(authSvc)

	c := cron.New()
	if _, err := c.AddFunc("@daily", jobSvc.PurgeOldCancelledBookings); err != nil {
		log.Fatalf("Failed to schedule cleanup job: %v", err)
	}
	c.Start()
	defer c.Stop()

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/availability", bookingHandler.CheckAvailability).Methods("POST")
	r.HandleFunc("/api/garages", garageHandler.ListGarages).Methods("GET")
	r.HandleFunc("/api/garages/{id}", garageHandler.GetGarage).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Authenticated endpoints
	private := r.PathPrefix("/api").Subrouter()
	private.Use(auth.Middleware)
	private.HandleFunc("/garages", garageHandler.PublishGarage).Methods("POST")
	private.HandleFunc("/garages/{id}/spots", garageHandler.UpdateSpots).Methods("PUT")
	private.HandleFunc("/garages/{id}/bookings", bookingHandler.CreateBooking).Methods("POST")
	private.HandleFunc("/garages/{id}/bookings", bookingHandler.ListGarageBookings).Methods("GET")
	private.HandleFunc("/my/bookings", bookingHandler.MyBookings).Methods("GET")
	private.HandleFunc("/bookings/{code}", bookingHandler.GetBooking).Methods("GET")
	private.HandleFunc("/bookings/{code}", bookingHandler.ModifyBooking).Methods("PUT")
	private.HandleFunc("/bookings/{code}", bookingHandler.CancelBooking).Methods("DELETE")
	private.HandleFunc("/bookings/{code}/confirm", bookingHandler.ConfirmBooking).Methods("POST")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, cors(r))))
}

func cancelledRetention() time.Duration {
	days := 90
	if v := os.Getenv("CANCELLED_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	return time.Duration(days) * 24 * time.Hour
}
