package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/railbook/railbook_core/internal/config"
	"github.com/railbook/railbook_core/internal/middleware"
)

// RegisterRoutes mounts every endpoint on the app. Reference-data and
// fleet mutations require the admin role; booking and payment endpoints
// require a signed-in user; search and lookup stay public.
func RegisterRoutes(app *fiber.App, cfg *config.Config, rdb *redis.Client) {
	app.Get("/health", Health)

	api := app.Group("/api", middleware.RateLimit(rdb, cfg.RateLimit, cfg.RateWindow))

	auth := api.Group("/auth")
	auth.Post("/signup", Signup(cfg))
	auth.Post("/login", Login(cfg))
	auth.Get("/me", middleware.RequireAuth(cfg.JWTSecret), Me)

	authed := middleware.RequireAuth(cfg.JWTSecret)
	admin := middleware.RequireAdmin()

	station := api.Group("/station")
	station.Get("/", ListStations)
	station.Get("/:station_id", GetStation)
	station.Post("/", authed, admin, CreateStation)

	route := api.Group("/route")
	route.Get("/", ListRoutes)
	route.Get("/:route_id/station", RouteStations)
	route.Get("/:route_id/distance", RouteDistance)
	route.Post("/", authed, admin, CreateRoute)
	route.Post("/:route_id/station", authed, admin, AddRouteStation)

	trains := api.Group("/trains")
	trains.Get("/", ListTrains)
	trains.Get("/:train_no", GetTrain)
	trains.Post("/", authed, admin, CreateTrain)

	coach := api.Group("/coach")
	coach.Get("/fare/:train_no/:coach_type", CoachFare)
	coach.Get("/:train_no", CoachesByTrain)
	coach.Post("/", authed, admin, CreateCoach)

	seat := api.Group("/seat")
	seat.Get("/coach/:coach_id", SeatsByCoach)
	seat.Get("/pools/:train_no", SeatPoolsByTrain)
	seat.Post("/", authed, admin, CreateSeat)

	schedules := api.Group("/schedules")
	schedules.Get("/", ListSchedules)
	schedules.Get("/journey/:journey_id", SchedulesByJourney)
	schedules.Get("/:sched_id", GetSchedule)
	schedules.Post("/", authed, admin, CreateSchedule)
	schedules.Put("/:sched_id", authed, admin, UpdateSchedule)
	schedules.Delete("/:sched_id", authed, admin, DeleteSchedule)

	journey := api.Group("/journey")
	journey.Get("/", ListJourneys)
	journey.Get("/between", JourneysBetween)
	journey.Get("/train/:train_no", JourneysByTrain)
	journey.Get("/:journey_id", GetJourney)
	journey.Post("/", authed, admin, CreateJourney)
	journey.Put("/:journey_id", authed, admin, UpdateJourney)
	journey.Delete("/:journey_id", authed, admin, DeleteJourney)

	book := api.Group("/booking", authed)
	book.Get("/", BookingsByEmail)
	book.Get("/seat/:tier/:journey_id", SeatAvailability)
	book.Get("/pnr/:pnr", PNRStatus)
	book.Post("/", CreateBooking)
	book.Post("/cancel", CancelBooking)

	txn := api.Group("/transaction", authed)
	txn.Get("/", ListTransactions)
	txn.Get("/:txn_id", GetTransaction)
	txn.Post("/", CreateTransaction)
	txn.Put("/:txn_id/status", UpdateTransactionStatus)

	stat := api.Group("/stat")
	stat.Get("/total-journeys", TotalJourneys)
	stat.Get("/total-passengers", TotalPassengers)
	stat.Get("/busiest-route", BusiestRoute)
	stat.Get("/busiest-station", BusiestStation)
	stat.Get("/reservation-status-distribution", ReservationDistribution)
	stat.Get("/gender-distribution", GenderDistribution)
	stat.Get("/busiest-trains", BusiestTrains)
	stat.Get("/busiest-time-period", BusiestTimePeriod)
}
