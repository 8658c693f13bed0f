// Package api HTTP интерфейс планировщика. Ответы в конверте
// {"status": <код>, "response": <данные>}.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/service"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Services зависимости обработчиков
type Services struct {
	Mentors      *service.MentorService
	Availability *service.AvailabilityService
	Slots        *service.SlotService
	Bookings     *service.BookingService
}

type API struct {
	router   *mux.Router
	services Services
	limiter  *customerLimiter
	logger   *zap.Logger
}

// NewAPI создаёт API. bookingsPerMinute <= 0 отключает ограничение бронирований.
func NewAPI(services Services, bookingsPerMinute int, logger *zap.Logger) *API {
	r := mux.NewRouter()
	r = r.PathPrefix("/api").Subrouter()
	return &API{
		router:   r,
		services: services,
		limiter:  newCustomerLimiter(bookingsPerMinute, time.Minute),
		logger:   logger,
	}
}

// Router маршрутизатор без внешних middleware, для тестов
func (a *API) Router() *mux.Router {
	return a.router
}

// Handler маршрутизатор с журналом запросов и восстановлением после паники
func (a *API) Handler() http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(a.logger)),
		handlers.PrintRecoveryStack(true),
	)
	return handlers.CustomLoggingHandler(io.Discard, recovery(a.router), a.logRequest)
}

func (a *API) logRequest(_ io.Writer, params handlers.LogFormatterParams) {
	a.logger.Info("HTTP request",
		zap.String("method", params.Request.Method),
		zap.String("path", params.URL.Path),
		zap.Int("status", params.StatusCode),
		zap.Int("size", params.Size),
		zap.Duration("took", time.Since(params.TimeStamp)),
		zap.String("remote", params.Request.RemoteAddr),
	)
}

type Response struct {
	Status   int `json:"status"`
	Response any `json:"response"`
}

func (a *API) Response(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{
		Status:   status,
		Response: data,
	})
	if err != nil {
		a.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (a *API) RegisterRoutes() {
	a.router.HandleFunc("/health", a.health).Methods(http.MethodGet)

	a.router.HandleFunc("/mentors", a.withUser(a.registerMentor)).Methods(http.MethodPost)
	a.router.HandleFunc("/mentors/{id}", a.mentorOverview).Methods(http.MethodGet)
	a.router.HandleFunc("/mentors/{id}/availability", a.getAvailability).Methods(http.MethodGet)
	a.router.HandleFunc("/mentors/{id}/availability", a.withUser(a.replaceWeek)).Methods(http.MethodPut)
	a.router.HandleFunc("/mentors/{id}/availability/{day}", a.withUser(a.replaceDay)).Methods(http.MethodPut)
	a.router.HandleFunc("/mentors/{id}/pricing", a.withUser(a.setPricing)).Methods(http.MethodPut)
	a.router.HandleFunc("/mentors/{id}/slots", a.listSlots).Methods(http.MethodGet)
	a.router.HandleFunc("/mentors/{id}/bookings", a.withUser(a.mentorBookings)).Methods(http.MethodGet)

	a.router.HandleFunc("/bookings", a.withUser(a.limitBookings(a.createBooking))).Methods(http.MethodPost)
	a.router.HandleFunc("/bookings", a.withUser(a.myBookings)).Methods(http.MethodGet)
	a.router.HandleFunc("/bookings/{id}", a.withUser(a.getBooking)).Methods(http.MethodGet)
	a.router.HandleFunc("/bookings/{id}/cancel", a.withUser(a.cancelBooking)).Methods(http.MethodPost)
}
