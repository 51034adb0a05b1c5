package httpgin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/gigbook/internal/domain"
	redisrepo "github.com/kirinyoku/gigbook/internal/repository/redis"
	"github.com/kirinyoku/gigbook/internal/service/booking"
	"github.com/kirinyoku/gigbook/internal/service/ports"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// BookingService is the booking engine as seen by the handlers.
type BookingService interface {
	Create(ctx context.Context, caller domain.Caller, in booking.CreateInput) (*domain.BookingView, error)
	Get(ctx context.Context, id string) (*domain.BookingView, error)
	UpdateStatus(ctx context.Context, id string, caller domain.Caller, next domain.BookingStatus) (*domain.Booking, error)
	UpdatePayment(ctx context.Context, id string, callerID uuid.UUID, upd booking.PaymentUpdate) (*domain.Booking, error)
	ArtistBookings(ctx context.Context, artistID uuid.UUID, f domain.ArtistBookingsFilter, p domain.Page) (*domain.BookingPage, error)
	OrganizerBookings(ctx context.Context, organizerID uuid.UUID, f domain.OrganizerBookingsFilter, p domain.Page) (*domain.BookingPage, error)
	AllBookings(ctx context.Context, f domain.AllBookingsFilter, p domain.Page) (*domain.BookingPage, error)
	ArtistForUser(ctx context.Context, userID uuid.UUID) (*domain.Artist, error)
}

// NewRouter builds the HTTP API. idem may be nil, which disables
// Idempotency-Key handling.
func NewRouter(
	bookings BookingService,
	users ports.IdentityStore,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1/bookings", IdentityMiddleware(users))
	{
		v1.POST("", RequireCapability(domain.CapCreateBooking), handleCreateBooking(bookings, idem))
		v1.GET("", RequireCapability(domain.CapListAllBookings), handleListAllBookings(bookings))
		v1.GET("/artist", RequireCapability(domain.CapListArtistBookings), handleListArtistBookings(bookings))
		v1.GET("/organizer", RequireCapability(domain.CapListOrganizerBookings), handleListOrganizerBookings(bookings))
		v1.GET("/:id", RequireCapability(domain.CapViewBooking), handleGetBooking(bookings))

		v1.PATCH("/:id/status", RequireCapability(domain.CapUpdateBookingStatus), handleUpdateStatus(bookings))
		v1.PATCH("/:id/payment", RequireCapability(domain.CapUpdatePayment), handleUpdatePayment(bookings))

		// quick actions
		v1.PATCH("/:id/confirm", RequireCapability(domain.CapConfirmBooking),
			handleQuickAction(bookings, domain.BookingConfirmed, "Booking confirmed successfully"))
		v1.PATCH("/:id/reject", RequireCapability(domain.CapRejectBooking),
			handleQuickAction(bookings, domain.BookingRejected, "Booking rejected"))
		v1.PATCH("/:id/cancel", RequireCapability(domain.CapCancelBooking),
			handleQuickAction(bookings, domain.BookingCanceled, "Booking canceled successfully"))
		v1.PATCH("/:id/complete", RequireCapability(domain.CapCompleteBooking),
			handleQuickAction(bookings, domain.BookingCompleted, "Booking marked as completed"))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Create booking (idempotent)
// @Param    X-User-ID        header  string                true   "Caller id"
// @Param    Idempotency-Key  header  string                false  "Replay key"
// @Param    req              body    CreateBookingRequest  true   "payload"
// @Success  201  {object}  DataResponse{data=domain.BookingView}
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse "event or artist not found"
// @Failure  409  {object}  ErrorResponse "artist busy / idempotency key in progress"
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Router   /v1/bookings [post]
func handleCreateBooking(
	bookings BookingService,
	idem *redisrepo.IdempotencyStore,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := callerFrom(c)

		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemCreateBooking(caller.ID, idemKey)

			state, payload, err := idem.Claim(c.Request.Context(), idemStorageKey)
			switch {
			case err != nil:
				_ = c.Error(err)
				c.Header("Retry-After", "1")
				abortWith(c, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
				return
			case state == redisrepo.Replayed:
				c.Header("Idempotency-Key", idemKey)
				c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
				return
			case state == redisrepo.InFlight:
				c.Header("Retry-After", "1")
				abortWith(c, http.StatusConflict, "idempotency key in progress")
				return
			}
		}

		view, err := bookings.Create(c.Request.Context(), caller, req.input())
		if err != nil {
			if idemStorageKey != "" {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondErr(c, err)
			return
		}

		resp := DataResponse{
			Success: true,
			Message: "Booking created successfully",
			Data:    view,
		}

		if idemStorageKey != "" {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  Get booking
// @Param    X-User-ID  header  string  true  "Caller id"
// @Param    id         path    string  true  "Booking ID (uuid)"
// @Success  200  {object}  DataResponse{data=domain.BookingView}
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /v1/bookings/{id} [get]
func handleGetBooking(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := bookings.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, DataResponse{Success: true, Data: view}, "private, no-cache")
	}
}

// @Summary  List all bookings (admin)
// @Param    X-User-ID  header  string  true   "Caller id"
// @Param    status     query   string  false  "booking status"
// @Param    startDate  query   string  false  "earliest start"
// @Param    endDate    query   string  false  "latest end"
// @Param    eventId    query   string  false  "event id"
// @Param    artistId   query   string  false  "artist id"
// @Param    page       query   int     false  "page (1-indexed)"
// @Param    limit      query   int     false  "page size"
// @Success  200  {object}  DataResponse{data=domain.BookingPage}
// @Router   /v1/bookings [get]
func handleListAllBookings(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, status, dates, ok := bindListQuery(c)
		if !ok {
			return
		}

		page, err := bookings.AllBookings(c.Request.Context(), domain.AllBookingsFilter{
			Status:    status,
			EventID:   optionalID(q.EventID),
			ArtistID:  optionalID(q.ArtistID),
			DateRange: dates,
		}, q.page())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, DataResponse{Success: true, Data: page})
	}
}

// @Summary  List the caller's artist bookings
// @Param    X-User-ID  header  string  true   "Caller id"
// @Param    status     query   string  false  "booking status"
// @Param    startDate  query   string  false  "earliest start"
// @Param    endDate    query   string  false  "latest end"
// @Param    page       query   int     false  "page (1-indexed)"
// @Param    limit      query   int     false  "page size"
// @Success  200  {object}  DataResponse{data=domain.BookingPage}
// @Failure  404  {object}  ErrorResponse "no artist profile"
// @Router   /v1/bookings/artist [get]
func handleListArtistBookings(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := callerFrom(c)

		q, status, dates, ok := bindListQuery(c)
		if !ok {
			return
		}

		artist, err := bookings.ArtistForUser(c.Request.Context(), caller.ID)
		if err != nil {
			respondErr(c, err)
			return
		}

		page, err := bookings.ArtistBookings(c.Request.Context(), artist.ID, domain.ArtistBookingsFilter{
			Status:    status,
			DateRange: dates,
		}, q.page())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, DataResponse{Success: true, Data: page})
	}
}

// @Summary  List bookings created by the caller
// @Param    X-User-ID  header  string  true   "Caller id"
// @Param    status     query   string  false  "booking status"
// @Param    startDate  query   string  false  "earliest start"
// @Param    endDate    query   string  false  "latest end"
// @Param    eventId    query   string  false  "event id"
// @Param    page       query   int     false  "page (1-indexed)"
// @Param    limit      query   int     false  "page size"
// @Success  200  {object}  DataResponse{data=domain.BookingPage}
// @Router   /v1/bookings/organizer [get]
func handleListOrganizerBookings(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := callerFrom(c)

		q, status, dates, ok := bindListQuery(c)
		if !ok {
			return
		}

		page, err := bookings.OrganizerBookings(c.Request.Context(), caller.ID, domain.OrganizerBookingsFilter{
			Status:    status,
			EventID:   optionalID(q.EventID),
			DateRange: dates,
		}, q.page())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, DataResponse{Success: true, Data: page})
	}
}

// @Summary  Update booking status
// @Param    X-User-ID  header  string               true  "Caller id"
// @Param    id         path    string               true  "Booking ID (uuid)"
// @Param    req        body    UpdateStatusRequest  true  "payload"
// @Success  200  {object}  DataResponse{data=domain.Booking}
// @Failure  400  {object}  ErrorResponse "invalid status / terminal booking"
// @Failure  403  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /v1/bookings/{id}/status [patch]
func handleUpdateStatus(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := callerFrom(c)

		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		next := domain.BookingStatus(strings.ToLower(req.Status))
		b, err := bookings.UpdateStatus(c.Request.Context(), c.Param("id"), caller, next)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, DataResponse{
			Success: true,
			Message: fmt.Sprintf("Booking status updated to %s", next),
			Data:    b,
		})
	}
}

// @Summary  Quick status action (confirm, reject, cancel, complete)
// @Param    X-User-ID  header  string  true  "Caller id"
// @Param    id         path    string  true  "Booking ID (uuid)"
// @Success  200  {object}  DataResponse{data=domain.Booking}
// @Failure  400  {object}  ErrorResponse
// @Failure  403  {object}  ErrorResponse
// @Router   /v1/bookings/{id}/confirm [patch]
// @Router   /v1/bookings/{id}/reject [patch]
// @Router   /v1/bookings/{id}/cancel [patch]
// @Router   /v1/bookings/{id}/complete [patch]
func handleQuickAction(
	bookings BookingService,
	next domain.BookingStatus,
	message string,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := callerFrom(c)

		b, err := bookings.UpdateStatus(c.Request.Context(), c.Param("id"), caller, next)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, DataResponse{Success: true, Message: message, Data: b})
	}
}

// @Summary  Update payment status
// @Param    X-User-ID  header  string                true  "Caller id"
// @Param    id         path    string                true  "Booking ID (uuid)"
// @Param    req        body    UpdatePaymentRequest  true  "payload"
// @Success  200  {object}  DataResponse{data=domain.Booking}
// @Failure  403  {object}  ErrorResponse
// @Router   /v1/bookings/{id}/payment [patch]
func handleUpdatePayment(bookings BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, _ := callerFrom(c)

		var req UpdatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		upd := booking.PaymentUpdate{
			Status:      domain.PaymentStatus(strings.ToLower(req.Status)),
			DepositPaid: req.DepositPaid,
		}
		b, err := bookings.UpdatePayment(c.Request.Context(), c.Param("id"), caller.ID, upd)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, DataResponse{
			Success: true,
			Message: fmt.Sprintf("Payment status updated to %s", upd.Status),
			Data:    b,
		})
	}
}

// --- Helpers ---

func bindListQuery(c *gin.Context) (ListBookingsQuery, *domain.BookingStatus, domain.DateRange, bool) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return q, nil, domain.DateRange{}, false
	}

	status, err := q.status()
	if err != nil {
		respondErr(c, err)
		return q, nil, domain.DateRange{}, false
	}

	dates, err := q.dateRange()
	if err != nil {
		respondErr(c, err)
		return q, nil, domain.DateRange{}, false
	}

	return q, status, dates, true
}

func badRequest(c *gin.Context, msg string) {
	abortWith(c, http.StatusBadRequest, msg)
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, booking.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, booking.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, booking.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, booking.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, booking.ErrRateLimited):
		var rl *booking.RateLimitedError
		if errors.As(err, &rl) {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
			abortWith(c, http.StatusTooManyRequests, rl.Error())
			return
		}
		status = http.StatusTooManyRequests
	case errors.Is(err, booking.ErrUnavailable):
		c.Header("Retry-After", "1")
		status = http.StatusServiceUnavailable
	}

	msg, ok := booking.Message(err)
	if !ok {
		msg = http.StatusText(status)
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	abortWith(c, status, msg)
}
