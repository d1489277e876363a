package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	bk "github.com/hanksha/tbz-booking-console/booking"
)

//go:generate mockgen -source=booking_handler.go -destination=mocks/mock_booking_handler.go -package=mocks

type BookingService interface {
	List(ctx context.Context, filter bk.Filter) ([]bk.Booking, error)
	Find(ctx context.Context, id int64) (bk.Booking, error)
	Approve(ctx context.Context, id int64, approverID string) (bk.Result, error)
	Reject(ctx context.Context, id int64, approverID, reason string) (bk.Result, error)
	Checkout(ctx context.Context, id int64, actorID, userID string) (bk.Result, error)
	History(ctx context.Context, id int64) ([]bk.JournalEntry, error)
}

type BookingHandler struct {
	service BookingService
}

func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(rg *gin.RouterGroup) {
	adminOnly := AdminOnly()
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/history", h.History)
	rg.POST("/:id/approve", adminOnly, h.Approve)
	rg.POST("/:id/reject", adminOnly, h.Reject)
	rg.POST("/:id/checkout", h.Checkout)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type checkoutRequest struct {
	UserID string `json:"userId"`
}

func (h *BookingHandler) List(c *gin.Context) {
	filter := bk.Filter{}

	if query := c.Query("status"); len(query) != 0 {
		status, err := bk.ParseStatus(query)

		if err != nil {
			c.Error(err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}

		filter.Status = status
	}

	if bookings, err := h.service.List(c.Request.Context(), filter); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "failed to retrieve bookings",
		})
	} else {
		c.IndentedJSON(http.StatusOK, bookings)
	}
}

func (h *BookingHandler) GetByID(c *gin.Context) {
	id, ok := bookingID(c)

	if !ok {
		return
	}

	booking, err := h.service.Find(c.Request.Context(), id)

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "booking not found",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "failed to fetch booking",
		})
		return
	}

	c.IndentedJSON(http.StatusOK, booking)
}

func (h *BookingHandler) History(c *gin.Context) {
	id, ok := bookingID(c)

	if !ok {
		return
	}

	entries, err := h.service.History(c.Request.Context(), id)

	if err != nil {
		c.Error(err)
		if errors.Is(err, bk.ErrJournalDisabled) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "history is not available"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get history"})
		return
	}

	c.IndentedJSON(http.StatusOK, entries)
}

func (h *BookingHandler) Approve(c *gin.Context) {
	id, ok := bookingID(c)

	if !ok {
		return
	}

	user := currentUser(c)
	res, err := h.service.Approve(c.Request.Context(), id, user.ID)

	respondMutation(c, res, err)
}

func (h *BookingHandler) Reject(c *gin.Context) {
	id, ok := bookingID(c)

	if !ok {
		return
	}

	var req rejectRequest

	if !bindOptionalJSON(c, &req) {
		return
	}

	user := currentUser(c)
	res, err := h.service.Reject(c.Request.Context(), id, user.ID, req.Reason)

	respondMutation(c, res, err)
}

func (h *BookingHandler) Checkout(c *gin.Context) {
	id, ok := bookingID(c)

	if !ok {
		return
	}

	var req checkoutRequest

	if !bindOptionalJSON(c, &req) {
		return
	}

	user := currentUser(c)
	res, err := h.service.Checkout(c.Request.Context(), id, user.ID, req.UserID)

	respondMutation(c, res, err)
}

func respondMutation(c *gin.Context, res bk.Result, err error) {
	if err == nil {
		c.IndentedJSON(http.StatusOK, res)
		return
	}

	c.Error(err)

	message := res.Message

	if len(message) == 0 {
		message = err.Error()
	}

	c.JSON(mutationStatus(err), gin.H{
		"error":  message,
		"result": res,
	})
}

func mutationStatus(err error) int {
	switch {
	case errors.Is(err, bk.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, bk.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, bk.ErrInvalidTransition), errors.Is(err, bk.ErrMutationInFlight):
		return http.StatusConflict
	case errors.Is(err, bk.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, bk.ErrNetworkFailure):
		return http.StatusBadGateway
	case errors.Is(err, bk.ErrBookingNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return 0, false
	}

	return id, true
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, v any) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody || c.Request.ContentLength == 0 {
		return true
	}

	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return false
	}

	return true
}
