package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hanksha/tbz-booking-console/checkin"
)

//go:generate mockgen -source=checkin_handler.go -destination=mocks/mock_checkin_handler.go -package=mocks

type Verifier interface {
	Check(ctx context.Context, raw string, selectedID int64) checkin.Verdict
}

type CheckinHandler struct {
	verifier Verifier
}

func NewCheckinHandler(verifier Verifier) *CheckinHandler {
	return &CheckinHandler{verifier: verifier}
}

func (h *CheckinHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/decode", h.Decode)
	rg.POST("/verify", h.Verify)
}

type decodeRequest struct {
	Token string `json:"token"`
}

type verifyRequest struct {
	Token     string `json:"token"`
	BookingID int64  `json:"bookingId"`
}

func (h *CheckinHandler) Decode(c *gin.Context) {
	var req decodeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	payload, ok := checkin.Decode(req.Token)

	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no booking id in token"})
		return
	}

	c.IndentedJSON(http.StatusOK, payload)
}

// Verify always answers 200; the outcome is carried by the verdict.
func (h *CheckinHandler) Verify(c *gin.Context) {
	var req verifyRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse JSON body"})
		return
	}

	verdict := h.verifier.Check(c.Request.Context(), req.Token, req.BookingID)

	c.IndentedJSON(http.StatusOK, verdict)
}
