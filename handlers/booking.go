package handlers

import (
	"github.com/gin-gonic/gin"

	"stayhub/middleware"
	bookingSvc "stayhub/services/booking"
	"stayhub/utils"
)

// BookingHandler serves draft booking creation and owner-scoped reads.
type BookingHandler struct {
	Service bookingSvc.BookingService
}

// CreateBooking creates a draft booking priced at the current catalog rates.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req bookingSvc.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.FailValidation(c, err.Error())
		return
	}

	booking, err := h.Service.Create(middleware.CallerID(c), req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Respond(c, "Booking created", booking)
}

// GetBooking returns the caller's booking with its current pricing snapshot.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.Service.Get(c.Param("id"), middleware.CallerID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Respond(c, "Booking retrieved", booking)
}
