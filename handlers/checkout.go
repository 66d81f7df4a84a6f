package handlers

import (
	"github.com/gin-gonic/gin"

	"stayhub/middleware"
	"stayhub/models"
	"stayhub/services/checkout"
	"stayhub/utils"
)

// CheckoutHandler serves the quote, coupon and payment session endpoints.
type CheckoutHandler struct {
	Orchestrator checkout.Orchestrator
}

// GetQuote prices a prospective stay. Quotes are ephemeral and carry no hold
// on inventory or rates.
func (h *CheckoutHandler) GetQuote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.FailValidation(c, err.Error())
		return
	}

	quote, err := h.Orchestrator.GetQuote(req)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Respond(c, "Quote computed", quote)
}

// ApplyCoupon attaches a coupon to the caller's booking and reprices it.
func (h *CheckoutHandler) ApplyCoupon(c *gin.Context) {
	var req struct {
		CouponCode string `json:"couponCode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.FailValidation(c, err.Error())
		return
	}

	booking, app, err := h.Orchestrator.ApplyCoupon(c.Param("id"), middleware.CallerID(c), req.CouponCode)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Respond(c, "Coupon applied", gin.H{
		"booking":     booking,
		"application": app,
	})
}

// CancelCoupon removes the applied coupon and restores the original total.
func (h *CheckoutHandler) CancelCoupon(c *gin.Context) {
	booking, err := h.Orchestrator.CancelCoupon(c.Param("id"), middleware.CallerID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Respond(c, "Coupon removed", booking)
}

// OpenSession freezes the booking total into a time-boxed payment session.
func (h *CheckoutHandler) OpenSession(c *gin.Context) {
	session, err := h.Orchestrator.OpenSession(c.Param("id"), middleware.CallerID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Respond(c, "Payment session open", session)
}

// PollSession reports the payment session's current state.
func (h *CheckoutHandler) PollSession(c *gin.Context) {
	session, err := h.Orchestrator.PollSession(c.Param("id"), middleware.CallerID(c))
	if err != nil {
		utils.Fail(c, err)
		return
	}
	utils.Respond(c, "Payment session status", session)
}
