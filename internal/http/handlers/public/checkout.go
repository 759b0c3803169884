package public

import (
	"github.com/hausmarkt/internal/http/response"
	"github.com/hausmarkt/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateCheckoutSessionRequest 创建支付会话请求
type CreateCheckoutSessionRequest struct {
	ListingNo        string   `json:"listing_no" binding:"required"`
	Payer            string   `json:"payer"`
	Plan             string   `json:"plan"`
	Flow             string   `json:"flow"`
	Upgrades         []string `json:"upgrades"`
	PlanUpgrade      bool     `json:"plan_upgrade"`
	CommissionChange bool     `json:"commission_change"`
	CommissionValue  string   `json:"commission_value"`
	CommissionType   string   `json:"commission_type"`
}

// CreateCheckoutSession 创建 Stripe Checkout Session
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var req CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	result, err := h.CheckoutService.CreateSession(service.CreateSessionInput{
		ListingNo:        req.ListingNo,
		Payer:            req.Payer,
		Plan:             req.Plan,
		Flow:             req.Flow,
		Upgrades:         req.Upgrades,
		PlanUpgrade:      req.PlanUpgrade,
		CommissionChange: req.CommissionChange,
		CommissionValue:  req.CommissionValue,
		CommissionType:   req.CommissionType,
		Context:          c.Request.Context(),
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	response.Success(c, result)
}
