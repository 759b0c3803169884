package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/hausmarkt/internal/http/response"
	"github.com/hausmarkt/internal/repository"
	"github.com/hausmarkt/internal/service"

	"github.com/gin-gonic/gin"
)

// GetNeedsReviewRecords 获取人工复核队列
func (h *Handler) GetNeedsReviewRecords(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	records, total, err := h.FulfillmentService.ListNeedsReview(repository.PaymentRecordListFilter{
		Page:      page,
		PageSize:  pageSize,
		ListingNo: c.Query("listing_no"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "复核队列查询失败", err)
		return
	}

	response.SuccessWithPage(c, records, response.BuildPagination(page, pageSize, total))
}

// GetPaymentRecords 获取支付台账列表
func (h *Handler) GetPaymentRecords(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.PaymentRecordListFilter{
		Page:      page,
		PageSize:  pageSize,
		Status:    c.Query("status"),
		ListingNo: c.Query("listing_no"),
		SessionID: c.Query("session_id"),
		Flow:      c.Query("flow"),
	}
	if from := c.Query("created_from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if to := c.Query("created_to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.CreatedTo = &t
		}
	}

	records, total, err := h.FulfillmentService.ListRecords(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "台账查询失败", err)
		return
	}

	response.SuccessWithPage(c, records, response.BuildPagination(page, pageSize, total))
}

// GetPaymentRecord 获取支付台账详情
func (h *Handler) GetPaymentRecord(c *gin.Context) {
	record, err := h.FulfillmentService.GetRecord(c.Param("session_id"))
	if err != nil {
		if errors.Is(err, service.ErrPaymentRecordNotFound) {
			respondError(c, response.CodeNotFound, "支付台账不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "台账查询失败", err)
		return
	}
	response.Success(c, record)
}

// ReprocessFulfillment 人工复核后重新履约
func (h *Handler) ReprocessFulfillment(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	outcome, err := h.FulfillmentService.Reprocess(c.Request.Context(), sessionID)
	if err != nil {
		requestLog(c).Warnw("fulfillment_reprocess_failed",
			"admin_id", adminID,
			"session_id", sessionID,
			"error", err,
		)
		switch {
		case errors.Is(err, service.ErrPaymentRecordNotFound):
			respondError(c, response.CodeNotFound, "支付台账不存在", nil)
		case errors.Is(err, service.ErrListingVanished):
			respondError(c, response.CodeBadRequest, "房源不存在，无法履约", nil)
		default:
			respondError(c, response.CodeInternal, "重新履约失败", err)
		}
		return
	}

	requestLog(c).Infow("fulfillment_reprocessed",
		"admin_id", adminID,
		"session_id", sessionID,
		"outcome", outcome.Outcome,
	)
	response.Success(c, outcome)
}
