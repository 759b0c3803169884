package public

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/hausmarkt/internal/service"

	"github.com/gin-gonic/gin"
)

// StripeWebhook Stripe webhook 回调。
// Stripe 按 HTTP 状态码决定是否重试：2xx 确认、4xx 丢弃、5xx 重投，
// 因此该接口直接返回真实状态码，不走统一响应包装。
func (h *Handler) StripeWebhook(c *gin.Context) {
	log := requestLog(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("stripe_webhook_body_read_failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "body_read_failed"})
		return
	}
	log.Infow("stripe_webhook_received",
		"client_ip", c.ClientIP(),
		"body_size", len(body),
		"stripe_signature", truncateWebhookLogValue(strings.TrimSpace(c.GetHeader("Stripe-Signature"))),
	)

	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}

	outcome, err := h.FulfillmentService.HandleStripeWebhook(service.WebhookInput{
		Context: c.Request.Context(),
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		status := webhookHTTPStatus(err)
		log.Warnw("stripe_webhook_handle_failed",
			"status", status,
			"error", err,
		)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	log.Infow("stripe_webhook_processed",
		"outcome", outcome.Outcome,
		"session_id", outcome.SessionID,
		"event_id", outcome.EventID,
		"listing_no", outcome.ListingNo,
	)
	c.JSON(http.StatusOK, outcome)
}

// webhookHTTPStatus 把业务错误映射为 Stripe 重试契约要求的状态码。
// 签名/载荷错误重投也不会变好，返回 400；存储与配置错误返回 500 换取重投。
func webhookHTTPStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrWebhookSignatureInvalid),
		errors.Is(err, service.ErrWebhookPayloadInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func truncateWebhookLogValue(value string) string {
	const maxLen = 64
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "..."
}
