package worker

import (
	"context"
	"encoding/json"

	"github.com/hausmarkt/internal/cache"
	"github.com/hausmarkt/internal/constants"
	"github.com/hausmarkt/internal/logger"
	"github.com/hausmarkt/internal/provider"
	"github.com/hausmarkt/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskManualReviewAlert, c.handleManualReviewAlert)
	mux.HandleFunc(queue.TaskWebhookFailureAlert, c.handleWebhookFailureAlert)
}

// handleManualReviewAlert 人工复核告警。履约引擎只在复核台账落库后投递，
// 这里负责把告警播报出去；台账已被处理掉则静默跳过。
func (c *Consumer) handleManualReviewAlert(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_manual_review_alert_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ManualReviewAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_manual_review_alert_unmarshal_failed", "error", err)
		return err
	}
	if payload.SessionID == "" {
		logger.Debugw("worker_manual_review_alert_skip_invalid_payload")
		return nil
	}

	record, err := c.PaymentRecordRepo.GetBySessionID(payload.SessionID)
	if err != nil {
		logger.Warnw("worker_manual_review_alert_fetch_failed", "session_id", payload.SessionID, "error", err)
		return err
	}
	if record == nil {
		logger.Debugw("worker_manual_review_alert_skip_record_not_found", "session_id", payload.SessionID)
		return nil
	}
	if record.Status != constants.FulfillmentStatusNeedsReview {
		logger.Debugw("worker_manual_review_alert_skip_resolved",
			"session_id", payload.SessionID,
			"status", record.Status,
		)
		return nil
	}

	logger.Warnw("manual_review_required",
		"session_id", payload.SessionID,
		"listing_no", payload.ListingNo,
		"reason", payload.Reason,
		"event_id", record.EventID,
		"amount", record.Amount.String(),
		"currency", record.Currency,
	)
	return nil
}

// handleWebhookFailureAlert webhook 失败告警，同时累计失败窗口计数。
func (c *Consumer) handleWebhookFailureAlert(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_webhook_failure_alert_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.WebhookFailureAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_webhook_failure_alert_unmarshal_failed", "error", err)
		return err
	}

	count, err := cache.IncrWebhookFailure(ctx, payload.Reason)
	if err != nil {
		logger.Warnw("worker_webhook_failure_counter_failed", "reason", payload.Reason, "error", err)
	}

	logger.Warnw("webhook_failure_alert",
		"event_id", payload.EventID,
		"reason", payload.Reason,
		"window_count", count,
	)
	return nil
}
