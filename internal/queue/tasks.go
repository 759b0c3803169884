package queue

import (
	"encoding/json"

	"github.com/hausmarkt/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskManualReviewAlert 人工复核告警任务
	TaskManualReviewAlert = constants.TaskManualReviewAlert
	// TaskWebhookFailureAlert 回调失败告警任务
	TaskWebhookFailureAlert = constants.TaskWebhookFailureAlert
)

// ManualReviewAlertPayload 人工复核告警任务载荷
type ManualReviewAlertPayload struct {
	SessionID string `json:"session_id"`
	ListingNo string `json:"listing_no"`
	Reason    string `json:"reason"`
}

// WebhookFailureAlertPayload 回调失败告警任务载荷
type WebhookFailureAlertPayload struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

// NewManualReviewAlertTask 创建人工复核告警任务
func NewManualReviewAlertTask(payload ManualReviewAlertPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskManualReviewAlert, body), nil
}

// NewWebhookFailureAlertTask 创建回调失败告警任务
func NewWebhookFailureAlertTask(payload WebhookFailureAlertPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWebhookFailureAlert, body), nil
}
