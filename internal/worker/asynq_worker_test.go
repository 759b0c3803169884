package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/hausmarkt/internal/constants"
	"github.com/hausmarkt/internal/models"
	"github.com/hausmarkt/internal/provider"
	"github.com/hausmarkt/internal/queue"
	"github.com/hausmarkt/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) *Consumer {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PaymentRecord{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	container := &provider.Container{
		PaymentRecordRepo: repository.NewPaymentRecordRepository(db),
	}
	return NewConsumer(container)
}

func newAlertTask(t *testing.T, taskType string, payload interface{}) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return asynq.NewTask(taskType, body)
}

func TestHandleManualReviewAlertSkipsMissingRecord(t *testing.T) {
	consumer := setupConsumerTest(t)

	task := newAlertTask(t, queue.TaskManualReviewAlert, queue.ManualReviewAlertPayload{
		SessionID: "cs_missing",
		Reason:    constants.ReviewReasonListingNotFound,
	})
	if err := consumer.handleManualReviewAlert(context.Background(), task); err != nil {
		t.Fatalf("missing record should not fail: %v", err)
	}
}

func TestHandleManualReviewAlertSkipsResolvedRecord(t *testing.T) {
	consumer := setupConsumerTest(t)

	record := &models.PaymentRecord{
		SessionID: "cs_resolved",
		EventID:   "evt_1",
		Status:    constants.FulfillmentStatusFulfilled,
		Currency:  "EUR",
	}
	if err := consumer.PaymentRecordRepo.CreateIgnoreDuplicate(record); err != nil {
		t.Fatalf("seed record failed: %v", err)
	}

	task := newAlertTask(t, queue.TaskManualReviewAlert, queue.ManualReviewAlertPayload{
		SessionID: "cs_resolved",
		Reason:    constants.ReviewReasonMissingListingNo,
	})
	if err := consumer.handleManualReviewAlert(context.Background(), task); err != nil {
		t.Fatalf("resolved record should not fail: %v", err)
	}
}

func TestHandleManualReviewAlertPendingRecord(t *testing.T) {
	consumer := setupConsumerTest(t)

	record := &models.PaymentRecord{
		SessionID:    "cs_pending",
		EventID:      "evt_2",
		Status:       constants.FulfillmentStatusNeedsReview,
		ReviewReason: constants.ReviewReasonListingNotFound,
		ListingNo:    "HM-2001",
		Currency:     "EUR",
	}
	if err := consumer.PaymentRecordRepo.CreateIgnoreDuplicate(record); err != nil {
		t.Fatalf("seed record failed: %v", err)
	}

	task := newAlertTask(t, queue.TaskManualReviewAlert, queue.ManualReviewAlertPayload{
		SessionID: "cs_pending",
		ListingNo: "HM-2001",
		Reason:    constants.ReviewReasonListingNotFound,
	})
	if err := consumer.handleManualReviewAlert(context.Background(), task); err != nil {
		t.Fatalf("pending record alert failed: %v", err)
	}
}

func TestHandleManualReviewAlertInvalidPayload(t *testing.T) {
	consumer := setupConsumerTest(t)

	task := asynq.NewTask(queue.TaskManualReviewAlert, []byte("{not-json"))
	if err := consumer.handleManualReviewAlert(context.Background(), task); err == nil {
		t.Fatalf("invalid payload should fail")
	}
}

func TestHandleWebhookFailureAlert(t *testing.T) {
	consumer := setupConsumerTest(t)

	task := newAlertTask(t, queue.TaskWebhookFailureAlert, queue.WebhookFailureAlertPayload{
		EventID: "evt_3",
		Reason:  "signature",
	})
	if err := consumer.handleWebhookFailureAlert(context.Background(), task); err != nil {
		t.Fatalf("webhook failure alert failed: %v", err)
	}
}
