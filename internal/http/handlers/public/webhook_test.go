package public

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/hausmarkt/internal/constants"
	"github.com/hausmarkt/internal/models"
	"github.com/hausmarkt/internal/payment/stripe"
	"github.com/hausmarkt/internal/provider"
	"github.com/hausmarkt/internal/queue"
	"github.com/hausmarkt/internal/repository"
	"github.com/hausmarkt/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test_handler"

func setupWebhookTest(t *testing.T, webhookSecret string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:webhook_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Listing{}, &models.PaymentRecord{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	listingRepo := repository.NewListingRepository(db)
	recordRepo := repository.NewPaymentRecordRepository(db)
	queueClient, _ := queue.NewClient(nil)
	stripeCfg := &stripe.Config{
		WebhookSecret:           webhookSecret,
		WebhookToleranceSeconds: 300,
	}

	container := &provider.Container{
		ListingRepo:        listingRepo,
		PaymentRecordRepo:  recordRepo,
		QueueClient:        queueClient,
		FulfillmentService: service.NewFulfillmentService(listingRepo, recordRepo, queueClient, stripeCfg),
	}
	handler := New(container)

	r := gin.New()
	r.POST("/api/v1/payments/webhook/stripe", handler.StripeWebhook)
	return r, db
}

func seedWebhookListing(t *testing.T, db *gorm.DB, listingNo string) {
	t.Helper()
	listing := &models.Listing{
		ListingNo:   listingNo,
		Title:       "Reihenhaus " + listingNo,
		City:        "Hamburg",
		Status:      constants.ListingStatusPublished,
		AskingPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(380000)),
		Plan:        constants.PlanBasic,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("seed listing failed: %v", err)
	}
}

func signWebhookBody(secret string, ts int64, body []byte) string {
	payload := strconv.FormatInt(ts, 10) + "." + string(body)
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

func checkoutEventBody(t *testing.T, sessionID string, metadata map[string]interface{}) []byte {
	t.Helper()
	payload := map[string]interface{}{
		"id":   "evt_" + sessionID,
		"type": stripe.EventCheckoutCompleted,
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"object":         "checkout.session",
				"id":             sessionID,
				"payment_status": "paid",
				"currency":       "eur",
				"amount_total":   4900,
				"customer_email": "owner@example.com",
				"created":        time.Now().Unix(),
				"metadata":       metadata,
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return body
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/webhook/stripe", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestStripeWebhookValidEventReturns200(t *testing.T) {
	r, db := setupWebhookTest(t, testWebhookSecret)
	seedWebhookListing(t, db, "HM-3001")

	body := checkoutEventBody(t, "cs_handler_ok", map[string]interface{}{
		"listing_no": "HM-3001",
		"banner":     "true",
	})
	ts := time.Now().Unix()
	sig := "t=" + strconv.FormatInt(ts, 10) + ",v1=" + signWebhookBody(testWebhookSecret, ts, body)

	w := postWebhook(r, body, sig)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d body %s", w.Code, w.Body.String())
	}

	var outcome service.FulfillmentOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("unmarshal outcome failed: %v", err)
	}
	if outcome.Outcome != service.OutcomeFulfilled {
		t.Fatalf("outcome want fulfilled got %s", outcome.Outcome)
	}

	var listing models.Listing
	if err := db.Where("listing_no = ?", "HM-3001").First(&listing).Error; err != nil {
		t.Fatalf("reload listing failed: %v", err)
	}
	if !listing.UpgradeBanner {
		t.Fatalf("banner upgrade should be applied")
	}
}

func TestStripeWebhookInvalidSignatureReturns400(t *testing.T) {
	r, db := setupWebhookTest(t, testWebhookSecret)
	seedWebhookListing(t, db, "HM-3002")

	body := checkoutEventBody(t, "cs_handler_bad_sig", map[string]interface{}{
		"listing_no": "HM-3002",
	})
	ts := time.Now().Unix()
	sig := "t=" + strconv.FormatInt(ts, 10) + ",v1=" + signWebhookBody("whsec_wrong_secret", ts, body)

	w := postWebhook(r, body, sig)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d body %s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&models.PaymentRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count records failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected webhook must not write records, got %d", count)
	}
}

func TestStripeWebhookMissingSignatureReturns400(t *testing.T) {
	r, _ := setupWebhookTest(t, testWebhookSecret)

	body := checkoutEventBody(t, "cs_handler_no_sig", map[string]interface{}{
		"listing_no": "HM-3003",
	})

	w := postWebhook(r, body, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d body %s", w.Code, w.Body.String())
	}
}

func TestStripeWebhookMissingSecretReturns500(t *testing.T) {
	r, _ := setupWebhookTest(t, "")

	body := checkoutEventBody(t, "cs_handler_no_secret", map[string]interface{}{
		"listing_no": "HM-3004",
	})
	ts := time.Now().Unix()
	sig := "t=" + strconv.FormatInt(ts, 10) + ",v1=" + signWebhookBody(testWebhookSecret, ts, body)

	w := postWebhook(r, body, sig)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status want 500 got %d body %s", w.Code, w.Body.String())
	}
}

func TestStripeWebhookUnknownListingReturns200NeedsReview(t *testing.T) {
	r, db := setupWebhookTest(t, testWebhookSecret)

	body := checkoutEventBody(t, "cs_handler_review", map[string]interface{}{
		"listing_no": "HM-9999",
	})
	ts := time.Now().Unix()
	sig := "t=" + strconv.FormatInt(ts, 10) + ",v1=" + signWebhookBody(testWebhookSecret, ts, body)

	w := postWebhook(r, body, sig)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d body %s", w.Code, w.Body.String())
	}

	var outcome service.FulfillmentOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("unmarshal outcome failed: %v", err)
	}
	if outcome.Outcome != service.OutcomeNeedsReview {
		t.Fatalf("outcome want needs_manual_review got %s", outcome.Outcome)
	}

	var record models.PaymentRecord
	if err := db.Where("session_id = ?", "cs_handler_review").First(&record).Error; err != nil {
		t.Fatalf("review record should exist: %v", err)
	}
	if record.Status != constants.FulfillmentStatusNeedsReview {
		t.Fatalf("record status want needs_manual_review got %s", record.Status)
	}
}

func TestStripeWebhookIgnoredEventTypeReturns200(t *testing.T) {
	r, _ := setupWebhookTest(t, testWebhookSecret)

	payload := map[string]interface{}{
		"id":   "evt_other",
		"type": "payment_intent.succeeded",
		"data": map[string]interface{}{"object": map[string]interface{}{}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	ts := time.Now().Unix()
	sig := "t=" + strconv.FormatInt(ts, 10) + ",v1=" + signWebhookBody(testWebhookSecret, ts, body)

	w := postWebhook(r, body, sig)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d body %s", w.Code, w.Body.String())
	}

	var outcome service.FulfillmentOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("unmarshal outcome failed: %v", err)
	}
	if outcome.Outcome != service.OutcomeIgnored {
		t.Fatalf("outcome want ignored got %s", outcome.Outcome)
	}
}
