package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/hausmarkt/internal/constants"
	"github.com/hausmarkt/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPaymentRecordRepositoryTest(t *testing.T) (*GormPaymentRecordRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_record_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PaymentRecord{}, &models.Listing{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewPaymentRecordRepository(db), db
}

func TestPaymentRecordRepositoryCreateIgnoreDuplicateKeepsFirstRow(t *testing.T) {
	repo, _ := setupPaymentRecordRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	first := models.PaymentRecord{
		SessionID:  "cs_test_dup_001",
		EventID:    "evt_001",
		Status:     constants.FulfillmentStatusProcessing,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(49)),
		Currency:   "EUR",
		ListingNo:  "HM-1001",
		Flow:       constants.FlowUpgrade,
		ReceivedAt: now,
	}
	if err := repo.CreateIgnoreDuplicate(&first); err != nil {
		t.Fatalf("create first record failed: %v", err)
	}

	second := models.PaymentRecord{
		SessionID:  "cs_test_dup_001",
		EventID:    "evt_002",
		Status:     constants.FulfillmentStatusProcessing,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(99)),
		Currency:   "EUR",
		ListingNo:  "HM-9999",
		Flow:       constants.FlowUpgrade,
		ReceivedAt: now.Add(time.Minute),
	}
	if err := repo.CreateIgnoreDuplicate(&second); err != nil {
		t.Fatalf("create duplicate record failed: %v", err)
	}

	got, err := repo.GetBySessionID("cs_test_dup_001")
	if err != nil {
		t.Fatalf("get by session failed: %v", err)
	}
	if got == nil {
		t.Fatalf("record not found after insert")
	}
	if got.EventID != "evt_001" {
		t.Fatalf("event_id want evt_001 got %s", got.EventID)
	}
	if got.ListingNo != "HM-1001" {
		t.Fatalf("listing_no want HM-1001 got %s", got.ListingNo)
	}
}

func TestPaymentRecordRepositoryGetBySessionIDEmptyInput(t *testing.T) {
	repo, _ := setupPaymentRecordRepositoryTest(t)

	got, err := repo.GetBySessionID("  ")
	if err != nil {
		t.Fatalf("get by empty session failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil record for empty session id")
	}
}

func TestPaymentRecordRepositoryListNeedsReviewFiltersStatus(t *testing.T) {
	repo, db := setupPaymentRecordRepositoryTest(t)
	now := time.Now().UTC().Truncate(time.Second)

	records := []models.PaymentRecord{
		{
			SessionID:    "cs_test_rev_001",
			Status:       constants.FulfillmentStatusNeedsReview,
			ReviewReason: constants.ReviewReasonMissingListingNo,
			Currency:     "EUR",
			ReceivedAt:   now,
		},
		{
			SessionID:  "cs_test_rev_002",
			Status:     constants.FulfillmentStatusFulfilled,
			Currency:   "EUR",
			ListingNo:  "HM-2002",
			ReceivedAt: now,
		},
		{
			SessionID:    "cs_test_rev_003",
			Status:       constants.FulfillmentStatusNeedsReview,
			ReviewReason: constants.ReviewReasonListingNotFound,
			Currency:     "EUR",
			ListingNo:    "HM-404",
			ReceivedAt:   now,
		},
	}
	for i := range records {
		if err := db.Create(&records[i]).Error; err != nil {
			t.Fatalf("seed record %d failed: %v", i, err)
		}
	}

	rows, total, err := repo.ListNeedsReview(PaymentRecordListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list needs review failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("total want 2 got %d", total)
	}
	for _, row := range rows {
		if row.Status != constants.FulfillmentStatusNeedsReview {
			t.Fatalf("unexpected status %s in review queue", row.Status)
		}
	}

	rows, total, err = repo.ListAdmin(PaymentRecordListFilter{Page: 1, PageSize: 10, ListingNo: "HM-404"})
	if err != nil {
		t.Fatalf("list admin failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("listing filter total want 1 got %d", total)
	}
	if len(rows) != 1 || rows[0].SessionID != "cs_test_rev_003" {
		t.Fatalf("listing filter returned wrong row")
	}
}
