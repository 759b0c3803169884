package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hausmarkt/internal/cache"
	"github.com/hausmarkt/internal/constants"
	"github.com/hausmarkt/internal/logger"
	"github.com/hausmarkt/internal/models"
	"github.com/hausmarkt/internal/payment/stripe"
	"github.com/hausmarkt/internal/queue"
	"github.com/hausmarkt/internal/repository"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 履约结果状态
const (
	OutcomeFulfilled        = "fulfilled"
	OutcomeAlreadyFulfilled = "already_fulfilled"
	OutcomeNeedsReview      = "needs_manual_review"
	OutcomeSkippedUnpaid    = "skipped_unpaid"
	OutcomeIgnored          = "ignored"
)

// AlertQueue 履约链路的告警投递端，生产实现为 queue.Client。
type AlertQueue interface {
	EnqueueManualReviewAlert(payload queue.ManualReviewAlertPayload, opts ...asynq.Option) error
	EnqueueWebhookFailureAlert(payload queue.WebhookFailureAlertPayload, opts ...asynq.Option) error
}

// FulfillmentService 支付履约服务
type FulfillmentService struct {
	listingRepo repository.ListingRepository
	recordRepo  repository.PaymentRecordRepository
	queueClient AlertQueue
	stripeCfg   *stripe.Config
}

// NewFulfillmentService 创建履约服务
func NewFulfillmentService(listingRepo repository.ListingRepository, recordRepo repository.PaymentRecordRepository, queueClient AlertQueue, stripeCfg *stripe.Config) *FulfillmentService {
	return &FulfillmentService{
		listingRepo: listingRepo,
		recordRepo:  recordRepo,
		queueClient: queueClient,
		stripeCfg:   stripeCfg,
	}
}

// WebhookInput 支付回调输入
type WebhookInput struct {
	Context context.Context
	Headers map[string]string
	Body    []byte
}

// FulfillmentOutcome 单次投递的处理结果
type FulfillmentOutcome struct {
	Outcome   string `json:"outcome"`
	SessionID string `json:"session_id"`
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	ListingNo string `json:"listing_no"`
	Reason    string `json:"reason,omitempty"`
}

func fulfillmentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// HandleStripeWebhook 处理 Stripe 支付完成回调。
// 投递语义为至少一次：任何非 200 返回都会触发渠道重投，
// 因此除了验签与报文错误，失败必须让台账停留在 processing 以便续传。
func (s *FulfillmentService) HandleStripeWebhook(input WebhookInput) (*FulfillmentOutcome, error) {
	log := fulfillmentLogger("body_size", len(input.Body))

	if err := stripe.ValidateWebhookConfig(s.stripeCfg); err != nil {
		log.Errorw("fulfillment_webhook_config_invalid", "error", err)
		return nil, ErrWebhookConfigInvalid
	}

	signed, err := stripe.VerifyWebhook(s.stripeCfg, input.Headers, input.Body, time.Now())
	if err != nil {
		mapped := mapStripeWebhookError(err)
		log.Warnw("fulfillment_webhook_verify_failed", "error", err)
		s.notifyWebhookFailure(input.Context, "", "signature_verify_failed")
		return nil, mapped
	}
	log = fulfillmentLogger("event_id", signed.EventID, "event_type", signed.EventType)

	if signed.EventType != stripe.EventCheckoutCompleted {
		log.Infow("fulfillment_webhook_event_ignored")
		return &FulfillmentOutcome{
			Outcome:   OutcomeIgnored,
			EventID:   signed.EventID,
			EventType: signed.EventType,
		}, nil
	}

	event, err := stripe.ParseCheckoutEvent(signed)
	if err != nil {
		log.Warnw("fulfillment_webhook_payload_invalid", "error", err)
		s.notifyWebhookFailure(input.Context, signed.EventID, "payload_invalid")
		return nil, ErrWebhookPayloadInvalid
	}
	outcome, err := s.fulfillCheckoutEvent(input.Context, signed.EventType, event)
	if err != nil {
		// 存储层失败会触发渠道重投，同样计入失败告警
		reason := "store_failed"
		if errors.Is(err, ErrListingVanished) {
			reason = "listing_vanished"
		}
		s.notifyWebhookFailure(input.Context, signed.EventID, reason)
		return nil, err
	}
	return outcome, nil
}

// fulfillCheckoutEvent 对已验签的结账事件执行履约决策。
func (s *FulfillmentService) fulfillCheckoutEvent(ctx context.Context, eventType string, event *stripe.CheckoutEvent) (*FulfillmentOutcome, error) {
	log := fulfillmentLogger(
		"event_id", event.EventID,
		"session_id", event.SessionID,
		"listing_no", event.Meta(constants.MetaKeyListingNo),
	)
	outcome := &FulfillmentOutcome{
		SessionID: event.SessionID,
		EventID:   event.EventID,
		EventType: eventType,
		ListingNo: event.Meta(constants.MetaKeyListingNo),
	}

	if !event.Paid() {
		log.Infow("fulfillment_session_unpaid_skipped", "payment_status", event.PaymentStatus)
		outcome.Outcome = OutcomeSkippedUnpaid
		return outcome, nil
	}

	existing, err := s.recordRepo.GetBySessionID(event.SessionID)
	if err != nil {
		log.Errorw("fulfillment_record_lookup_failed", "error", err)
		return nil, ErrFulfillmentStoreFailed
	}
	if existing != nil && existing.Status == constants.FulfillmentStatusFulfilled {
		log.Infow("fulfillment_session_already_fulfilled")
		outcome.Outcome = OutcomeAlreadyFulfilled
		return outcome, nil
	}

	record, err := s.markProcessing(event)
	if err != nil {
		log.Errorw("fulfillment_mark_processing_failed", "error", err)
		return nil, ErrFulfillmentStoreFailed
	}
	if record.Status == constants.FulfillmentStatusFulfilled {
		// 并发投递在插入与重读之间完成了履约
		log.Infow("fulfillment_session_already_fulfilled")
		outcome.Outcome = OutcomeAlreadyFulfilled
		return outcome, nil
	}

	listingNo := event.Meta(constants.MetaKeyListingNo)
	if listingNo == "" {
		return s.parkForReview(ctx, record, outcome, constants.ReviewReasonMissingListingNo)
	}

	listing, err := s.listingRepo.GetByListingNo(listingNo)
	if err != nil {
		log.Errorw("fulfillment_listing_lookup_failed", "error", err)
		return nil, ErrFulfillmentStoreFailed
	}
	if listing == nil {
		return s.parkForReview(ctx, record, outcome, constants.ReviewReasonListingNotFound)
	}

	resolution := ResolveUpgrades(event.Metadata)
	if err := s.applyFulfillment(event.SessionID, listingNo, resolution); err != nil {
		if errors.Is(err, ErrListingVanished) {
			log.Warnw("fulfillment_listing_vanished_in_tx")
			return nil, err
		}
		log.Errorw("fulfillment_apply_failed", "error", err)
		return nil, ErrFulfillmentStoreFailed
	}

	log.Infow("fulfillment_session_fulfilled",
		"final_plan", resolution.FinalPlan,
		"plan_upgraded", resolution.PlanUpgraded,
		"commission_change", resolution.CommissionChange,
	)
	outcome.Outcome = OutcomeFulfilled
	return outcome, nil
}

// markProcessing 在触碰房源之前先落台账，崩溃后留下可续传的痕迹。
// 并发重复投递通过唯一索引 + 插入后重读收敛到同一行。
func (s *FulfillmentService) markProcessing(event *stripe.CheckoutEvent) (*models.PaymentRecord, error) {
	now := time.Now()
	amount := models.Money{}
	if strings.TrimSpace(event.Amount) != "" {
		if parsed, err := decimal.NewFromString(strings.TrimSpace(event.Amount)); err == nil {
			amount = models.NewMoneyFromDecimal(parsed)
		}
	}
	metadata := models.JSON{}
	for key, value := range event.Metadata {
		metadata[key] = value
	}
	record := models.PaymentRecord{
		SessionID:     event.SessionID,
		EventID:       event.EventID,
		Status:        constants.FulfillmentStatusProcessing,
		Amount:        amount,
		Currency:      event.Currency,
		CustomerEmail: event.CustomerEmail,
		ListingNo:     event.Meta(constants.MetaKeyListingNo),
		Payer:         event.Meta(constants.MetaKeyPayer),
		Plan:          event.Meta(constants.MetaKeyPlan),
		Flow:          event.Meta(constants.MetaKeyFlow),
		Metadata:      metadata,
		ReceivedAt:    now,
	}
	if err := s.recordRepo.CreateIgnoreDuplicate(&record); err != nil {
		return nil, err
	}
	current, err := s.recordRepo.GetBySessionID(event.SessionID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return current, nil
}

// parkForReview 将台账置为人工复核并返回成功结果。
// 钱已经收了，事件本身有效，不能让渠道无限重投。
func (s *FulfillmentService) parkForReview(ctx context.Context, record *models.PaymentRecord, outcome *FulfillmentOutcome, reason string) (*FulfillmentOutcome, error) {
	log := fulfillmentLogger("session_id", record.SessionID, "reason", reason)
	if record.Status != constants.FulfillmentStatusFulfilled {
		now := time.Now()
		record.Status = constants.FulfillmentStatusNeedsReview
		record.ReviewReason = reason
		record.ReviewedAt = &now
		if err := s.recordRepo.Update(record); err != nil {
			log.Errorw("fulfillment_mark_review_failed", "error", err)
			return nil, ErrFulfillmentStoreFailed
		}
	}
	log.Warnw("fulfillment_session_needs_review")
	s.notifyNeedsReview(ctx, record, reason)
	outcome.Outcome = OutcomeNeedsReview
	outcome.Reason = reason
	return outcome, nil
}

// applyFulfillment 在单个事务内合并房源变更并翻转台账状态。
// 台账行先加锁：并发投递串行化后，后到者看到 fulfilled 直接返回。
func (s *FulfillmentService) applyFulfillment(sessionID string, listingNo string, resolution UpgradeResolution) error {
	return models.DB.Transaction(func(tx *gorm.DB) error {
		record, err := s.recordRepo.WithTx(tx).GetBySessionIDForUpdate(sessionID)
		if err != nil {
			return err
		}
		if record == nil {
			return gorm.ErrRecordNotFound
		}
		if record.Status == constants.FulfillmentStatusFulfilled {
			return nil
		}

		listing, err := s.listingRepo.WithTx(tx).GetByListingNoForUpdate(listingNo)
		if err != nil {
			return err
		}
		if listing == nil {
			// 先前的存在性检查通过，事务内消失说明有并发删除
			return ErrListingVanished
		}

		mergeListingPatch(listing, resolution, sessionID)

		if err := s.listingRepo.WithTx(tx).Update(listing); err != nil {
			return err
		}

		now := time.Now()
		record.Status = constants.FulfillmentStatusFulfilled
		record.ReviewReason = ""
		record.FulfilledAt = &now
		return s.recordRepo.WithTx(tx).Update(record)
	})
}

// mergeListingPatch 将解析结果并入房源：增值项只做 false→true 的并集，
// 套餐只升不降，佣金变更仅做暂存。
func mergeListingPatch(listing *models.Listing, resolution UpgradeResolution, sessionID string) {
	listing.UpgradeBanner = listing.UpgradeBanner || resolution.Upgrades[constants.MetaKeyBanner]
	listing.UpgradePremium = listing.UpgradePremium || resolution.Upgrades[constants.MetaKeyPremium]
	listing.UpgradePin = listing.UpgradePin || resolution.Upgrades[constants.MetaKeyPin]
	listing.UpgradeConfidential = listing.UpgradeConfidential || resolution.Upgrades[constants.MetaKeyConfidential]

	if planRank(resolution.FinalPlan) > planRank(listing.Plan) {
		listing.Plan = resolution.FinalPlan
	}

	if resolution.CommissionChange {
		listing.CommissionChangePaid = true
		listing.PendingCommission = resolution.PendingCommission
		listing.PendingCommissionType = resolution.PendingCommissionType
	}

	now := time.Now()
	listing.PaymentStatus = constants.ListingPaymentStatusPaid
	listing.LastPaidSessionID = sessionID
	listing.PaidAt = &now
}

func planRank(plan string) int {
	normalized := NormalizePlan(plan)
	for i, tier := range constants.PlanTiers {
		if tier == normalized {
			return i
		}
	}
	return 0
}

// Reprocess 人工复核后的显式重新履约入口。
// 已 fulfilled 的台账是幂等空操作；processing/needs_manual_review
// 使用台账保存的完整元数据重走 resolve+apply。
func (s *FulfillmentService) Reprocess(ctx context.Context, sessionID string) (*FulfillmentOutcome, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrPaymentRecordNotFound
	}
	log := fulfillmentLogger("session_id", sessionID)

	record, err := s.recordRepo.GetBySessionID(sessionID)
	if err != nil {
		log.Errorw("fulfillment_reprocess_lookup_failed", "error", err)
		return nil, ErrFulfillmentStoreFailed
	}
	if record == nil {
		return nil, ErrPaymentRecordNotFound
	}

	outcome := &FulfillmentOutcome{
		SessionID: record.SessionID,
		EventID:   record.EventID,
		ListingNo: record.ListingNo,
	}
	if record.Status == constants.FulfillmentStatusFulfilled {
		log.Infow("fulfillment_reprocess_already_fulfilled")
		outcome.Outcome = OutcomeAlreadyFulfilled
		return outcome, nil
	}

	metadata := metadataStrings(record.Metadata)
	listingNo := record.ListingNo
	if listingNo == "" {
		listingNo = strings.TrimSpace(metadata[constants.MetaKeyListingNo])
	}
	if listingNo == "" {
		return s.parkForReview(ctx, record, outcome, constants.ReviewReasonMissingListingNo)
	}
	outcome.ListingNo = listingNo

	listing, err := s.listingRepo.GetByListingNo(listingNo)
	if err != nil {
		log.Errorw("fulfillment_reprocess_listing_lookup_failed", "error", err)
		return nil, ErrFulfillmentStoreFailed
	}
	if listing == nil {
		return s.parkForReview(ctx, record, outcome, constants.ReviewReasonListingNotFound)
	}

	resolution := ResolveUpgrades(metadata)
	if err := s.applyFulfillment(record.SessionID, listingNo, resolution); err != nil {
		if errors.Is(err, ErrListingVanished) {
			return nil, err
		}
		log.Errorw("fulfillment_reprocess_apply_failed", "error", err)
		return nil, ErrFulfillmentStoreFailed
	}

	log.Infow("fulfillment_reprocess_fulfilled", "listing_no", listingNo)
	outcome.Outcome = OutcomeFulfilled
	return outcome, nil
}

func (s *FulfillmentService) notifyNeedsReview(ctx context.Context, record *models.PaymentRecord, reason string) {
	if ctx == nil {
		ctx = context.Background()
	}
	first, err := cache.MarkReviewAlerted(ctx, record.SessionID)
	if err != nil {
		fulfillmentLogger("session_id", record.SessionID).Warnw("fulfillment_review_alert_dedup_failed", "error", err)
	}
	if !first {
		return
	}
	err = s.queueClient.EnqueueManualReviewAlert(queue.ManualReviewAlertPayload{
		SessionID: record.SessionID,
		ListingNo: record.ListingNo,
		Reason:    reason,
	})
	if err != nil {
		fulfillmentLogger("session_id", record.SessionID).Warnw("fulfillment_review_alert_enqueue_failed", "error", err)
	}
}

func (s *FulfillmentService) notifyWebhookFailure(ctx context.Context, eventID string, reason string) {
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.queueClient.EnqueueWebhookFailureAlert(queue.WebhookFailureAlertPayload{
		EventID: eventID,
		Reason:  reason,
	})
	if err != nil {
		fulfillmentLogger("event_id", eventID).Warnw("fulfillment_failure_alert_enqueue_failed", "error", err)
	}
}

func metadataStrings(raw models.JSON) map[string]string {
	result := make(map[string]string, len(raw))
	for key, value := range raw {
		if value == nil {
			continue
		}
		if text, ok := value.(string); ok {
			result[key] = text
		}
	}
	return result
}

func mapStripeWebhookError(err error) error {
	switch {
	case errors.Is(err, stripe.ErrConfigInvalid):
		return ErrWebhookConfigInvalid
	case errors.Is(err, stripe.ErrSignatureInvalid):
		return ErrWebhookSignatureInvalid
	case errors.Is(err, stripe.ErrResponseInvalid):
		return ErrWebhookPayloadInvalid
	default:
		return ErrWebhookPayloadInvalid
	}
}
