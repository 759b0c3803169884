package constants

// 房源状态常量
const (
	ListingStatusDraft     = "draft"
	ListingStatusPublished = "published"
	ListingStatusArchived  = "archived"
)

// 房源套餐档位常量（由低到高）
const (
	PlanBasic   = "basic"
	PlanPlus    = "plus"
	PlanPremium = "premium"
)

// PlanTiers 套餐档位顺序表
var PlanTiers = []string{PlanBasic, PlanPlus, PlanPremium}

// 付费增值项常量
const (
	UpgradeBanner       = "banner"
	UpgradePremium      = "premium"
	UpgradePin          = "pin"
	UpgradeConfidential = "confidential"
)

// 支付履约台账状态常量
const (
	FulfillmentStatusProcessing  = "processing"
	FulfillmentStatusFulfilled   = "fulfilled"
	FulfillmentStatusNeedsReview = "needs_manual_review"
)

// 人工复核原因常量
const (
	ReviewReasonMissingListingNo = "missing_listing_no"
	ReviewReasonListingNotFound  = "listing_not_found"
)

// 房源支付状态常量
const (
	ListingPaymentStatusPaid = "paid"
)

// 结账元数据键常量（与 Checkout Session 创建端共享的契约）
const (
	MetaKeyListingNo        = "listing_no"
	MetaKeyPayer            = "payer"
	MetaKeyPlan             = "plan"
	MetaKeyFlow             = "flow"
	MetaKeyBanner           = "banner"
	MetaKeyPremium          = "premium"
	MetaKeyPin              = "pin"
	MetaKeyConfidential     = "confidential"
	MetaKeyPlanUpgrade      = "plan_upgrade"
	MetaKeyCommissionChange = "commission_change"
	MetaKeyCommissionValue  = "commission_value"
	MetaKeyCommissionType   = "commission_type"
)

// MetaTruthy 元数据布尔标记的字面真值
const MetaTruthy = "true"

// 佣金类型常量
const (
	CommissionTypePercent = "percent"
	CommissionTypeFixed   = "fixed"
)

// 结账流程标识常量
const (
	FlowNewListing = "new_listing"
	FlowUpgrade    = "upgrade"
	FlowCommission = "commission_change"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskManualReviewAlert   = "fulfillment:manual_review_alert"
	TaskWebhookFailureAlert = "fulfillment:webhook_failure_alert"
)
