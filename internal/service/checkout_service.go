package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hausmarkt/internal/config"
	"github.com/hausmarkt/internal/constants"
	"github.com/hausmarkt/internal/payment/stripe"
	"github.com/hausmarkt/internal/repository"

	"github.com/shopspring/decimal"
)

// 静态价目表（欧元）。结账金额在服务端定价，前端只选条目。
var (
	planPrices = map[string]decimal.Decimal{
		constants.PlanBasic:   decimal.NewFromFloat(49.00),
		constants.PlanPlus:    decimal.NewFromFloat(99.00),
		constants.PlanPremium: decimal.NewFromFloat(199.00),
	}
	upgradePrices = map[string]decimal.Decimal{
		constants.MetaKeyBanner:       decimal.NewFromFloat(19.90),
		constants.MetaKeyPremium:      decimal.NewFromFloat(29.90),
		constants.MetaKeyPin:          decimal.NewFromFloat(14.90),
		constants.MetaKeyConfidential: decimal.NewFromFloat(9.90),
	}
	planUpgradePrice      = decimal.NewFromFloat(59.00)
	commissionChangePrice = decimal.NewFromFloat(49.00)
)

// CheckoutService 支付会话服务
type CheckoutService struct {
	cfg         *config.Config
	listingRepo repository.ListingRepository
}

// NewCheckoutService 创建支付会话服务
func NewCheckoutService(cfg *config.Config, listingRepo repository.ListingRepository) *CheckoutService {
	return &CheckoutService{
		cfg:         cfg,
		listingRepo: listingRepo,
	}
}

// CreateSessionInput 创建支付会话输入
type CreateSessionInput struct {
	ListingNo        string
	Payer            string
	Plan             string
	Flow             string
	Upgrades         []string
	PlanUpgrade      bool
	CommissionChange bool
	CommissionValue  string
	CommissionType   string
	Context          context.Context
}

// CreateSessionResult 创建支付会话结果
type CreateSessionResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

// CreateSession 定价并创建 Stripe Checkout Session。
// 写入的元数据是与履约引擎的共享契约：listing_no、payer、plan、flow、
// 增值项标记与佣金字段都会原样出现在支付完成事件里。
func (s *CheckoutService) CreateSession(input CreateSessionInput) (*CreateSessionResult, error) {
	log := fulfillmentLogger("listing_no", input.ListingNo, "flow", input.Flow)

	listingNo := strings.TrimSpace(input.ListingNo)
	if listingNo == "" {
		return nil, ErrCheckoutInvalid
	}
	listing, err := s.listingRepo.GetByListingNo(listingNo)
	if err != nil {
		log.Errorw("checkout_listing_lookup_failed", "error", err)
		return nil, ErrFulfillmentStoreFailed
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	flow := normalizeFlow(input.Flow)
	plan := NormalizePlan(input.Plan)
	metadata := map[string]string{
		constants.MetaKeyListingNo: listingNo,
		constants.MetaKeyPayer:     strings.TrimSpace(input.Payer),
		constants.MetaKeyPlan:      plan,
		constants.MetaKeyFlow:      flow,
	}

	total := decimal.Zero
	switch flow {
	case constants.FlowNewListing:
		total = total.Add(planPrices[plan])
	case constants.FlowCommission:
		if !input.CommissionChange {
			return nil, ErrCheckoutInvalid
		}
	}

	selected := map[string]bool{}
	for _, upgrade := range input.Upgrades {
		key := strings.ToLower(strings.TrimSpace(upgrade))
		price, ok := upgradePrices[key]
		if !ok {
			return nil, ErrCheckoutInvalid
		}
		if selected[key] {
			continue
		}
		selected[key] = true
		metadata[key] = constants.MetaTruthy
		total = total.Add(price)
	}

	if input.PlanUpgrade {
		metadata[constants.MetaKeyPlanUpgrade] = constants.MetaTruthy
		total = total.Add(planUpgradePrice)
	}

	if input.CommissionChange {
		commissionValue := strings.TrimSpace(input.CommissionValue)
		if commissionValue == "" {
			return nil, ErrCheckoutInvalid
		}
		if _, err := decimal.NewFromString(commissionValue); err != nil {
			return nil, ErrCheckoutInvalid
		}
		metadata[constants.MetaKeyCommissionChange] = constants.MetaTruthy
		metadata[constants.MetaKeyCommissionValue] = commissionValue
		metadata[constants.MetaKeyCommissionType] = normalizeCommissionType(input.CommissionType)
		total = total.Add(commissionChangePrice)
	}

	if total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCheckoutInvalid
	}

	currency := strings.ToUpper(strings.TrimSpace(s.cfg.Stripe.Currency))
	if currency == "" {
		currency = "EUR"
	}

	stripeCfg := StripeConfigFromApp(s.cfg)
	result, err := stripe.CreateCheckoutSession(input.Context, stripeCfg, stripe.CheckoutInput{
		ListingNo:   listingNo,
		Amount:      total.StringFixed(2),
		Currency:    currency,
		Description: fmt.Sprintf("Hausmarkt %s – %s", flowLabel(flow), listingNo),
		Metadata:    metadata,
	})
	if err != nil {
		log.Warnw("checkout_session_create_failed", "error", err)
		return nil, ErrCheckoutGatewayFailed
	}

	log.Infow("checkout_session_created",
		"session_id", result.SessionID,
		"amount", total.StringFixed(2),
		"currency", currency,
	)
	return &CreateSessionResult{
		SessionID: result.SessionID,
		URL:       result.URL,
		Amount:    total.StringFixed(2),
		Currency:  currency,
	}, nil
}

func normalizeFlow(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case constants.FlowNewListing:
		return constants.FlowNewListing
	case constants.FlowCommission:
		return constants.FlowCommission
	default:
		return constants.FlowUpgrade
	}
}

func flowLabel(flow string) string {
	switch flow {
	case constants.FlowNewListing:
		return "Inserat"
	case constants.FlowCommission:
		return "Provisionsänderung"
	default:
		return "Upgrade"
	}
}
