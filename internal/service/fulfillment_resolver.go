package service

import (
	"strings"

	"github.com/hausmarkt/internal/constants"
)

// UpgradeResolution 支付元数据解析结果。
// 解析是全量且防御性的：任何字段缺失或畸形都退化为安全默认值，
// 因为钱已经被支付渠道扣走，这里失败只会丢掉一笔已收款。
type UpgradeResolution struct {
	Upgrades              map[string]bool
	FinalPlan             string
	PlanUpgraded          bool
	CommissionChange      bool
	PendingCommission     string
	PendingCommissionType string
}

// ResolveUpgrades 将支付元数据映射为规范化的增值项集合与套餐决策。
// 佣金变更与增值项是两个独立概念：佣金只做暂存，不进入增值项集合，
// 也不会单独触发套餐升级。
func ResolveUpgrades(metadata map[string]string) UpgradeResolution {
	resolution := UpgradeResolution{
		Upgrades: map[string]bool{
			constants.MetaKeyBanner:       metaTruthy(metadata, constants.MetaKeyBanner),
			constants.MetaKeyPremium:      metaTruthy(metadata, constants.MetaKeyPremium),
			constants.MetaKeyPin:          metaTruthy(metadata, constants.MetaKeyPin),
			constants.MetaKeyConfidential: metaTruthy(metadata, constants.MetaKeyConfidential),
		},
	}

	resolution.FinalPlan = NormalizePlan(metaValue(metadata, constants.MetaKeyPlan))
	if metaTruthy(metadata, constants.MetaKeyPlanUpgrade) {
		resolution.FinalPlan = NextPlan(resolution.FinalPlan)
		resolution.PlanUpgraded = true
	}

	if metaTruthy(metadata, constants.MetaKeyCommissionChange) {
		resolution.CommissionChange = true
		resolution.PendingCommission = metaValue(metadata, constants.MetaKeyCommissionValue)
		resolution.PendingCommissionType = normalizeCommissionType(metaValue(metadata, constants.MetaKeyCommissionType))
	}

	return resolution
}

// NormalizePlan 将元数据中的套餐名规范化为档位常量。
// 上游结账页写入的可能是完整商品名（如 "Listed Property Premium"），
// 按关键词归档，识别不了的一律落到基础档。
func NormalizePlan(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case lowered == "":
		return constants.PlanBasic
	case strings.Contains(lowered, constants.PlanPremium):
		return constants.PlanPremium
	case strings.Contains(lowered, constants.PlanPlus):
		return constants.PlanPlus
	default:
		return constants.PlanBasic
	}
}

// NextPlan 返回下一个更高档位，最高档封顶。
func NextPlan(plan string) string {
	normalized := NormalizePlan(plan)
	for i, tier := range constants.PlanTiers {
		if tier != normalized {
			continue
		}
		if i+1 < len(constants.PlanTiers) {
			return constants.PlanTiers[i+1]
		}
		return tier
	}
	return constants.PlanBasic
}

func normalizeCommissionType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case constants.CommissionTypeFixed:
		return constants.CommissionTypeFixed
	default:
		return constants.CommissionTypePercent
	}
}

func metaValue(metadata map[string]string, key string) string {
	if len(metadata) == 0 {
		return ""
	}
	return strings.TrimSpace(metadata[key])
}

func metaTruthy(metadata map[string]string, key string) bool {
	return metaValue(metadata, key) == constants.MetaTruthy
}
