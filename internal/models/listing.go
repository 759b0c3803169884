package models

import (
	"time"

	"gorm.io/gorm"
)

// Listing 房源表
type Listing struct {
	ID          uint   `gorm:"primarykey" json:"id"`                            // 主键
	ListingNo   string `gorm:"uniqueIndex;not null" json:"listing_no"`          // 房源编号（对外唯一标识）
	Title       string `gorm:"type:varchar(255);not null" json:"title"`         // 标题
	City        string `gorm:"index" json:"city"`                               // 城市
	OwnerEmail  string `gorm:"index" json:"owner_email"`                        // 业主邮箱
	Status      string `gorm:"index;not null" json:"status"`                    // 房源状态（draft/published/archived）
	AskingPrice Money  `gorm:"type:decimal(20,2);not null" json:"asking_price"` // 标价

	Plan string `gorm:"not null" json:"plan"` // 套餐档位

	// 付费增值项，只会从 false 翻转到 true，履约引擎不做清除
	UpgradeBanner       bool `gorm:"not null;default:false" json:"upgrade_banner"`
	UpgradePremium      bool `gorm:"not null;default:false" json:"upgrade_premium"`
	UpgradePin          bool `gorm:"not null;default:false" json:"upgrade_pin"`
	UpgradeConfidential bool `gorm:"not null;default:false" json:"upgrade_confidential"`

	// 佣金变更为暂存字段，正式生效由独立的签署流程完成
	CommissionChangePaid  bool   `gorm:"not null;default:false" json:"commission_change_paid"`
	PendingCommission     string `json:"pending_commission"`
	PendingCommissionType string `json:"pending_commission_type"`

	// 最近一次成功履约的来源信息
	PaymentStatus     string     `gorm:"index" json:"payment_status"`
	LastPaidSessionID string     `gorm:"index" json:"last_paid_session_id"`
	PaidAt            *time.Time `gorm:"index" json:"paid_at"`

	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Listing) TableName() string {
	return "listings"
}

// PaidUpgrades 返回当前已购增值项集合
func (l *Listing) PaidUpgrades() map[string]bool {
	if l == nil {
		return map[string]bool{}
	}
	return map[string]bool{
		"banner":       l.UpgradeBanner,
		"premium":      l.UpgradePremium,
		"pin":          l.UpgradePin,
		"confidential": l.UpgradeConfidential,
	}
}
