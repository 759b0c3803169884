package models

import (
	"time"
)

// PaymentRecord 支付履约台账（每个 Checkout Session 一条，幂等去重的依据）
type PaymentRecord struct {
	ID           uint   `gorm:"primarykey" json:"id"`                   // 主键
	SessionID    string `gorm:"uniqueIndex;not null" json:"session_id"` // Checkout Session ID
	EventID      string `gorm:"index" json:"event_id"`                  // 首次投递的事件 ID
	Status       string `gorm:"index;not null" json:"status"`           // 履约状态（processing/fulfilled/needs_manual_review）
	ReviewReason string `json:"review_reason"`                          // 进入人工复核的原因

	Amount        Money  `gorm:"type:decimal(20,2);not null;default:0" json:"amount"` // 支付金额
	Currency      string `json:"currency"`                                            // 币种
	CustomerEmail string `json:"customer_email"`                                      // 付款人邮箱

	// 元数据的冗余字段，用于审计检索
	ListingNo string `gorm:"index" json:"listing_no"`
	Payer     string `json:"payer"`
	Plan      string `json:"plan"`
	Flow      string `json:"flow"`

	Metadata JSON `gorm:"type:json" json:"metadata"` // 完整元数据，供人工复核后重新履约使用

	ReceivedAt  time.Time  `gorm:"index" json:"received_at"`  // 首次收到时间
	FulfilledAt *time.Time `gorm:"index" json:"fulfilled_at"` // 履约完成时间
	ReviewedAt  *time.Time `json:"reviewed_at"`               // 进入人工复核时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`   // 创建时间
	UpdatedAt   time.Time  `gorm:"index" json:"updated_at"`   // 更新时间
}

// TableName 指定表名
func (PaymentRecord) TableName() string {
	return "payment_records"
}
