package repository

import (
	"errors"
	"strings"

	"github.com/hausmarkt/internal/constants"
	"github.com/hausmarkt/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRecordRepository 履约台账数据访问接口
type PaymentRecordRepository interface {
	CreateIgnoreDuplicate(record *models.PaymentRecord) error
	Update(record *models.PaymentRecord) error
	GetBySessionID(sessionID string) (*models.PaymentRecord, error)
	GetBySessionIDForUpdate(sessionID string) (*models.PaymentRecord, error)
	ListNeedsReview(filter PaymentRecordListFilter) ([]models.PaymentRecord, int64, error)
	ListAdmin(filter PaymentRecordListFilter) ([]models.PaymentRecord, int64, error)
	WithTx(tx *gorm.DB) *GormPaymentRecordRepository
}

// GormPaymentRecordRepository GORM 实现
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewPaymentRecordRepository 创建履约台账仓库
func NewPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRecordRepository) WithTx(tx *gorm.DB) *GormPaymentRecordRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRecordRepository{db: tx}
}

// CreateIgnoreDuplicate 插入台账，session_id 冲突时不做任何修改
// 并发的重复投递由唯一索引兜底，调用方插入后需重新读取当前行
func (r *GormPaymentRecordRepository) CreateIgnoreDuplicate(record *models.PaymentRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoNothing: true,
	}).Create(record).Error
}

// Update 更新台账
func (r *GormPaymentRecordRepository) Update(record *models.PaymentRecord) error {
	return r.db.Save(record).Error
}

// GetBySessionID 根据 Session ID 获取台账
func (r *GormPaymentRecordRepository) GetBySessionID(sessionID string) (*models.PaymentRecord, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	var record models.PaymentRecord
	if err := r.db.Where("session_id = ?", sessionID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// GetBySessionIDForUpdate 根据 Session ID 加锁获取台账
func (r *GormPaymentRecordRepository) GetBySessionIDForUpdate(sessionID string) (*models.PaymentRecord, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	var record models.PaymentRecord
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ?", sessionID).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListNeedsReview 人工复核队列列表
func (r *GormPaymentRecordRepository) ListNeedsReview(filter PaymentRecordListFilter) ([]models.PaymentRecord, int64, error) {
	filter.Status = constants.FulfillmentStatusNeedsReview
	return r.ListAdmin(filter)
}

// ListAdmin 管理端台账列表
func (r *GormPaymentRecordRepository) ListAdmin(filter PaymentRecordListFilter) ([]models.PaymentRecord, int64, error) {
	query := r.db.Model(&models.PaymentRecord{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ListingNo != "" {
		query = query.Where("listing_no = ?", filter.ListingNo)
	}
	if filter.SessionID != "" {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.Flow != "" {
		query = query.Where("flow = ?", filter.Flow)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var records []models.PaymentRecord
	if err := query.Order("id desc").Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
