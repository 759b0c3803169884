package repository

import (
	"errors"
	"strings"

	"github.com/hausmarkt/internal/constants"
	"github.com/hausmarkt/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepository 房源数据访问接口
type ListingRepository interface {
	Create(listing *models.Listing) error
	Update(listing *models.Listing) error
	GetByID(id uint) (*models.Listing, error)
	GetByListingNo(listingNo string) (*models.Listing, error)
	GetByListingNoForUpdate(listingNo string) (*models.Listing, error)
	List(filter ListingListFilter) ([]models.Listing, int64, error)
	WithTx(tx *gorm.DB) *GormListingRepository
}

// GormListingRepository GORM 实现
type GormListingRepository struct {
	db *gorm.DB
}

// NewListingRepository 创建房源仓库
func NewListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormListingRepository) WithTx(tx *gorm.DB) *GormListingRepository {
	if tx == nil {
		return r
	}
	return &GormListingRepository{db: tx}
}

// Create 创建房源
func (r *GormListingRepository) Create(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

// Update 更新房源
func (r *GormListingRepository) Update(listing *models.Listing) error {
	return r.db.Save(listing).Error
}

// GetByID 根据 ID 获取房源
func (r *GormListingRepository) GetByID(id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// GetByListingNo 根据房源编号获取房源
func (r *GormListingRepository) GetByListingNo(listingNo string) (*models.Listing, error) {
	listingNo = strings.TrimSpace(listingNo)
	if listingNo == "" {
		return nil, nil
	}
	var listing models.Listing
	if err := r.db.Where("listing_no = ?", listingNo).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// GetByListingNoForUpdate 根据房源编号加锁获取房源
func (r *GormListingRepository) GetByListingNoForUpdate(listingNo string) (*models.Listing, error) {
	listingNo = strings.TrimSpace(listingNo)
	if listingNo == "" {
		return nil, nil
	}
	var listing models.Listing
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("listing_no = ?", listingNo).
		First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// List 房源列表
func (r *GormListingRepository) List(filter ListingListFilter) ([]models.Listing, int64, error) {
	query := r.db.Model(&models.Listing{})

	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Plan != "" {
		query = query.Where("plan = ?", filter.Plan)
	}
	if filter.OnlyPublished {
		query = query.Where("status = ?", constants.ListingStatusPublished)
	}
	if filter.Search != "" {
		keyword := "%" + strings.TrimSpace(filter.Search) + "%"
		query = query.Where("title LIKE ? OR listing_no LIKE ?", keyword, keyword)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var listings []models.Listing
	if err := query.Order("id desc").Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}
