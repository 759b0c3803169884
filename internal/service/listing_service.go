package service

import (
	"strings"

	"github.com/hausmarkt/internal/constants"
	"github.com/hausmarkt/internal/models"
	"github.com/hausmarkt/internal/repository"

	"github.com/shopspring/decimal"
)

// ListingService 房源服务
type ListingService struct {
	listingRepo repository.ListingRepository
}

// NewListingService 创建房源服务
func NewListingService(listingRepo repository.ListingRepository) *ListingService {
	return &ListingService{listingRepo: listingRepo}
}

// CreateListingInput 创建房源输入
type CreateListingInput struct {
	ListingNo   string
	Title       string
	City        string
	OwnerEmail  string
	AskingPrice string
	Plan        string
	Publish     bool
}

// Create 创建房源。房源由独立的刊登流程产生，先于支付存在。
func (s *ListingService) Create(input CreateListingInput) (*models.Listing, error) {
	listingNo := strings.TrimSpace(input.ListingNo)
	title := strings.TrimSpace(input.Title)
	if listingNo == "" || title == "" {
		return nil, ErrListingInvalid
	}

	existing, err := s.listingRepo.GetByListingNo(listingNo)
	if err != nil {
		return nil, ErrFulfillmentStoreFailed
	}
	if existing != nil {
		return nil, ErrListingInvalid
	}

	price := decimal.Zero
	if raw := strings.TrimSpace(input.AskingPrice); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			return nil, ErrListingInvalid
		}
		price = parsed
	}

	status := constants.ListingStatusDraft
	if input.Publish {
		status = constants.ListingStatusPublished
	}

	listing := &models.Listing{
		ListingNo:   listingNo,
		Title:       title,
		City:        strings.TrimSpace(input.City),
		OwnerEmail:  strings.TrimSpace(input.OwnerEmail),
		Status:      status,
		AskingPrice: models.NewMoneyFromDecimal(price),
		Plan:        NormalizePlan(input.Plan),
	}
	if err := s.listingRepo.Create(listing); err != nil {
		return nil, ErrFulfillmentStoreFailed
	}
	log := fulfillmentLogger("listing_no", listingNo, "status", status)
	log.Infow("listing_created")
	return listing, nil
}

// GetByListingNo 获取房源
func (s *ListingService) GetByListingNo(listingNo string) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByListingNo(listingNo)
	if err != nil {
		return nil, ErrFulfillmentStoreFailed
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// ListPublic 公开房源列表（只含已发布）
func (s *ListingService) ListPublic(filter repository.ListingListFilter) ([]models.Listing, int64, error) {
	filter.OnlyPublished = true
	listings, total, err := s.listingRepo.List(filter)
	if err != nil {
		return nil, 0, ErrFulfillmentStoreFailed
	}
	return listings, total, nil
}

// ListAdmin 管理端房源列表
func (s *ListingService) ListAdmin(filter repository.ListingListFilter) ([]models.Listing, int64, error) {
	listings, total, err := s.listingRepo.List(filter)
	if err != nil {
		return nil, 0, ErrFulfillmentStoreFailed
	}
	return listings, total, nil
}
