package admin

import (
	"errors"
	"strconv"

	"github.com/hausmarkt/internal/http/response"
	"github.com/hausmarkt/internal/repository"
	"github.com/hausmarkt/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateListingRequest 创建房源请求
type CreateListingRequest struct {
	ListingNo   string `json:"listing_no" binding:"required"`
	Title       string `json:"title" binding:"required"`
	City        string `json:"city"`
	OwnerEmail  string `json:"owner_email"`
	AskingPrice string `json:"asking_price"`
	Plan        string `json:"plan"`
	Publish     bool   `json:"publish"`
}

// CreateListing 创建房源
func (h *Handler) CreateListing(c *gin.Context) {
	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}

	listing, err := h.ListingService.Create(service.CreateListingInput{
		ListingNo:   req.ListingNo,
		Title:       req.Title,
		City:        req.City,
		OwnerEmail:  req.OwnerEmail,
		AskingPrice: req.AskingPrice,
		Plan:        req.Plan,
		Publish:     req.Publish,
	})
	if err != nil {
		if errors.Is(err, service.ErrListingInvalid) {
			respondError(c, response.CodeBadRequest, "房源参数无效或编号已存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "房源创建失败", err)
		return
	}

	response.Success(c, listing)
}

// GetAdminListings 获取房源列表 (Admin)
func (h *Handler) GetAdminListings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	listings, total, err := h.ListingService.ListAdmin(repository.ListingListFilter{
		Page:     page,
		PageSize: pageSize,
		City:     c.Query("city"),
		Status:   c.Query("status"),
		Plan:     c.Query("plan"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "房源查询失败", err)
		return
	}

	response.SuccessWithPage(c, listings, response.BuildPagination(page, pageSize, total))
}

// GetAdminListing 获取房源详情 (Admin)
func (h *Handler) GetAdminListing(c *gin.Context) {
	listing, err := h.ListingService.GetByListingNo(c.Param("listing_no"))
	if err != nil {
		if errors.Is(err, service.ErrListingNotFound) {
			respondError(c, response.CodeNotFound, "房源不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "房源查询失败", err)
		return
	}
	response.Success(c, listing)
}
