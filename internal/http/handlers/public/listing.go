package public

import (
	handlershared "github.com/hausmarkt/internal/http/handlers/shared"
	"github.com/hausmarkt/internal/http/response"
	"github.com/hausmarkt/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListingListQuery 公开房源列表查询参数
type ListingListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	City     string `form:"city"`
	Plan     string `form:"plan"`
	Search   string `form:"search"`
}

// GetListings 公开房源列表（仅已发布）
func (h *Handler) GetListings(c *gin.Context) {
	var query ListingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数无效", err)
		return
	}
	page, pageSize := handlershared.NormalizePagination(query.Page, query.PageSize)

	listings, total, err := h.ListingService.ListPublic(repository.ListingListFilter{
		Page:     page,
		PageSize: pageSize,
		City:     query.City,
		Plan:     query.Plan,
		Search:   query.Search,
	})
	if err != nil {
		respondListingError(c, err)
		return
	}

	response.SuccessWithPage(c, listings, response.BuildPagination(page, pageSize, total))
}

// GetListingByNo 按编号获取房源
func (h *Handler) GetListingByNo(c *gin.Context) {
	listing, err := h.ListingService.GetByListingNo(c.Param("listing_no"))
	if err != nil {
		respondListingError(c, err)
		return
	}
	response.Success(c, listing)
}
