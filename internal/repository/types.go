package repository

import "time"

// ListingListFilter 查询房源列表的过滤条件
type ListingListFilter struct {
	Page          int
	PageSize      int
	City          string
	Status        string
	Plan          string
	Search        string
	OnlyPublished bool
}

// PaymentRecordListFilter 查询履约台账列表的过滤条件
type PaymentRecordListFilter struct {
	Page        int
	PageSize    int
	Status      string
	ListingNo   string
	SessionID   string
	Flow        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
