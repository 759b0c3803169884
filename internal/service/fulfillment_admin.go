package service

import (
	"strings"

	"github.com/hausmarkt/internal/models"
	"github.com/hausmarkt/internal/repository"
)

// GetRecord 查询单条履约台账
func (s *FulfillmentService) GetRecord(sessionID string) (*models.PaymentRecord, error) {
	record, err := s.recordRepo.GetBySessionID(strings.TrimSpace(sessionID))
	if err != nil {
		return nil, ErrFulfillmentStoreFailed
	}
	if record == nil {
		return nil, ErrPaymentRecordNotFound
	}
	return record, nil
}

// ListNeedsReview 人工复核队列
func (s *FulfillmentService) ListNeedsReview(filter repository.PaymentRecordListFilter) ([]models.PaymentRecord, int64, error) {
	records, total, err := s.recordRepo.ListNeedsReview(filter)
	if err != nil {
		return nil, 0, ErrFulfillmentStoreFailed
	}
	return records, total, nil
}

// ListRecords 管理端台账列表
func (s *FulfillmentService) ListRecords(filter repository.PaymentRecordListFilter) ([]models.PaymentRecord, int64, error) {
	records, total, err := s.recordRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, ErrFulfillmentStoreFailed
	}
	return records, total, nil
}
