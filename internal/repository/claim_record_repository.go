package repository

import (
	"errors"
	"time"

	"github.com/giftlink-next/internal/models"

	"gorm.io/gorm"
)

// ClaimRecordRepository 领取记录仓储接口
type ClaimRecordRepository interface {
	Create(record *models.ClaimRecord) error
	GetByID(id uint) (*models.ClaimRecord, error)
	ListByGift(chainGiftID uint64) ([]models.ClaimRecord, error)
	ListUnconfirmedByGift(chainGiftID uint64) ([]models.ClaimRecord, error)
	CountByGift(chainGiftID uint64) (int64, error)
	UpdateStatus(id uint, status string, confirmedAt *time.Time) error
	WithTx(tx *gorm.DB) *GormClaimRecordRepository
}

// GormClaimRecordRepository GORM 领取记录仓储实现
type GormClaimRecordRepository struct {
	db *gorm.DB
}

// NewClaimRecordRepository 创建领取记录仓储
func NewClaimRecordRepository(db *gorm.DB) *GormClaimRecordRepository {
	return &GormClaimRecordRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClaimRecordRepository) WithTx(tx *gorm.DB) *GormClaimRecordRepository {
	if tx == nil {
		return r
	}
	return &GormClaimRecordRepository{db: tx}
}

// Create 写入领取记录
func (r *GormClaimRecordRepository) Create(record *models.ClaimRecord) error {
	if record == nil {
		return errors.New("invalid claim record")
	}
	return r.db.Create(record).Error
}

// GetByID 根据 ID 查询领取记录
func (r *GormClaimRecordRepository) GetByID(id uint) (*models.ClaimRecord, error) {
	if id == 0 {
		return nil, nil
	}
	var record models.ClaimRecord
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListByGift 查询礼包的全部领取记录
func (r *GormClaimRecordRepository) ListByGift(chainGiftID uint64) ([]models.ClaimRecord, error) {
	var records []models.ClaimRecord
	if err := r.db.Where("chain_gift_id = ?", chainGiftID).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListUnconfirmedByGift 查询礼包尚未确认的领取记录
func (r *GormClaimRecordRepository) ListUnconfirmedByGift(chainGiftID uint64) ([]models.ClaimRecord, error) {
	var records []models.ClaimRecord
	if err := r.db.Where("chain_gift_id = ? AND status <> ?", chainGiftID, models.ClaimStatusConfirmed).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountByGift 统计礼包的领取记录数量
func (r *GormClaimRecordRepository) CountByGift(chainGiftID uint64) (int64, error) {
	var total int64
	if err := r.db.Model(&models.ClaimRecord{}).
		Where("chain_gift_id = ?", chainGiftID).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// UpdateStatus 更新领取记录状态
func (r *GormClaimRecordRepository) UpdateStatus(id uint, status string, confirmedAt *time.Time) error {
	if id == 0 {
		return errors.New("invalid claim record id")
	}
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if confirmedAt != nil {
		updates["confirmed_at"] = *confirmedAt
	}
	return r.db.Model(&models.ClaimRecord{}).Where("id = ?", id).Updates(updates).Error
}
