package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/giftlink-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GiftListFilter 礼包列表筛选
type GiftListFilter struct {
	Sender      string
	Status      string
	SplitMode   string
	ExpiresFrom *time.Time
	ExpiresTo   *time.Time
	Page        int
	PageSize    int
}

// GiftRepository 礼包仓储接口
type GiftRepository interface {
	Create(gift *models.Gift) error
	GetByChainID(chainGiftID uint64) (*models.Gift, error)
	GetByChainIDForUpdate(chainGiftID uint64) (*models.Gift, error)
	List(filter GiftListFilter) ([]models.Gift, int64, error)
	ListExpiredAvailable(now time.Time, limit int) ([]models.Gift, error)
	Update(gift *models.Gift) error
	CountByStatus() (map[string]int64, error)
	WithTx(tx *gorm.DB) *GormGiftRepository
}

// GormGiftRepository GORM 礼包仓储实现
type GormGiftRepository struct {
	db *gorm.DB
}

// NewGiftRepository 创建礼包仓储
func NewGiftRepository(db *gorm.DB) *GormGiftRepository {
	return &GormGiftRepository{db: db}
}

// WithTx 绑定事务
func (r *GormGiftRepository) WithTx(tx *gorm.DB) *GormGiftRepository {
	if tx == nil {
		return r
	}
	return &GormGiftRepository{db: tx}
}

// Create 登记礼包
func (r *GormGiftRepository) Create(gift *models.Gift) error {
	if gift == nil {
		return errors.New("invalid gift")
	}
	return r.db.Create(gift).Error
}

// GetByChainID 根据链上编号查询礼包
func (r *GormGiftRepository) GetByChainID(chainGiftID uint64) (*models.Gift, error) {
	var gift models.Gift
	if err := r.db.Where("chain_gift_id = ?", chainGiftID).First(&gift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &gift, nil
}

// GetByChainIDForUpdate 根据链上编号加锁查询礼包
func (r *GormGiftRepository) GetByChainIDForUpdate(chainGiftID uint64) (*models.Gift, error) {
	var gift models.Gift
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("chain_gift_id = ?", chainGiftID).First(&gift).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &gift, nil
}

// List 获取礼包列表
func (r *GormGiftRepository) List(filter GiftListFilter) ([]models.Gift, int64, error) {
	query := r.db.Model(&models.Gift{})
	if sender := strings.ToLower(strings.TrimSpace(filter.Sender)); sender != "" {
		query = query.Where("sender = ?", sender)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if mode := strings.TrimSpace(filter.SplitMode); mode != "" {
		query = query.Where("split_mode = ?", mode)
	}
	if filter.ExpiresFrom != nil {
		query = query.Where("expires_at >= ?", *filter.ExpiresFrom)
	}
	if filter.ExpiresTo != nil {
		query = query.Where("expires_at < ?", *filter.ExpiresTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var gifts []models.Gift
	if err := query.Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&gifts).Error; err != nil {
		return nil, 0, err
	}
	return gifts, total, nil
}

// ListExpiredAvailable 查询已过期但仍标记可领的礼包
func (r *GormGiftRepository) ListExpiredAvailable(now time.Time, limit int) ([]models.Gift, error) {
	if limit <= 0 {
		limit = 100
	}
	var gifts []models.Gift
	if err := r.db.Where("status = ? AND expires_at <= ?", models.GiftStatusAvailable, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&gifts).Error; err != nil {
		return nil, err
	}
	return gifts, nil
}

// Update 更新礼包
func (r *GormGiftRepository) Update(gift *models.Gift) error {
	if gift == nil || gift.ID == 0 {
		return errors.New("invalid gift")
	}
	return r.db.Save(gift).Error
}

// CountByStatus 按状态统计礼包数量
func (r *GormGiftRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	if err := r.db.Model(&models.Gift{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, item := range rows {
		result[item.Status] = item.Total
	}
	return result, nil
}
