package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ClaimStatusAuthorized = "authorized"
	ClaimStatusSubmitted  = "submitted"
	ClaimStatusConfirmed  = "confirmed"
)

// ClaimRecord 领取授权记录
// 盲盒抽取的金额在授权当刻落库，意图提交后不再重算，
// 保证实际转账金额与授权金额一致。
type ClaimRecord struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                               // 主键
	ChainGiftID uint64         `gorm:"index;not null" json:"chain_gift_id"`                                // 链上礼包编号
	ActorFID    uint64         `gorm:"index;not null" json:"actor_fid"`                                    // 领取者 fid
	ActorAddr   string         `gorm:"type:varchar(64);index;not null" json:"actor_addr"`                  // 领取者地址
	Payout      TokenAmount    `gorm:"type:decimal(78,0);not null" json:"payout"`                          // 抽取金额
	CallData    string         `gorm:"type:text;not null" json:"call_data"`                                // 意图调用数据（0x 十六进制）
	Status      string         `gorm:"type:varchar(24);index;not null;default:'authorized'" json:"status"` // 状态
	ConfirmedAt *time.Time     `gorm:"index" json:"confirmed_at,omitempty"`                                // 链上确认时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                            // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                                     // 软删除时间
}

// TableName 指定表名
func (ClaimRecord) TableName() string {
	return "claim_records"
}
