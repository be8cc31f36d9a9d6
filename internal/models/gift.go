package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	GiftStatusAvailable = "available"
	GiftStatusExhausted = "exhausted"
	GiftStatusExpired   = "expired"
	GiftStatusRefunded  = "refunded"
)

// Gift 礼包登记记录
// 权威状态在链上合约里，这里只保存创建时登记的元数据
// 与最近一次快照同步的展示字段（Remaining / ClaimedSlots / Status）。
type Gift struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                              // 主键
	ChainGiftID   uint64         `gorm:"uniqueIndex;not null" json:"chain_gift_id"`                         // 链上礼包编号
	Sender        string         `gorm:"type:varchar(64);index;not null" json:"sender"`                     // 创建者地址
	SenderFID     *uint64        `gorm:"index" json:"sender_fid,omitempty"`                                 // 创建者 fid
	TotalAmount   TokenAmount    `gorm:"type:decimal(78,0);not null" json:"total_amount"`                   // 锁定总额
	Distributable TokenAmount    `gorm:"type:decimal(78,0);not null" json:"distributable"`                  // 扣费后可分配池
	Remaining     TokenAmount    `gorm:"type:decimal(78,0);not null" json:"remaining"`                      // 最近快照余额
	TotalSlots    uint32         `gorm:"not null" json:"total_slots"`                                       // 领取份数
	ClaimedSlots  uint32         `gorm:"not null;default:0" json:"claimed_slots"`                           // 已领份数
	ClaimHash     string         `gorm:"type:varchar(66);not null" json:"claim_hash"`                       // 口令承诺（0x 十六进制）
	FeeBps        uint32         `gorm:"not null;default:0" json:"fee_bps"`                                 // 手续费（万分比）
	SplitMode     string         `gorm:"type:varchar(16);not null" json:"split_mode"`                       // 分账模式 even / mystery
	Status        string         `gorm:"type:varchar(24);index;not null;default:'available'" json:"status"` // 状态
	ExpiresAt     time.Time      `gorm:"index;not null" json:"expires_at"`                                  // 过期时间
	RefundedAt    *time.Time     `gorm:"index" json:"refunded_at,omitempty"`                                // 退款时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                                           // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                                           // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                                    // 软删除时间
}

// TableName 指定表名
func (Gift) TableName() string {
	return "gifts"
}
