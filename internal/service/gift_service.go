package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/giftlink-next/internal/cache"
	"github.com/giftlink-next/internal/chain"
	"github.com/giftlink-next/internal/config"
	"github.com/giftlink-next/internal/giftlink"
	"github.com/giftlink-next/internal/logger"
	"github.com/giftlink-next/internal/models"
	"github.com/giftlink-next/internal/queue"
	"github.com/giftlink-next/internal/repository"
	"github.com/giftlink-next/internal/verifier"

	"gorm.io/gorm"
)

// reconcileDelay 授权后对账任务的延迟，给链上交易留确认窗口
const reconcileDelay = 2 * time.Minute

// SnapshotReader 链上礼包快照访问接口
type SnapshotReader interface {
	ReadGift(ctx context.Context, id uint64) (*giftlink.Gift, error)
	BuildTxRequest(intent giftlink.Intent) (*chain.TxRequest, string, error)
	EIP155ChainID() string
}

// FrameVerifier 交互验证接口
type FrameVerifier interface {
	Verify(ctx context.Context, payload json.RawMessage) (*verifier.Result, error)
}

// GiftService 礼包服务
// 串联验证网关、链上快照读取、纯函数授权引擎与本地登记库。
type GiftService struct {
	cfg       *config.Config
	giftRepo  repository.GiftRepository
	claimRepo repository.ClaimRecordRepository
	reader    SnapshotReader
	frame     FrameVerifier
	queue     *queue.Client
	rand      giftlink.Rand
}

// NewGiftService 创建礼包服务实例
func NewGiftService(
	cfg *config.Config,
	giftRepo repository.GiftRepository,
	claimRepo repository.ClaimRecordRepository,
	reader SnapshotReader,
	frame FrameVerifier,
	queueClient *queue.Client,
) *GiftService {
	return &GiftService{
		cfg:       cfg,
		giftRepo:  giftRepo,
		claimRepo: claimRepo,
		reader:    reader,
		frame:     frame,
		queue:     queueClient,
		rand:      giftlink.NewCryptoRand(),
	}
}

// WithRand 替换随机源，测试用
func (s *GiftService) WithRand(r giftlink.Rand) *GiftService {
	if r != nil {
		s.rand = r
	}
	return s
}

// ComputeClaimHashInput 口令承诺计算输入
type ComputeClaimHashInput struct {
	Secret   string
	ActorFID *uint64 // 非空时生成绑定领取者的承诺
}

// ComputeClaimHash 计算口令承诺
// 创建礼包前调用，拿到写入合约的 claimHash。
func (s *GiftService) ComputeClaimHash(input ComputeClaimHashInput) (string, error) {
	secret := []byte(input.Secret)
	if len(secret) == 0 {
		return "", giftlink.ErrInvalidParameters
	}
	var h giftlink.Hash
	if input.ActorFID != nil {
		h = giftlink.CommitBound(*input.ActorFID, secret)
	} else {
		h = giftlink.Commit(secret)
	}
	return hashHex(h), nil
}

// RegisterGiftInput 礼包登记输入
type RegisterGiftInput struct {
	ChainGiftID uint64
	SenderFID   *uint64
}

// RegisterGift 登记链上已创建的礼包
// 以链上快照为准写入元数据，重复登记直接拒绝。
func (s *GiftService) RegisterGift(ctx context.Context, input RegisterGiftInput) (*models.Gift, error) {
	existing, err := s.giftRepo.GetByChainID(input.ChainGiftID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrGiftAlreadyRegistered
	}

	snapshot, err := s.readSnapshot(ctx, input.ChainGiftID)
	if err != nil {
		return nil, err
	}

	record := &models.Gift{
		ChainGiftID:   snapshot.ID,
		Sender:        snapshot.Sender,
		SenderFID:     input.SenderFID,
		TotalAmount:   models.NewTokenAmountFromBigInt(snapshot.TotalAmount),
		Distributable: models.NewTokenAmountFromBigInt(snapshot.Distributable()),
		Remaining:     models.NewTokenAmountFromBigInt(snapshot.Remaining),
		TotalSlots:    snapshot.TotalSlots,
		ClaimedSlots:  snapshot.ClaimedSlots,
		ClaimHash:     hashHex(snapshot.ClaimHash),
		FeeBps:        snapshot.FeeBps,
		SplitMode:     snapshot.SplitMode,
		Status:        deriveStatus(snapshot, time.Now().Unix()),
		ExpiresAt:     time.Unix(snapshot.Expiry, 0),
	}
	if err := s.giftRepo.Create(record); err != nil {
		return nil, err
	}

	logger.Infow("gift_registered",
		"chain_gift_id", record.ChainGiftID,
		"sender", record.Sender,
		"total_slots", record.TotalSlots,
		"split_mode", record.SplitMode,
	)
	return record, nil
}

// GetStatus 查询礼包当前状态
// 优先命中缓存，未命中时读链上快照并同步登记库。
func (s *GiftService) GetStatus(ctx context.Context, chainGiftID uint64) (*cache.GiftStatusSnapshot, error) {
	if cached, found, err := cache.GetGiftStatus(ctx, chainGiftID); err == nil && found {
		return cached, nil
	} else if err != nil {
		logger.Warnw("gift_status_cache_read_failed", "chain_gift_id", chainGiftID, "error", err)
	}

	snapshot, err := s.readSnapshot(ctx, chainGiftID)
	if err != nil {
		return nil, err
	}
	status := s.syncGiftRecord(snapshot)

	result := &cache.GiftStatusSnapshot{
		ChainGiftID:  snapshot.ID,
		Sender:       snapshot.Sender,
		TotalAmount:  snapshot.TotalAmount.String(),
		Remaining:    snapshot.Remaining.String(),
		TotalSlots:   snapshot.TotalSlots,
		ClaimedSlots: snapshot.ClaimedSlots,
		SplitMode:    snapshot.SplitMode,
		Status:       status,
		ExpiresAt:    snapshot.Expiry,
	}
	ttl := time.Duration(s.cfg.Frame.StatusCacheSeconds) * time.Second
	if err := cache.SetGiftStatus(ctx, result, ttl); err != nil {
		logger.Warnw("gift_status_cache_write_failed", "chain_gift_id", chainGiftID, "error", err)
	}
	return result, nil
}

// AuthorizeClaimInput 领取授权输入
type AuthorizeClaimInput struct {
	ChainGiftID  uint64
	FramePayload json.RawMessage // 原始 frame 签名消息，交给验证网关
	Secret       string
}

// AuthorizeClaimResult 领取授权结果
type AuthorizeClaimResult struct {
	TxRequest *chain.TxRequest
	Record    *models.ClaimRecord
	Payout    string
}

// AuthorizeClaim 评估领取请求并产出交易意图
// 流程：验证交互 → 读链上快照 → 引擎授权 → 落领取记录 → 推对账任务。
func (s *GiftService) AuthorizeClaim(ctx context.Context, input AuthorizeClaimInput) (*AuthorizeClaimResult, error) {
	result, err := s.frame.Verify(ctx, input.FramePayload)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, giftlink.ErrUnverifiedActor
	}

	snapshot, err := s.readSnapshot(ctx, input.ChainGiftID)
	if err != nil {
		return nil, err
	}

	decision, err := giftlink.AuthorizeClaim(snapshot, giftlink.ClaimAttempt{
		GiftID:       input.ChainGiftID,
		ActorID:      result.ActorID,
		ActorAddress: result.ActorAddress,
		Secret:       []byte(input.Secret),
	}, time.Now().Unix(), s.rand)
	if err != nil {
		logger.Infow("claim_rejected",
			"chain_gift_id", input.ChainGiftID,
			"actor_fid", result.ActorID,
			"reason", err.Error(),
		)
		return nil, err
	}

	intent, err := giftlink.ClaimIntent(decision, []byte(input.Secret))
	if err != nil {
		return nil, err
	}
	txRequest, callData, err := s.reader.BuildTxRequest(intent)
	if err != nil {
		return nil, err
	}

	record := &models.ClaimRecord{
		ChainGiftID: decision.GiftID,
		ActorFID:    decision.ActorID,
		ActorAddr:   decision.ActorAddress,
		Payout:      models.NewTokenAmountFromBigInt(decision.Payout),
		CallData:    callData,
		Status:      models.ClaimStatusAuthorized,
	}
	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		return s.claimRepo.WithTx(tx).Create(record)
	}); err != nil {
		return nil, err
	}

	if err := cache.DelGiftStatus(ctx, decision.GiftID); err != nil {
		logger.Warnw("gift_status_cache_del_failed", "chain_gift_id", decision.GiftID, "error", err)
	}
	if err := s.queue.EnqueueClaimReconcile(queue.ClaimReconcilePayload{ChainGiftID: decision.GiftID}, reconcileDelay); err != nil {
		logger.Warnw("claim_reconcile_enqueue_failed", "chain_gift_id", decision.GiftID, "error", err)
	}

	logger.Infow("claim_authorized",
		"chain_gift_id", decision.GiftID,
		"actor_fid", decision.ActorID,
		"payout", decision.Payout.String(),
	)
	return &AuthorizeClaimResult{
		TxRequest: txRequest,
		Record:    record,
		Payout:    decision.Payout.String(),
	}, nil
}

// AuthorizeRefund 评估退款请求并产出交易意图
func (s *GiftService) AuthorizeRefund(ctx context.Context, chainGiftID uint64, caller string) (*chain.TxRequest, error) {
	snapshot, err := s.readSnapshot(ctx, chainGiftID)
	if err != nil {
		return nil, err
	}

	decision, err := giftlink.AuthorizeRefund(snapshot, caller, time.Now().Unix())
	if err != nil {
		return nil, err
	}

	intent, err := giftlink.RefundIntent(decision)
	if err != nil {
		return nil, err
	}
	txRequest, _, err := s.reader.BuildTxRequest(intent)
	if err != nil {
		return nil, err
	}

	if err := cache.DelGiftStatus(ctx, chainGiftID); err != nil {
		logger.Warnw("gift_status_cache_del_failed", "chain_gift_id", chainGiftID, "error", err)
	}
	logger.Infow("refund_authorized",
		"chain_gift_id", chainGiftID,
		"sender", decision.Sender,
		"amount", decision.Amount.String(),
	)
	return txRequest, nil
}

// ListGifts 礼包列表查询
func (s *GiftService) ListGifts(filter repository.GiftListFilter) ([]models.Gift, int64, error) {
	return s.giftRepo.List(filter)
}

// ListClaims 礼包领取记录查询
func (s *GiftService) ListClaims(chainGiftID uint64) ([]models.ClaimRecord, error) {
	return s.claimRepo.ListByGift(chainGiftID)
}

// GiftStats 礼包统计
type GiftStats struct {
	ByStatus    map[string]int64 `json:"by_status"`
	TotalGifts  int64            `json:"total_gifts"`
	TotalClaims int64            `json:"total_claims"`
}

// Stats 统计各状态礼包数量
func (s *GiftService) Stats() (*GiftStats, error) {
	byStatus, err := s.giftRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	var totalGifts int64
	for _, count := range byStatus {
		totalGifts += count
	}
	var totalClaims int64
	if err := models.DB.Model(&models.ClaimRecord{}).Count(&totalClaims).Error; err != nil {
		return nil, err
	}
	return &GiftStats{
		ByStatus:    byStatus,
		TotalGifts:  totalGifts,
		TotalClaims: totalClaims,
	}, nil
}

// MarkExpired 过期巡检
// 把已过过期时间仍标记可领的礼包置为过期，返回处理数量。
func (s *GiftService) MarkExpired(now time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	expired, err := s.giftRepo.ListExpiredAvailable(now, limit)
	if err != nil {
		return 0, err
	}
	processed := 0
	for i := range expired {
		gift := &expired[i]
		gift.Status = models.GiftStatusExpired
		if err := s.giftRepo.Update(gift); err != nil {
			logger.Errorw("gift_expire_update_failed", "chain_gift_id", gift.ChainGiftID, "error", err)
			continue
		}
		if err := cache.DelGiftStatus(context.Background(), gift.ChainGiftID); err != nil {
			logger.Warnw("gift_status_cache_del_failed", "chain_gift_id", gift.ChainGiftID, "error", err)
		}
		processed++
	}
	if processed > 0 {
		logger.Infow("gift_expiry_sweep_done", "processed", processed)
	}
	return processed, nil
}

// ReconcileClaim 按链上快照对账
// 重新读取权威状态，同步登记库并确认已上链的领取记录。
func (s *GiftService) ReconcileClaim(ctx context.Context, chainGiftID uint64) error {
	snapshot, err := s.readSnapshot(ctx, chainGiftID)
	if err != nil {
		return err
	}
	s.syncGiftRecord(snapshot)

	unconfirmed, err := s.claimRepo.ListUnconfirmedByGift(chainGiftID)
	if err != nil {
		return err
	}
	total, err := s.claimRepo.CountByGift(chainGiftID)
	if err != nil {
		return err
	}
	// 链上已领份数减去已确认记录数，即本轮可确认的数量。
	confirmedCount := total - int64(len(unconfirmed))
	confirmable := int64(snapshot.ClaimedSlots) - confirmedCount
	now := time.Now()
	for i := range unconfirmed {
		if int64(i) >= confirmable {
			break
		}
		if err := s.claimRepo.UpdateStatus(unconfirmed[i].ID, models.ClaimStatusConfirmed, &now); err != nil {
			logger.Errorw("claim_confirm_failed", "claim_id", unconfirmed[i].ID, "error", err)
		}
	}

	if err := cache.DelGiftStatus(ctx, chainGiftID); err != nil {
		logger.Warnw("gift_status_cache_del_failed", "chain_gift_id", chainGiftID, "error", err)
	}
	return nil
}

// readSnapshot 读链上快照
func (s *GiftService) readSnapshot(ctx context.Context, chainGiftID uint64) (*giftlink.Gift, error) {
	snapshot, err := s.reader.ReadGift(ctx, chainGiftID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, giftlink.ErrGiftNotFound
	}
	return snapshot, nil
}

// syncGiftRecord 把链上快照同步进登记库，返回推导状态
func (s *GiftService) syncGiftRecord(snapshot *giftlink.Gift) string {
	status := deriveStatus(snapshot, time.Now().Unix())
	record, err := s.giftRepo.GetByChainID(snapshot.ID)
	if err != nil {
		logger.Warnw("gift_record_read_failed", "chain_gift_id", snapshot.ID, "error", err)
		return status
	}
	if record == nil {
		return status
	}
	record.Remaining = models.NewTokenAmountFromBigInt(snapshot.Remaining)
	record.ClaimedSlots = snapshot.ClaimedSlots
	if record.Status != models.GiftStatusRefunded {
		record.Status = status
		if status == models.GiftStatusRefunded && record.RefundedAt == nil {
			now := time.Now()
			record.RefundedAt = &now
		}
	}
	if err := s.giftRepo.Update(record); err != nil {
		logger.Warnw("gift_record_sync_failed", "chain_gift_id", snapshot.ID, "error", err)
	}
	return record.Status
}

// deriveStatus 由快照推导展示状态
// 余额归零且有剩余份数、已过期，视为退款完成；余额归零且份数领完为耗尽。
func deriveStatus(snapshot *giftlink.Gift, now int64) string {
	if snapshot.Remaining == nil || snapshot.Remaining.Sign() == 0 {
		if snapshot.ClaimedSlots >= snapshot.TotalSlots {
			return models.GiftStatusExhausted
		}
		if now >= snapshot.Expiry {
			return models.GiftStatusRefunded
		}
		return models.GiftStatusExhausted
	}
	if now >= snapshot.Expiry {
		return models.GiftStatusExpired
	}
	return models.GiftStatusAvailable
}

func hashHex(h giftlink.Hash) string {
	return "0x" + hex.EncodeToString(h[:])
}
