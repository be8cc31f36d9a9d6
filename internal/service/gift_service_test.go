package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/giftlink-next/internal/chain"
	"github.com/giftlink-next/internal/config"
	"github.com/giftlink-next/internal/giftlink"
	"github.com/giftlink-next/internal/models"
	"github.com/giftlink-next/internal/queue"
	"github.com/giftlink-next/internal/repository"
	"github.com/giftlink-next/internal/verifier"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type stubReader struct {
	gifts map[uint64]*giftlink.Gift
	err   error
}

func (r *stubReader) ReadGift(_ context.Context, id uint64) (*giftlink.Gift, error) {
	if r.err != nil {
		return nil, r.err
	}
	g, ok := r.gifts[id]
	if !ok {
		return nil, chain.ErrGiftNotFound
	}
	return g.Clone(), nil
}

func (r *stubReader) BuildTxRequest(intent giftlink.Intent) (*chain.TxRequest, string, error) {
	data, err := chain.EncodeIntent(intent)
	if err != nil {
		return nil, "", err
	}
	dataHex := "0x" + hex.EncodeToString(data)
	return &chain.TxRequest{
		ChainID: r.EIP155ChainID(),
		Method:  "eth_sendTransaction",
		Params:  []chain.TxParams{{To: "0x00000000000000000000000000000000000000aa", Data: dataHex}},
	}, dataHex, nil
}

func (r *stubReader) EIP155ChainID() string {
	return "eip155:84532"
}

type stubVerifier struct {
	result *verifier.Result
	err    error
}

func (v *stubVerifier) Verify(_ context.Context, _ json.RawMessage) (*verifier.Result, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.result, nil
}

func setupGiftServiceTest(t *testing.T, reader *stubReader, frame *stubVerifier) (*GiftService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:gift_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Gift{}, &models.ClaimRecord{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new queue client failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.Frame.StatusCacheSeconds = 15
	svc := NewGiftService(
		cfg,
		repository.NewGiftRepository(db),
		repository.NewClaimRecordRepository(db),
		reader,
		frame,
		queueClient,
	)
	return svc, db
}

func testChainGift(id uint64, secret string, expiry int64) *giftlink.Gift {
	return &giftlink.Gift{
		ID:           id,
		Sender:       "0x00000000000000000000000000000000000000s1",
		TotalAmount:  big.NewInt(1_000_000),
		Remaining:    big.NewInt(1_000_000),
		Expiry:       expiry,
		TotalSlots:   4,
		ClaimedSlots: 0,
		ClaimHash:    giftlink.Commit([]byte(secret)),
		FeeBps:       0,
		SplitMode:    giftlink.SplitEven,
	}
}

func validFrameResult() *verifier.Result {
	return &verifier.Result{
		Valid:        true,
		ButtonIndex:  1,
		ActorID:      777,
		ActorAddress: "0x00000000000000000000000000000000000000c1",
	}
}

func TestGiftServiceComputeClaimHash(t *testing.T) {
	svc, _ := setupGiftServiceTest(t, &stubReader{}, &stubVerifier{})

	plain, err := svc.ComputeClaimHash(ComputeClaimHashInput{Secret: "hong bao"})
	if err != nil {
		t.Fatalf("compute hash failed: %v", err)
	}
	want := giftlink.Commit([]byte("hong bao"))
	if plain != "0x"+hex.EncodeToString(want[:]) {
		t.Fatalf("plain hash mismatch: %s", plain)
	}

	fid := uint64(777)
	bound, err := svc.ComputeClaimHash(ComputeClaimHashInput{Secret: "hong bao", ActorFID: &fid})
	if err != nil {
		t.Fatalf("compute bound hash failed: %v", err)
	}
	if bound == plain {
		t.Fatalf("bound hash should differ from plain hash")
	}

	if _, err := svc.ComputeClaimHash(ComputeClaimHashInput{Secret: ""}); !errors.Is(err, giftlink.ErrInvalidParameters) {
		t.Fatalf("empty secret want ErrInvalidParameters got %v", err)
	}
}

func TestGiftServiceRegisterGift(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Unix()
	reader := &stubReader{gifts: map[uint64]*giftlink.Gift{
		1: testChainGift(1, "secret", expiry),
	}}
	svc, db := setupGiftServiceTest(t, reader, &stubVerifier{})

	fid := uint64(100)
	gift, err := svc.RegisterGift(context.Background(), RegisterGiftInput{ChainGiftID: 1, SenderFID: &fid})
	if err != nil {
		t.Fatalf("register gift failed: %v", err)
	}
	if gift.ChainGiftID != 1 || gift.TotalSlots != 4 {
		t.Fatalf("unexpected gift record: %+v", gift)
	}
	if gift.Status != models.GiftStatusAvailable {
		t.Fatalf("status want available got %s", gift.Status)
	}
	if gift.TotalAmount.BigInt().Int64() != 1_000_000 {
		t.Fatalf("total amount mismatch: %s", gift.TotalAmount.String())
	}

	var count int64
	if err := db.Model(&models.Gift{}).Count(&count).Error; err != nil {
		t.Fatalf("count gifts failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 gift row, got %d", count)
	}

	if _, err := svc.RegisterGift(context.Background(), RegisterGiftInput{ChainGiftID: 1}); !errors.Is(err, ErrGiftAlreadyRegistered) {
		t.Fatalf("duplicate register want ErrGiftAlreadyRegistered got %v", err)
	}
	if _, err := svc.RegisterGift(context.Background(), RegisterGiftInput{ChainGiftID: 99}); !errors.Is(err, chain.ErrGiftNotFound) {
		t.Fatalf("missing gift want chain.ErrGiftNotFound got %v", err)
	}
}

func TestGiftServiceAuthorizeClaim(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Unix()
	reader := &stubReader{gifts: map[uint64]*giftlink.Gift{
		1: testChainGift(1, "secret", expiry),
	}}
	svc, db := setupGiftServiceTest(t, reader, &stubVerifier{result: validFrameResult()})

	result, err := svc.AuthorizeClaim(context.Background(), AuthorizeClaimInput{
		ChainGiftID:  1,
		FramePayload: json.RawMessage(`{}`),
		Secret:       "secret",
	})
	if err != nil {
		t.Fatalf("authorize claim failed: %v", err)
	}
	if result.TxRequest == nil || result.TxRequest.Method != "eth_sendTransaction" {
		t.Fatalf("unexpected tx request: %+v", result.TxRequest)
	}
	if result.Payout != "250000" {
		t.Fatalf("even payout want 250000 got %s", result.Payout)
	}

	var record models.ClaimRecord
	if err := db.First(&record).Error; err != nil {
		t.Fatalf("load claim record failed: %v", err)
	}
	if record.ChainGiftID != 1 || record.ActorFID != 777 {
		t.Fatalf("unexpected claim record: %+v", record)
	}
	if record.Status != models.ClaimStatusAuthorized {
		t.Fatalf("record status want authorized got %s", record.Status)
	}
	if record.CallData == "" || record.CallData[:2] != "0x" {
		t.Fatalf("call data should be 0x hex, got %s", record.CallData)
	}
	if record.Payout.BigInt().Int64() != 250_000 {
		t.Fatalf("persisted payout mismatch: %s", record.Payout.String())
	}
}

func TestGiftServiceAuthorizeClaimRejections(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Unix()
	reader := &stubReader{gifts: map[uint64]*giftlink.Gift{
		1: testChainGift(1, "secret", expiry),
	}}

	svc, _ := setupGiftServiceTest(t, reader, &stubVerifier{result: validFrameResult()})
	if _, err := svc.AuthorizeClaim(context.Background(), AuthorizeClaimInput{
		ChainGiftID:  1,
		FramePayload: json.RawMessage(`{}`),
		Secret:       "wrong",
	}); !errors.Is(err, giftlink.ErrBadSecret) {
		t.Fatalf("wrong secret want ErrBadSecret got %v", err)
	}

	invalid := &verifier.Result{Valid: false}
	svc2, _ := setupGiftServiceTest(t, reader, &stubVerifier{result: invalid})
	if _, err := svc2.AuthorizeClaim(context.Background(), AuthorizeClaimInput{
		ChainGiftID:  1,
		FramePayload: json.RawMessage(`{}`),
		Secret:       "secret",
	}); !errors.Is(err, giftlink.ErrUnverifiedActor) {
		t.Fatalf("invalid frame want ErrUnverifiedActor got %v", err)
	}

	noAddr := validFrameResult()
	noAddr.ActorAddress = ""
	svc3, _ := setupGiftServiceTest(t, reader, &stubVerifier{result: noAddr})
	if _, err := svc3.AuthorizeClaim(context.Background(), AuthorizeClaimInput{
		ChainGiftID:  1,
		FramePayload: json.RawMessage(`{}`),
		Secret:       "secret",
	}); !errors.Is(err, giftlink.ErrUnverifiedActor) {
		t.Fatalf("missing address want ErrUnverifiedActor got %v", err)
	}
}

func TestGiftServiceAuthorizeRefund(t *testing.T) {
	sender := "0x00000000000000000000000000000000000000s1"
	active := testChainGift(1, "secret", time.Now().Add(time.Hour).Unix())
	expired := testChainGift(2, "secret", time.Now().Add(-time.Hour).Unix())
	reader := &stubReader{gifts: map[uint64]*giftlink.Gift{1: active, 2: expired}}
	svc, _ := setupGiftServiceTest(t, reader, &stubVerifier{})

	if _, err := svc.AuthorizeRefund(context.Background(), 1, sender); !errors.Is(err, giftlink.ErrNotExpired) {
		t.Fatalf("active gift refund want ErrNotExpired got %v", err)
	}
	if _, err := svc.AuthorizeRefund(context.Background(), 2, "0x00000000000000000000000000000000000000ff"); !errors.Is(err, giftlink.ErrNotSender) {
		t.Fatalf("stranger refund want ErrNotSender got %v", err)
	}

	txRequest, err := svc.AuthorizeRefund(context.Background(), 2, sender)
	if err != nil {
		t.Fatalf("refund authorize failed: %v", err)
	}
	if txRequest == nil || len(txRequest.Params) != 1 {
		t.Fatalf("unexpected refund tx request: %+v", txRequest)
	}
}

func TestGiftServiceMarkExpired(t *testing.T) {
	svc, db := setupGiftServiceTest(t, &stubReader{}, &stubVerifier{})

	past := time.Now().Add(-time.Hour)
	gift := models.Gift{
		ChainGiftID:   5,
		Sender:        "0x00000000000000000000000000000000000000s1",
		TotalAmount:   models.NewTokenAmountFromBigInt(big.NewInt(100)),
		Distributable: models.NewTokenAmountFromBigInt(big.NewInt(100)),
		Remaining:     models.NewTokenAmountFromBigInt(big.NewInt(100)),
		TotalSlots:    2,
		ClaimHash:     "0x00",
		SplitMode:     giftlink.SplitEven,
		Status:        models.GiftStatusAvailable,
		ExpiresAt:     past,
	}
	if err := db.Create(&gift).Error; err != nil {
		t.Fatalf("seed gift failed: %v", err)
	}

	processed, err := svc.MarkExpired(time.Now(), 10)
	if err != nil {
		t.Fatalf("mark expired failed: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed want 1 got %d", processed)
	}

	var reloaded models.Gift
	if err := db.First(&reloaded, gift.ID).Error; err != nil {
		t.Fatalf("reload gift failed: %v", err)
	}
	if reloaded.Status != models.GiftStatusExpired {
		t.Fatalf("status want expired got %s", reloaded.Status)
	}
}

func TestGiftServiceReconcileClaim(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Unix()
	snapshot := testChainGift(1, "secret", expiry)
	snapshot.ClaimedSlots = 1
	snapshot.Remaining = big.NewInt(750_000)
	reader := &stubReader{gifts: map[uint64]*giftlink.Gift{1: snapshot}}
	svc, db := setupGiftServiceTest(t, reader, &stubVerifier{})

	gift := models.Gift{
		ChainGiftID:   1,
		Sender:        snapshot.Sender,
		TotalAmount:   models.NewTokenAmountFromBigInt(snapshot.TotalAmount),
		Distributable: models.NewTokenAmountFromBigInt(snapshot.TotalAmount),
		Remaining:     models.NewTokenAmountFromBigInt(snapshot.TotalAmount),
		TotalSlots:    4,
		ClaimHash:     "0x00",
		SplitMode:     giftlink.SplitEven,
		Status:        models.GiftStatusAvailable,
		ExpiresAt:     time.Unix(expiry, 0),
	}
	if err := db.Create(&gift).Error; err != nil {
		t.Fatalf("seed gift failed: %v", err)
	}
	record := models.ClaimRecord{
		ChainGiftID: 1,
		ActorFID:    777,
		ActorAddr:   "0x00000000000000000000000000000000000000c1",
		Payout:      models.NewTokenAmountFromBigInt(big.NewInt(250_000)),
		CallData:    "0x00",
		Status:      models.ClaimStatusAuthorized,
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("seed claim record failed: %v", err)
	}

	if err := svc.ReconcileClaim(context.Background(), 1); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	var reloadedRecord models.ClaimRecord
	if err := db.First(&reloadedRecord, record.ID).Error; err != nil {
		t.Fatalf("reload claim record failed: %v", err)
	}
	if reloadedRecord.Status != models.ClaimStatusConfirmed {
		t.Fatalf("claim status want confirmed got %s", reloadedRecord.Status)
	}
	if reloadedRecord.ConfirmedAt == nil {
		t.Fatalf("confirmed_at should be set")
	}

	var reloadedGift models.Gift
	if err := db.First(&reloadedGift, gift.ID).Error; err != nil {
		t.Fatalf("reload gift failed: %v", err)
	}
	if reloadedGift.ClaimedSlots != 1 {
		t.Fatalf("claimed slots want 1 got %d", reloadedGift.ClaimedSlots)
	}
	if reloadedGift.Remaining.BigInt().Int64() != 750_000 {
		t.Fatalf("remaining want 750000 got %s", reloadedGift.Remaining.String())
	}
}

func TestGiftServiceGetStatus(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Unix()
	reader := &stubReader{gifts: map[uint64]*giftlink.Gift{
		1: testChainGift(1, "secret", expiry),
	}}
	svc, _ := setupGiftServiceTest(t, reader, &stubVerifier{})

	status, err := svc.GetStatus(context.Background(), 1)
	if err != nil {
		t.Fatalf("get status failed: %v", err)
	}
	if status.ChainGiftID != 1 || status.Status != models.GiftStatusAvailable {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.Remaining != "1000000" || status.TotalSlots != 4 {
		t.Fatalf("unexpected snapshot fields: %+v", status)
	}

	if _, err := svc.GetStatus(context.Background(), 99); !errors.Is(err, chain.ErrGiftNotFound) {
		t.Fatalf("missing gift want chain.ErrGiftNotFound got %v", err)
	}
}
