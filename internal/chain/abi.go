package chain

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/giftlink-next/internal/giftlink"

	"golang.org/x/crypto/sha3"
)

const wordSize = 32

// Selector 计算函数选择器（keccak256 前 4 字节）
func Selector(signature string) [4]byte {
	d := sha3.NewLegacyKeccak256()
	d.Write([]byte(signature))
	sum := d.Sum(nil)
	var sel [4]byte
	copy(sel[:], sum[:4])
	return sel
}

// EncodeIntent 将调用意图编码为 calldata
// 与原 frame 里 viem encodeFunctionData 的结果一致：
// 选择器 + 静态头部（动态参数记偏移）+ 动态尾部。
func EncodeIntent(intent giftlink.Intent) ([]byte, error) {
	sel := Selector(intent.Function)

	head := make([][]byte, len(intent.Args))
	var tail []byte
	tailOffset := wordSize * len(intent.Args)

	for i, arg := range intent.Args {
		switch arg.Type {
		case "uint256":
			value, ok := arg.Value.(*big.Int)
			if !ok || value == nil || value.Sign() < 0 || value.BitLen() > 256 {
				return nil, fmt.Errorf("abi: invalid uint256 arg %d", i)
			}
			head[i] = leftPadWord(value.Bytes())
		case "address":
			text, ok := arg.Value.(string)
			if !ok {
				return nil, fmt.Errorf("abi: invalid address arg %d", i)
			}
			raw, err := decodeAddress(text)
			if err != nil {
				return nil, err
			}
			head[i] = leftPadWord(raw)
		case "bytes":
			value, ok := arg.Value.([]byte)
			if !ok {
				return nil, fmt.Errorf("abi: invalid bytes arg %d", i)
			}
			head[i] = leftPadWord(big.NewInt(int64(tailOffset + len(tail))).Bytes())
			tail = append(tail, leftPadWord(big.NewInt(int64(len(value))).Bytes())...)
			tail = append(tail, rightPadWords(value)...)
		default:
			return nil, fmt.Errorf("abi: unsupported arg type %q", arg.Type)
		}
	}

	data := make([]byte, 0, 4+tailOffset+len(tail))
	data = append(data, sel[:]...)
	for _, word := range head {
		data = append(data, word...)
	}
	data = append(data, tail...)
	return data, nil
}

// 合约 gifts(uint256) 返回值布局（9 个静态字段）
const giftTupleWords = 9

// DecodeGiftReturn 解析 gifts(uint256) 的返回数据为礼包快照
func DecodeGiftReturn(id uint64, data []byte) (*giftlink.Gift, error) {
	if len(data) < giftTupleWords*wordSize {
		return nil, fmt.Errorf("abi: gift return too short: %d bytes", len(data))
	}
	word := func(i int) []byte {
		return data[i*wordSize : (i+1)*wordSize]
	}

	sender := "0x" + hex.EncodeToString(word(0)[12:])
	total := new(big.Int).SetBytes(word(1))
	remaining := new(big.Int).SetBytes(word(2))
	expiry := new(big.Int).SetBytes(word(3))
	totalSlots := new(big.Int).SetBytes(word(4))
	claimedSlots := new(big.Int).SetBytes(word(5))
	var claimHash giftlink.Hash
	copy(claimHash[:], word(6))
	feeBps := new(big.Int).SetBytes(word(7))
	modeRaw := new(big.Int).SetBytes(word(8))

	if !expiry.IsInt64() || totalSlots.BitLen() > 32 || claimedSlots.BitLen() > 32 || feeBps.BitLen() > 32 {
		return nil, fmt.Errorf("abi: gift field out of range")
	}
	mode := giftlink.SplitEven
	if modeRaw.Sign() != 0 {
		mode = giftlink.SplitMystery
	}

	return &giftlink.Gift{
		ID:           id,
		Sender:       strings.ToLower(sender),
		TotalAmount:  total,
		Remaining:    remaining,
		Expiry:       expiry.Int64(),
		TotalSlots:   uint32(totalSlots.Uint64()),
		ClaimedSlots: uint32(claimedSlots.Uint64()),
		ClaimHash:    claimHash,
		FeeBps:       uint32(feeBps.Uint64()),
		SplitMode:    mode,
	}, nil
}

// EncodeGiftReturn 按 gifts(uint256) 的返回布局编码快照（测试与模拟账本用）
func EncodeGiftReturn(g *giftlink.Gift) []byte {
	data := make([]byte, 0, giftTupleWords*wordSize)
	senderRaw, _ := decodeAddress(g.Sender)
	data = append(data, leftPadWord(senderRaw)...)
	data = append(data, leftPadWord(g.TotalAmount.Bytes())...)
	data = append(data, leftPadWord(g.Remaining.Bytes())...)
	data = append(data, leftPadWord(big.NewInt(g.Expiry).Bytes())...)
	data = append(data, leftPadWord(big.NewInt(int64(g.TotalSlots)).Bytes())...)
	data = append(data, leftPadWord(big.NewInt(int64(g.ClaimedSlots)).Bytes())...)
	data = append(data, g.ClaimHash[:]...)
	data = append(data, leftPadWord(big.NewInt(int64(g.FeeBps)).Bytes())...)
	mode := big.NewInt(0)
	if g.SplitMode == giftlink.SplitMystery {
		mode.SetInt64(1)
	}
	data = append(data, leftPadWord(mode.Bytes())...)
	return data
}

func leftPadWord(b []byte) []byte {
	if len(b) > wordSize {
		b = b[len(b)-wordSize:]
	}
	word := make([]byte, wordSize)
	copy(word[wordSize-len(b):], b)
	return word
}

func rightPadWords(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	padded := ((len(b) + wordSize - 1) / wordSize) * wordSize
	out := make([]byte, padded)
	copy(out, b)
	return out
}

func decodeAddress(text string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(text), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil || len(raw) != 20 {
		return nil, fmt.Errorf("abi: invalid address %q", text)
	}
	return raw, nil
}
