package giftlink

import (
	"crypto/subtle"
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// HashSize 承诺哈希长度
const HashSize = 32

// Hash 领取承诺哈希（keccak256，与链上合约保持同一原语）
type Hash [HashSize]byte

// Commit 计算口令承诺 keccak256(secret)
func Commit(secret []byte) Hash {
	return keccak256(secret)
}

// CommitBound 计算绑定领取者的口令承诺 keccak256(actorID || secret)
// actorID 以大端 8 字节编码拼接在口令之前。
// 产物与 Commit 的结果不可区分，礼包不需要额外记录使用了哪种派生方式。
func CommitBound(actorID uint64, secret []byte) Hash {
	buf := make([]byte, 8+len(secret))
	binary.BigEndian.PutUint64(buf[:8], actorID)
	copy(buf[8:], secret)
	return keccak256(buf)
}

// Verify 校验口令是否匹配承诺（常数时间比较）
func Verify(secret []byte, claimHash Hash) bool {
	computed := Commit(secret)
	return constantTimeEqual(computed, claimHash)
}

// VerifyBound 校验绑定领取者的口令承诺（常数时间比较）
func VerifyBound(actorID uint64, secret []byte, claimHash Hash) bool {
	computed := CommitBound(actorID, secret)
	return constantTimeEqual(computed, claimHash)
}

// VerifyEither 按两种派生方式依次校验口令
// 派生方式编码在承诺本身，礼包快照不携带模式标记，两种都要尝试。
func VerifyEither(actorID uint64, secret []byte, claimHash Hash) bool {
	plain := Verify(secret, claimHash)
	bound := VerifyBound(actorID, secret, claimHash)
	return plain || bound
}

func keccak256(data []byte) Hash {
	var h Hash
	d := sha3.NewLegacyKeccak256()
	d.Write(data)
	copy(h[:], d.Sum(nil))
	return h
}

func constantTimeEqual(a, b Hash) bool {
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
