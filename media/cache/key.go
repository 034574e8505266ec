package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// keyPrefix 标记本模块生成的缓存键。
const keyPrefix = "media:cache:"

// Key 由语义相关的请求参数生成确定性缓存键。
// 各部分之间以 NUL 分隔后做 SHA-256，取前 16 字节十六进制。
// 相同参数必得相同键；任一部分不同则键不同。
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return keyPrefix + hex.EncodeToString(sum[:16])
}

// Digest 计算原始字节的短摘要，用于把音频/图片字节折算成取键参数。
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:16])
}
