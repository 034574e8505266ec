package cache

import "sync/atomic"

// TextPayload 以纯文本为载荷的缓存条目（转写结果）。
// 文本没有需要归还的底层资源，Release 仅做失效标记。
type TextPayload struct {
	text     string
	released atomic.Bool
}

// NewTextPayload 构造文本载荷。
func NewTextPayload(text string) *TextPayload {
	return &TextPayload{text: text}
}

// Text 返回载荷文本；已释放时返回空串。
func (p *TextPayload) Text() string {
	if p.released.Load() {
		return ""
	}
	return p.text
}

// Release 标记载荷失效。幂等。
func (p *TextPayload) Release() {
	p.released.Store(true)
}

// Released 报告载荷是否已失效。
func (p *TextPayload) Released() bool {
	return p.released.Load()
}

// Size 返回文本字节数。
func (p *TextPayload) Size() int {
	return len(p.text)
}
