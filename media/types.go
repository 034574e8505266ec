package media

import (
	"time"
)

// TranscribeRequest 语音识别请求。
// Audio 为编码容器字节（WAV/OGG），由适配器按线上协议转换；
// 请求一经发出即视为不可变。
type TranscribeRequest struct {
	Audio        []byte            `json:"-"`                       // 音频容器字节
	Language     string            `json:"language,omitempty"`      // BCP-47 语言码，可选
	ExpectedText string            `json:"expected_text,omitempty"` // 期望文本，仅置信度评分使用
	Metadata     map[string]string `json:"metadata,omitempty"`      // 透传元数据
}

// SynthesizeRequest 语音合成请求。
// 语速不是请求字段：它是适配器状态（SetSpeed 设定），
// 适配器在构造缓存键与线上请求时折算进去。
type SynthesizeRequest struct {
	Text     string            `json:"text"`               // 待合成文本
	Voice    string            `json:"voice,omitempty"`    // 音色标识，空则用配置默认值
	Language string            `json:"language,omitempty"` // 语言码，空则用配置默认值
	Metadata map[string]string `json:"metadata,omitempty"`
}

// VisionRequest 图文视觉推理请求。
type VisionRequest struct {
	Prompt       string `json:"prompt"`                  // 用户提示词
	Image        []byte `json:"-"`                       // 原始图片字节，发送前归一化
	SystemPrompt string `json:"system_prompt,omitempty"` // 系统提示词，可选
}

// Word 词级切分，含时间戳与置信度。
type Word struct {
	Word       string        `json:"word"`
	Start      time.Duration `json:"start"`
	End        time.Duration `json:"end"`
	Confidence float64       `json:"confidence"`
}

// TranscriptionResult 带置信度的转写结果。
// Metadata 为开放映射，评分路径会写入 expected_text 与 accuracy。
type TranscriptionResult struct {
	Text       string            `json:"text"`
	Confidence float64           `json:"confidence"` // [0,1]
	Duration   time.Duration     `json:"duration"`
	Language   string            `json:"language,omitempty"`
	Words      []Word            `json:"words,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Voice 可用音色描述。
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Preview  string `json:"preview,omitempty"` // 试听地址，可选
}

// Payload 可缓存载荷。缓存逐出时调用 Release 显式归还底层资源；
// 已释放的载荷在缓存查找时按缺失处理。
type Payload interface {
	Release()
	Released() bool
	Size() int
}
