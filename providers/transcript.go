package providers

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/media/bridge"
	"github.com/BaSui01/mediaflow/media/normalize"
	"github.com/BaSui01/mediaflow/media/score"
)

// ParseTranscript 从 STT 响应中提取转写文本与可选的逐词分段。
// 后端可能返回 {"text": ...} 形式的 JSON 对象、裸 JSON 字符串，
// 或纯文本响应体。
func ParseTranscript(resp *bridge.Response, provider string) (string, []media.Word, error) {
	if resp.Status < 200 || resp.Status > 299 {
		return "", nil, MapStatus(resp.Status, resp.Body, provider)
	}
	if len(resp.Body) == 0 {
		return "", nil, media.NewError(media.ErrDecode, "empty transcription payload").
			WithProvider(provider)
	}

	if normalize.Classify(resp.Header.Get("Content-Type"), resp.Body) == normalize.KindJSON {
		var envelope struct {
			Text  *string `json:"text"`
			Words []struct {
				Word        string  `json:"word"`
				Start       float64 `json:"start"`
				End         float64 `json:"end"`
				Probability float64 `json:"probability"`
			} `json:"words"`
		}
		if err := json.Unmarshal(resp.Body, &envelope); err == nil {
			if envelope.Text == nil {
				return "", nil, media.NewError(media.ErrProtocol, "transcription response carries no text field").
					WithProvider(provider)
			}
			text, err := transcriptText(*envelope.Text, provider)
			if err != nil {
				return "", nil, err
			}
			words := make([]media.Word, 0, len(envelope.Words))
			for _, w := range envelope.Words {
				words = append(words, media.Word{
					Word:       w.Word,
					Start:      time.Duration(w.Start * float64(time.Second)),
					End:        time.Duration(w.End * float64(time.Second)),
					Confidence: w.Probability,
				})
			}
			return text, words, nil
		}

		var bare string
		if err := json.Unmarshal(resp.Body, &bare); err == nil {
			text, err := transcriptText(bare, provider)
			return text, nil, err
		}
		return "", nil, media.NewError(media.ErrDecode, "malformed transcription response").
			WithProvider(provider)
	}

	text, err := transcriptText(string(resp.Body), provider)
	return text, nil, err
}

func transcriptText(raw, provider string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", media.NewError(media.ErrDecode, "transcription produced empty text").
			WithProvider(provider)
	}
	return text, nil
}

// ScoreTranscription 组装带置信度评分的转写结果。给出期望文本时，
// 相似度同时写入 metadata 的 expected_text / accuracy 键。
func ScoreTranscription(text, expected, language string, duration time.Duration) *media.TranscriptionResult {
	result := &media.TranscriptionResult{
		Text:       text,
		Confidence: score.Confidence(text, expected, duration),
		Duration:   duration,
		Language:   language,
		Metadata:   map[string]string{},
	}
	if strings.TrimSpace(expected) != "" {
		result.Metadata["expected_text"] = expected
		result.Metadata["accuracy"] = strconv.FormatFloat(score.Similarity(text, expected), 'f', 3, 64)
	}
	return result
}
