// Package score 提供基于编辑距离的文本相似度计算与转写置信度估计。
package score

import (
	"strings"
	"time"
	"unicode/utf8"
)

// 置信度惩罚阈值与系数。
const (
	shortTranscriptRunes = 3
	shortAudioDuration   = 500 * time.Millisecond

	shortTranscriptPenalty = 0.5
	shortAudioPenalty      = 0.7
)

// Similarity 计算两段文本的归一化相似度，取值 [0,1]。
// 两侧先做大小写折叠与首尾空白裁剪；任一侧为空返回 0.0
//（两侧同为空串也按 0.0 处理）；完全一致返回 1.0；
// 其余情况为 1 - levenshtein(a,b)/max(len(a),len(b))，按 rune 计算。
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	ra, rb := []rune(a), []rune(b)
	distance := levenshtein(ra, rb)
	maxLen := max(len(ra), len(rb))
	return 1.0 - float64(distance)/float64(maxLen)
}

// levenshtein 使用滚动两行的动态规划计算编辑距离。
func levenshtein(a, b []rune) int {
	m, n := len(a), len(b)
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+1)
			}
		}
		prev, curr = curr, prev
	}
	return prev[n]
}

// Confidence 估计一次转写的置信度，取值 [0,1]。
// 从 1.0 出发：转写文本（裁剪后）不足 3 个字符乘 0.5；
// 音频时长低于 0.5 秒乘 0.7；给定期望文本时再乘以
// Similarity(transcript, expected)；最终钳制到 [0,1]。
func Confidence(transcript, expected string, audioDuration time.Duration) float64 {
	confidence := 1.0

	if utf8.RuneCountInString(strings.TrimSpace(transcript)) < shortTranscriptRunes {
		confidence *= shortTranscriptPenalty
	}
	if audioDuration < shortAudioDuration {
		confidence *= shortAudioPenalty
	}
	if strings.TrimSpace(expected) != "" {
		confidence *= Similarity(transcript, expected)
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
