// Package ctxkeys 定义跨包共享的 context 键。
package ctxkeys

import "context"

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	credentialKey contextKey = "credential"
	modelKey      contextKey = "model"
)

// WithRequestID 设置请求 ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID 获取请求 ID
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithCredential 设置逐请求凭证（用于覆盖适配器配置中的凭证）
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, credentialKey, credential)
}

// Credential 获取逐请求凭证
func Credential(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(credentialKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithModel 设置模型标识（用于覆盖默认模型）
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, modelKey, model)
}

// Model 获取模型标识
func Model(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(modelKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
