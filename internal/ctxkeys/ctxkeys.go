// Package ctxkeys 定义跨包共享的 context 键.
package ctxkeys

import "context"

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const requestIDKey contextKey = "request_id"

// RequestIDHeader 随每次 HTTP 尝试发送的关联头
const RequestIDHeader = "X-Request-ID"

// WithRequestID 设置请求关联 ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID 获取请求关联 ID
func RequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
