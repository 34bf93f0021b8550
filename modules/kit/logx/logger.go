package logx

import (
	"context"

	"go.uber.org/zap"
)

// Logger 是引擎各模块共用的最小日志接口。
//
// 约束：
// - 只承载结构化字段 + ctx 透传（map_id/layer/op）
// - 引擎核心是同步计算，日志只在阶段边界打，不在逐瓦片循环里打
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	WithContext(ctx context.Context) Logger
}
