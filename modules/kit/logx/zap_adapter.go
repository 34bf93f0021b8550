package logx

import (
	"context"

	"go.uber.org/zap"
)

// ZapLogger 是 zap 的适配器，实现 logx.Logger。
type ZapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		return &ZapLogger{logger: zap.NewNop()}
	}
	return &ZapLogger{logger: l}
}

// Nop 返回一个什么都不输出的 Logger，测试和未初始化场景使用。
func Nop() Logger {
	return NewZapLogger(nil)
}

func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	if z == nil {
		return NewZapLogger(nil)
	}
	l := z.logger
	if id, ok := MapIDFrom(ctx); ok {
		l = l.With(zap.Int64("map_id", id))
	}
	if layer, ok := LayerFrom(ctx); ok {
		l = l.With(zap.Int("layer", layer))
	}
	if op, ok := OpFrom(ctx); ok {
		l = l.With(zap.String("op", op))
	}
	return &ZapLogger{logger: l}
}

func (z *ZapLogger) Info(msg string, fields ...zap.Field) {
	z.logger.Info(msg, fields...)
}

func (z *ZapLogger) Error(msg string, fields ...zap.Field) {
	z.logger.Error(msg, fields...)
}

func (z *ZapLogger) Debug(msg string, fields ...zap.Field) {
	z.logger.Debug(msg, fields...)
}

func (z *ZapLogger) Warn(msg string, fields ...zap.Field) {
	z.logger.Warn(msg, fields...)
}
