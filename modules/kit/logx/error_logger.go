package logx

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// BizLog 是可预期拒绝（非法坐标、未知地形等）日志的强类型输入，避免参数顺序误传。
type BizLog struct {
	Action  string
	Reason  string
	Message string
}

// SysLog 是技术错误日志的强类型输入，避免参数顺序误传。
type SysLog struct {
	Action string
	Err    error
}

func NewBizLog(action, reason, message string) BizLog {
	return BizLog{
		Action:  action,
		Reason:  reason,
		Message: message,
	}
}

func NewSysLog(action string, err error) SysLog {
	return SysLog{
		Action: action,
		Err:    err,
	}
}

// StageLog 是引擎阶段日志的强类型输入（预处理、修正、领地计算等）。
type StageLog struct {
	Stage     string
	Elapsed   time.Duration
	Passes    int
	Converged bool
}

func NewStageLog(stage string, elapsed time.Duration, passes int, converged bool) StageLog {
	return StageLog{
		Stage:     stage,
		Elapsed:   elapsed,
		Passes:    passes,
		Converged: converged,
	}
}

// ReportStageWithLoggerContext 记录阶段日志：
// - 收敛（或不需要迭代）: DEBUG
// - 达到迭代上限未收敛: WARN（不是错误，结果照常使用）
func ReportStageWithLoggerContext(ctx context.Context, l Logger, stage StageLog, fields ...zap.Field) {
	if l == nil {
		return
	}
	base := []zap.Field{
		zap.String("log_type", "stage"),
		zap.String("stage", stage.Stage),
		zap.Duration("elapsed", stage.Elapsed),
		zap.Int("passes", stage.Passes),
		zap.Bool("converged", stage.Converged),
	}
	base = append(base, fields...)
	withCtx := l.WithContext(ctx)
	if stage.Converged {
		withCtx.Debug("stage", base...)
		return
	}
	withCtx.Warn(fmt.Sprintf("%s hit pass cap without converging", stage.Stage), base...)
}

// ReportBizWithLoggerContext 记录可预期拒绝日志：INFO、err_type=biz、不带堆栈。
func ReportBizWithLoggerContext(ctx context.Context, l Logger, biz BizLog, fields ...zap.Field) {
	if l == nil {
		return
	}
	action := biz.Action
	if action == "" {
		action = "biz_reject"
	}
	reason := biz.Reason
	message := biz.Message

	base := []zap.Field{
		zap.String("err_type", "biz"),
		zap.String("action", action),
	}
	if reason != "" {
		base = append(base, zap.String("reason", reason))
	}
	if message != "" {
		base = append(base, zap.String("biz_message", message))
	}
	base = append(base, fields...)

	msg := action
	if reason != "" && message != "" {
		msg = fmt.Sprintf("%s, reason:%s, msg:%s", action, reason, message)
	} else if reason != "" {
		msg = fmt.Sprintf("%s, reason:%s", action, reason)
	} else if message != "" {
		msg = fmt.Sprintf("%s, msg:%s", action, message)
	}
	l.WithContext(ctx).Info(msg, base...)
}

// ReportSysErrorWithLoggerContext 记录技术错误日志：ERROR、err_type=sys，可附带栈信息。
func ReportSysErrorWithLoggerContext(ctx context.Context, l Logger, sys SysLog, fields ...zap.Field) {
	if sys.Err == nil || l == nil {
		return
	}
	action := sys.Action
	if action == "" {
		action = "sys_error"
	}
	err := sys.Err

	meta := BuildErrorLog(err)
	base := []zap.Field{
		zap.String("err_type", "sys"),
		zap.String("action", action),
	}
	if meta.Code != "" {
		base = append(base, zap.String("error_code", meta.Code))
	}
	if len(meta.CauseChain) != 0 {
		base = append(base, zap.Any("cause_chain", meta.CauseChain))
	}
	if len(meta.Data) != 0 {
		base = append(base, zap.Any("error_data", meta.Data))
	}
	if meta.Origin != "" {
		base = append(base, zap.String("origin_caller", meta.Origin))
	}
	if meta.Stack != "" {
		base = append(base, zap.String("stack_origin", meta.Stack))
	}
	base = append(base, fields...)

	finalMsg := action
	if meta.Where != "" {
		finalMsg = fmt.Sprintf("%s, at %s, error:%s", action, meta.Where, meta.Error)
	} else if meta.Msg != "" {
		finalMsg = fmt.Sprintf("%s, error:%s, msg:%s", action, meta.Error, meta.Msg)
	} else {
		finalMsg = fmt.Sprintf("%s, error:%s", action, meta.Error)
	}
	l.WithContext(ctx).Error(finalMsg, base...)
}
