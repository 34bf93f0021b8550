package logx

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"Wyrmgus/modules/kit/errx"
)

// ErrorLog 是一条错误日志需要的全部素材。
// Where 拼的是出事的瓦片位置（layer/pos/subtemplate），内容错误则是 terrain。
type ErrorLog struct {
	Error      string
	Code       string
	Msg        string
	Where      string
	Data       map[string]any
	CauseChain []string
	Origin     string
	Stack      string
}

// BuildErrorLog 从错误链上第一个 *errx.Error 取出码、消息、上下文和发生处的栈。
func BuildErrorLog(err error) ErrorLog {
	if err == nil {
		return ErrorLog{}
	}
	out := ErrorLog{Error: err.Error()}

	var e *errx.Error
	if errors.As(err, &e) {
		out.Code = string(e.Code())
		out.Msg = e.Msg()
		out.Data = e.Data()
		out.Where = where(out.Data)
		out.Origin, out.Stack = formatStack(firstStack(err), 32)
	}
	out.CauseChain = buildCauseChain(err, 20)
	return out
}

func where(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}
	var parts []string
	for _, k := range []string{"terrain", "layer", "pos", "subtemplate"} {
		if v, ok := data[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " ")
}

// 外层 wrap 不带栈，栈在链里更深的系统错误上
func firstStack(err error) []uintptr {
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		var e *errx.Error
		if errors.As(cur, &e) {
			if pcs := e.Stack(); len(pcs) != 0 {
				return pcs
			}
			cur = e
		}
	}
	return nil
}

func buildCauseChain(err error, maxDepth int) []string {
	if err == nil || maxDepth <= 0 {
		return nil
	}
	out := make([]string, 0, 4)
	cur := errors.Unwrap(err)
	for i := 0; i < maxDepth && cur != nil; i++ {
		out = append(out, fmt.Sprintf("%T: %v", cur, cur))
		cur = errors.Unwrap(cur)
	}
	return out
}

func formatStack(pcs []uintptr, maxFrames int) (originCaller string, stack string) {
	if len(pcs) == 0 || maxFrames <= 0 {
		return "", ""
	}
	frames := runtime.CallersFrames(pcs)
	lines := make([]string, 0, maxFrames)
	for i := 0; i < maxFrames; i++ {
		f, more := frames.Next()
		if f.Function == "" && f.File == "" && f.Line == 0 {
			break
		}
		line := fmt.Sprintf("%s %s:%d", f.Function, f.File, f.Line)
		if originCaller == "" {
			originCaller = line
		}
		lines = append(lines, line)
		if !more {
			break
		}
	}
	return originCaller, strings.Join(lines, "\n")
}
