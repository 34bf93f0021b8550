package logx

import "context"

type mapIDKey struct{}
type layerKey struct{}
type opKey struct{}

// WithMapID 把地图 id 放进 ctx，WithContext 时会自动带到日志字段里。
func WithMapID(ctx context.Context, mapID int64) context.Context {
	return context.WithValue(ctx, mapIDKey{}, mapID)
}

func MapIDFrom(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(mapIDKey{}).(int64)
	return v, ok
}

func WithLayer(ctx context.Context, layer int) context.Context {
	return context.WithValue(ctx, layerKey{}, layer)
}

func LayerFrom(ctx context.Context) (int, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(layerKey{}).(int)
	return v, ok
}

// WithOp 标记当前所处的操作（preprocess / set_terrain / generate ...）。
func WithOp(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, opKey{}, op)
}

func OpFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(opKey{}).(string)
	return v, ok && v != ""
}
