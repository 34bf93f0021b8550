package errs

import (
	"fmt"

	"Wyrmgus/internal/world/entity"
	"Wyrmgus/modules/kit/errx"
)

type Kind string

const (
	KindUnknown   Kind = "unknown"
	KindInfra     Kind = "infra"
	KindContent   Kind = "content"
	KindInvariant Kind = "invariant"
	KindBusiness  Kind = "business"
)

type Error struct {
	Op    string         // 发生位置：service.Preprocess / repo.Save
	Kind  Kind           // 粗分类
	Meta  map[string]any // 关键参数（map_id, layer, pos...）
	Cause error          // 根因（必须保留）
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Wrap：统一包装入口，每过一层边界包一次，形成完整因果链
func Wrap(op string, kind Kind, cause error, meta map[string]any) error {
	if cause == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Cause: cause, Meta: meta}
}

// KindOf 推断根因类别：内容错误 / 瓦片不变量 / 其他。
func KindOf(err error) Kind {
	switch errx.CodeOf(err) {
	case errx.CodeContentInvalid:
		return KindContent
	case errx.CodeTileInvariant:
		return KindInvariant
	case errx.CodeUnavailable:
		return KindInfra
	case errx.CodeNotFound, errx.CodeReqParamError:
		return KindBusiness
	}
	return KindUnknown
}

// TileInvariant 构造带层号、坐标、所在子模板的瓦片不变量错误。
func TileInvariant(l *entity.Layer, p entity.Pos, detail string) error {
	data := map[string]any{
		"layer":  l.Index,
		"pos":    p.String(),
		"detail": detail,
	}
	if area, ok := l.SubtemplateAt(p); ok {
		data["subtemplate"] = area.Ident
	}
	return errx.ErrTileInvariant.WithDataMap(data).WithCause(fmt.Errorf("%s at layer %d %s", detail, l.Index, p))
}
