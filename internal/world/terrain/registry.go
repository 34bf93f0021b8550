package terrain

import (
	"Wyrmgus/modules/kit/errx"
)

// Registry 保存全部地形定义，下标即加载顺序。Finalize 之后只读。
type Registry struct {
	types     []*Type
	byIdent   map[string]*Type
	byChar    map[string]*Type
	byColor   map[string]*Type
	byTile    map[int]*Type
	finalized bool
}

func NewRegistry() *Registry {
	return &Registry{
		byIdent: make(map[string]*Type),
		byChar:  make(map[string]*Type),
		byColor: make(map[string]*Type),
		byTile:  make(map[int]*Type),
	}
}

func contentErr(t *Type, reason string, extra map[string]any) error {
	data := map[string]any{"terrain": t.Ident, "reason": reason}
	for k, v := range extra {
		data[k] = v
	}
	return errx.ErrContentInvalid.WithDataMap(data)
}

// Add 注册地形并分配下标；重复的 ident / 字符 / 颜色 / 图块号都是内容错误。
func (r *Registry) Add(t *Type) error {
	if t == nil || t.Ident == "" {
		return errx.ErrContentInvalid.WithData("reason", "terrain ident is empty")
	}
	if _, dup := r.byIdent[t.Ident]; dup {
		return contentErr(t, "duplicate ident", nil)
	}
	if t.Character != "" {
		if other, dup := r.byChar[t.Character]; dup {
			return contentErr(t, "duplicate character", map[string]any{"character": t.Character, "other": other.Ident})
		}
	}
	if t.Color != "" {
		if other, dup := r.byColor[t.Color]; dup {
			return contentErr(t, "duplicate color", map[string]any{"color": t.Color, "other": other.Ident})
		}
	}
	if t.TileNumber != 0 {
		if other, dup := r.byTile[t.TileNumber]; dup {
			return contentErr(t, "duplicate tile number", map[string]any{"tile_number": t.TileNumber, "other": other.Ident})
		}
	}

	t.Index = len(r.types)
	r.types = append(r.types, t)
	r.byIdent[t.Ident] = t
	if t.Character != "" {
		r.byChar[t.Character] = t
	}
	if t.Color != "" {
		r.byColor[t.Color] = t
	}
	if t.TileNumber != 0 {
		r.byTile[t.TileNumber] = t
	}
	return nil
}

func (r *Registry) Get(ident string) (*Type, bool) {
	t, ok := r.byIdent[ident]
	return t, ok
}

func (r *Registry) ByIndex(i int) (*Type, bool) {
	if i < 0 || i >= len(r.types) {
		return nil, false
	}
	return r.types[i], true
}

func (r *Registry) ByCharacter(c string) (*Type, bool) {
	t, ok := r.byChar[c]
	return t, ok
}

func (r *Registry) ByColor(c string) (*Type, bool) {
	t, ok := r.byColor[c]
	return t, ok
}

func (r *Registry) ByTileNumber(n int) (*Type, bool) {
	t, ok := r.byTile[n]
	return t, ok
}

// Types 按下标顺序返回。
func (r *Registry) Types() []*Type {
	return r.types
}

func (r *Registry) Len() int {
	return len(r.types)
}

// SetIntermediate 登记 a、b 之间的过渡地形，对称生效。
func (r *Registry) SetIntermediate(a, b, via *Type) {
	a.intermediate[b.Index] = via
	b.intermediate[a.Index] = via
}

// Finalize 补齐内外接壤的对称关系并做内容校验，失败时返回带 terrain 的内容错误。
//
// A 的内接地形含 B ⇔ B 的外接地形含 A。
func (r *Registry) Finalize() error {
	for _, t := range r.types {
		for _, b := range t.innerBorderTerrains {
			b.AddOuterBorderTerrain(t)
		}
		for _, b := range t.outerBorderTerrains {
			b.AddInnerBorderTerrain(t)
		}
	}
	for _, t := range r.types {
		t.borderTerrains = t.borderTerrains[:0]
		for _, b := range t.innerBorderTerrains {
			t.borderTerrains = appendUnique(t.borderTerrains, b)
		}
		for _, b := range t.outerBorderTerrains {
			t.borderTerrains = appendUnique(t.borderTerrains, b)
		}
	}

	for _, t := range r.types {
		if len(t.DecorationTiles) > 0 && len(t.SolidTiles) == 0 {
			return contentErr(t, "has decoration tiles but no solid tiles", nil)
		}
		if t.TiledBackground != nil && (t.TiledBackground.Columns <= 0 || t.TiledBackground.Rows <= 0) {
			return contentErr(t, "tiled background needs positive columns and rows", nil)
		}
		for otherIdx, via := range t.intermediate {
			other := r.types[otherIdx]
			if t.IsBorderTerrain(other) {
				return contentErr(t, "intermediate terrain defined for directly bordering terrains", map[string]any{"other": other.Ident, "intermediate": via.Ident})
			}
			if !t.IsBorderTerrain(via) || !other.IsBorderTerrain(via) {
				return contentErr(t, "intermediate terrain is not a border terrain of both sides", map[string]any{"other": other.Ident, "intermediate": via.Ident})
			}
			if back, ok := other.intermediate[t.Index]; !ok || back != via {
				return contentErr(t, "intermediate terrain mapping is not symmetric", map[string]any{"other": other.Ident})
			}
		}
	}
	r.finalized = true
	return nil
}

func (r *Registry) Finalized() bool {
	return r.finalized
}
