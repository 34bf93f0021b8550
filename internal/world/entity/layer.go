package entity

import (
	"Wyrmgus/internal/world/transition"
)

type LayerKind string

const (
	LayerSurface     LayerKind = "surface"
	LayerUnderground LayerKind = "underground"
	LayerSpace       LayerKind = "space"
)

// SubtemplateArea 是由子模板填充的矩形区域。
type SubtemplateArea struct {
	Ident string
	Rect  Rect
	World string
}

// Layer 是一层地图的瓦片网格。越界查询返回 false，不是错误。
type Layer struct {
	Index        int
	Width        int
	Height       int
	Kind         LayerKind
	World        string
	Subtemplates []SubtemplateArea

	tiles []Tile
}

func NewLayer(index, width, height int) *Layer {
	l := &Layer{
		Index:  index,
		Width:  width,
		Height: height,
		Kind:   LayerSurface,
		tiles:  make([]Tile, width*height),
	}
	for i := range l.tiles {
		l.tiles[i] = newTile()
	}
	return l
}

func (l *Layer) Contains(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < l.Width && p.Y < l.Height
}

func (l *Layer) Bounds() Rect {
	return R(0, 0, l.Width, l.Height)
}

// Tile 返回 p 处瓦片；不在地图上返回 (nil, false)。
func (l *Layer) Tile(p Pos) (*Tile, bool) {
	if !l.Contains(p) {
		return nil, false
	}
	return &l.tiles[p.Y*l.Width+p.X], true
}

// At 只给已经确认在图内的坐标用，越界返回 nil。
func (l *Layer) At(p Pos) *Tile {
	t, _ := l.Tile(p)
	return t
}

// ForEach 按 x 外层、y 内层遍历 region 与地图的交集。
func (l *Layer) ForEach(region Rect, fn func(p Pos, t *Tile)) {
	r := region.Intersect(l.Bounds())
	for x := r.Min.X; x < r.Max.X; x++ {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			p := Pos{x, y}
			fn(p, &l.tiles[y*l.Width+x])
		}
	}
}

// Neighbor 是一个在图内的邻居。
type Neighbor struct {
	Dir  transition.Direction
	Pos  Pos
	Tile *Tile
}

// Neighbors 按固定扫描顺序返回图内的 8 邻居。
func (l *Layer) Neighbors(p Pos) []Neighbor {
	out := make([]Neighbor, 0, 8)
	for _, d := range transition.ScanOrder {
		np := p.Step(d)
		if t, ok := l.Tile(np); ok {
			out = append(out, Neighbor{Dir: d, Pos: np, Tile: t})
		}
	}
	return out
}

// SubtemplateAt 返回包含 p 的子模板区域；后加入的优先（嵌套时内层覆盖外层）。
func (l *Layer) SubtemplateAt(p Pos) (*SubtemplateArea, bool) {
	for i := len(l.Subtemplates) - 1; i >= 0; i-- {
		if l.Subtemplates[i].Rect.Contains(p) {
			return &l.Subtemplates[i], true
		}
	}
	return nil, false
}

func (l *Layer) IsInSubtemplate(p Pos) bool {
	_, ok := l.SubtemplateAt(p)
	return ok
}

// WorldAt：子模板有世界就用子模板的，否则用层的。
func (l *Layer) WorldAt(p Pos) string {
	if area, ok := l.SubtemplateAt(p); ok && area.World != "" {
		return area.World
	}
	return l.World
}
