package terrain

import (
	"Wyrmgus/internal/world/transition"
)

// Blank 是“没有可接壤地形”的合成邻居 id（地图边缘 / 空地形 / 不兼容地形都算）。
const Blank = -1

// TransitionKey 是过渡图块池的键：(邻居地形下标 或 Blank, 形状)。
type TransitionKey struct {
	Neighbor int
	Shape    transition.Shape
}

// TiledBackground 是按坐标平铺的固定背景，不走随机。
type TiledBackground struct {
	FirstTile int
	Columns   int
	Rows      int
}

// Index 返回 (x,y) 处应使用的图块号。
func (b *TiledBackground) Index(x, y int) int {
	return b.FirstTile + (y%b.Rows)*b.Columns + x%b.Columns
}

type Type struct {
	Ident      string
	Name       string
	Index      int
	Character  string
	Color      string
	TileNumber int

	Overlay        bool
	AllowSingle    bool
	Flags          Flag
	DestroyedFlags Flag
	DefaultValue   int

	SolidTiles      []int
	DecorationTiles []int
	DamagedTiles    []int
	DestroyedTiles  []int
	TiledBackground *TiledBackground

	// TransitionTiles：本地形瓦片上，面对某邻居（或 Blank）时按形状可选的图块
	TransitionTiles map[TransitionKey][]int
	// AdjacentTransitionTiles：画在“邻居瓦片”上的图块，给邻居反查用
	AdjacentTransitionTiles map[TransitionKey][]int

	baseTerrains        []*Type
	innerBorderTerrains []*Type
	outerBorderTerrains []*Type
	borderTerrains      []*Type
	intermediate        map[int]*Type
}

func NewType(ident string) *Type {
	return &Type{
		Ident:                   ident,
		Index:                   -1,
		TransitionTiles:         make(map[TransitionKey][]int),
		AdjacentTransitionTiles: make(map[TransitionKey][]int),
		intermediate:            make(map[int]*Type),
	}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.Ident
}

func (t *Type) AddBaseTerrain(b *Type) {
	t.baseTerrains = appendUnique(t.baseTerrains, b)
}

func (t *Type) AddInnerBorderTerrain(b *Type) {
	t.innerBorderTerrains = appendUnique(t.innerBorderTerrains, b)
}

func (t *Type) AddOuterBorderTerrain(b *Type) {
	t.outerBorderTerrains = appendUnique(t.outerBorderTerrains, b)
}

func (t *Type) BaseTerrains() []*Type        { return t.baseTerrains }
func (t *Type) InnerBorderTerrains() []*Type { return t.innerBorderTerrains }
func (t *Type) OuterBorderTerrains() []*Type { return t.outerBorderTerrains }
func (t *Type) BorderTerrains() []*Type      { return t.borderTerrains }

func (t *Type) IsBaseTerrain(o *Type) bool        { return contains(t.baseTerrains, o) }
func (t *Type) IsInnerBorderTerrain(o *Type) bool { return contains(t.innerBorderTerrains, o) }
func (t *Type) IsOuterBorderTerrain(o *Type) bool { return contains(t.outerBorderTerrains, o) }

// IsBorderTerrain：两种地形能直接相邻（内接或外接）。
func (t *Type) IsBorderTerrain(o *Type) bool { return contains(t.borderTerrains, o) }

// Intermediate 返回 t 与 o 之间的过渡地形（两者不能直接相邻时才有）。
func (t *Type) Intermediate(o *Type) (*Type, bool) {
	if t == nil || o == nil {
		return nil, false
	}
	v, ok := t.intermediate[o.Index]
	return v, ok
}

func (t *Type) AddTransitionTiles(neighbor int, shape transition.Shape, tiles ...int) {
	k := TransitionKey{Neighbor: neighbor, Shape: shape}
	t.TransitionTiles[k] = append(t.TransitionTiles[k], tiles...)
}

func (t *Type) AddAdjacentTransitionTiles(neighbor int, shape transition.Shape, tiles ...int) {
	k := TransitionKey{Neighbor: neighbor, Shape: shape}
	t.AdjacentTransitionTiles[k] = append(t.AdjacentTransitionTiles[k], tiles...)
}

func (t *Type) TransitionPool(neighbor int, shape transition.Shape) []int {
	return t.TransitionTiles[TransitionKey{Neighbor: neighbor, Shape: shape}]
}

func (t *Type) AdjacentTransitionPool(neighbor int, shape transition.Shape) []int {
	return t.AdjacentTransitionTiles[TransitionKey{Neighbor: neighbor, Shape: shape}]
}

func (t *Type) IsWater() bool      { return t != nil && t.Flags.Any(FlagWater) }
func (t *Type) IsSpace() bool      { return t != nil && t.Flags.Any(FlagSpace) }
func (t *Type) IsImpassable() bool { return t != nil && t.Flags.Any(FlagImpassable) }

func contains(list []*Type, o *Type) bool {
	if o == nil {
		return false
	}
	for _, v := range list {
		if v == o {
			return true
		}
	}
	return false
}

func appendUnique(list []*Type, o *Type) []*Type {
	if o == nil || contains(list, o) {
		return list
	}
	return append(list, o)
}
