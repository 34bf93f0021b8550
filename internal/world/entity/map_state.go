package entity

import (
	"Wyrmgus/internal/shared/randx"
	"Wyrmgus/internal/world/terrain"
)

// Settings 是引擎运行参数，随地图一起传给各个算法。
type Settings struct {
	DecorationWeight int
	MaxPasses        int
	EditorRunning    bool
}

// MapState 聚合一张地图的全部可变状态：各层瓦片、地块列表、随机源。
// 同一张地图的操作必须串行（由地图 actor 保证）。
type MapState struct {
	ID         MapID
	Layers     []*Layer
	Landmasses []*Landmass
	Registry   *terrain.Registry
	Rand       *randx.Source
	Settings   Settings

	dirty bool
}

func NewMapState(id MapID, reg *terrain.Registry, rng *randx.Source, settings Settings) *MapState {
	return &MapState{
		ID:       id,
		Registry: reg,
		Rand:     rng,
		Settings: settings,
	}
}

// AddLayer 追加一层，下标按顺序分配。
func (m *MapState) AddLayer(width, height int, kind LayerKind, world string) *Layer {
	l := NewLayer(len(m.Layers), width, height)
	if kind != "" {
		l.Kind = kind
	}
	l.World = world
	m.Layers = append(m.Layers, l)
	m.dirty = true
	return l
}

func (m *MapState) Layer(index int) (*Layer, bool) {
	if index < 0 || index >= len(m.Layers) {
		return nil, false
	}
	return m.Layers[index], true
}

// NewLandmass 创建地块，id 从 1 开始连续分配。
func (m *MapState) NewLandmass(world string) *Landmass {
	lm := NewLandmass(LandmassID(len(m.Landmasses)+1), world)
	m.Landmasses = append(m.Landmasses, lm)
	return lm
}

func (m *MapState) Landmass(id LandmassID) (*Landmass, bool) {
	i := int(id) - 1
	if i < 0 || i >= len(m.Landmasses) {
		return nil, false
	}
	return m.Landmasses[i], true
}

// ResetLandmasses 整体清空地块列表和瓦片上的地块引用。
func (m *MapState) ResetLandmasses() {
	m.Landmasses = nil
	for _, l := range m.Layers {
		for i := range l.tiles {
			l.tiles[i].Landmass = 0
		}
	}
}

func (m *MapState) MarkDirty() {
	m.dirty = true
}

func (m *MapState) Dirty() bool {
	return m.dirty
}

func (m *MapState) ClearDirty() {
	m.dirty = false
}
