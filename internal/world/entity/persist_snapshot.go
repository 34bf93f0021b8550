package entity

import (
	"Wyrmgus/internal/shared/randx"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/modules/kit/errx"
)

// MapPersistSnapshot 是整张地图的值快照，由地图 actor 构建，交给写库协程。
// 地形用 ident 表示，加载时重新解析。
type MapPersistSnapshot struct {
	Version    uint64
	MapID      MapID
	Seed       int64
	RandState  []byte
	RandDraws  uint64
	Layers     []LayerSnapshot
	Landmasses []LandmassSnapshot
}

type LayerSnapshot struct {
	Index        int
	Width        int
	Height       int
	Kind         string
	World        string
	Subtemplates []SubtemplateSnapshot
	Tiles        []TileSnapshot
}

type SubtemplateSnapshot struct {
	Ident                  string
	MinX, MinY, MaxX, MaxY int
	World                  string
}

type TransitionSnapshot struct {
	Terrain string
	Tile    int
}

type TileSnapshot struct {
	Terrain            string
	Overlay            string
	SolidTile          int
	OverlaySolidTile   int
	Transitions        []TransitionSnapshot
	OverlayTransitions []TransitionSnapshot
	Flags              uint32
	OverlayDestroyed   bool
	OverlayDamaged     bool
	Value              int
	Owner              int
	Settlement         int
	Landmass           int
	Feature            int
}

type LandmassSnapshot struct {
	ID      int
	World   string
	Borders []int
}

// BuildPersistSnapshot 只在有改动时构建。
func (m *MapState) BuildPersistSnapshot(version uint64) (*MapPersistSnapshot, bool) {
	if m == nil || !m.Dirty() {
		return nil, false
	}
	return m.Snapshot(version), true
}

// Snapshot 无条件构建快照。
func (m *MapState) Snapshot(version uint64) *MapPersistSnapshot {
	s := &MapPersistSnapshot{
		Version: version,
		MapID:   m.ID,
	}
	if m.Rand != nil {
		s.Seed = m.Rand.Seed()
		s.RandDraws = m.Rand.Draws()
		if state, err := m.Rand.State(); err == nil {
			s.RandState = state
		}
	}
	for _, l := range m.Layers {
		ls := LayerSnapshot{
			Index:  l.Index,
			Width:  l.Width,
			Height: l.Height,
			Kind:   string(l.Kind),
			World:  l.World,
			Tiles:  make([]TileSnapshot, 0, len(l.tiles)),
		}
		for _, a := range l.Subtemplates {
			ls.Subtemplates = append(ls.Subtemplates, SubtemplateSnapshot{
				Ident: a.Ident,
				MinX:  a.Rect.Min.X,
				MinY:  a.Rect.Min.Y,
				MaxX:  a.Rect.Max.X,
				MaxY:  a.Rect.Max.Y,
				World: a.World,
			})
		}
		for i := range l.tiles {
			ls.Tiles = append(ls.Tiles, snapshotTile(&l.tiles[i]))
		}
		s.Layers = append(s.Layers, ls)
	}
	for _, lm := range m.Landmasses {
		ms := LandmassSnapshot{ID: int(lm.ID), World: lm.World}
		for _, b := range lm.Borders() {
			ms.Borders = append(ms.Borders, int(b))
		}
		s.Landmasses = append(s.Landmasses, ms)
	}
	return s
}

func snapshotTile(t *Tile) TileSnapshot {
	return TileSnapshot{
		Terrain:            identOf(t.Terrain),
		Overlay:            identOf(t.Overlay),
		SolidTile:          t.SolidTile,
		OverlaySolidTile:   t.OverlaySolidTile,
		Transitions:        snapshotTransitions(t.Transitions),
		OverlayTransitions: snapshotTransitions(t.OverlayTransitions),
		Flags:              uint32(t.Flags),
		OverlayDestroyed:   t.OverlayDestroyed,
		OverlayDamaged:     t.OverlayDamaged,
		Value:              t.Value,
		Owner:              int(t.Owner),
		Settlement:         int(t.Settlement),
		Landmass:           int(t.Landmass),
		Feature:            int(t.Feature),
	}
}

func snapshotTransitions(list []Transition) []TransitionSnapshot {
	if len(list) == 0 {
		return nil
	}
	out := make([]TransitionSnapshot, 0, len(list))
	for _, tr := range list {
		out = append(out, TransitionSnapshot{Terrain: identOf(tr.Terrain), Tile: tr.Tile})
	}
	return out
}

func identOf(t *terrain.Type) string {
	if t == nil {
		return ""
	}
	return t.Ident
}

// HydrateMapState 由快照还原地图。未知地形 ident 视为内容错误。
// 过渡列表原样还原，调用方应在之后重新计算。
func HydrateMapState(s *MapPersistSnapshot, reg *terrain.Registry, settings Settings) (*MapState, error) {
	rng := randx.New(s.Seed)
	if len(s.RandState) > 0 {
		if err := rng.Restore(s.RandState, s.RandDraws); err != nil {
			return nil, errx.Wrap(errx.ErrContentInvalid, err, map[string]any{"map_id": s.MapID, "reason": "bad random state"})
		}
	}
	m := NewMapState(s.MapID, reg, rng, settings)

	lookup := func(ident string) (*terrain.Type, error) {
		if ident == "" {
			return nil, nil
		}
		t, ok := reg.Get(ident)
		if !ok {
			return nil, errx.ErrContentInvalid.WithDataMap(map[string]any{"terrain": ident, "reason": "unknown terrain in saved map"})
		}
		return t, nil
	}

	for _, ls := range s.Layers {
		if ls.Width*ls.Height != len(ls.Tiles) {
			return nil, errx.ErrContentInvalid.WithDataMap(map[string]any{"layer": ls.Index, "reason": "tile count does not match layer size"})
		}
		l := m.AddLayer(ls.Width, ls.Height, LayerKind(ls.Kind), ls.World)
		for _, a := range ls.Subtemplates {
			l.Subtemplates = append(l.Subtemplates, SubtemplateArea{
				Ident: a.Ident,
				Rect:  R(a.MinX, a.MinY, a.MaxX, a.MaxY),
				World: a.World,
			})
		}
		for i, ts := range ls.Tiles {
			t := &l.tiles[i]
			var err error
			if t.Terrain, err = lookup(ts.Terrain); err != nil {
				return nil, err
			}
			if t.Overlay, err = lookup(ts.Overlay); err != nil {
				return nil, err
			}
			if t.Transitions, err = hydrateTransitions(ts.Transitions, lookup); err != nil {
				return nil, err
			}
			if t.OverlayTransitions, err = hydrateTransitions(ts.OverlayTransitions, lookup); err != nil {
				return nil, err
			}
			t.SolidTile = ts.SolidTile
			t.OverlaySolidTile = ts.OverlaySolidTile
			t.Flags = terrain.Flag(ts.Flags)
			t.OverlayDestroyed = ts.OverlayDestroyed
			t.OverlayDamaged = ts.OverlayDamaged
			t.Value = ts.Value
			t.Owner = PlayerID(ts.Owner)
			t.Settlement = SettlementID(ts.Settlement)
			t.Landmass = LandmassID(ts.Landmass)
			t.Feature = FeatureID(ts.Feature)
		}
	}
	for _, ms := range s.Landmasses {
		lm := m.NewLandmass(ms.World)
		if int(lm.ID) != ms.ID {
			return nil, errx.ErrContentInvalid.WithDataMap(map[string]any{"landmass": ms.ID, "reason": "landmass ids are not contiguous"})
		}
	}
	for _, ms := range s.Landmasses {
		lm, _ := m.Landmass(LandmassID(ms.ID))
		for _, b := range ms.Borders {
			lm.AddBorder(LandmassID(b))
		}
	}
	m.ClearDirty()
	return m, nil
}

func hydrateTransitions(list []TransitionSnapshot, lookup func(string) (*terrain.Type, error)) ([]Transition, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]Transition, 0, len(list))
	for _, ts := range list {
		t, err := lookup(ts.Terrain)
		if err != nil {
			return nil, err
		}
		out = append(out, Transition{Terrain: t, Tile: ts.Tile})
	}
	return out, nil
}
