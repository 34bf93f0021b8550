package service

import (
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/internal/world/transition"
)

// TileView 是对外的只读瓦片视图，地形用 ident 表示。
type TileView struct {
	Layer              int
	Pos                entity.Pos
	Terrain            string
	Overlay            string
	TopTerrain         string
	SolidTile          int
	OverlaySolidTile   int
	Transitions        []TransitionView
	OverlayTransitions []TransitionView
	Flags              terrain.Flag
	OverlayDestroyed   bool
	Landmass           entity.LandmassID
	Settlement         entity.SettlementID
	Owner              entity.PlayerID
	OwnershipBorder    transition.Shape
	Subtemplate        string
	World              string
}

// TransitionView 的 Terrain 为空表示地图边缘/无可接壤地形。
type TransitionView struct {
	Terrain string
	Tile    int
}

func newTileView(l *entity.Layer, p entity.Pos, t *entity.Tile) TileView {
	v := TileView{
		Layer:              l.Index,
		Pos:                p,
		Terrain:            ident(t.Terrain),
		Overlay:            ident(t.Overlay),
		TopTerrain:         ident(t.TopTerrain()),
		SolidTile:          t.SolidTile,
		OverlaySolidTile:   t.OverlaySolidTile,
		Transitions:        transitionViews(t.Transitions),
		OverlayTransitions: transitionViews(t.OverlayTransitions),
		Flags:              t.Flags,
		OverlayDestroyed:   t.OverlayDestroyed,
		Landmass:           t.Landmass,
		Settlement:         t.Settlement,
		Owner:              t.Owner,
		OwnershipBorder:    t.OwnershipBorder,
		World:              l.WorldAt(p),
	}
	if area, ok := l.SubtemplateAt(p); ok {
		v.Subtemplate = area.Ident
	}
	return v
}

func ident(t *terrain.Type) string {
	if t == nil {
		return ""
	}
	return t.Ident
}

func transitionViews(list []entity.Transition) []TransitionView {
	if len(list) == 0 {
		return nil
	}
	out := make([]TransitionView, len(list))
	for i, tr := range list {
		out[i] = TransitionView{Terrain: ident(tr.Terrain), Tile: tr.Tile}
	}
	return out
}
