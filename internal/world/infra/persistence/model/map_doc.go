package model

import (
	"time"

	"Wyrmgus/internal/world/entity"
)

// MapDoc 是 mongo 里一张地图的文档，瓦片字段用短 key 压缩体积。
type MapDoc struct {
	MapID      int64         `bson:"_id"`
	Version    uint64        `bson:"version"`
	Seed       int64         `bson:"seed"`
	RandState  []byte        `bson:"rand_state,omitempty"`
	RandDraws  uint64        `bson:"rand_draws"`
	Layers     []LayerDoc    `bson:"layers"`
	Landmasses []LandmassDoc `bson:"landmasses,omitempty"`
	SavedAt    time.Time     `bson:"saved_at"`
}

type LayerDoc struct {
	Index        int              `bson:"index" json:"index"`
	Width        int              `bson:"width" json:"width"`
	Height       int              `bson:"height" json:"height"`
	Kind         string           `bson:"kind" json:"kind"`
	World        string           `bson:"world,omitempty" json:"world,omitempty"`
	Subtemplates []SubtemplateDoc `bson:"subtemplates,omitempty" json:"subtemplates,omitempty"`
	Tiles        []TileDoc        `bson:"tiles" json:"tiles"`
}

type SubtemplateDoc struct {
	Ident string `bson:"ident" json:"ident"`
	MinX  int    `bson:"min_x" json:"min_x"`
	MinY  int    `bson:"min_y" json:"min_y"`
	MaxX  int    `bson:"max_x" json:"max_x"`
	MaxY  int    `bson:"max_y" json:"max_y"`
	World string `bson:"world,omitempty" json:"world,omitempty"`
}

type TransitionDoc struct {
	Terrain string `bson:"t" json:"t"`
	Tile    int    `bson:"n" json:"n"`
}

type TileDoc struct {
	Terrain            string          `bson:"t,omitempty" json:"t,omitempty"`
	Overlay            string          `bson:"o,omitempty" json:"o,omitempty"`
	SolidTile          int             `bson:"s" json:"s"`
	OverlaySolidTile   int             `bson:"os,omitempty" json:"os,omitempty"`
	Transitions        []TransitionDoc `bson:"tr,omitempty" json:"tr,omitempty"`
	OverlayTransitions []TransitionDoc `bson:"otr,omitempty" json:"otr,omitempty"`
	Flags              uint32          `bson:"f" json:"f"`
	OverlayDestroyed   bool            `bson:"od,omitempty" json:"od,omitempty"`
	OverlayDamaged     bool            `bson:"odm,omitempty" json:"odm,omitempty"`
	Value              int             `bson:"v,omitempty" json:"v,omitempty"`
	Owner              int             `bson:"ow" json:"ow"`
	Settlement         int             `bson:"st,omitempty" json:"st,omitempty"`
	Landmass           int             `bson:"lm,omitempty" json:"lm,omitempty"`
	Feature            int             `bson:"ft,omitempty" json:"ft,omitempty"`
}

type LandmassDoc struct {
	ID      int    `bson:"id" json:"id"`
	World   string `bson:"world,omitempty" json:"world,omitempty"`
	Borders []int  `bson:"borders,omitempty" json:"borders,omitempty"`
}

func MapSnapshotToDoc(s *entity.MapPersistSnapshot) MapDoc {
	doc := MapDoc{
		MapID:     int64(s.MapID),
		Version:   s.Version,
		Seed:      s.Seed,
		RandState: s.RandState,
		RandDraws: s.RandDraws,
		Layers:    make([]LayerDoc, 0, len(s.Layers)),
		SavedAt:   time.Now(),
	}
	for _, l := range s.Layers {
		doc.Layers = append(doc.Layers, LayerToDoc(l))
	}
	doc.Landmasses = LandmassesToDoc(s.Landmasses)
	return doc
}

func MapDocToSnapshot(doc MapDoc) *entity.MapPersistSnapshot {
	s := &entity.MapPersistSnapshot{
		Version:   doc.Version,
		MapID:     entity.MapID(doc.MapID),
		Seed:      doc.Seed,
		RandState: doc.RandState,
		RandDraws: doc.RandDraws,
		Layers:    make([]entity.LayerSnapshot, 0, len(doc.Layers)),
	}
	for _, l := range doc.Layers {
		s.Layers = append(s.Layers, DocToLayer(l))
	}
	s.Landmasses = DocToLandmasses(doc.Landmasses)
	return s
}

func LayerToDoc(l entity.LayerSnapshot) LayerDoc {
	d := LayerDoc{
		Index:  l.Index,
		Width:  l.Width,
		Height: l.Height,
		Kind:   l.Kind,
		World:  l.World,
		Tiles:  make([]TileDoc, 0, len(l.Tiles)),
	}
	for _, a := range l.Subtemplates {
		d.Subtemplates = append(d.Subtemplates, SubtemplateDoc{
			Ident: a.Ident,
			MinX:  a.MinX,
			MinY:  a.MinY,
			MaxX:  a.MaxX,
			MaxY:  a.MaxY,
			World: a.World,
		})
	}
	for _, t := range l.Tiles {
		d.Tiles = append(d.Tiles, TileDoc{
			Terrain:            t.Terrain,
			Overlay:            t.Overlay,
			SolidTile:          t.SolidTile,
			OverlaySolidTile:   t.OverlaySolidTile,
			Transitions:        transitionsToDoc(t.Transitions),
			OverlayTransitions: transitionsToDoc(t.OverlayTransitions),
			Flags:              t.Flags,
			OverlayDestroyed:   t.OverlayDestroyed,
			OverlayDamaged:     t.OverlayDamaged,
			Value:              t.Value,
			Owner:              t.Owner,
			Settlement:         t.Settlement,
			Landmass:           t.Landmass,
			Feature:            t.Feature,
		})
	}
	return d
}

func DocToLayer(d LayerDoc) entity.LayerSnapshot {
	l := entity.LayerSnapshot{
		Index:  d.Index,
		Width:  d.Width,
		Height: d.Height,
		Kind:   d.Kind,
		World:  d.World,
		Tiles:  make([]entity.TileSnapshot, 0, len(d.Tiles)),
	}
	for _, a := range d.Subtemplates {
		l.Subtemplates = append(l.Subtemplates, entity.SubtemplateSnapshot{
			Ident: a.Ident,
			MinX:  a.MinX,
			MinY:  a.MinY,
			MaxX:  a.MaxX,
			MaxY:  a.MaxY,
			World: a.World,
		})
	}
	for _, t := range d.Tiles {
		l.Tiles = append(l.Tiles, entity.TileSnapshot{
			Terrain:            t.Terrain,
			Overlay:            t.Overlay,
			SolidTile:          t.SolidTile,
			OverlaySolidTile:   t.OverlaySolidTile,
			Transitions:        docToTransitions(t.Transitions),
			OverlayTransitions: docToTransitions(t.OverlayTransitions),
			Flags:              t.Flags,
			OverlayDestroyed:   t.OverlayDestroyed,
			OverlayDamaged:     t.OverlayDamaged,
			Value:              t.Value,
			Owner:              t.Owner,
			Settlement:         t.Settlement,
			Landmass:           t.Landmass,
			Feature:            t.Feature,
		})
	}
	return l
}

func LandmassesToDoc(list []entity.LandmassSnapshot) []LandmassDoc {
	if len(list) == 0 {
		return nil
	}
	out := make([]LandmassDoc, 0, len(list))
	for _, lm := range list {
		out = append(out, LandmassDoc{ID: lm.ID, World: lm.World, Borders: lm.Borders})
	}
	return out
}

func DocToLandmasses(list []LandmassDoc) []entity.LandmassSnapshot {
	if len(list) == 0 {
		return nil
	}
	out := make([]entity.LandmassSnapshot, 0, len(list))
	for _, lm := range list {
		out = append(out, entity.LandmassSnapshot{ID: lm.ID, World: lm.World, Borders: lm.Borders})
	}
	return out
}

func transitionsToDoc(list []entity.TransitionSnapshot) []TransitionDoc {
	if len(list) == 0 {
		return nil
	}
	out := make([]TransitionDoc, 0, len(list))
	for _, tr := range list {
		out = append(out, TransitionDoc{Terrain: tr.Terrain, Tile: tr.Tile})
	}
	return out
}

func docToTransitions(list []TransitionDoc) []entity.TransitionSnapshot {
	if len(list) == 0 {
		return nil
	}
	out := make([]entity.TransitionSnapshot, 0, len(list))
	for _, tr := range list {
		out = append(out, entity.TransitionSnapshot{Terrain: tr.Terrain, Tile: tr.Tile})
	}
	return out
}
