package model

import (
	"time"

	"Wyrmgus/internal/world/entity"
)

// model
type MapRow struct {
	MapID     int64     `gorm:"column:map_id;type:bigint;comment:地图id;primaryKey;not null;" json:"map_id"`
	Version   uint64    `gorm:"column:version;type:bigint UNSIGNED;comment:快照版本;not null;" json:"version"`
	Seed      int64     `gorm:"column:seed;type:bigint;comment:随机种子;not null;" json:"seed"`
	RandState []byte    `gorm:"column:rand_state;type:blob;comment:随机源状态;" json:"rand_state"`
	RandDraws uint64    `gorm:"column:rand_draws;type:bigint UNSIGNED;comment:已抽取次数;not null;" json:"rand_draws"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"updated_at"`
}

func (m *MapRow) TableName() string {
	return "map"
}

type MapLayerRow struct {
	MapID        int64            `gorm:"column:map_id;type:bigint;primaryKey;not null;" json:"map_id"`
	LayerIndex   int              `gorm:"column:layer_index;type:int;comment:层下标;primaryKey;not null;" json:"layer_index"`
	Width        int              `gorm:"column:width;type:int UNSIGNED;not null;" json:"width"`
	Height       int              `gorm:"column:height;type:int UNSIGNED;not null;" json:"height"`
	Kind         string           `gorm:"column:kind;type:varchar(32);not null;default:surface;" json:"kind"`
	World        string           `gorm:"column:world;type:varchar(100);" json:"world"`
	Subtemplates []SubtemplateDoc `gorm:"column:subtemplates;type:text;serializer:json;" json:"subtemplates"`
}

func (m *MapLayerRow) TableName() string {
	return "map_layer"
}

// MapTileRow 一格一行，按 (layer_index, tile_index) 行优先排列；过渡列表存 json。
type MapTileRow struct {
	MapID              int64           `gorm:"column:map_id;type:bigint;primaryKey;not null;" json:"map_id"`
	LayerIndex         int             `gorm:"column:layer_index;type:int;primaryKey;not null;" json:"layer_index"`
	TileIndex          int             `gorm:"column:tile_index;type:int;comment:y*width+x;primaryKey;not null;" json:"tile_index"`
	Terrain            string          `gorm:"column:terrain;type:varchar(64);" json:"terrain"`
	Overlay            string          `gorm:"column:overlay;type:varchar(64);" json:"overlay"`
	SolidTile          int             `gorm:"column:solid_tile;type:int;not null;default:0;" json:"solid_tile"`
	OverlaySolidTile   int             `gorm:"column:overlay_solid_tile;type:int;not null;default:0;" json:"overlay_solid_tile"`
	Transitions        []TransitionDoc `gorm:"column:transitions;type:text;serializer:json;" json:"transitions"`
	OverlayTransitions []TransitionDoc `gorm:"column:overlay_transitions;type:text;serializer:json;" json:"overlay_transitions"`
	Flags              uint32          `gorm:"column:flags;type:int UNSIGNED;not null;default:0;" json:"flags"`
	OverlayDestroyed   bool            `gorm:"column:overlay_destroyed;not null;default:false;" json:"overlay_destroyed"`
	OverlayDamaged     bool            `gorm:"column:overlay_damaged;not null;default:false;" json:"overlay_damaged"`
	Value              int             `gorm:"column:value;type:int;not null;default:0;" json:"value"`
	Owner              int             `gorm:"column:owner;type:int;not null;default:-1;" json:"owner"`
	Settlement         int             `gorm:"column:settlement;type:int;not null;default:0;" json:"settlement"`
	Landmass           int             `gorm:"column:landmass;type:int;not null;default:0;" json:"landmass"`
	Feature            int             `gorm:"column:feature;type:int;not null;default:0;" json:"feature"`
}

func (m *MapTileRow) TableName() string {
	return "map_tile"
}

type MapLandmassRow struct {
	MapID      int64  `gorm:"column:map_id;type:bigint;primaryKey;not null;" json:"map_id"`
	LandmassID int    `gorm:"column:landmass_id;type:int;comment:地块id;primaryKey;not null;" json:"landmass_id"`
	World      string `gorm:"column:world;type:varchar(100);" json:"world"`
	Borders    []int  `gorm:"column:borders;type:text;comment:相邻地块;serializer:json;" json:"borders"`
}

func (m *MapLandmassRow) TableName() string {
	return "map_landmass"
}

// MapRows 是一张地图拆到四张表后的全部行。
type MapRows struct {
	Map        MapRow
	Layers     []MapLayerRow
	Tiles      []MapTileRow
	Landmasses []MapLandmassRow
}

func MapSnapshotToRows(s *entity.MapPersistSnapshot) MapRows {
	rows := MapRows{
		Map: MapRow{
			MapID:     int64(s.MapID),
			Version:   s.Version,
			Seed:      s.Seed,
			RandState: s.RandState,
			RandDraws: s.RandDraws,
			UpdatedAt: time.Now(),
		},
		Layers:     make([]MapLayerRow, 0, len(s.Layers)),
		Landmasses: make([]MapLandmassRow, 0, len(s.Landmasses)),
	}
	id := rows.Map.MapID
	for _, l := range s.Layers {
		d := LayerToDoc(l)
		rows.Layers = append(rows.Layers, MapLayerRow{
			MapID:        id,
			LayerIndex:   d.Index,
			Width:        d.Width,
			Height:       d.Height,
			Kind:         d.Kind,
			World:        d.World,
			Subtemplates: d.Subtemplates,
		})
		for i, t := range d.Tiles {
			rows.Tiles = append(rows.Tiles, MapTileRow{
				MapID:              id,
				LayerIndex:         d.Index,
				TileIndex:          i,
				Terrain:            t.Terrain,
				Overlay:            t.Overlay,
				SolidTile:          t.SolidTile,
				OverlaySolidTile:   t.OverlaySolidTile,
				Transitions:        t.Transitions,
				OverlayTransitions: t.OverlayTransitions,
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
	}
	for _, lm := range s.Landmasses {
		rows.Landmasses = append(rows.Landmasses, MapLandmassRow{
			MapID:      id,
			LandmassID: lm.ID,
			World:      lm.World,
			Borders:    lm.Borders,
		})
	}
	return rows
}

// MapRowsToSnapshot 要求各表的行已按主键升序；瓦片按层号归组。
func MapRowsToSnapshot(rows MapRows) *entity.MapPersistSnapshot {
	doc := MapDoc{
		MapID:     rows.Map.MapID,
		Version:   rows.Map.Version,
		Seed:      rows.Map.Seed,
		RandState: rows.Map.RandState,
		RandDraws: rows.Map.RandDraws,
	}
	byLayer := make(map[int][]TileDoc, len(rows.Layers))
	for _, t := range rows.Tiles {
		byLayer[t.LayerIndex] = append(byLayer[t.LayerIndex], TileDoc{
			Terrain:            t.Terrain,
			Overlay:            t.Overlay,
			SolidTile:          t.SolidTile,
			OverlaySolidTile:   t.OverlaySolidTile,
			Transitions:        t.Transitions,
			OverlayTransitions: t.OverlayTransitions,
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
	for _, l := range rows.Layers {
		doc.Layers = append(doc.Layers, LayerDoc{
			Index:        l.LayerIndex,
			Width:        l.Width,
			Height:       l.Height,
			Kind:         l.Kind,
			World:        l.World,
			Subtemplates: l.Subtemplates,
			Tiles:        byLayer[l.LayerIndex],
		})
	}
	for _, lm := range rows.Landmasses {
		doc.Landmasses = append(doc.Landmasses, LandmassDoc{ID: lm.LandmassID, World: lm.World, Borders: lm.Borders})
	}
	return MapDocToSnapshot(doc)
}
