package model

import (
	"reflect"
	"testing"

	"Wyrmgus/internal/world/entity"
)

func sampleSnapshot() *entity.MapPersistSnapshot {
	return &entity.MapPersistSnapshot{
		Version:   3,
		MapID:     42,
		Seed:      7,
		RandState: []byte{1, 2, 3},
		RandDraws: 19,
		Layers: []entity.LayerSnapshot{{
			Index:  0,
			Width:  2,
			Height: 1,
			Kind:   "surface",
			World:  "earth",
			Subtemplates: []entity.SubtemplateSnapshot{
				{Ident: "town", MinX: 0, MinY: 0, MaxX: 1, MaxY: 1, World: "earth"},
			},
			Tiles: []entity.TileSnapshot{
				{
					Terrain:     "grass",
					Overlay:     "forest",
					SolidTile:   11,
					Transitions: []entity.TransitionSnapshot{{Terrain: "water", Tile: 104}},
					Flags:       0x41,
					Owner:       2,
					Settlement:  1,
					Landmass:    1,
					Feature:     5,
				},
				{Terrain: "water", SolidTile: 20, Owner: -1, Landmass: 2, OverlayDestroyed: true},
			},
		}},
		Landmasses: []entity.LandmassSnapshot{
			{ID: 1, World: "earth", Borders: []int{2}},
			{ID: 2, World: "earth", Borders: []int{1}},
		},
	}
}

func TestMapDoc_文档和行两种落库形式都能还原快照(t *testing.T) {
	want := sampleSnapshot()

	got := MapDocToSnapshot(MapSnapshotToDoc(want))
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("文档还原不一致:\n got=%+v\nwant=%+v", got, want)
	}

	rows := MapSnapshotToRows(want)
	if rows.Map.MapID != 42 || len(rows.Layers) != 1 || len(rows.Tiles) != 2 || len(rows.Landmasses) != 2 {
		t.Fatalf("拆行结果不对: map=%+v layers=%d tiles=%d landmasses=%d", rows.Map, len(rows.Layers), len(rows.Tiles), len(rows.Landmasses))
	}
	if rows.Tiles[1].TileIndex != 1 || rows.Tiles[1].MapID != 42 || rows.Landmasses[1].LandmassID != 2 {
		t.Fatalf("子表没有带上地图 id 或行下标")
	}
	got = MapRowsToSnapshot(rows)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("行还原不一致:\n got=%+v\nwant=%+v", got, want)
	}
}

func TestMapDoc_空地图(t *testing.T) {
	s := &entity.MapPersistSnapshot{MapID: 1, Version: 1}
	got := MapDocToSnapshot(MapSnapshotToDoc(s))
	if got.MapID != 1 || len(got.Layers) != 0 || got.Landmasses != nil {
		t.Fatalf("空地图还原异常: %+v", got)
	}
}
