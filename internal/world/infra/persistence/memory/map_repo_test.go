package memory

import (
	"context"
	"errors"
	"testing"

	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
)

func snap(version uint64, terrain string) *entity.MapPersistSnapshot {
	return &entity.MapPersistSnapshot{
		Version: version,
		MapID:   9,
		Layers: []entity.LayerSnapshot{{
			Width:  1,
			Height: 1,
			Kind:   "surface",
			Tiles:  []entity.TileSnapshot{{Terrain: terrain}},
		}},
	}
}

func TestMapRepository_找不到返回ErrMapNotFound(t *testing.T) {
	r := NewMapRepository()
	_, err := r.LoadMap(context.Background(), 9)
	if !errors.Is(err, port.ErrMapNotFound) {
		t.Fatalf("期望 ErrMapNotFound，实际 %v", err)
	}
}

func TestMapRepository_旧版本不覆盖新版本(t *testing.T) {
	r := NewMapRepository()
	ctx := context.Background()
	if err := r.Save(ctx, snap(2, "grass")); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	if err := r.Save(ctx, snap(1, "water")); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	got, err := r.LoadMap(ctx, 9)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if got.Version != 2 || got.Layers[0].Tiles[0].Terrain != "grass" {
		t.Fatalf("旧快照覆盖了新快照: v=%d terrain=%s", got.Version, got.Layers[0].Tiles[0].Terrain)
	}
	if r.Version(9) != 2 {
		t.Fatalf("Version 应为 2，实际 %d", r.Version(9))
	}
}

func TestMapRepository_读出的是副本(t *testing.T) {
	r := NewMapRepository()
	ctx := context.Background()
	s := snap(1, "grass")
	_ = r.Save(ctx, s)
	s.Layers[0].Tiles[0].Terrain = "water"

	got, _ := r.LoadMap(ctx, 9)
	got.Layers[0].Tiles[0].Terrain = "rock"

	again, _ := r.LoadMap(ctx, 9)
	if again.Layers[0].Tiles[0].Terrain != "grass" {
		t.Fatalf("仓库内容被外部修改: %s", again.Layers[0].Tiles[0].Terrain)
	}
}
