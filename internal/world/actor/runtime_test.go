package actor

import (
	"context"
	"testing"
	"time"

	"Wyrmgus/internal/shared/gameconfig/content"
	"Wyrmgus/internal/world/actors"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/infra/persistence/memory"
	"Wyrmgus/modules/kit/errx"
)

func testDeps(t *testing.T, repo *memory.MapRepository) actors.Deps {
	t.Helper()
	reg, err := content.DecodeTerrainTypes(map[string]any{
		"terrains": []any{
			map[string]any{"ident": "grass", "character": "g", "flags": []any{"land"}, "solid_tiles": []any{10}},
			map[string]any{
				"ident":                 "water",
				"character":             "w",
				"allow_single":          true,
				"flags":                 []any{"water"},
				"solid_tiles":           []any{20},
				"inner_border_terrains": []any{"grass"},
			},
		},
	})
	if err != nil {
		t.Fatalf("解码地形失败: %v", err)
	}
	return actors.Deps{
		Repo:       repo,
		Registry:   reg,
		Settings:   entity.Settings{DecorationWeight: 8, MaxPasses: 100},
		Seed:       1,
		FlushEvery: -1,
		Authored: []content.LayerDef{{
			Width:   4,
			Height:  4,
			Kind:    "surface",
			Terrain: []string{"gggg", "gwwg", "gwwg", "gggg"},
		}},
	}
}

func TestRuntime_新地图按手工层建图并可修改(t *testing.T) {
	repo := memory.NewMapRepository()
	r := NewRuntime(testDeps(t, repo), time.Second)
	ctx := context.Background()

	v, err := r.Tile(ctx, 1, 0, 1, 1)
	if err != nil {
		t.Fatalf("查询瓦片失败: %v", err)
	}
	if v.Terrain != "water" || v.Landmass == 0 {
		t.Fatalf("(1,1) 应为已划分地块的水, got=%+v", v)
	}

	err = r.SetTileTerrain(ctx, 1, 0, 0, 0, "lava")
	if CodeFromError(err) != errx.CodeReqParamError {
		t.Fatalf("未知地形应为参数错误, got=%v", err)
	}
	_, err = r.Tile(ctx, 1, 0, 9, 9)
	if CodeFromError(err) != errx.CodeNotFound {
		t.Fatalf("越界查询应为 NOT_FOUND, got=%v", err)
	}

	if err := r.SetTileTerrain(ctx, 1, 0, 0, 0, "water"); err != nil {
		t.Fatalf("放置地形失败: %v", err)
	}
	version, err := r.Flush(ctx, 1)
	if err != nil || version != 1 {
		t.Fatalf("刷盘应得到版本 1, got=%d err=%v", version, err)
	}
	r.Shutdown()
	if repo.Version(1) != 1 {
		t.Fatalf("关闭后仓库里应有版本 1, got=%d", repo.Version(1))
	}

	// 重启后从仓库还原
	r = NewRuntime(testDeps(t, repo), time.Second)
	defer r.Shutdown()
	v, err = r.Tile(ctx, 1, 0, 0, 0)
	if err != nil || v.Terrain != "water" {
		t.Fatalf("重启后 (0,0) 应为水, got=%+v err=%v", v, err)
	}
	version, err = r.Flush(ctx, 1)
	if err != nil || version != 1 {
		t.Fatalf("还原后没有改动，版本应保持 1, got=%d err=%v", version, err)
	}
}

func TestRuntime_不同地图互不影响(t *testing.T) {
	repo := memory.NewMapRepository()
	r := NewRuntime(testDeps(t, repo), time.Second)
	defer r.Shutdown()
	ctx := context.Background()

	if err := r.SetTileTerrain(ctx, 2, 0, 3, 3, "water"); err != nil {
		t.Fatalf("放置地形失败: %v", err)
	}
	v, err := r.Tile(ctx, 1, 0, 3, 3)
	if err != nil || v.Terrain != "grass" {
		t.Fatalf("地图 1 不应受地图 2 影响, got=%+v err=%v", v, err)
	}
	v, _ = r.Tile(ctx, 2, 0, 3, 3)
	if v.Terrain != "water" {
		t.Fatalf("地图 2 的 (3,3) 应为水, got=%+v", v)
	}
}
