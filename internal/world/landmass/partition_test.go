package landmass

import (
	"testing"

	"Wyrmgus/internal/shared/randx"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"

	"github.com/stretchr/testify/require"
)

type world struct {
	m     *entity.MapState
	l     *entity.Layer
	land  *terrain.Type
	water *terrain.Type
	space *terrain.Type
}

// 按字符画地图：. 陆地  ~ 水  * 太空
func newWorld(t *testing.T, rows ...string) *world {
	t.Helper()
	w := &world{}
	w.land = terrain.NewType("land")
	w.land.Flags = terrain.FlagLand
	w.water = terrain.NewType("water")
	w.water.Flags = terrain.FlagWater
	w.space = terrain.NewType("space")
	w.space.Flags = terrain.FlagSpace
	reg := terrain.NewRegistry()
	for _, v := range []*terrain.Type{w.land, w.water, w.space} {
		require.NoError(t, reg.Add(v))
	}
	require.NoError(t, reg.Finalize())

	w.m = entity.NewMapState(1, reg, randx.New(1), entity.Settings{})
	w.l = w.m.AddLayer(len(rows[0]), len(rows), entity.LayerSurface, "earth")
	for y, row := range rows {
		for x, c := range row {
			tile := w.l.At(entity.P(x, y))
			switch c {
			case '.':
				tile.SetTerrain(w.land)
			case '~':
				tile.SetTerrain(w.water)
			case '*':
				tile.SetTerrain(w.space)
			}
		}
	}
	return w
}

func TestCalculateLayer_同分类连通即同地块(t *testing.T) {
	w := newWorld(t,
		"..~~..",
		"..~~..",
		"~~~~~~",
		"..~~.*",
	)
	created := CalculateLayer(w.m, w.l)
	// 左上陆地、右上陆地、水、左下陆地、右下陆地
	require.Equal(t, 5, created)

	id := func(x, y int) entity.LandmassID { return w.l.At(entity.P(x, y)).Landmass }
	require.Equal(t, id(0, 0), id(1, 1))
	require.Equal(t, id(2, 0), id(5, 2))
	require.NotEqual(t, id(0, 0), id(4, 0))
	require.Zero(t, id(5, 3), "太空瓦片不分配地块")

	// 相邻且分类不同的瓦片，两边地块互相记录
	w.l.ForEach(w.l.Bounds(), func(p entity.Pos, tile *entity.Tile) {
		if tile.Landmass == 0 {
			return
		}
		for _, n := range w.l.Neighbors(p) {
			if n.Tile.Landmass == 0 || n.Tile.Landmass == tile.Landmass {
				continue
			}
			a, _ := w.m.Landmass(tile.Landmass)
			b, _ := w.m.Landmass(n.Tile.Landmass)
			require.True(t, a.HasBorder(b.ID), "%s 缺少相邻 %d", p, b.ID)
			require.True(t, b.HasBorder(a.ID))
		}
	})
}

func TestCalculateTileLandmass_幂等与编辑器模式(t *testing.T) {
	w := newWorld(t, "..", "..")
	require.NotNil(t, CalculateTileLandmass(w.m, w.l, entity.P(0, 0)))
	require.Nil(t, CalculateTileLandmass(w.m, w.l, entity.P(1, 1)))
	require.Len(t, w.m.Landmasses, 1)

	e := newWorld(t, "..")
	e.m.Settings.EditorRunning = true
	require.Zero(t, CalculateLayer(e.m, e.l))
	require.Zero(t, e.l.At(entity.P(0, 0)).Landmass)
}

func TestCalculateTileLandmass_世界取自子模板(t *testing.T) {
	w := newWorld(t, "..~~")
	w.l.Subtemplates = []entity.SubtemplateArea{{Ident: "isle", Rect: entity.R(0, 0, 2, 1), World: "alfheim"}}
	CalculateLayer(w.m, w.l)

	first, _ := w.m.Landmass(w.l.At(entity.P(0, 0)).Landmass)
	second, _ := w.m.Landmass(w.l.At(entity.P(2, 0)).Landmass)
	require.Equal(t, "alfheim", first.World)
	require.Equal(t, "earth", second.World)
}

func TestCalculateLayer_与扫描起点无关(t *testing.T) {
	rows := []string{
		".~.~",
		"~.~.",
		"....",
	}
	a := newWorld(t, rows...)
	CalculateLayer(a.m, a.l)

	b := newWorld(t, rows...)
	CalculateTileLandmass(b.m, b.l, entity.P(3, 2))
	CalculateLayer(b.m, b.l)

	require.Equal(t, len(a.m.Landmasses), len(b.m.Landmasses))
	same := func(w *world, p, q entity.Pos) bool { return w.l.At(p).Landmass == w.l.At(q).Landmass }
	for _, p := range a.l.Bounds().Positions() {
		for _, q := range a.l.Bounds().Positions() {
			require.Equal(t, same(a, p, q), same(b, p, q), "%s %s", p, q)
		}
	}
}
