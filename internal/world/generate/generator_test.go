package generate

import (
	"errors"
	"testing"

	"Wyrmgus/internal/shared/randx"
	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/modules/kit/errx"

	"github.com/stretchr/testify/require"
)

// tilePlacer 直接改瓦片，不做过渡重算。
type tilePlacer struct {
	sets    int
	removes int
}

func (p *tilePlacer) SetTileTerrain(l *entity.Layer, q entity.Pos, t *terrain.Type) error {
	l.At(q).SetTerrain(t)
	p.sets++
	return nil
}

func (p *tilePlacer) RemoveOverlay(l *entity.Layer, q entity.Pos) error {
	l.At(q).RemoveOverlay()
	p.removes++
	return nil
}

type fakeUnits []port.Unit

func (u fakeUnits) Units() []port.Unit { return u }

type fixture struct {
	grass *terrain.Type
	water *terrain.Type
	rock  *terrain.Type
	tree  *terrain.Type
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		grass: terrain.NewType("grass"),
		water: terrain.NewType("water"),
		rock:  terrain.NewType("rock"),
		tree:  terrain.NewType("tree"),
	}
	f.grass.Flags = terrain.FlagLand
	f.water.Flags = terrain.FlagWater
	f.rock.Flags = terrain.FlagLand | terrain.FlagImpassable | terrain.FlagRock
	f.tree.Overlay = true
	f.tree.Flags = terrain.FlagTree
	f.tree.AddBaseTerrain(f.grass)

	reg := terrain.NewRegistry()
	for _, v := range []*terrain.Type{f.grass, f.water, f.rock, f.tree} {
		require.NoError(t, reg.Add(v))
	}
	f.water.AddInnerBorderTerrain(f.grass)
	require.NoError(t, reg.Finalize())
	return f
}

func fillLayer(w, h int, tt *terrain.Type) *entity.Layer {
	l := entity.NewLayer(0, w, h)
	if tt != nil {
		l.ForEach(l.Bounds(), func(_ entity.Pos, tile *entity.Tile) { tile.SetTerrain(tt) })
	}
	return l
}

func count(l *entity.Layer, region entity.Rect, match func(*entity.Tile) bool) int {
	n := 0
	l.ForEach(region, func(_ entity.Pos, tile *entity.Tile) {
		if match(tile) {
			n++
		}
	})
	return n
}

func waterPolicy(f *fixture) Policy {
	return Policy{
		Terrain:         f.water,
		SeedCount:       4,
		MaxPercent:      25,
		ExpansionChance: 50,
		TargetTerrains:  []*terrain.Type{f.grass},
	}
}

func TestGenerateTerrain_任何种子下都不超预算(t *testing.T) {
	f := newFixture(t)
	for seed := int64(1); seed <= 12; seed++ {
		l := fillLayer(20, 20, f.grass)
		g := NewGenerator(randx.New(seed), &tilePlacer{}, nil)

		rep, err := g.GenerateTerrain(l, waterPolicy(f), l.Bounds(), false)
		require.NoError(t, err)
		require.Equal(t, 100, rep.Budget)
		require.LessOrEqual(t, rep.Tiles, rep.Budget, "seed=%d 超出预算", seed)
		require.GreaterOrEqual(t, rep.Tiles, 4, "seed=%d 至少应放下一个种子方块", seed)

		n := count(l, l.Bounds(), func(tile *entity.Tile) bool { return tile.Terrain == f.water })
		require.Equal(t, rep.Tiles, n, "seed=%d 报告与实际格数不一致", seed)
		require.Equal(t, rep.Placed, n)
	}
}

func TestGenerateTerrain_已有目标地形计入预算(t *testing.T) {
	f := newFixture(t)
	l := fillLayer(10, 10, f.grass)
	// 预算 25，已有 24 格水：连一个 4 格种子都放不下
	l.ForEach(entity.R(0, 0, 6, 4), func(_ entity.Pos, tile *entity.Tile) { tile.SetTerrain(f.water) })

	g := NewGenerator(randx.New(3), &tilePlacer{}, nil)
	rep, err := g.GenerateTerrain(l, waterPolicy(f), l.Bounds(), false)
	require.NoError(t, err)
	require.Equal(t, 24, rep.Tiles)
	require.Zero(t, rep.Placed)
}

func TestGenerateTerrain_相同种子结果相同(t *testing.T) {
	f := newFixture(t)
	run := func() []*terrain.Type {
		l := fillLayer(16, 16, f.grass)
		_, err := NewGenerator(randx.New(42), &tilePlacer{}, nil).GenerateTerrain(l, waterPolicy(f), l.Bounds(), false)
		require.NoError(t, err)
		var out []*terrain.Type
		l.ForEach(l.Bounds(), func(_ entity.Pos, tile *entity.Tile) { out = append(out, tile.Terrain) })
		return out
	}
	require.Equal(t, run(), run(), "同种子两次生成应逐格一致")
}

func TestGenerateTerrain_不写入子模板区域(t *testing.T) {
	f := newFixture(t)
	l := fillLayer(12, 12, f.grass)
	sub := entity.R(0, 0, 6, 12)
	l.Subtemplates = append(l.Subtemplates, entity.SubtemplateArea{Ident: "keep", Rect: sub})

	pol := waterPolicy(f)
	pol.MaxPercent = 0
	pol.ExpansionChance = 100
	g := NewGenerator(randx.New(9), &tilePlacer{}, nil)
	rep, err := g.GenerateTerrain(l, pol, l.Bounds(), false)
	require.NoError(t, err)
	require.Positive(t, rep.Placed)
	require.Zero(t, count(l, sub, func(tile *entity.Tile) bool { return tile.Terrain == f.water }), "子模板内不应出现生成地形")
}

func TestGenerateTerrain_保留海岸线时不把陆地变水(t *testing.T) {
	f := newFixture(t)
	l := fillLayer(10, 10, f.grass)
	g := NewGenerator(randx.New(5), &tilePlacer{}, nil)

	rep, err := g.GenerateTerrain(l, waterPolicy(f), l.Bounds(), true)
	require.NoError(t, err)
	require.Zero(t, rep.Placed)
}

func TestGenerateTerrain_单位所在格不放不可站立地形(t *testing.T) {
	f := newFixture(t)
	units := fakeUnits{{ID: 1, Pos: entity.P(5, 5), MovementMask: terrain.FlagWater}}
	pol := waterPolicy(f)
	pol.MaxPercent = 0
	pol.ExpansionChance = 100
	pol.SeedCount = 8

	for seed := int64(1); seed <= 5; seed++ {
		l := fillLayer(10, 10, f.grass)
		_, err := NewGenerator(randx.New(seed), &tilePlacer{}, units).GenerateTerrain(l, pol, l.Bounds(), false)
		require.NoError(t, err)
		require.Same(t, f.grass, l.At(entity.P(5, 5)).Terrain, "seed=%d 单位脚下被改成了水", seed)
	}
}

func TestGenerateTerrain_不可通行地形避开单位周围一格(t *testing.T) {
	f := newFixture(t)
	units := fakeUnits{{ID: 1, Pos: entity.P(4, 4), Width: 2, Height: 2}}
	pol := Policy{Terrain: f.rock, SeedCount: 10, ExpansionChance: 100, TargetTerrains: []*terrain.Type{f.grass}}

	l := fillLayer(12, 12, f.grass)
	_, err := NewGenerator(randx.New(7), &tilePlacer{}, units).GenerateTerrain(l, pol, l.Bounds(), false)
	require.NoError(t, err)
	near := entity.R(3, 3, 7, 7)
	require.Zero(t, count(l, near, func(tile *entity.Tile) bool { return tile.Terrain == f.rock }))
}

func TestGenerateTerrain_基础地形覆盖可移除的覆盖层(t *testing.T) {
	f := newFixture(t)
	l := fillLayer(8, 8, f.grass)
	l.ForEach(l.Bounds(), func(_ entity.Pos, tile *entity.Tile) { tile.SetTerrain(f.tree) })

	pol := waterPolicy(f)
	pol.MaxPercent = 0
	pol.TargetTerrains = []*terrain.Type{f.grass, f.tree}
	placer := &tilePlacer{}
	rep, err := NewGenerator(randx.New(11), placer, nil).GenerateTerrain(l, pol, l.Bounds(), false)
	require.NoError(t, err)
	require.Positive(t, rep.Placed)
	require.Equal(t, rep.Placed, placer.removes, "每个落水格都应先移除树")
	l.ForEach(l.Bounds(), func(p entity.Pos, tile *entity.Tile) {
		if tile.Terrain == f.water {
			require.Nil(t, tile.Overlay, "pos=%s", p)
		}
	})
}

func TestGenerateTerrain_缺少目标地形报参数错误(t *testing.T) {
	l := fillLayer(4, 4, nil)
	_, err := NewGenerator(randx.New(1), &tilePlacer{}, nil).GenerateTerrain(l, Policy{}, l.Bounds(), false)
	require.True(t, errors.Is(err, errx.ErrReqParamERR))
}

func TestGenerateMissingTerrain_空格全部被填上(t *testing.T) {
	f := newFixture(t)
	for seed := int64(1); seed <= 6; seed++ {
		l := fillLayer(10, 10, nil)
		l.ForEach(entity.R(0, 0, 5, 10), func(_ entity.Pos, tile *entity.Tile) {
			tile.SetTerrain(f.grass)
			tile.Feature = 3
		})
		l.At(entity.P(0, 0)).SetTerrain(f.tree)

		rep, err := NewGenerator(randx.New(seed), &tilePlacer{}, nil).GenerateMissingTerrain(l, l.Bounds())
		require.NoError(t, err)
		require.Zero(t, rep.RemainingVoidTiles)
		require.True(t, rep.VoteConverged)
		l.ForEach(l.Bounds(), func(p entity.Pos, tile *entity.Tile) {
			require.Same(t, f.grass, tile.Terrain, "seed=%d pos=%s", seed, p)
		})
		require.Equal(t, 50, rep.Grown+rep.Voted, "seed=%d 每个空格只应填一次", seed)
	}
}

func TestGenerateMissingTerrain_扩散带上地物编号投票不带(t *testing.T) {
	f := newFixture(t)
	for seed := int64(1); seed <= 6; seed++ {
		l := fillLayer(6, 6, nil)
		l.At(entity.P(2, 2)).SetTerrain(f.grass)
		l.At(entity.P(2, 2)).Feature = 7

		rep, err := NewGenerator(randx.New(seed), &tilePlacer{}, nil).GenerateMissingTerrain(l, l.Bounds())
		require.NoError(t, err)
		require.Zero(t, rep.RemainingVoidTiles)
		require.Equal(t, 1, rep.Seeds)
		featured := count(l, l.Bounds(), func(tile *entity.Tile) bool { return tile.Feature == 7 })
		require.Equal(t, 1+rep.Grown, featured, "seed=%d 只有扩散出来的格子继承地物", seed)
	}
}

func TestGenerateMissingTerrain_全空区域保持原样(t *testing.T) {
	l := fillLayer(4, 4, nil)
	rep, err := NewGenerator(randx.New(1), &tilePlacer{}, nil).GenerateMissingTerrain(l, l.Bounds())
	require.NoError(t, err)
	require.Equal(t, 16, rep.RemainingVoidTiles)
	require.Zero(t, rep.Seeds)
	require.True(t, rep.VoteConverged)
	require.Equal(t, 1, rep.VotePasses)
}

func TestPluralityFill_平票取先扫到的组合(t *testing.T) {
	f := newFixture(t)
	l := fillLayer(3, 3, nil)
	// 扫描顺序 NW W SW N S NE E SE：水先出现
	l.At(entity.P(0, 0)).SetTerrain(f.water)
	l.At(entity.P(2, 2)).SetTerrain(f.grass)

	got, ok := pluralityFill(l, entity.P(1, 1))
	require.True(t, ok)
	require.Same(t, f.water, got.terrain)

	l.At(entity.P(2, 0)).SetTerrain(f.grass)
	got, ok = pluralityFill(l, entity.P(1, 1))
	require.True(t, ok)
	require.Same(t, f.grass, got.terrain)
}

func TestGenerateNoiseTerrain_只填空格且可复现(t *testing.T) {
	f := newFixture(t)
	bands := []NoiseBand{{Max: 0.45, Terrain: f.water}, {Max: 1, Terrain: f.grass}}
	run := func() (*entity.Layer, int) {
		l := fillLayer(16, 16, nil)
		l.At(entity.P(3, 3)).SetTerrain(f.rock)
		n, err := NewGenerator(randx.New(77), &tilePlacer{}, nil).GenerateNoiseTerrain(l, l.Bounds(), bands, NoiseParams{})
		require.NoError(t, err)
		return l, n
	}
	a, n := run()
	require.Equal(t, 255, n)
	require.Same(t, f.rock, a.At(entity.P(3, 3)).Terrain)
	require.Zero(t, count(a, a.Bounds(), func(tile *entity.Tile) bool { return tile.Terrain == nil }))

	b, _ := run()
	a.ForEach(a.Bounds(), func(p entity.Pos, tile *entity.Tile) {
		require.Same(t, tile.Terrain, b.At(p).Terrain, "pos=%s", p)
	})
}

func TestGenerateNoiseTerrain_拒绝空档位和覆盖层(t *testing.T) {
	f := newFixture(t)
	l := fillLayer(4, 4, nil)
	g := NewGenerator(randx.New(1), &tilePlacer{}, nil)

	_, err := g.GenerateNoiseTerrain(l, l.Bounds(), nil, DefaultNoiseParams)
	require.True(t, errors.Is(err, errx.ErrReqParamERR))
	_, err = g.GenerateNoiseTerrain(l, l.Bounds(), []NoiseBand{{Max: 1, Terrain: f.tree}}, DefaultNoiseParams)
	require.True(t, errors.Is(err, errx.ErrReqParamERR))
}

func TestPickBand_超出最大档位落到最后一档(t *testing.T) {
	f := newFixture(t)
	bands := []NoiseBand{{Max: 0.3, Terrain: f.water}, {Max: 0.6, Terrain: f.grass}}
	require.Same(t, f.water, pickBand(bands, 0.1))
	require.Same(t, f.grass, pickBand(bands, 0.6))
	require.Same(t, f.grass, pickBand(bands, 0.99))
}
