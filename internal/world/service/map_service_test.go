package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"Wyrmgus/internal/shared/gameconfig/content"
	"Wyrmgus/internal/shared/randx"
	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/errs"
	"Wyrmgus/internal/world/generate"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/internal/world/transition"
	"Wyrmgus/modules/kit/errx"
)

type fixture struct {
	reg    *terrain.Registry
	grass  *terrain.Type
	water  *terrain.Type
	forest *terrain.Type
	rock   *terrain.Type
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{reg: terrain.NewRegistry()}
	f.grass = terrain.NewType("grass")
	f.grass.Character = "g"
	f.grass.Flags = terrain.FlagLand
	f.grass.SolidTiles = []int{10, 11}

	f.water = terrain.NewType("water")
	f.water.Character = "w"
	f.water.Flags = terrain.FlagWater
	f.water.AllowSingle = true
	f.water.SolidTiles = []int{20}

	f.forest = terrain.NewType("forest")
	f.forest.Character = "f"
	f.forest.Overlay = true
	f.forest.AllowSingle = true
	f.forest.Flags = terrain.FlagTree | terrain.FlagImpassable
	f.forest.DestroyedFlags = terrain.FlagStumps
	f.forest.SolidTiles = []int{30}
	f.forest.DestroyedTiles = []int{31}

	// rock 和谁都不接壤，也不允许单格
	f.rock = terrain.NewType("rock")
	f.rock.Character = "r"
	f.rock.Flags = terrain.FlagLand
	f.rock.SolidTiles = []int{40}

	for _, v := range []*terrain.Type{f.grass, f.water, f.forest, f.rock} {
		if err := f.reg.Add(v); err != nil {
			t.Fatalf("注册地形失败: %v", err)
		}
	}
	f.water.AddInnerBorderTerrain(f.grass)
	f.forest.AddBaseTerrain(f.grass)
	if err := f.reg.Finalize(); err != nil {
		t.Fatalf("Finalize 失败: %v", err)
	}
	for _, s := range transition.Shapes() {
		f.water.AddTransitionTiles(f.grass.Index, s, 100+int(s))
		f.forest.AddTransitionTiles(terrain.Blank, s, 300+int(s))
	}
	return f
}

func (f *fixture) service(seed int64, deps Deps) *MapService {
	state := entity.NewMapState(7, f.reg, randx.New(seed), entity.Settings{DecorationWeight: 8, MaxPasses: 100})
	return NewMapService(state, deps)
}

type recordObserver struct {
	tiles       []entity.Pos
	territories int
}

func (o *recordObserver) TileChanged(layer int, pos entity.Pos)          { o.tiles = append(o.tiles, pos) }
func (o *recordObserver) TerritoryChanged(layer int, region entity.Rect) { o.territories++ }

type fakeSettlement struct {
	id        entity.SettlementID
	site      port.SiteUnit
	tiles     int
	buildings []port.Unit
}

func (s *fakeSettlement) ID() entity.SettlementID         { return s.id }
func (s *fakeSettlement) SiteUnit() (port.SiteUnit, bool) { return s.site, true }
func (s *fakeSettlement) AddBuilding(u port.Unit)         { s.buildings = append(s.buildings, u) }
func (s *fakeSettlement) AddResourceUnit(u port.Unit)     {}
func (s *fakeSettlement) ClearBuildings()                 { s.buildings = nil; s.tiles = 0 }
func (s *fakeSettlement) ProcessTerritoryTile(tile *entity.Tile, pos entity.Pos, layer int) {
	s.tiles++
}

type fakeDirectory []*fakeSettlement

func (d fakeDirectory) Settlements() []port.SettlementGameData {
	out := make([]port.SettlementGameData, len(d))
	for i, s := range d {
		out[i] = s
	}
	return out
}

func authored(rows ...string) content.LayerDef {
	return content.LayerDef{Width: len(rows[0]), Height: len(rows), Terrain: rows}
}

func transitionIdents(v TileView) []string {
	var out []string
	for _, tr := range v.Transitions {
		out = append(out, tr.Terrain)
	}
	for _, tr := range v.OverlayTransitions {
		out = append(out, "overlay:"+tr.Terrain)
	}
	return out
}

func TestSetTileTerrain_只重算3x3邻域(t *testing.T) {
	f := newFixture(t)
	obs := &recordObserver{}
	s := f.service(1, Deps{Observer: obs})
	ctx := context.Background()

	rows := []string{"ggggggg", "ggggggg", "ggggggg", "ggggggg", "ggggggg", "ggggggg", "ggggggg"}
	if _, err := s.ApplyAuthoredLayer(ctx, authored(rows...)); err != nil {
		t.Fatalf("应用手工地图失败: %v", err)
	}
	if _, err := s.Preprocess(ctx); err != nil {
		t.Fatalf("预处理失败: %v", err)
	}
	before := make(map[entity.Pos]TileView)
	s.State().Layers[0].ForEach(entity.R(0, 0, 7, 7), func(p entity.Pos, _ *entity.Tile) {
		before[p], _ = s.Tile(0, p)
	})
	obs.tiles = nil

	center := entity.P(3, 3)
	if err := s.SetTileTerrain(ctx, 0, center, f.water); err != nil {
		t.Fatalf("放置地形失败: %v", err)
	}
	near := entity.R(2, 2, 5, 5)
	for p, old := range before {
		if near.Contains(p) {
			continue
		}
		now, _ := s.Tile(0, p)
		if !reflect.DeepEqual(old, now) {
			t.Fatalf("邻域外瓦片 %s 被改动: %+v -> %+v", p, old, now)
		}
	}
	v, _ := s.Tile(0, center)
	if v.Terrain != "water" || v.SolidTile != 20 {
		t.Fatalf("中心格应为水且实心图块 20, got=%+v", v)
	}
	if got := transitionIdents(v); len(got) != 1 || got[0] != "grass" {
		t.Fatalf("中心格应只有一条对草地的过渡, got=%v", got)
	}
	if len(obs.tiles) != 9 {
		t.Fatalf("应通知 9 个格子, got=%d", len(obs.tiles))
	}
	if !s.State().Dirty() {
		t.Fatalf("修改后地图应为脏")
	}
}

func TestSetTileTerrain_孤立的不规则地形被修正(t *testing.T) {
	f := newFixture(t)
	s := f.service(1, Deps{})
	ctx := context.Background()
	if _, err := s.ApplyAuthoredLayer(ctx, authored("ggg", "ggg", "ggg")); err != nil {
		t.Fatalf("应用手工地图失败: %v", err)
	}
	if _, err := s.Preprocess(ctx); err != nil {
		t.Fatalf("预处理失败: %v", err)
	}

	center := entity.P(1, 1)
	if err := s.SetTileTerrain(ctx, 0, center, f.rock); err != nil {
		t.Fatalf("放置地形失败: %v", err)
	}
	v, _ := s.Tile(0, center)
	if v.Terrain != "grass" || v.SolidTile == 0 || len(v.Transitions) != 0 {
		t.Fatalf("四周全是草地的孤立岩石应被改回草地, got=%+v", v)
	}

	// 允许单格的水不受影响
	if err := s.SetTileTerrain(ctx, 0, center, f.water); err != nil {
		t.Fatalf("放置地形失败: %v", err)
	}
	if v, _ := s.Tile(0, center); v.Terrain != "water" {
		t.Fatalf("允许单格的地形不应被修正, got=%+v", v)
	}
}

func TestSetTileTerrain_参数错误(t *testing.T) {
	f := newFixture(t)
	s := f.service(1, Deps{})
	ctx := context.Background()
	if _, err := s.AddLayer(3, 3, entity.LayerSurface, ""); err != nil {
		t.Fatalf("加层失败: %v", err)
	}

	err := s.SetTileTerrain(ctx, 4, entity.P(0, 0), f.grass)
	if !errors.Is(err, errx.ErrReqParamERR) {
		t.Fatalf("不存在的层应报参数错误, got=%v", err)
	}
	err = s.SetTileTerrain(ctx, 0, entity.P(5, 5), f.grass)
	if !errors.Is(err, errx.ErrReqParamERR) {
		t.Fatalf("越界坐标应报参数错误, got=%v", err)
	}
	// 森林只能长在草地上，空地不行
	err = s.SetTileTerrain(ctx, 0, entity.P(1, 1), f.forest)
	if !errors.Is(err, errx.ErrReqParamERR) {
		t.Fatalf("覆盖层基础地形不符应报参数错误, got=%v", err)
	}
	var we *errs.Error
	if !errors.As(err, &we) || we.Op != "service.SetTileTerrain" || we.Kind != errs.KindBusiness {
		t.Fatalf("错误应带操作名和业务分类, got=%+v", we)
	}
}

func TestDestroyOverlay_换成后继flag且邻居不再接壤(t *testing.T) {
	f := newFixture(t)
	s := f.service(2, Deps{})
	ctx := context.Background()
	def := authored("ggg", "ggg", "ggg")
	def.Overlay = []string{"...", ".f.", "..."}
	if _, err := s.ApplyAuthoredLayer(ctx, def); err != nil {
		t.Fatalf("应用手工地图失败: %v", err)
	}
	if _, err := s.Preprocess(ctx); err != nil {
		t.Fatalf("预处理失败: %v", err)
	}
	center := entity.P(1, 1)
	v, _ := s.Tile(0, center)
	if v.TopTerrain != "forest" || !v.Flags.Has(terrain.FlagTree) {
		t.Fatalf("中心应是森林, got=%+v", v)
	}
	if len(v.OverlayTransitions) != 1 {
		t.Fatalf("孤立森林应有一条对空地的过渡, got=%v", v.OverlayTransitions)
	}

	ok, err := s.DestroyOverlay(ctx, 0, center)
	if err != nil || !ok {
		t.Fatalf("摧毁覆盖层失败: ok=%v err=%v", ok, err)
	}
	v, _ = s.Tile(0, center)
	if v.TopTerrain != "grass" || v.Flags.Any(terrain.FlagTree) || !v.Flags.Has(terrain.FlagStumps) {
		t.Fatalf("摧毁后应露出草地并带树桩 flag, got=%+v", v)
	}
	if len(v.OverlayTransitions) != 0 || v.OverlaySolidTile != 31 {
		t.Fatalf("摧毁后覆盖层过渡应清空且用摧毁图块, got=%+v", v)
	}
	if ok, _ := s.DestroyOverlay(ctx, 0, center); ok {
		t.Fatalf("重复摧毁应返回 false")
	}
	if ok, _ := s.DamageOverlay(ctx, 0, center); ok {
		t.Fatalf("已摧毁的覆盖层不能再受损")
	}
}

func TestApplyAuthoredLayer_未知字符是内容错误(t *testing.T) {
	f := newFixture(t)
	s := f.service(1, Deps{})
	_, err := s.ApplyAuthoredLayer(context.Background(), authored("gx", "gg"))
	if !errors.Is(err, errx.ErrContentInvalid) {
		t.Fatalf("期望内容错误, got=%v", err)
	}
	if errs.KindOf(err) != errs.KindContent {
		t.Fatalf("期望 content 分类, got=%s", errs.KindOf(err))
	}
	if len(s.State().Layers) != 0 {
		t.Fatalf("失败时不应留下半成品层")
	}

	// 覆盖层字符放进基础层也不行
	_, err = s.ApplyAuthoredLayer(context.Background(), authored("gf", "gg"))
	if !errors.Is(err, errx.ErrContentInvalid) {
		t.Fatalf("覆盖层字符出现在基础层应报内容错误, got=%v", err)
	}
}

func TestPreprocess_地块和领地(t *testing.T) {
	f := newFixture(t)
	west := &fakeSettlement{id: 1, site: port.SiteUnit{Pos: entity.P(0, 1), Owner: 1}}
	east := &fakeSettlement{id: 2, site: port.SiteUnit{Pos: entity.P(7, 1), Owner: 2}}
	obs := &recordObserver{}
	s := f.service(3, Deps{Settlements: fakeDirectory{west, east}, Observer: obs})
	ctx := context.Background()

	if _, err := s.ApplyAuthoredLayer(ctx, authored("gggwwggg", "gggwwggg", "gggwwggg", "gggwwggg")); err != nil {
		t.Fatalf("应用手工地图失败: %v", err)
	}
	rep, err := s.Preprocess(ctx)
	if err != nil {
		t.Fatalf("预处理失败: %v", err)
	}
	if len(rep.Layers) != 1 || rep.Layers[0].Landmasses != 3 {
		t.Fatalf("期望 3 个地块（西陆、水、东陆）, got=%+v", rep.Layers)
	}
	if n := len(s.State().Landmasses); n != 3 {
		t.Fatalf("地块列表长度错误: %d", n)
	}
	water, _ := s.State().Landmass(2)
	if got := water.Borders(); len(got) != 2 {
		t.Fatalf("水域应与两块陆地相邻, got=%v", got)
	}
	if rep.Layers[0].Territory.Unassigned != 0 {
		t.Fatalf("所有格子都应分到定居点, 未分配=%d", rep.Layers[0].Territory.Unassigned)
	}
	if west.tiles+east.tiles != 32 {
		t.Fatalf("每个领地格都应回调一次, got=%d", west.tiles+east.tiles)
	}
	if v, _ := s.Tile(0, entity.P(0, 0)); v.Owner != 1 || v.Settlement != 1 {
		t.Fatalf("西北角应属于西边定居点, got=%+v", v)
	}
	if v, _ := s.Tile(0, entity.P(7, 3)); v.Owner != 2 || v.Settlement != 2 {
		t.Fatalf("东南角应属于东边定居点, got=%+v", v)
	}
	if obs.territories != 1 {
		t.Fatalf("领地变化应通知一次, got=%d", obs.territories)
	}

	// 再跑一次结果不变（地块列表整体重建）
	if _, err := s.Preprocess(ctx); err != nil {
		t.Fatalf("二次预处理失败: %v", err)
	}
	if n := len(s.State().Landmasses); n != 3 {
		t.Fatalf("二次预处理后地块数应不变, got=%d", n)
	}
}

func buildMap(t *testing.T, f *fixture, seed int64) *MapService {
	t.Helper()
	s := f.service(seed, Deps{})
	ctx := context.Background()
	def := authored("gggggggg", "gggwwggg", "ggwwwwgg", "gggwwggg", "gggggggg", "gggggggg")
	def.Overlay = []string{"f.......", "........", "........", "........", ".....f..", "........"}
	if _, err := s.ApplyAuthoredLayer(ctx, def); err != nil {
		t.Fatalf("应用手工地图失败: %v", err)
	}
	if _, err := s.Preprocess(ctx); err != nil {
		t.Fatalf("预处理失败: %v", err)
	}
	pol := generate.Policy{Terrain: f.water, SeedCount: 2, MaxPercent: 40, ExpansionChance: 60, TargetTerrains: []*terrain.Type{f.grass}}
	if _, err := s.GenerateTerrain(ctx, 0, pol, entity.R(0, 0, 8, 6), false); err != nil {
		t.Fatalf("生成地形失败: %v", err)
	}
	return s
}

func TestMapService_同种子同操作快照一致(t *testing.T) {
	f := newFixture(t)
	a := buildMap(t, f, 11).Snapshot(1)
	b := buildMap(t, f, 11).Snapshot(1)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("同种子同操作序列应得到相同快照")
	}
}

func TestRestore_过渡重算后与原图一致(t *testing.T) {
	f := newFixture(t)
	src := buildMap(t, f, 5)
	snap := src.Snapshot(3)

	dst := f.service(99, Deps{})
	if err := dst.Restore(context.Background(), snap); err != nil {
		t.Fatalf("还原失败: %v", err)
	}
	if dst.State().Rand.Seed() != 5 {
		t.Fatalf("随机源应按快照还原, got seed=%d", dst.State().Rand.Seed())
	}
	if len(dst.State().Landmasses) != len(src.State().Landmasses) {
		t.Fatalf("地块数不一致")
	}
	src.State().Layers[0].ForEach(entity.R(0, 0, 8, 6), func(p entity.Pos, _ *entity.Tile) {
		want, _ := src.Tile(0, p)
		got, _ := dst.Tile(0, p)
		if !reflect.DeepEqual(transitionIdents(want), transitionIdents(got)) {
			t.Fatalf("%s 过渡不一致: want=%v got=%v", p, transitionIdents(want), transitionIdents(got))
		}
		if want.SolidTile != got.SolidTile || want.Landmass != got.Landmass || want.Flags != got.Flags {
			t.Fatalf("%s 瓦片数据不一致: want=%+v got=%+v", p, want, got)
		}
	})
	if dst.State().Dirty() {
		t.Fatalf("刚还原的地图不应为脏")
	}
}

func TestRestore_快照里有未知地形(t *testing.T) {
	f := newFixture(t)
	snap := buildMap(t, f, 5).Snapshot(1)
	snap.Layers[0].Tiles[0].Terrain = "lava"

	err := f.service(1, Deps{}).Restore(context.Background(), snap)
	if !errors.Is(err, errx.ErrContentInvalid) {
		t.Fatalf("未知地形应报内容错误, got=%v", err)
	}
}

func TestGenerateMissingTerrain_经由编排层落子(t *testing.T) {
	f := newFixture(t)
	obs := &recordObserver{}
	s := f.service(4, Deps{Observer: obs})
	ctx := context.Background()
	if _, err := s.ApplyAuthoredLayer(ctx, authored("gg..", "gg..", "ww..", "ww..")); err != nil {
		t.Fatalf("应用手工地图失败: %v", err)
	}
	rep, err := s.GenerateMissingTerrain(ctx, 0, entity.R(0, 0, 4, 4))
	if err != nil {
		t.Fatalf("补洞失败: %v", err)
	}
	if rep.RemainingVoidTiles != 0 {
		t.Fatalf("不应留下空格, got=%d", rep.RemainingVoidTiles)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			v, _ := s.Tile(0, entity.P(x, y))
			if v.Terrain == "" {
				t.Fatalf("%d,%d 应有地形, got=%+v", x, y, v)
			}
			// 手工格的实心图块留给 Preprocess，补上的格在落子时就选好
			if x >= 2 && v.SolidTile == 0 {
				t.Fatalf("%d,%d 补上的格应已选实心图块, got=%+v", x, y, v)
			}
		}
	}
	if len(obs.tiles) == 0 {
		t.Fatalf("补洞落子应通知观察者")
	}
}

func TestMarkSeen_和Reset(t *testing.T) {
	f := newFixture(t)
	s := buildMap(t, f, 8)
	n, err := s.MarkSeen(0, entity.R(0, 0, 2, 2), 3)
	if err != nil || n != 4 {
		t.Fatalf("应记录 4 格视野, n=%d err=%v", n, err)
	}
	tile := s.State().Layers[0].At(entity.P(0, 0))
	if seen := tile.Seen[3]; seen == nil || seen.Overlay != f.forest {
		t.Fatalf("视野里应看到森林, got=%+v", seen)
	}

	s.Reset(context.Background())
	if len(s.State().Layers) != 0 || len(s.State().Landmasses) != 0 {
		t.Fatalf("重置后应没有层和地块")
	}
	if _, ok := s.Tile(0, entity.P(0, 0)); ok {
		t.Fatalf("重置后查询应返回 false")
	}
}
