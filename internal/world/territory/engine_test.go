package territory

import (
	"testing"

	"Wyrmgus/internal/shared/randx"
	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/internal/world/transition"

	"github.com/stretchr/testify/require"
)

func grassAndRock() (*terrain.Type, *terrain.Type) {
	grass := terrain.NewType("grass")
	grass.Flags = terrain.FlagLand
	rock := terrain.NewType("rock")
	rock.Flags = terrain.FlagLand | terrain.FlagImpassable
	return grass, rock
}

func TestCalculate_隔着不可通行带也全覆盖(t *testing.T) {
	grass, rock := grassAndRock()
	for seed := int64(1); seed <= 5; seed++ {
		l := entity.NewLayer(0, 9, 5)
		l.ForEach(l.Bounds(), func(p entity.Pos, tile *entity.Tile) {
			if p.X == 4 {
				tile.SetTerrain(rock)
			} else {
				tile.SetTerrain(grass)
			}
		})
		sites := []Site{
			{Settlement: 1, Owner: 10, Pos: entity.P(1, 2)},
			{Settlement: 2, Owner: 20, Pos: entity.P(7, 2)},
		}
		rep := NewEngine(randx.New(seed)).Calculate(l, sites)

		require.Zero(t, rep.Unassigned, "seed=%d", seed)
		require.True(t, rep.FallbackConverged)
		l.ForEach(l.Bounds(), func(p entity.Pos, tile *entity.Tile) {
			require.NotZero(t, tile.Settlement, "seed=%d pos=%s 未分配", seed, p)
			require.NotEqual(t, entity.NoPlayer, tile.Owner)
		})
		require.Equal(t, entity.SettlementID(1), l.At(entity.P(0, 0)).Settlement)
		require.Equal(t, entity.SettlementID(2), l.At(entity.P(8, 4)).Settlement)
		require.Equal(t, entity.PlayerID(20), l.At(entity.P(8, 4)).Owner)
	}
}

func TestFillUnassigned_单行地图靠多数票兜底(t *testing.T) {
	grass, _ := grassAndRock()
	l := entity.NewLayer(0, 7, 1)
	l.ForEach(l.Bounds(), func(_ entity.Pos, tile *entity.Tile) { tile.SetTerrain(grass) })

	rep := NewEngine(randx.New(1)).Calculate(l, []Site{
		{Settlement: 1, Owner: 1, Pos: entity.P(0, 0)},
		{Settlement: 2, Owner: 2, Pos: entity.P(6, 0)},
	})
	require.Equal(t, 3, rep.FallbackPasses-1, "三轮有进展，第四轮确认收敛")

	var got []entity.SettlementID
	for x := 0; x < 7; x++ {
		got = append(got, l.At(entity.P(x, 0)).Settlement)
	}
	// 中间格平票，先扫到的西侧胜出
	require.Equal(t, []entity.SettlementID{1, 1, 1, 1, 2, 2, 2}, got)
}

func TestExpand_阻挡flag的种子只占不扩(t *testing.T) {
	grass, rock := grassAndRock()
	l := entity.NewLayer(0, 3, 3)
	l.ForEach(l.Bounds(), func(_ entity.Pos, tile *entity.Tile) { tile.SetTerrain(grass) })
	l.At(entity.P(1, 1)).SetTerrain(rock)
	l.At(entity.P(1, 1)).Settlement = 1

	blocked := NewEngine(randx.New(1)).Expand(l, []entity.Pos{entity.P(1, 1)}, Phases[0])
	require.Equal(t, []entity.Pos{entity.P(1, 1)}, blocked)
	require.Zero(t, l.At(entity.P(0, 0)).Settlement)

	blocked = NewEngine(randx.New(1)).Expand(l, []entity.Pos{entity.P(1, 1)}, Phases[4])
	require.Empty(t, blocked)
	l.ForEach(l.Bounds(), func(p entity.Pos, tile *entity.Tile) {
		require.Equal(t, entity.SettlementID(1), tile.Settlement, "pos=%s", p)
	})
}

func TestExpand_Same不一致时种子停止(t *testing.T) {
	grass, _ := grassAndRock()
	water := terrain.NewType("water")
	water.Flags = terrain.FlagWater
	l := entity.NewLayer(0, 2, 2)
	l.ForEach(l.Bounds(), func(_ entity.Pos, tile *entity.Tile) { tile.SetTerrain(water) })
	l.At(entity.P(0, 0)).SetTerrain(grass)
	l.At(entity.P(0, 0)).Settlement = 1

	blocked := NewEngine(randx.New(1)).Expand(l, []entity.Pos{entity.P(0, 0)}, Phases[1])
	require.Equal(t, []entity.Pos{entity.P(0, 0)}, blocked)
	require.Zero(t, l.At(entity.P(1, 1)).Settlement)

	blocked = NewEngine(randx.New(1)).Expand(l, blocked, Phases[3])
	require.Empty(t, blocked)
	require.Equal(t, entity.SettlementID(1), l.At(entity.P(1, 1)).Settlement)
}

func TestCalculateOwnershipBorders_按玩家不连续(t *testing.T) {
	l := entity.NewLayer(0, 3, 1)
	l.At(entity.P(0, 0)).Owner = 1
	l.At(entity.P(1, 0)).Owner = 1
	l.At(entity.P(2, 0)).Owner = 2
	CalculateOwnershipBorders(l, l.Bounds())

	require.Equal(t, transition.None, l.At(entity.P(0, 0)).OwnershipBorder)
	require.Equal(t, transition.EastShape, l.At(entity.P(1, 0)).OwnershipBorder)
	require.Equal(t, transition.WestShape, l.At(entity.P(2, 0)).OwnershipBorder)

	l.At(entity.P(1, 0)).Owner = 3
	CalculateOwnershipBorders(l, l.Bounds())
	require.Equal(t, transition.WestEast, l.At(entity.P(1, 0)).OwnershipBorder, "强制允许单格")
}

type fakeSettlement struct {
	id        entity.SettlementID
	site      port.SiteUnit
	buildings []int
	resources []int
	tiles     int
	cleared   int
}

func (s *fakeSettlement) ID() entity.SettlementID                            { return s.id }
func (s *fakeSettlement) SiteUnit() (port.SiteUnit, bool)                    { return s.site, true }
func (s *fakeSettlement) AddBuilding(u port.Unit)                            { s.buildings = append(s.buildings, u.ID) }
func (s *fakeSettlement) AddResourceUnit(u port.Unit)                        { s.resources = append(s.resources, u.ID) }
func (s *fakeSettlement) ClearBuildings()                                    { s.cleared++; s.buildings = nil }
func (s *fakeSettlement) ProcessTerritoryTile(*entity.Tile, entity.Pos, int) { s.tiles++ }

type fakeDirectory []port.SettlementGameData

func (d fakeDirectory) Settlements() []port.SettlementGameData { return d }

type fakeUnits []port.Unit

func (u fakeUnits) Units() []port.Unit { return u }

func TestProcessTerritoryTiles_聚合中立建筑与资源(t *testing.T) {
	l := entity.NewLayer(0, 4, 1)
	for x := 0; x < 4; x++ {
		if x < 2 {
			l.At(entity.P(x, 0)).Settlement = 1
		} else {
			l.At(entity.P(x, 0)).Settlement = 2
		}
	}
	a := &fakeSettlement{id: 1, site: port.SiteUnit{Pos: entity.P(0, 0), Owner: 5}}
	b := &fakeSettlement{id: 2, site: port.SiteUnit{Pos: entity.P(3, 0), Owner: 6}}
	b.buildings = []int{99}
	units := fakeUnits{
		{ID: 1, Pos: entity.P(1, 0), Building: true, Neutral: true, Owner: entity.NoPlayer},
		{ID: 2, Pos: entity.P(2, 0), Resource: true, Neutral: true, Owner: entity.NoPlayer},
		{ID: 3, Pos: entity.P(3, 0), Building: true, Owner: 6},
		{ID: 4, Layer: 1, Pos: entity.P(0, 0), Building: true, Neutral: true},
	}

	ProcessTerritoryTiles(l, fakeDirectory{a, b}, units)
	require.Equal(t, []int{1}, a.buildings)
	require.Empty(t, b.buildings)
	require.Equal(t, []int{2}, b.resources)
	require.Equal(t, 2, a.tiles)
	require.Equal(t, 2, b.tiles)
	require.Equal(t, 1, a.cleared)

	sites := SitesFromDirectory(fakeDirectory{a, b}, 0)
	require.Len(t, sites, 2)
	require.Equal(t, entity.PlayerID(6), sites[1].Owner)
}
