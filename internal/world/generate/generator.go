// Package generate 是带约束的随机区域生长（扩散受限聚集的变体），用于世界生成和补洞。
package generate

import (
	"Wyrmgus/internal/shared/randx"
	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/internal/world/transition"
	"Wyrmgus/modules/kit/errx"
)

// Placer 是落地形的入口，由地图编排层实现（负责局部重算）。
type Placer interface {
	SetTileTerrain(l *entity.Layer, p entity.Pos, t *terrain.Type) error
	RemoveOverlay(l *entity.Layer, p entity.Pos) error
}

type Generator struct {
	rng    *randx.Source
	placer Placer
	units  port.UnitManager
}

func NewGenerator(rng *randx.Source, placer Placer, units port.UnitManager) *Generator {
	return &Generator{rng: rng, placer: placer, units: units}
}

type Report struct {
	Budget int
	Tiles  int // 结束时区域内目标地形格数
	Seeds  int
	Placed int
}

var diagonals = [4]transition.Direction{
	transition.Northwest, transition.Northeast, transition.Southwest, transition.Southeast,
}

// square 返回 p 与它在 d 方向上的对角、纵向、横向同伴。
func square(p entity.Pos, d transition.Direction) [4]entity.Pos {
	dx, dy := d.Offset()
	return [4]entity.Pos{p, p.Add(dx, dy), p.Add(0, dy), p.Add(dx, 0)}
}

func trio(p entity.Pos, d transition.Direction) [3]entity.Pos {
	dx, dy := d.Offset()
	return [3]entity.Pos{p.Add(dx, dy), p.Add(0, dy), p.Add(dx, 0)}
}

// GenerateTerrain 先播种再生长，直到预算用完或没有种子能继续生长。
//
// 预算 = 区域面积 * MaxPercent / 100，区域里已有的目标地形也算在内，任何时候都不会超出。
func (g *Generator) GenerateTerrain(l *entity.Layer, pol Policy, region entity.Rect, preserveCoastline bool) (Report, error) {
	if pol.Terrain == nil {
		return Report{}, errx.ErrReqParamERR.WithData("reason", "generation policy has no terrain")
	}
	region = region.Intersect(l.Bounds())
	var rep Report
	if region.Empty() {
		return rep, nil
	}
	area := region.Area()
	rep.Budget = area
	if pol.MaxPercent > 0 {
		rep.Budget = area * pol.MaxPercent / 100
	}
	l.ForEach(region, func(_ entity.Pos, tile *entity.Tile) {
		if pol.layerTerrain(tile) == pol.Terrain {
			rep.Tiles++
		}
	})

	var seeds []entity.Pos
	if pol.UseExistingAsSeeds {
		l.ForEach(region, func(p entity.Pos, tile *entity.Tile) {
			if pol.CanUseTileAsSeed(tile) {
				seeds = append(seeds, p)
			}
		})
	}
	if pol.UseSubtemplateBordersAsSeeds {
		for _, sub := range l.Subtemplates {
			l.ForEach(sub.Rect.Intersect(region), func(p entity.Pos, tile *entity.Tile) {
				if sub.Rect.IsBorder(p) && pol.CanUseTileAsSeed(tile) {
					seeds = append(seeds, p)
				}
			})
		}
	}

	units := g.layerUnits(l)
	accept := func(q entity.Pos) bool {
		tile, ok := l.Tile(q)
		if !ok || !region.Contains(q) || l.IsInSubtemplate(q) {
			return false
		}
		if !pol.CanGenerateOnTile(tile) {
			return false
		}
		if preserveCoastline && tile.IsWater() != pol.Terrain.IsWater() {
			return false
		}
		return unitsAllow(units, q, pol.Terrain)
	}

	// 播种：随机取点，四格方块全部合格才一次性放下
	maxTries := area * 4
	for tries, placed := 0, 0; placed < pol.SeedCount && tries < maxTries && rep.Tiles+4 <= rep.Budget; tries++ {
		p := entity.P(region.Min.X+g.rng.Intn(region.Width()), region.Min.Y+g.rng.Intn(region.Height()))
		sq := square(p, diagonals[g.rng.Intn(len(diagonals))])
		ok := true
		for _, q := range sq {
			if !accept(q) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		for _, q := range sq {
			if err := g.place(l, q, pol); err != nil {
				return rep, err
			}
			rep.Tiles++
			rep.Placed++
			seeds = append(seeds, q)
		}
		placed++
	}
	rep.Seeds = len(seeds)

	// 生长：逐个取种子，掷骰失败的种子直接丢弃
	for len(seeds) > 0 && rep.Tiles < rep.Budget {
		var seed entity.Pos
		seed, seeds = randx.Take(g.rng, seeds)
		if g.rng.Intn(100) >= pol.ExpansionChance {
			continue
		}
		var candidates [][3]entity.Pos
		for _, d := range diagonals {
			tr := trio(seed, d)
			valid, progress := true, false
			for _, q := range tr {
				tile, ok := l.Tile(q)
				if !ok || !region.Contains(q) || l.IsInSubtemplate(q) || !pol.CanTileBePartOfExpansion(tile) {
					valid = false
					break
				}
				if accept(q) {
					progress = true
				}
			}
			if valid && progress {
				candidates = append(candidates, tr)
			}
		}
		chosen, ok := randx.Pick(g.rng, candidates)
		if !ok {
			continue
		}
		grew := false
		for _, q := range chosen {
			if rep.Tiles >= rep.Budget {
				break
			}
			if !accept(q) {
				continue
			}
			if err := g.place(l, q, pol); err != nil {
				return rep, err
			}
			rep.Tiles++
			rep.Placed++
			seeds = append(seeds, q)
			grew = true
		}
		if grew {
			seeds = append(seeds, seed)
		}
	}
	return rep, nil
}

func (g *Generator) place(l *entity.Layer, q entity.Pos, pol Policy) error {
	tile := l.At(q)
	if !pol.Terrain.Overlay && tile.Overlay != nil && pol.CanRemoveTileOverlay(tile) {
		if err := g.placer.RemoveOverlay(l, q); err != nil {
			return err
		}
	}
	return g.placer.SetTileTerrain(l, q, pol.Terrain)
}

func (g *Generator) layerUnits(l *entity.Layer) []port.Unit {
	if g.units == nil {
		return nil
	}
	var out []port.Unit
	for _, u := range g.units.Units() {
		if u.Layer == l.Index {
			out = append(out, u)
		}
	}
	return out
}

// unitsAllow：格上的单位不能站在目标地形上时拒绝；目标不可通行时周围一格内不能有单位。
func unitsAllow(units []port.Unit, q entity.Pos, target *terrain.Type) bool {
	for _, u := range units {
		fp := u.Footprint()
		if fp.Contains(q) && u.MovementMask.Any(target.Flags) {
			return false
		}
		if target.IsImpassable() {
			near := entity.Rect{Min: fp.Min.Add(-1, -1), Max: fp.Max.Add(1, 1)}
			if near.Contains(q) {
				return false
			}
		}
	}
	return true
}
