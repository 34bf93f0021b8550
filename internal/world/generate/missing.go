package generate

import (
	"Wyrmgus/internal/shared/randx"
	"Wyrmgus/internal/shared/utils"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
)

// MissingExpansionChance 是补洞生长的固定扩张概率。
const MissingExpansionChance = 50

type MissingReport struct {
	Seeds              int
	Grown              int
	Voted              int
	VotePasses         int
	VoteConverged      bool
	RemainingVoidTiles int
}

type fill struct {
	terrain *terrain.Type
	overlay *terrain.Type
	feature entity.FeatureID
}

// GenerateMissingTerrain 消除子模板拼接后留下的空地形格。
//
// 先让与空格相邻的已有格作为种子，把自己的 (地形, 覆盖层, 地物) 三元组扩散到空格；
// 剩下的空格按 8 邻居 (地形, 覆盖层) 组合的多数票逐轮填充，直到没有进展。
func (g *Generator) GenerateMissingTerrain(l *entity.Layer, region entity.Rect) (MissingReport, error) {
	region = region.Intersect(l.Bounds())
	var rep MissingReport
	if region.Empty() {
		rep.VoteConverged = true
		return rep, nil
	}

	isVoid := func(q entity.Pos) bool {
		tile, ok := l.Tile(q)
		return ok && region.Contains(q) && tile.Terrain == nil
	}

	var seeds []entity.Pos
	l.ForEach(region, func(p entity.Pos, tile *entity.Tile) {
		if tile.Terrain == nil {
			return
		}
		for _, n := range l.Neighbors(p) {
			if isVoid(n.Pos) {
				seeds = append(seeds, p)
				return
			}
		}
	})
	rep.Seeds = len(seeds)

	for len(seeds) > 0 {
		var seed entity.Pos
		seed, seeds = randx.Take(g.rng, seeds)
		if g.rng.Intn(100) >= MissingExpansionChance {
			continue
		}
		src := l.At(seed)
		f := fill{terrain: src.Terrain, overlay: src.TopOverlayForSeen(), feature: src.Feature}

		var candidates [][3]entity.Pos
		for _, d := range diagonals {
			tr := trio(seed, d)
			onMap, anyVoid := true, false
			for _, q := range tr {
				if !region.Contains(q) {
					onMap = false
					break
				}
				if isVoid(q) {
					anyVoid = true
				}
			}
			if onMap && anyVoid {
				candidates = append(candidates, tr)
			}
		}
		chosen, ok := randx.Pick(g.rng, candidates)
		if !ok {
			continue
		}
		for _, q := range chosen {
			if !isVoid(q) {
				continue
			}
			if err := g.apply(l, q, f); err != nil {
				return rep, err
			}
			rep.Grown++
			seeds = append(seeds, q)
		}
		if len(candidates) > 1 {
			seeds = append(seeds, seed)
		}
	}

	type vote struct {
		pos entity.Pos
		f   fill
	}
	var voteErr error
	rep.VoteConverged, rep.VotePasses = utils.Stabilize(region.Area()+1, func(int) bool {
		var pending []vote
		l.ForEach(region, func(p entity.Pos, tile *entity.Tile) {
			if tile.Terrain != nil {
				return
			}
			if f, ok := pluralityFill(l, p); ok {
				pending = append(pending, vote{pos: p, f: f})
			}
		})
		for _, v := range pending {
			if err := g.apply(l, v.pos, v.f); err != nil {
				voteErr = err
				return false
			}
			rep.Voted++
		}
		return len(pending) > 0
	})
	if voteErr != nil {
		return rep, voteErr
	}
	l.ForEach(region, func(_ entity.Pos, tile *entity.Tile) {
		if tile.Terrain == nil {
			rep.RemainingVoidTiles++
		}
	})
	return rep, nil
}

func (g *Generator) apply(l *entity.Layer, q entity.Pos, f fill) error {
	if err := g.placer.SetTileTerrain(l, q, f.terrain); err != nil {
		return err
	}
	if f.overlay != nil {
		if err := g.placer.SetTileTerrain(l, q, f.overlay); err != nil {
			return err
		}
	}
	l.At(q).Feature = f.feature
	return nil
}

type pair struct {
	terrain *terrain.Type
	overlay *terrain.Type
}

// pluralityFill 统计 8 邻居的 (地形, 覆盖层) 组合，平票取先扫到的。
func pluralityFill(l *entity.Layer, p entity.Pos) (fill, bool) {
	var order []pair
	counts := make(map[pair]int)
	for _, n := range l.Neighbors(p) {
		if n.Tile.Terrain == nil {
			continue
		}
		k := pair{terrain: n.Tile.Terrain, overlay: n.Tile.TopOverlayForSeen()}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	if len(order) == 0 {
		return fill{}, false
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return fill{terrain: best.terrain, overlay: best.overlay}, true
}
