// Package synth 计算单个瓦片的渲染数据：实心图块和有序的过渡图块列表。
package synth

import (
	"slices"

	"Wyrmgus/internal/shared/randx"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/errs"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/internal/world/transition"
)

type Engine struct {
	rng              *randx.Source
	decorationWeight int
}

func NewEngine(rng *randx.Source, decorationWeight int) *Engine {
	if decorationWeight <= 0 {
		decorationWeight = 8
	}
	return &Engine{rng: rng, decorationWeight: decorationWeight}
}

// FlagDelta 是计算过渡时顺带得出的 flag 改写，由调用方显式应用。
type FlagDelta struct {
	Clear terrain.Flag
	Set   terrain.Flag
}

func (d FlagDelta) Empty() bool {
	return d.Clear == 0 && d.Set == 0
}

func (d FlagDelta) Apply(f terrain.Flag) terrain.Flag {
	return f&^d.Clear | d.Set
}

type Result struct {
	Transitions []entity.Transition
	Flags       FlagDelta
}

// SelectSolidTile 为基础层或覆盖层挑一张实心图块并写回瓦片。
//
// 平铺背景按坐标取，不消耗随机数；装饰图块只在池非空且瓦片没有任何过渡时才掷骰。
func (e *Engine) SelectSolidTile(l *entity.Layer, p entity.Pos, overlay bool) (int, error) {
	tile, ok := l.Tile(p)
	if !ok {
		return 0, errs.TileInvariant(l, p, "position is off the map")
	}
	tt := tile.LayerTerrain(overlay)
	if tt == nil {
		return 0, errs.TileInvariant(l, p, "terrain is nil")
	}

	if tt.TiledBackground != nil {
		idx := tt.TiledBackground.Index(p.X, p.Y)
		tile.SetLayerSolidTile(overlay, idx)
		return idx, nil
	}

	var pool []int
	switch {
	case overlay && tile.OverlayDestroyed && len(tt.DestroyedTiles) > 0:
		pool = tt.DestroyedTiles
	case overlay && tile.OverlayDamaged && len(tt.DamagedTiles) > 0:
		pool = tt.DamagedTiles
	case len(tt.DecorationTiles) > 0 && !tile.HasTransitions() && e.rng.Intn(e.decorationWeight) == 0:
		pool = tt.DecorationTiles
	default:
		pool = tt.SolidTiles
	}
	idx, ok := randx.Pick(e.rng, pool)
	if !ok {
		return 0, errs.TileInvariant(l, p, "terrain "+tt.Ident+" has no solid tiles")
	}
	tile.SetLayerSolidTile(overlay, idx)
	return idx, nil
}

// ComputeTransitions 计算过渡列表和 flag 改写，不修改瓦片。
//
// 邻居分桶：
//   - 空地形 → blank
//   - 本地形的内接地形 → 邻居自己的桶，同时记入 blank
//   - 不能直接接壤但有过渡地形 → 过渡地形的桶，同时记入 blank
//   - 不能接壤且无过渡地形 → blank
//   - 外接地形 → 不处理，由对方瓦片画过渡
//
// 某个地形桶解析成功后，它的方向从 blank 里去掉，避免重复过渡。
func (e *Engine) ComputeTransitions(l *entity.Layer, p entity.Pos, overlay bool) (Result, error) {
	tile, ok := l.Tile(p)
	if !ok {
		return Result{}, errs.TileInvariant(l, p, "position is off the map")
	}
	tt := tile.AdjacencyTerrain(overlay)
	if tt == nil {
		return Result{}, nil
	}

	buckets := make(map[int]transition.DirSet)
	bucketTerrain := make(map[int]*terrain.Type)
	var blank transition.DirSet

	for _, n := range l.Neighbors(p) {
		other := n.Tile.AdjacencyTerrain(overlay)
		if other == tt {
			continue
		}
		if other == nil {
			blank = blank.With(n.Dir)
			continue
		}
		if tt.IsInnerBorderTerrain(other) {
			buckets[other.Index] = buckets[other.Index].With(n.Dir)
			bucketTerrain[other.Index] = other
			blank = blank.With(n.Dir)
			continue
		}
		if tt.IsBorderTerrain(other) {
			continue
		}
		// 过渡地形只有侵入本格时才由本格画，否则留给对面
		if via, ok := tt.Intermediate(other); ok && via != tt && tt.IsInnerBorderTerrain(via) {
			buckets[via.Index] = buckets[via.Index].With(n.Dir)
			bucketTerrain[via.Index] = via
		}
		blank = blank.With(n.Dir)
	}

	keys := make([]int, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var out []entity.Transition
	var resolved transition.DirSet
	for _, k := range keys {
		dirs := buckets[k]
		other := bucketTerrain[k]
		shape := transition.Classify(dirs, tt.AllowSingle)
		if shape == transition.None {
			continue
		}
		pool := tt.TransitionPool(other.Index, shape)
		if len(pool) == 0 {
			pool = other.AdjacentTransitionPool(tt.Index, shape)
		}
		if len(pool) == 0 {
			pool = other.AdjacentTransitionPool(terrain.Blank, shape)
		}
		img, ok := randx.Pick(e.rng, pool)
		if !ok {
			continue
		}
		out = append(out, entity.Transition{Terrain: other, Tile: img})
		resolved |= dirs
	}

	blank = blank.Minus(resolved)
	if !blank.Empty() {
		shape := transition.Classify(blank, tt.AllowSingle)
		if shape != transition.None {
			if img, ok := randx.Pick(e.rng, tt.TransitionPool(terrain.Blank, shape)); ok {
				out = append(out, entity.Transition{Terrain: nil, Tile: img})
			}
		}
	}

	sortInnerFirst(out)

	res := Result{Transitions: out}
	if overlay {
		res.Flags = coastDelta(tile, tt, len(out) > 0)
	}
	return res, nil
}

// ApplyTransitions 计算并写回过渡列表，同时应用 flag 改写。
func (e *Engine) ApplyTransitions(l *entity.Layer, p entity.Pos, overlay bool) (Result, error) {
	res, err := e.ComputeTransitions(l, p, overlay)
	if err != nil {
		return res, err
	}
	tile := l.At(p)
	tile.SetLayerTransitions(overlay, res.Transitions)
	tile.Flags = res.Flags.Apply(tile.Flags)
	return res, nil
}

// sortInnerFirst：某条过渡的地形在前一条地形的内接集合里时前移（先画在下面）。
// 这个关系不是全序，只做最多 len 轮冒泡，不能换成比较排序。
func sortInnerFirst(list []entity.Transition) {
	for pass := 0; pass < len(list); pass++ {
		swapped := false
		for i := 1; i < len(list); i++ {
			prev, cur := list[i-1].Terrain, list[i].Terrain
			if prev != nil && cur != nil && prev.IsInnerBorderTerrain(cur) {
				list[i-1], list[i] = list[i], list[i-1]
				swapped = true
			}
		}
		if !swapped {
			return
		}
	}
}

// coastDelta：水面覆盖层有过渡时 water → coast，没有过渡时还原；太空/太空悬崖同理。
func coastDelta(tile *entity.Tile, tt *terrain.Type, bordering bool) FlagDelta {
	var d FlagDelta
	if tt.Flags.Any(terrain.FlagWater) {
		if bordering {
			d.Clear |= terrain.FlagWater
			d.Set |= terrain.FlagCoast
		} else if tile.Flags.Any(terrain.FlagCoast) && !tt.Flags.Any(terrain.FlagCoast) {
			d.Clear |= terrain.FlagCoast
			d.Set |= terrain.FlagWater
		}
	}
	if tt.Flags.Any(terrain.FlagSpace) {
		if bordering {
			d.Clear |= terrain.FlagSpace
			d.Set |= terrain.FlagSpaceCliff
		} else if tile.Flags.Any(terrain.FlagSpaceCliff) && !tt.Flags.Any(terrain.FlagSpaceCliff) {
			d.Clear |= terrain.FlagSpaceCliff
			d.Set |= terrain.FlagSpace
		}
	}
	return d
}
