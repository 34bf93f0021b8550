// Package irregular 修正违反相邻规则的地形摆放（孤立单格、只在对角相连的棋盘格）。
package irregular

import (
	"Wyrmgus/internal/shared/utils"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/internal/world/transition"
)

const DefaultMaxPasses = 100

type Corrector struct {
	maxPasses int
}

func NewCorrector(maxPasses int) *Corrector {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	return &Corrector{maxPasses: maxPasses}
}

// Report 描述一次不动点循环的结果。到达上限时 Converged=false，不是错误。
type Report struct {
	Passes    int
	Converged bool
	Changed   []entity.Pos
}

type changeSet struct {
	seen map[entity.Pos]struct{}
	list []entity.Pos
}

func (c *changeSet) add(p entity.Pos) {
	if c.seen == nil {
		c.seen = make(map[entity.Pos]struct{})
	}
	if _, ok := c.seen[p]; ok {
		return
	}
	c.seen[p] = struct{}{}
	c.list = append(c.list, p)
}

// 每个对角象限看的 3 个相邻格 + 对侧对角格
var quadrants = [4][4]transition.Direction{
	{transition.West, transition.North, transition.Northwest, transition.Southeast},
	{transition.East, transition.North, transition.Northeast, transition.Southwest},
	{transition.West, transition.South, transition.Southwest, transition.Northeast},
	{transition.East, transition.South, transition.Southeast, transition.Northwest},
}

// AdjustIrregularities 反复扫描 region，把不允许单格的地形里的“不规则”瓦片修掉。
//
// 不可接受的邻居：不是自己，也不在自己的外接集合里（图外邻居不计）。
// 横向或纵向 >= 2 个不可接受，或任一象限 4 个全不可接受，即为不规则。
// 覆盖层直接移除；基础层换成出现次数最多的不同邻居地形，平票取先扫到的；
// 没有不同邻居就保持不变，这一格不会让循环继续。
func (c *Corrector) AdjustIrregularities(l *entity.Layer, overlay bool, region entity.Rect) Report {
	var changed changeSet
	converged, passes := utils.Stabilize(c.maxPasses, func(int) bool {
		dirty := false
		l.ForEach(region, func(p entity.Pos, tile *entity.Tile) {
			tt := tile.AdjacencyTerrain(overlay)
			if tt == nil || tt.AllowSingle {
				return
			}
			if !isIrregular(l, p, tt, overlay) {
				return
			}
			if overlay {
				tile.RemoveOverlay()
				changed.add(p)
				dirty = true
				return
			}
			best := mostFrequentNeighbor(l, p, tt)
			if best == nil {
				return
			}
			tile.SetTerrain(best)
			changed.add(p)
			dirty = true
		})
		return dirty
	})
	return Report{Passes: passes, Converged: converged, Changed: changed.list}
}

func isIrregular(l *entity.Layer, p entity.Pos, tt *terrain.Type, overlay bool) bool {
	var bad [8]bool
	for _, n := range l.Neighbors(p) {
		other := n.Tile.AdjacencyTerrain(overlay)
		bad[n.Dir] = other != tt && !tt.IsOuterBorderTerrain(other)
	}
	count := func(ds ...transition.Direction) int {
		n := 0
		for _, d := range ds {
			if bad[d] {
				n++
			}
		}
		return n
	}
	if count(transition.West, transition.East) >= 2 || count(transition.North, transition.South) >= 2 {
		return true
	}
	for _, q := range quadrants {
		if count(q[:]...) >= 4 {
			return true
		}
	}
	return false
}

func mostFrequentNeighbor(l *entity.Layer, p entity.Pos, tt *terrain.Type) *terrain.Type {
	var order []*terrain.Type
	counts := make(map[*terrain.Type]int)
	for _, n := range l.Neighbors(p) {
		other := n.Tile.Terrain
		if other == nil || other == tt {
			continue
		}
		if counts[other] == 0 {
			order = append(order, other)
		}
		counts[other]++
	}
	var best *terrain.Type
	for _, o := range order {
		if best == nil || counts[o] > counts[best] {
			best = o
		}
	}
	return best
}

// AdjustTransitions 处理过渡层面的不兼容：
//
//	(a) 邻居顶层是别的覆盖层，且本格基础地形既不是它的外接地形也不是它的可承载地形 → 换成邻居的基础地形
//	(b) 邻居基础地形不能与本格直接接壤且登记了过渡地形 → 换成过渡地形
//
// 每次替换后用新地形继续检查剩余邻居。
func (c *Corrector) AdjustTransitions(l *entity.Layer, region entity.Rect) Report {
	var changed changeSet
	converged, passes := utils.Stabilize(c.maxPasses, func(int) bool {
		dirty := false
		l.ForEach(region, func(p entity.Pos, tile *entity.Tile) {
			if tile.Terrain == nil {
				return
			}
			for _, n := range l.Neighbors(p) {
				tt := tile.Terrain
				other := n.Tile.Terrain
				if other == nil || other == tt {
					continue
				}
				top := n.Tile.AdjacencyTerrain(true)
				if top != nil && top != tile.AdjacencyTerrain(true) &&
					!top.IsOuterBorderTerrain(tt) && !top.IsBaseTerrain(tt) {
					tile.SetTerrain(other)
					changed.add(p)
					dirty = true
					tt = other
				}
				if other == tt || tt.IsBorderTerrain(other) {
					continue
				}
				if via, ok := tt.Intermediate(other); ok && via != tt {
					tile.SetTerrain(via)
					changed.add(p)
					dirty = true
				}
			}
		})
		return dirty
	})
	return Report{Passes: passes, Converged: converged, Changed: changed.list}
}
