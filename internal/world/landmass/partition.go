// Package landmass 按水/陆/太空悬崖分类做连通分量标记，并记录不同分量之间的相邻关系。
package landmass

import (
	"Wyrmgus/internal/world/entity"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// class 是连通判定用的分类三元组。
type class struct {
	water      bool
	space      bool
	spaceCliff bool
}

func classOf(t *entity.Tile) class {
	return class{water: t.IsWater(), space: t.IsSpace(), spaceCliff: t.IsSpaceCliff()}
}

// CalculateTileLandmass 从 p 开始做一次完整的 BFS，给同分类的连通区域分配新地块。
//
// 已有地块、太空瓦片、编辑器模式下不做任何事。分类不同但已有地块的邻居只记双向相邻，不合并。
// 返回新建的地块，没有新建时返回 nil。
func CalculateTileLandmass(m *entity.MapState, l *entity.Layer, p entity.Pos) *entity.Landmass {
	if m.Settings.EditorRunning {
		return nil
	}
	start, ok := l.Tile(p)
	if !ok || start.Landmass != 0 || start.IsSpace() {
		return nil
	}

	lm := m.NewLandmass(l.WorldAt(p))
	seedClass := classOf(start)
	start.Landmass = lm.ID

	queue := linkedlistqueue.New()
	queue.Enqueue(p)
	for !queue.Empty() {
		v, _ := queue.Dequeue()
		cur := v.(entity.Pos)
		for _, n := range l.Neighbors(cur) {
			if n.Tile.IsSpace() {
				continue
			}
			if classOf(n.Tile) == seedClass {
				if n.Tile.Landmass == 0 {
					n.Tile.Landmass = lm.ID
					queue.Enqueue(n.Pos)
				}
				continue
			}
			if n.Tile.Landmass != 0 && n.Tile.Landmass != lm.ID {
				lm.AddBorder(n.Tile.Landmass)
				if other, ok := m.Landmass(n.Tile.Landmass); ok {
					other.AddBorder(lm.ID)
				}
			}
		}
	}
	return lm
}

// CalculateLayer 按光栅顺序对整层调用 CalculateTileLandmass，返回新建的地块数。
func CalculateLayer(m *entity.MapState, l *entity.Layer) int {
	created := 0
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			if CalculateTileLandmass(m, l, entity.P(x, y)) != nil {
				created++
			}
		}
	}
	return created
}
