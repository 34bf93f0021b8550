// Package territory 用多阶段洪泛把瓦片分给最近的定居点。
package territory

import (
	"Wyrmgus/internal/shared/randx"
	"Wyrmgus/internal/shared/utils"
	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/internal/world/transition"
)

// Phase：带 Block flag 的瓦片可以被占领但不能作为种子继续扩张；
// Same flag 不一致时种子直接停止扩张。
type Phase struct {
	Block terrain.Flag
	Same  terrain.Flag
}

var Phases = [5]Phase{
	{Block: terrain.FlagImpassable | terrain.FlagCoast | terrain.FlagSpace | terrain.FlagSpaceCliff, Same: terrain.FlagWater | terrain.FlagUnderground},
	{Block: terrain.FlagCoast | terrain.FlagSpace, Same: terrain.FlagWater | terrain.FlagUnderground},
	{Block: terrain.FlagSpace, Same: terrain.FlagUnderground},
	{Block: terrain.FlagSpace},
	{},
}

// Site 是一个定居点在本层的据点。
type Site struct {
	Settlement entity.SettlementID
	Owner      entity.PlayerID
	Pos        entity.Pos
	Width      int
	Height     int
}

func (s Site) footprint() entity.Rect {
	return entity.Rect{Min: s.Pos, Max: s.Pos.Add(max(1, s.Width), max(1, s.Height))}
}

type Report struct {
	Seeds             int
	Blocked           [len(Phases)]int
	FallbackPasses    int
	FallbackConverged bool
	Unassigned        int
}

type Engine struct {
	rng *randx.Source
}

func NewEngine(rng *randx.Source) *Engine {
	return &Engine{rng: rng}
}

var diagonals = [4]transition.Direction{
	transition.Northwest, transition.Northeast, transition.Southwest, transition.Southeast,
}

// Calculate 重算整层领地：清空 → 据点占位 → 五个阶段扩张 → 多数票兜底 → 归属玩家 → 边界。
func (e *Engine) Calculate(l *entity.Layer, sites []Site) Report {
	var rep Report
	l.ForEach(l.Bounds(), func(_ entity.Pos, tile *entity.Tile) {
		tile.Settlement = 0
		tile.Owner = entity.NoPlayer
	})
	if len(sites) == 0 {
		CalculateOwnershipBorders(l, l.Bounds())
		return rep
	}

	owners := make(map[entity.SettlementID]entity.PlayerID, len(sites))
	for _, s := range sites {
		owners[s.Settlement] = s.Owner
		l.ForEach(s.footprint(), func(_ entity.Pos, tile *entity.Tile) {
			tile.Settlement = s.Settlement
		})
	}

	seeds := ContactSeeds(l)
	rep.Seeds = len(seeds)
	for i, ph := range Phases {
		seeds = e.Expand(l, seeds, ph)
		rep.Blocked[i] = len(seeds)
	}

	rep.FallbackConverged, rep.FallbackPasses = FillUnassigned(l, l.Bounds())

	l.ForEach(l.Bounds(), func(_ entity.Pos, tile *entity.Tile) {
		if tile.Settlement == 0 {
			rep.Unassigned++
			return
		}
		if owner, ok := owners[tile.Settlement]; ok {
			tile.Owner = owner
		}
	})
	CalculateOwnershipBorders(l, l.Bounds())
	return rep
}

// ContactSeeds 返回已有归属且与不同归属（含未分配）瓦片相邻的瓦片。
func ContactSeeds(l *entity.Layer) []entity.Pos {
	var out []entity.Pos
	l.ForEach(l.Bounds(), func(p entity.Pos, tile *entity.Tile) {
		if tile.Settlement == 0 {
			return
		}
		for _, n := range l.Neighbors(p) {
			if n.Tile.Settlement != tile.Settlement {
				out = append(out, p)
				return
			}
		}
	})
	return out
}

// Expand 跑一个阶段，返回被阻挡的种子（作为下一阶段的种子）。
//
// 每次随机取一个种子，看 4 个对角方向：对角格和两个肘部格必须都未分配或已属本定居点，
// 且不能三个都已属本定居点；三个格的 Same flag 取值必须与种子一致，否则种子记为阻挡并停止。
// 从候选中随机选一个占领三格，新占领的入队；候选多于一个时种子重新入队。
func (e *Engine) Expand(l *entity.Layer, seeds []entity.Pos, ph Phase) []entity.Pos {
	queue := append([]entity.Pos(nil), seeds...)
	var blocked []entity.Pos

	for len(queue) > 0 {
		var seed entity.Pos
		seed, queue = randx.Take(e.rng, queue)
		tile, ok := l.Tile(seed)
		if !ok || tile.Settlement == 0 {
			continue
		}
		if tile.Flags.Any(ph.Block) {
			blocked = append(blocked, seed)
			continue
		}
		settlement := tile.Settlement
		same := tile.Flags & ph.Same

		var candidates [][3]entity.Pos
		halted := false
		for _, d := range diagonals {
			dx, dy := d.Offset()
			trio := [3]entity.Pos{seed.Add(dx, dy), seed.Add(0, dy), seed.Add(dx, 0)}
			if !claimable(l, trio, settlement) {
				continue
			}
			for _, q := range trio {
				if l.At(q).Flags&ph.Same != same {
					halted = true
					break
				}
			}
			if halted {
				break
			}
			candidates = append(candidates, trio)
		}
		if halted {
			blocked = append(blocked, seed)
			continue
		}
		chosen, ok := randx.Pick(e.rng, candidates)
		if !ok {
			continue
		}
		for _, q := range chosen {
			t := l.At(q)
			if t.Settlement == 0 {
				t.Settlement = settlement
				queue = append(queue, q)
			}
		}
		if len(candidates) > 1 {
			queue = append(queue, seed)
		}
	}
	return blocked
}

func claimable(l *entity.Layer, trio [3]entity.Pos, settlement entity.SettlementID) bool {
	allOwn := true
	for _, q := range trio {
		t, ok := l.Tile(q)
		if !ok {
			return false
		}
		if t.Settlement != 0 && t.Settlement != settlement {
			return false
		}
		if t.Settlement != settlement {
			allOwn = false
		}
	}
	return !allOwn
}

// FillUnassigned 把仍未分配的瓦片分给 8 邻居里最多的定居点，平票取先扫到的。
// 每轮基于上一轮的结果统一写回，直到某轮没有进展。
func FillUnassigned(l *entity.Layer, region entity.Rect) (converged bool, passes int) {
	type assign struct {
		tile       *entity.Tile
		settlement entity.SettlementID
	}
	limit := region.Intersect(l.Bounds()).Area() + 1
	return utils.Stabilize(limit, func(int) bool {
		var pending []assign
		l.ForEach(region, func(p entity.Pos, tile *entity.Tile) {
			if tile.Settlement != 0 {
				return
			}
			if s := pluralitySettlement(l, p); s != 0 {
				pending = append(pending, assign{tile: tile, settlement: s})
			}
		})
		for _, a := range pending {
			a.tile.Settlement = a.settlement
		}
		return len(pending) > 0
	})
}

func pluralitySettlement(l *entity.Layer, p entity.Pos) entity.SettlementID {
	var order []entity.SettlementID
	counts := make(map[entity.SettlementID]int)
	for _, n := range l.Neighbors(p) {
		s := n.Tile.Settlement
		if s == 0 {
			continue
		}
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
	}
	var best entity.SettlementID
	for _, s := range order {
		if best == 0 || counts[s] > counts[best] {
			best = s
		}
	}
	return best
}

// CalculateOwnershipBorders 按玩家归属（不是定居点）的不连续处重算边界形状，强制允许单格。
func CalculateOwnershipBorders(l *entity.Layer, region entity.Rect) {
	l.ForEach(region, func(p entity.Pos, tile *entity.Tile) {
		if tile.Owner == entity.NoPlayer {
			tile.OwnershipBorder = transition.None
			return
		}
		var dirs transition.DirSet
		for _, n := range l.Neighbors(p) {
			if n.Tile.Owner != tile.Owner {
				dirs = dirs.With(n.Dir)
			}
		}
		tile.OwnershipBorder = transition.Classify(dirs, true)
	})
}

// ProcessTerritoryTiles 是领地计算的收尾：清空各定居点的建筑，
// 把领地上的中立建筑和资源单位挂回去，再逐格回调定居点。
func ProcessTerritoryTiles(l *entity.Layer, dir port.SettlementDirectory, units port.UnitManager) {
	if dir == nil {
		return
	}
	byID := make(map[entity.SettlementID]port.SettlementGameData)
	for _, s := range dir.Settlements() {
		s.ClearBuildings()
		byID[s.ID()] = s
	}
	if units != nil {
		for _, u := range units.Units() {
			if u.Layer != l.Index {
				continue
			}
			tile, ok := l.Tile(u.Pos)
			if !ok {
				continue
			}
			s, ok := byID[tile.Settlement]
			if !ok {
				continue
			}
			switch {
			case u.Resource:
				s.AddResourceUnit(u)
			case u.Building && (u.Neutral || u.Owner == entity.NoPlayer):
				s.AddBuilding(u)
			}
		}
	}
	l.ForEach(l.Bounds(), func(p entity.Pos, tile *entity.Tile) {
		if s, ok := byID[tile.Settlement]; ok {
			s.ProcessTerritoryTile(tile, p, l.Index)
		}
	})
}

// SitesFromDirectory 收集据点在本层的定居点。
func SitesFromDirectory(dir port.SettlementDirectory, layer int) []Site {
	if dir == nil {
		return nil
	}
	var out []Site
	for _, s := range dir.Settlements() {
		su, ok := s.SiteUnit()
		if !ok || su.Layer != layer {
			continue
		}
		out = append(out, Site{
			Settlement: s.ID(),
			Owner:      su.Owner,
			Pos:        su.Pos,
			Width:      su.Width,
			Height:     su.Height,
		})
	}
	return out
}
