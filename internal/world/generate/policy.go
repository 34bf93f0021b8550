package generate

import (
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
)

// Policy 描述一次地形生成：生成什么、种子多少、预算多大、扩张概率。
type Policy struct {
	Terrain    *terrain.Type
	SeedCount  int
	MaxPercent int // 区域面积百分比，0 表示不限
	// ExpansionChance 是每个种子每次被取出时继续扩张的百分比概率
	ExpansionChance              int
	UseExistingAsSeeds           bool
	UseSubtemplateBordersAsSeeds bool
	// TargetTerrains 是允许被覆盖的地形（基础地形或可移除的覆盖层）
	TargetTerrains []*terrain.Type
}

func (p *Policy) isTarget(t *terrain.Type) bool {
	for _, v := range p.TargetTerrains {
		if v == t {
			return true
		}
	}
	return false
}

// layerTerrain：按生成目标所在的层取瓦片地形，摧毁的覆盖层视为空。
func (p *Policy) layerTerrain(tile *entity.Tile) *terrain.Type {
	return tile.AdjacencyTerrain(p.Terrain.Overlay)
}

// CanRemoveTileOverlay：瓦片现有的覆盖层在目标列表里才允许移除。
func (p *Policy) CanRemoveTileOverlay(tile *entity.Tile) bool {
	return tile.Overlay != nil && p.isTarget(tile.Overlay)
}

// CanGenerateOnTile 判断能否把目标地形放到这一格上。
func (p *Policy) CanGenerateOnTile(tile *entity.Tile) bool {
	target := p.Terrain
	if p.layerTerrain(tile) == target {
		return false
	}
	if target.Overlay {
		if tile.Terrain == nil {
			return false
		}
		if len(target.BaseTerrains()) > 0 && !target.IsBaseTerrain(tile.Terrain) {
			return false
		}
		return tile.Overlay == nil || tile.OverlayDestroyed || p.CanRemoveTileOverlay(tile)
	}
	if tile.Overlay != nil && !tile.OverlayDestroyed && !p.CanRemoveTileOverlay(tile) {
		return false
	}
	if len(p.TargetTerrains) > 0 {
		return p.isTarget(tile.Terrain)
	}
	return tile.Terrain == nil
}

// CanTileBePartOfExpansion 是生长阶段更宽松的判定：已经是目标、可以生成、或与目标可直接接壤。
func (p *Policy) CanTileBePartOfExpansion(tile *entity.Tile) bool {
	lt := p.layerTerrain(tile)
	if lt == p.Terrain || p.CanGenerateOnTile(tile) {
		return true
	}
	return lt != nil && p.Terrain.IsBorderTerrain(lt)
}

// CanUseTileAsSeed：已经是目标地形的格子可作为生长种子。
func (p *Policy) CanUseTileAsSeed(tile *entity.Tile) bool {
	return p.layerTerrain(tile) == p.Terrain
}
