package port

import (
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
)

// SiteUnit 是定居点据点单位在地图上的落点。
type SiteUnit struct {
	Layer  int
	Pos    entity.Pos
	Width  int
	Height int
	Owner  entity.PlayerID
}

// Unit 是单位管理器暴露的只读视图。
type Unit struct {
	ID       int
	Layer    int
	Pos      entity.Pos
	Width    int
	Height   int
	Owner    entity.PlayerID
	Building bool
	Neutral  bool
	Resource bool
	// MovementMask 是单位不能站立的瓦片 flag
	MovementMask terrain.Flag
}

// Footprint 返回单位占用的矩形。
func (u Unit) Footprint() entity.Rect {
	w, h := max(1, u.Width), max(1, u.Height)
	return entity.Rect{Min: u.Pos, Max: u.Pos.Add(w, h)}
}

// SettlementGameData 是外部定居点对象，领地计算的最后一步回调它。
type SettlementGameData interface {
	ID() entity.SettlementID
	SiteUnit() (SiteUnit, bool)
	AddBuilding(u Unit)
	AddResourceUnit(u Unit)
	ClearBuildings()
	ProcessTerritoryTile(tile *entity.Tile, pos entity.Pos, layer int)
}

type SettlementDirectory interface {
	Settlements() []SettlementGameData
}

type UnitManager interface {
	Units() []Unit
}

// TileObserver 接收瓦片变化通知（渲染/小地图），只管发不等结果。
type TileObserver interface {
	TileChanged(layer int, pos entity.Pos)
	TerritoryChanged(layer int, region entity.Rect)
}
