package actors

import (
	"time"

	"Wyrmgus/internal/shared/gameconfig/content"
	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/modules/kit/logx"
)

// Deps 是地图 actor 共享的依赖，由启动流程组装后交给管理 actor。
type Deps struct {
	Repo       port.MapRepository
	Registry   *terrain.Registry
	Settings   entity.Settings
	Seed       int64
	FlushEvery time.Duration
	Logger     logx.Logger

	// Authored 是新地图的初始层，仓库里已有存档时不使用
	Authored []content.LayerDef

	Settlements port.SettlementDirectory
	Units       port.UnitManager
	Observer    port.TileObserver
}

// mapSeed：同一个服务种子下，每张地图的随机序列互不相同且可复现。
func (d Deps) mapSeed(id MapID) int64 {
	return d.Seed + int64(id)
}
