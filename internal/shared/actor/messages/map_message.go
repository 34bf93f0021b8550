package messages

import "Wyrmgus/internal/shared/gameconfig/content"

// MapMessage 是发往地图 actor 的请求，管理 actor 按 MapID 路由。
// 地形一律用 ident 传递，actor 内部再解析。
type MapMessage interface {
	MapID() int64
}

type MapBaseMessage struct {
	MapId int64
}

func (m MapBaseMessage) MapID() int64 {
	return m.MapId
}

type HMAddLayer struct {
	MapBaseMessage
	Width, Height int
	Kind          string
	World         string
}

type HMApplyAuthoredLayer struct {
	MapBaseMessage
	Def content.LayerDef
}

type HMSetTileTerrain struct {
	MapBaseMessage
	Layer   int
	X, Y    int
	Terrain string
}

type HMRemoveOverlay struct {
	MapBaseMessage
	Layer int
	X, Y  int
}

type HMDamageOverlay struct {
	MapBaseMessage
	Layer int
	X, Y  int
}

type HMDestroyOverlay struct {
	MapBaseMessage
	Layer int
	X, Y  int
}

type HMApplyCorrections struct {
	MapBaseMessage
	Layer  int
	Region Region
}

type HMPreprocess struct {
	MapBaseMessage
}

type HMRecalculateTerritory struct {
	MapBaseMessage
	Layer int
}

type HMGenerateTerrain struct {
	MapBaseMessage
	Layer                        int
	Terrain                      string
	SeedCount                    int
	MaxPercent                   int
	ExpansionChance              int
	UseExistingAsSeeds           bool
	UseSubtemplateBordersAsSeeds bool
	TargetTerrains               []string
	Region                       Region
	PreserveCoastline            bool
}

type HMGenerateMissingTerrain struct {
	MapBaseMessage
	Layer  int
	Region Region
}

// NoiseBand：噪声值不超过 Max 的格子铺 Terrain。
type NoiseBand struct {
	Max     float64
	Terrain string
}

type HMGenerateNoiseTerrain struct {
	MapBaseMessage
	Layer       int
	Region      Region
	Bands       []NoiseBand
	Octaves     int
	Frequency   float64
	Persistence float64
}

type HMTile struct {
	MapBaseMessage
	Layer int
	X, Y  int
}

type HMMarkSeen struct {
	MapBaseMessage
	Layer  int
	Region Region
	Player int
}

type HMSnapshot struct {
	MapBaseMessage
}

// HMFlush 让地图 actor 立即把脏数据交给写库协程。
type HMFlush struct {
	MapBaseMessage
}

type HMReset struct {
	MapBaseMessage
}
