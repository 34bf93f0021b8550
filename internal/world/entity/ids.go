package entity

// 瓦片上的弱引用一律存整数 id，0 表示没有；玩家用 NoPlayer。
type (
	MapID        int64
	SettlementID int
	LandmassID   int
	FeatureID    int
	PlayerID     int
)

const NoPlayer PlayerID = -1
