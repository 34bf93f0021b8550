package port

import (
	"context"

	"Wyrmgus/internal/world/entity"
	"Wyrmgus/modules/kit/errx"
)

const CodeMapNotFound errx.Code = "MAP_NOT_FOUND"

// ErrMapNotFound：仓库里没有这张地图，调用方按“新建地图”处理。
var ErrMapNotFound = errx.NewBiz(CodeMapNotFound, "地图不存在")

type MapRepository interface {
	LoadMap(ctx context.Context, id entity.MapID) (*entity.MapPersistSnapshot, error)
	Save(ctx context.Context, s *entity.MapPersistSnapshot) error
}
