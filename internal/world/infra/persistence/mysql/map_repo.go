package mysql

import (
	"context"
	"errors"

	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/errs"
	"Wyrmgus/internal/world/infra/persistence/model"

	"gorm.io/gorm"
)

const (
	OpLoadMap = "repo.map.LoadMap"
	OpSaveMap = "repo.map.Save"
	OpMigrate = "repo.map.Migrate"
)

type MapRepo struct {
	db *gorm.DB
}

func NewMapRepo(db *gorm.DB) *MapRepo {
	return &MapRepo{db: db}
}

func (r *MapRepo) WithTx(tx *gorm.DB) *MapRepo {
	return &MapRepo{db: tx}
}

// Migrate 建表，启动时调用一次。
func (r *MapRepo) Migrate(ctx context.Context) error {
	err := r.db.WithContext(ctx).AutoMigrate(&model.MapRow{}, &model.MapLayerRow{}, &model.MapTileRow{}, &model.MapLandmassRow{})
	if err != nil {
		return errs.Wrap(OpMigrate, errs.KindInfra, err, nil)
	}
	return nil
}

func (r *MapRepo) LoadMap(ctx context.Context, id entity.MapID) (*entity.MapPersistSnapshot, error) {
	var row model.MapRow
	err := r.db.WithContext(ctx).Where("map_id = ?", int64(id)).First(&row).Error
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, port.ErrMapNotFound.WithData("map_id", id)
	default:
		return nil, errs.Wrap(OpLoadMap, errs.KindInfra, err, map[string]any{"map_id": id})
	}

	rows := model.MapRows{Map: row}
	// Session 之后才能安全复用同一个查询条件
	db := r.db.WithContext(ctx).Where("map_id = ?", row.MapID).Session(&gorm.Session{})
	if err := db.Order("layer_index").Find(&rows.Layers).Error; err != nil {
		return nil, errs.Wrap(OpLoadMap, errs.KindInfra, err, map[string]any{"map_id": id, "table": "map_layer"})
	}
	if err := db.Order("layer_index, tile_index").Find(&rows.Tiles).Error; err != nil {
		return nil, errs.Wrap(OpLoadMap, errs.KindInfra, err, map[string]any{"map_id": id, "table": "map_tile"})
	}
	if err := db.Order("landmass_id").Find(&rows.Landmasses).Error; err != nil {
		return nil, errs.Wrap(OpLoadMap, errs.KindInfra, err, map[string]any{"map_id": id, "table": "map_landmass"})
	}
	return model.MapRowsToSnapshot(rows), nil
}

const tileBatchSize = 1000

// Save 在一个事务里整体替换地图的四张表；库里版本更新时跳过。
func (r *MapRepo) Save(ctx context.Context, s *entity.MapPersistSnapshot) error {
	if s == nil {
		return nil
	}
	rows := model.MapSnapshotToRows(s)
	id := rows.Map.MapID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur model.MapRow
		err := tx.Where("map_id = ?", id).First(&cur).Error
		switch {
		case err == nil:
			if cur.Version >= rows.Map.Version {
				return nil
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}
		if err := tx.Save(&rows.Map).Error; err != nil {
			return err
		}
		for _, table := range []any{&model.MapLayerRow{}, &model.MapTileRow{}, &model.MapLandmassRow{}} {
			if err := tx.Where("map_id = ?", id).Delete(table).Error; err != nil {
				return err
			}
		}
		if len(rows.Layers) > 0 {
			if err := tx.Create(&rows.Layers).Error; err != nil {
				return err
			}
		}
		if len(rows.Tiles) > 0 {
			if err := tx.CreateInBatches(&rows.Tiles, tileBatchSize).Error; err != nil {
				return err
			}
		}
		if len(rows.Landmasses) > 0 {
			if err := tx.Create(&rows.Landmasses).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errs.Wrap(OpSaveMap, errs.KindInfra, err, map[string]any{"map_id": id, "version": rows.Map.Version})
	}
	return nil
}
