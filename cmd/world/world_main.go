package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"Wyrmgus/internal/shared/config"
	"Wyrmgus/internal/shared/gameconfig/content"
	sharedmysql "Wyrmgus/internal/shared/infrastructure/db"
	sharedmongo "Wyrmgus/internal/shared/infrastructure/mongo"
	"Wyrmgus/internal/shared/logs"
	"Wyrmgus/internal/shared/serverconfig"
	"Wyrmgus/internal/shared/utils"
	worldactor "Wyrmgus/internal/world/actor"
	"Wyrmgus/internal/world/actors"
	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/infra/persistence/memory"
	worldmongo "Wyrmgus/internal/world/infra/persistence/mongodb"
	worldmysql "Wyrmgus/internal/world/infra/persistence/mysql"

	"go.uber.org/zap"
)

func main() {
	// 1. 配置
	cfgPath, err := config.Resolve("")
	if err != nil {
		panic(err)
	}
	if err := serverconfig.Load(cfgPath); err != nil {
		panic(err)
	}
	conf := serverconfig.Get()

	// 2. 日志
	if err := logs.Init("world", conf.Log); err != nil {
		panic(err)
	}
	defer logs.Sync()
	logs.Info("conf", zap.Any("conf", conf))

	// 3. 地图 id：没配置时用雪花 id 新建一张
	if err := utils.ConfigureSnowflake(conf.World.NodeID); err != nil {
		logs.Fatal("configure snowflake failed", zap.Error(err))
	}
	mapID := conf.World.MapID
	if mapID == 0 {
		if mapID, err = utils.NextSnowflakeID(); err != nil {
			logs.Fatal("generate map id failed", zap.Error(err))
		}
	}

	// 4. 内容：地形定义必须有，手工地图可选
	cfgDir := filepath.Dir(cfgPath)
	reg, err := content.LoadTerrainTypes(contentPath(cfgDir, conf.World.TerrainTypes))
	if err != nil {
		logs.Fatal("load terrain types failed", zap.Error(err))
	}
	var authored []content.LayerDef
	if conf.World.MapData != "" {
		if authored, err = content.LoadMapLayers(contentPath(cfgDir, conf.World.MapData)); err != nil {
			logs.Fatal("load map layers failed", zap.Error(err))
		}
	}
	logs.Info("content loaded", zap.Int("terrains", reg.Len()), zap.Int("layers", len(authored)))

	// 5. 存储
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	repo, closeRepo, err := openRepository(ctx, conf)
	if err != nil {
		logs.Fatal("open map repository failed", zap.String("driver", conf.Storage.Driver), zap.Error(err))
	}
	defer closeRepo()

	// 6. actor 运行时
	rt := worldactor.NewRuntime(actors.Deps{
		Repo:     repo,
		Registry: reg,
		Settings: entity.Settings{
			DecorationWeight: conf.Engine.DecorationWeight,
			MaxPasses:        conf.Engine.MaxFixedPointPasses,
			EditorRunning:    conf.Engine.EditorRunning,
		},
		Seed:       conf.Engine.Seed,
		FlushEvery: time.Duration(conf.Storage.FlushEveryMs) * time.Millisecond,
		Logger:     logs.Kit(),
		Authored:   authored,
	}, 0)

	// 预热：第一次请求触发加载或新建
	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	version, err := rt.Flush(warmCtx, entity.MapID(mapID))
	cancel()
	if err != nil {
		logs.Error("map warm up failed", zap.Int64("map_id", mapID), zap.Error(err))
	} else {
		logs.Info("map online", zap.Int64("map_id", mapID), zap.Uint64("version", version))
	}

	<-ctx.Done()

	logs.Info("收到退出信号，准备优雅退出")
	rt.Shutdown()
}

func contentPath(cfgDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfgDir, p)
}

// openRepository 按 storage.driver 选择落盘方式，返回的 close 负责释放连接。
func openRepository(ctx context.Context, conf serverconfig.Config) (port.MapRepository, func(), error) {
	switch conf.Storage.Driver {
	case "mongodb":
		client, err := sharedmongo.Open(conf.MongoDB, logs.Logger())
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			_ = client.Disconnect(context.Background())
		}
		return worldmongo.NewMapRepository(client.Database(conf.MongoDB.Database)), closeFn, nil
	case "mysql":
		db, err := sharedmysql.Open(conf.MySQL)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		repo := worldmysql.NewMapRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return repo, closeFn, nil
	default:
		return memory.NewMapRepository(), func() {}, nil
	}
}
