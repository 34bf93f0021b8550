package mongodb

import (
	"context"
	"errors"

	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/errs"
	"Wyrmgus/internal/world/infra/persistence/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultCollectionName = "map"

const (
	OpLoadMap = "repo.map.LoadMap"
	OpSaveMap = "repo.map.Save"
)

type MapRepository struct {
	coll *mongo.Collection
}

func NewMapRepository(db *mongo.Database) *MapRepository {
	if db == nil {
		return &MapRepository{}
	}
	return &MapRepository{coll: db.Collection(defaultCollectionName)}
}

func (r *MapRepository) LoadMap(ctx context.Context, id entity.MapID) (*entity.MapPersistSnapshot, error) {
	if r == nil || r.coll == nil {
		return nil, errs.Wrap(OpLoadMap, errs.KindInfra, errors.New("mongodb map collection is nil"), nil)
	}

	var doc model.MapDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&doc)
	switch {
	case err == nil:
		return model.MapDocToSnapshot(doc), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, port.ErrMapNotFound.WithData("map_id", id)
	default:
		return nil, errs.Wrap(OpLoadMap, errs.KindInfra, err, map[string]any{"map_id": id})
	}
}

// Save 整文档替换；库里版本更新时不覆盖。
func (r *MapRepository) Save(ctx context.Context, s *entity.MapPersistSnapshot) error {
	if s == nil {
		return nil
	}
	if r == nil || r.coll == nil {
		return errs.Wrap(OpSaveMap, errs.KindInfra, errors.New("mongodb map collection is nil"), nil)
	}

	doc := model.MapSnapshotToDoc(s)
	filter := bson.M{"_id": doc.MapID, "version": bson.M{"$lt": doc.Version}}
	_, err := r.coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// 过滤条件没命中而 upsert 撞主键：库里已是更新的版本
		return nil
	}
	if err != nil {
		return errs.Wrap(OpSaveMap, errs.KindInfra, err, map[string]any{"map_id": doc.MapID, "version": doc.Version})
	}
	return nil
}
