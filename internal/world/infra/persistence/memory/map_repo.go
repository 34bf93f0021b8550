package memory

import (
	"context"
	"sync"

	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/infra/persistence/model"
)

// MapRepository 进程内存储，单机调试和测试用。存取都经过文档转换，调用方拿到的是独立副本。
type MapRepository struct {
	mu   sync.RWMutex
	maps map[entity.MapID]model.MapDoc
}

func NewMapRepository() *MapRepository {
	return &MapRepository{maps: make(map[entity.MapID]model.MapDoc)}
}

func (r *MapRepository) LoadMap(ctx context.Context, id entity.MapID) (*entity.MapPersistSnapshot, error) {
	_ = ctx
	r.mu.RLock()
	doc, ok := r.maps[id]
	r.mu.RUnlock()
	if !ok {
		return nil, port.ErrMapNotFound.WithData("map_id", id)
	}
	return model.MapDocToSnapshot(cloneDoc(doc)), nil
}

func (r *MapRepository) Save(ctx context.Context, s *entity.MapPersistSnapshot) error {
	_ = ctx
	if s == nil {
		return nil
	}
	doc := cloneDoc(model.MapSnapshotToDoc(s))
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.maps[s.MapID]; ok && cur.Version >= doc.Version {
		return nil
	}
	r.maps[s.MapID] = doc
	return nil
}

// Version 返回已保存的版本，没有时为 0。
func (r *MapRepository) Version(id entity.MapID) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maps[id].Version
}

func cloneDoc(doc model.MapDoc) model.MapDoc {
	out := doc
	out.RandState = append([]byte(nil), doc.RandState...)
	out.Layers = make([]model.LayerDoc, len(doc.Layers))
	for i, l := range doc.Layers {
		l.Subtemplates = append([]model.SubtemplateDoc(nil), l.Subtemplates...)
		tiles := make([]model.TileDoc, len(l.Tiles))
		for j, t := range l.Tiles {
			t.Transitions = append([]model.TransitionDoc(nil), t.Transitions...)
			t.OverlayTransitions = append([]model.TransitionDoc(nil), t.OverlayTransitions...)
			tiles[j] = t
		}
		l.Tiles = tiles
		out.Layers[i] = l
	}
	out.Landmasses = make([]model.LandmassDoc, len(doc.Landmasses))
	for i, lm := range doc.Landmasses {
		lm.Borders = append([]int(nil), lm.Borders...)
		out.Landmasses[i] = lm
	}
	return out
}
