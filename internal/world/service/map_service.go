// Package service 是地图编排层：持有一张地图的全部状态，按正确顺序驱动各个引擎，
// 并对外提供放置/移除地形等修改接口（修改只触发局部重算）。
package service

import (
	"context"
	"fmt"

	"Wyrmgus/internal/shared/gameconfig/content"
	"Wyrmgus/internal/world/app/port"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/errs"
	"Wyrmgus/internal/world/generate"
	"Wyrmgus/internal/world/irregular"
	"Wyrmgus/internal/world/synth"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/internal/world/territory"
	"Wyrmgus/modules/kit/errx"
	"Wyrmgus/modules/kit/logx"
)

// Deps 是外部协作方，全部可以为空。
type Deps struct {
	Logger      logx.Logger
	Settlements port.SettlementDirectory
	Units       port.UnitManager
	Observer    port.TileObserver
}

type MapService struct {
	state *entity.MapState
	deps  Deps
	log   logx.Logger

	synth     *synth.Engine
	corrector *irregular.Corrector
	territory *territory.Engine
	generator *generate.Generator
}

func NewMapService(state *entity.MapState, deps Deps) *MapService {
	if deps.Logger == nil {
		deps.Logger = logx.Nop()
	}
	s := &MapService{deps: deps, log: deps.Logger}
	s.attach(state)
	return s
}

// attach 换上新的地图状态，所有引擎共用它的随机源。
func (s *MapService) attach(state *entity.MapState) {
	s.state = state
	s.synth = synth.NewEngine(state.Rand, state.Settings.DecorationWeight)
	s.corrector = irregular.NewCorrector(state.Settings.MaxPasses)
	s.territory = territory.NewEngine(state.Rand)
	s.generator = generate.NewGenerator(state.Rand, placer{s}, s.deps.Units)
}

func (s *MapService) State() *entity.MapState {
	return s.state
}

func (s *MapService) ctx(ctx context.Context, layer int) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logx.WithMapID(ctx, int64(s.state.ID))
	if layer >= 0 {
		ctx = logx.WithLayer(ctx, layer)
	}
	return ctx
}

func (s *MapService) layer(index int) (*entity.Layer, error) {
	l, ok := s.state.Layer(index)
	if !ok {
		return nil, errx.ErrReqParamERR.WithDataMap(map[string]any{"reason": "unknown layer", "layer": index})
	}
	return l, nil
}

func (s *MapService) tile(index int, p entity.Pos) (*entity.Layer, *entity.Tile, error) {
	l, err := s.layer(index)
	if err != nil {
		return nil, nil, err
	}
	tile, ok := l.Tile(p)
	if !ok {
		return nil, nil, errx.ErrReqParamERR.WithDataMap(map[string]any{"reason": "position is off the map", "layer": index, "pos": p.String()})
	}
	return l, tile, nil
}

func (s *MapService) wrap(op string, err error, meta map[string]any) error {
	if err == nil {
		return nil
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["map_id"] = s.state.ID
	return errs.Wrap(op, errs.KindOf(err), err, meta)
}

// AddLayer 追加一层空地图。
func (s *MapService) AddLayer(width, height int, kind entity.LayerKind, world string) (*entity.Layer, error) {
	if width <= 0 || height <= 0 {
		return nil, errx.ErrReqParamERR.WithDataMap(map[string]any{"reason": "layer size must be positive", "width": width, "height": height})
	}
	return s.state.AddLayer(width, height, kind, world), nil
}

// ApplyAuthoredLayer 按手工地图新建一层：逐格按字符找地形，'.' 留空，子模板区域原样登记。
// 这里只落地形，过渡、实心图块、地块和领地等 Preprocess 统一计算。
func (s *MapService) ApplyAuthoredLayer(ctx context.Context, def content.LayerDef) (*entity.Layer, error) {
	const op = "service.ApplyAuthoredLayer"
	l, err := s.AddLayer(def.Width, def.Height, entity.LayerKind(def.Kind), def.World)
	if err != nil {
		return nil, s.wrap(op, err, nil)
	}
	reg := s.state.Registry
	resolve := func(rows []string, overlay bool) error {
		for y, row := range rows {
			for x, c := range []rune(row) {
				if c == content.VoidCharacter {
					continue
				}
				p := entity.P(x, y)
				t, ok := reg.ByCharacter(string(c))
				if !ok || t.Overlay != overlay {
					return errx.ErrContentInvalid.WithDataMap(map[string]any{
						"layer":  l.Index,
						"pos":    p.String(),
						"reason": fmt.Sprintf("character %q is not a known %s terrain", c, layerName(overlay)),
					})
				}
				l.At(p).SetTerrain(t)
			}
		}
		return nil
	}
	err = resolve(def.Terrain, false)
	if err == nil {
		err = resolve(def.Overlay, true)
	}
	if err != nil {
		// 半成品层不能留在地图里
		s.state.Layers = s.state.Layers[:l.Index]
		return nil, s.wrap(op, err, nil)
	}
	for _, st := range def.Subtemplates {
		l.Subtemplates = append(l.Subtemplates, entity.SubtemplateArea{
			Ident: st.Ident,
			Rect:  entity.R(st.X, st.Y, st.X+st.Width, st.Y+st.Height),
			World: st.World,
		})
	}
	s.log.WithContext(s.ctx(ctx, l.Index)).Info(fmt.Sprintf("authored layer applied %dx%d", l.Width, l.Height))
	return l, nil
}

func layerName(overlay bool) string {
	if overlay {
		return "overlay"
	}
	return "base"
}

// Tile 返回只读视图；越界或层不存在返回 false。
func (s *MapService) Tile(layer int, p entity.Pos) (TileView, bool) {
	l, ok := s.state.Layer(layer)
	if !ok {
		return TileView{}, false
	}
	tile, ok := l.Tile(p)
	if !ok {
		return TileView{}, false
	}
	return newTileView(l, p, tile), true
}

// MarkSeen 把区域内的瓦片记入玩家视野，返回记录的格数。
func (s *MapService) MarkSeen(layer int, region entity.Rect, player entity.PlayerID) (int, error) {
	l, err := s.layer(layer)
	if err != nil {
		return 0, err
	}
	n := 0
	l.ForEach(region, func(_ entity.Pos, tile *entity.Tile) {
		tile.MarkSeen(player)
		n++
	})
	if n > 0 {
		s.state.MarkDirty()
	}
	return n, nil
}

// Snapshot 无条件构建整图快照（含随机源状态）。
func (s *MapService) Snapshot(version uint64) *entity.MapPersistSnapshot {
	return s.state.Snapshot(version)
}

// Restore 用快照替换当前地图，然后重算全部过渡和所有权边界；实心图块沿用快照里的值。
func (s *MapService) Restore(ctx context.Context, snap *entity.MapPersistSnapshot) error {
	const op = "service.Restore"
	if snap == nil {
		return s.wrap(op, errx.ErrReqParamERR.WithData("reason", "snapshot is nil"), nil)
	}
	state, err := entity.HydrateMapState(snap, s.state.Registry, s.state.Settings)
	if err != nil {
		return s.wrap(op, err, map[string]any{"version": snap.Version})
	}
	s.attach(state)
	for _, l := range state.Layers {
		if err := s.synthesizeTransitions(l); err != nil {
			return s.wrap(op, err, map[string]any{"layer": l.Index})
		}
		territory.CalculateOwnershipBorders(l, l.Bounds())
	}
	state.ClearDirty()
	s.log.WithContext(s.ctx(ctx, -1)).Info(fmt.Sprintf("map restored from snapshot v%d", snap.Version))
	return nil
}

// Reset 清空全部层和地块，随机源保持不变。
func (s *MapService) Reset(ctx context.Context) {
	s.state.ResetLandmasses()
	s.state.Layers = nil
	s.state.MarkDirty()
	s.log.WithContext(s.ctx(ctx, -1)).Info("map reset")
}

// Registry 方便上层按 ident 取地形。
func (s *MapService) Registry() *terrain.Registry {
	return s.state.Registry
}
