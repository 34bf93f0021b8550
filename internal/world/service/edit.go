package service

import (
	"context"

	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/modules/kit/errx"
	"Wyrmgus/modules/kit/logx"
)

// SetTileTerrain 放置基础地形或覆盖层，先修正 3x3 邻域里的不规则摆放，再局部重算。
// 覆盖层声明了可用的基础地形时，瓦片现有的基础地形必须在其中。
func (s *MapService) SetTileTerrain(ctx context.Context, layer int, p entity.Pos, t *terrain.Type) error {
	const op = "service.SetTileTerrain"
	meta := map[string]any{"layer": layer, "pos": p.String()}
	l, tile, err := s.tile(layer, p)
	if err != nil {
		return s.wrap(op, err, meta)
	}
	if t == nil {
		return s.wrap(op, errx.ErrReqParamERR.WithData("reason", "terrain is nil"), meta)
	}
	if t.Overlay && len(t.BaseTerrains()) > 0 && !t.IsBaseTerrain(tile.Terrain) {
		err := errx.ErrReqParamERR.WithDataMap(map[string]any{"reason": "overlay cannot sit on this base terrain", "terrain": t.Ident, "base": tile.Terrain.String()})
		logx.ReportBizWithLoggerContext(s.ctx(ctx, layer), s.log, logx.NewBizLog(op, "bad_base_terrain", t.Ident))
		return s.wrap(op, err, meta)
	}
	tile.SetTerrain(t)
	changed := s.correctAround(l, p, t.Overlay)
	if err := s.refresh(l, p); err != nil {
		return s.wrap(op, err, meta)
	}
	for _, q := range changed {
		if q == p {
			continue
		}
		if err := s.refresh(l, q); err != nil {
			return s.wrap(op, err, meta)
		}
	}
	return nil
}

// correctAround 对编辑格的 3x3 邻域跑不规则修正，返回地形被改过的格子。
// 允许单格的地形不会被动到。
func (s *MapService) correctAround(l *entity.Layer, p entity.Pos, overlay bool) []entity.Pos {
	region := entity.R(p.X-1, p.Y-1, p.X+2, p.Y+2).Intersect(l.Bounds())
	changed := s.corrector.AdjustIrregularities(l, overlay, region).Changed
	if !overlay {
		changed = append(changed, s.corrector.AdjustTransitions(l, region).Changed...)
	}
	return changed
}

// RemoveOverlay 移除覆盖层；没有覆盖层时什么也不做。
func (s *MapService) RemoveOverlay(ctx context.Context, layer int, p entity.Pos) error {
	const op = "service.RemoveOverlay"
	meta := map[string]any{"layer": layer, "pos": p.String()}
	l, tile, err := s.tile(layer, p)
	if err != nil {
		return s.wrap(op, err, meta)
	}
	if tile.Overlay == nil {
		return nil
	}
	tile.RemoveOverlay()
	return s.wrap(op, s.refresh(l, p), meta)
}

// DamageOverlay 标记覆盖层受损，只换实心图块，不影响邻居。
func (s *MapService) DamageOverlay(ctx context.Context, layer int, p entity.Pos) (bool, error) {
	const op = "service.DamageOverlay"
	meta := map[string]any{"layer": layer, "pos": p.String()}
	l, tile, err := s.tile(layer, p)
	if err != nil {
		return false, s.wrap(op, err, meta)
	}
	if !tile.DamageOverlay() {
		return false, nil
	}
	if _, err := s.synth.SelectSolidTile(l, p, true); err != nil {
		return true, s.wrap(op, err, meta)
	}
	s.state.MarkDirty()
	s.notify(l, p)
	return true, nil
}

// DestroyOverlay 摧毁覆盖层（树被砍光、墙被拆掉）：flag 换成后继 flag，邻居不再和它接壤。
func (s *MapService) DestroyOverlay(ctx context.Context, layer int, p entity.Pos) (bool, error) {
	const op = "service.DestroyOverlay"
	meta := map[string]any{"layer": layer, "pos": p.String()}
	l, tile, err := s.tile(layer, p)
	if err != nil {
		return false, s.wrap(op, err, meta)
	}
	if !tile.DestroyOverlay() {
		return false, nil
	}
	return true, s.wrap(op, s.refresh(l, p), meta)
}

// refresh 是单格修改后的局部重算：本格和在图内的 8 个邻居重算两层过渡，
// 再给本格挑实心图块，最后逐格通知观察者。
func (s *MapService) refresh(l *entity.Layer, p entity.Pos) error {
	touched := []entity.Pos{p}
	for _, n := range l.Neighbors(p) {
		touched = append(touched, n.Pos)
	}
	for _, q := range touched {
		if err := s.applyTransitions(l, q); err != nil {
			return err
		}
	}
	if err := s.selectSolidTiles(l, p); err != nil {
		return err
	}
	s.state.MarkDirty()
	for _, q := range touched {
		s.notify(l, q)
	}
	return nil
}

func (s *MapService) applyTransitions(l *entity.Layer, p entity.Pos) error {
	if _, err := s.synth.ApplyTransitions(l, p, false); err != nil {
		return err
	}
	_, err := s.synth.ApplyTransitions(l, p, true)
	return err
}

func (s *MapService) selectSolidTiles(l *entity.Layer, p entity.Pos) error {
	tile := l.At(p)
	if tile.Terrain != nil {
		if _, err := s.synth.SelectSolidTile(l, p, false); err != nil {
			return err
		}
	}
	if tile.Overlay != nil {
		if _, err := s.synth.SelectSolidTile(l, p, true); err != nil {
			return err
		}
	}
	return nil
}

func (s *MapService) notify(l *entity.Layer, p entity.Pos) {
	if s.deps.Observer != nil {
		s.deps.Observer.TileChanged(l.Index, p)
	}
}

// placer 让生成器的每次落子都走局部重算。
type placer struct {
	s *MapService
}

func (p placer) SetTileTerrain(l *entity.Layer, q entity.Pos, t *terrain.Type) error {
	tile, ok := l.Tile(q)
	if !ok {
		return errx.ErrReqParamERR.WithDataMap(map[string]any{"reason": "position is off the map", "pos": q.String()})
	}
	tile.SetTerrain(t)
	return p.s.refresh(l, q)
}

func (p placer) RemoveOverlay(l *entity.Layer, q entity.Pos) error {
	tile, ok := l.Tile(q)
	if !ok || tile.Overlay == nil {
		return nil
	}
	tile.RemoveOverlay()
	return p.s.refresh(l, q)
}
