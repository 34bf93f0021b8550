package actors

import (
	"Wyrmgus/internal/shared/actor/messages"
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/generate"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/modules/kit/errx"

	"github.com/asynkron/protoactor-go/actor"
)

type MapHandler struct{}

// 全局实例
var MH = &MapHandler{}

func (h *MapHandler) HandleAddLayer(ctx actor.Context, p *MapActor, req messages.HMAddLayer) {
	l, err := p.svc.AddLayer(req.Width, req.Height, entity.LayerKind(req.Kind), req.World)
	if err != nil {
		ctx.Respond(fail(err))
		return
	}
	ctx.Respond(ok(l.Index))
}

func (h *MapHandler) HandleApplyAuthoredLayer(ctx actor.Context, p *MapActor, req messages.HMApplyAuthoredLayer) {
	l, err := p.svc.ApplyAuthoredLayer(p.ctx(), req.Def)
	if err != nil {
		ctx.Respond(fail(err))
		return
	}
	ctx.Respond(ok(l.Index))
}

func (h *MapHandler) HandleSetTileTerrain(ctx actor.Context, p *MapActor, req messages.HMSetTileTerrain) {
	t, err := p.terrain(req.Terrain)
	if err != nil {
		ctx.Respond(fail(err))
		return
	}
	respond(ctx, nil, p.svc.SetTileTerrain(p.ctx(), req.Layer, entity.P(req.X, req.Y), t))
}

func (h *MapHandler) HandleRemoveOverlay(ctx actor.Context, p *MapActor, req messages.HMRemoveOverlay) {
	respond(ctx, nil, p.svc.RemoveOverlay(p.ctx(), req.Layer, entity.P(req.X, req.Y)))
}

func (h *MapHandler) HandleDamageOverlay(ctx actor.Context, p *MapActor, req messages.HMDamageOverlay) {
	changed, err := p.svc.DamageOverlay(p.ctx(), req.Layer, entity.P(req.X, req.Y))
	respond(ctx, changed, err)
}

func (h *MapHandler) HandleDestroyOverlay(ctx actor.Context, p *MapActor, req messages.HMDestroyOverlay) {
	changed, err := p.svc.DestroyOverlay(p.ctx(), req.Layer, entity.P(req.X, req.Y))
	respond(ctx, changed, err)
}

func (h *MapHandler) HandleApplyCorrections(ctx actor.Context, p *MapActor, req messages.HMApplyCorrections) {
	rep, err := p.svc.ApplyCorrections(p.ctx(), req.Layer, p.rect(req.Layer, req.Region))
	respond(ctx, rep, err)
}

func (h *MapHandler) HandlePreprocess(ctx actor.Context, p *MapActor, req messages.HMPreprocess) {
	rep, err := p.svc.Preprocess(p.ctx())
	respond(ctx, rep, err)
}

func (h *MapHandler) HandleRecalculateTerritory(ctx actor.Context, p *MapActor, req messages.HMRecalculateTerritory) {
	rep, err := p.svc.RecalculateTerritory(p.ctx(), req.Layer)
	respond(ctx, rep, err)
}

func (h *MapHandler) HandleGenerateTerrain(ctx actor.Context, p *MapActor, req messages.HMGenerateTerrain) {
	t, err := p.terrain(req.Terrain)
	if err != nil {
		ctx.Respond(fail(err))
		return
	}
	pol := generate.Policy{
		Terrain:                      t,
		SeedCount:                    req.SeedCount,
		MaxPercent:                   req.MaxPercent,
		ExpansionChance:              req.ExpansionChance,
		UseExistingAsSeeds:           req.UseExistingAsSeeds,
		UseSubtemplateBordersAsSeeds: req.UseSubtemplateBordersAsSeeds,
	}
	for _, ident := range req.TargetTerrains {
		target, err := p.terrain(ident)
		if err != nil {
			ctx.Respond(fail(err))
			return
		}
		pol.TargetTerrains = append(pol.TargetTerrains, target)
	}
	rep, err := p.svc.GenerateTerrain(p.ctx(), req.Layer, pol, p.rect(req.Layer, req.Region), req.PreserveCoastline)
	respond(ctx, rep, err)
}

func (h *MapHandler) HandleGenerateMissingTerrain(ctx actor.Context, p *MapActor, req messages.HMGenerateMissingTerrain) {
	rep, err := p.svc.GenerateMissingTerrain(p.ctx(), req.Layer, p.rect(req.Layer, req.Region))
	respond(ctx, rep, err)
}

func (h *MapHandler) HandleGenerateNoiseTerrain(ctx actor.Context, p *MapActor, req messages.HMGenerateNoiseTerrain) {
	bands := make([]generate.NoiseBand, 0, len(req.Bands))
	for _, b := range req.Bands {
		t, err := p.terrain(b.Terrain)
		if err != nil {
			ctx.Respond(fail(err))
			return
		}
		bands = append(bands, generate.NoiseBand{Max: b.Max, Terrain: t})
	}
	params := generate.NoiseParams{Octaves: req.Octaves, Frequency: req.Frequency, Persistence: req.Persistence}
	n, err := p.svc.GenerateNoiseTerrain(p.ctx(), req.Layer, p.rect(req.Layer, req.Region), bands, params)
	respond(ctx, n, err)
}

func (h *MapHandler) HandleTile(ctx actor.Context, p *MapActor, req messages.HMTile) {
	v, found := p.svc.Tile(req.Layer, entity.P(req.X, req.Y))
	if !found {
		ctx.Respond(fail(errx.ErrNotFound.WithDataMap(map[string]any{"layer": req.Layer, "x": req.X, "y": req.Y})))
		return
	}
	ctx.Respond(ok(v))
}

func (h *MapHandler) HandleMarkSeen(ctx actor.Context, p *MapActor, req messages.HMMarkSeen) {
	n, err := p.svc.MarkSeen(req.Layer, p.rect(req.Layer, req.Region), entity.PlayerID(req.Player))
	respond(ctx, n, err)
}

func (h *MapHandler) HandleSnapshot(ctx actor.Context, p *MapActor, req messages.HMSnapshot) {
	ctx.Respond(ok(p.svc.Snapshot(p.dc.Version())))
}

// HandleFlush 应答构建出的快照版本；没有改动时是上一次的版本。
func (h *MapHandler) HandleFlush(ctx actor.Context, p *MapActor, req messages.HMFlush) {
	if err := p.dc.Flush(p.ctx()); err != nil {
		ctx.Respond(fail(err))
		return
	}
	ctx.Respond(ok(p.dc.Version()))
}

func (h *MapHandler) HandleReset(ctx actor.Context, p *MapActor, req messages.HMReset) {
	p.svc.Reset(p.ctx())
	ctx.Respond(ok(nil))
}

func (p *MapActor) terrain(ident string) (*terrain.Type, error) {
	t, found := p.svc.Registry().Get(ident)
	if !found {
		return nil, errx.ErrReqParamERR.WithDataMap(map[string]any{"reason": "unknown terrain", "terrain": ident})
	}
	return t, nil
}

// rect 把消息里的区域换成矩形，零值取整层；层不存在时返回空矩形，由服务层报错。
func (p *MapActor) rect(layer int, r messages.Region) entity.Rect {
	if !r.Whole() {
		return entity.R(r.MinX, r.MinY, r.MaxX, r.MaxY)
	}
	if l, found := p.svc.State().Layer(layer); found {
		return l.Bounds()
	}
	return entity.Rect{}
}
