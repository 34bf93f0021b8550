package service

import (
	"context"
	"time"

	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/generate"
	"Wyrmgus/modules/kit/logx"

	"go.uber.org/zap"
)

// GenerateTerrain 在 region 内按策略生成地形，每次落子都经过局部重算。
func (s *MapService) GenerateTerrain(ctx context.Context, layer int, pol generate.Policy, region entity.Rect, preserveCoastline bool) (generate.Report, error) {
	const op = "service.GenerateTerrain"
	l, err := s.layer(layer)
	if err != nil {
		return generate.Report{}, s.wrap(op, err, map[string]any{"layer": layer})
	}
	start := time.Now()
	rep, err := s.generator.GenerateTerrain(l, pol, region, preserveCoastline)
	if err != nil {
		return rep, s.wrap(op, err, map[string]any{"layer": layer, "terrain": pol.Terrain.String()})
	}
	logx.ReportStageWithLoggerContext(s.ctx(ctx, layer), s.log, logx.NewStageLog("generate_terrain", time.Since(start), 1, true),
		zap.String("terrain", pol.Terrain.String()), zap.Int("placed", rep.Placed), zap.Int("budget", rep.Budget))
	return rep, nil
}

// GenerateMissingTerrain 填补子模板拼接后留下的空格。
func (s *MapService) GenerateMissingTerrain(ctx context.Context, layer int, region entity.Rect) (generate.MissingReport, error) {
	const op = "service.GenerateMissingTerrain"
	l, err := s.layer(layer)
	if err != nil {
		return generate.MissingReport{}, s.wrap(op, err, map[string]any{"layer": layer})
	}
	start := time.Now()
	rep, err := s.generator.GenerateMissingTerrain(l, region)
	if err != nil {
		return rep, s.wrap(op, err, map[string]any{"layer": layer})
	}
	logx.ReportStageWithLoggerContext(s.ctx(ctx, layer), s.log, logx.NewStageLog("generate_missing_terrain", time.Since(start), rep.VotePasses, rep.VoteConverged),
		zap.Int("grown", rep.Grown), zap.Int("voted", rep.Voted), zap.Int("remaining", rep.RemainingVoidTiles))
	return rep, nil
}

// GenerateNoiseTerrain 用噪声给空白世界层铺底色。
func (s *MapService) GenerateNoiseTerrain(ctx context.Context, layer int, region entity.Rect, bands []generate.NoiseBand, params generate.NoiseParams) (int, error) {
	const op = "service.GenerateNoiseTerrain"
	l, err := s.layer(layer)
	if err != nil {
		return 0, s.wrap(op, err, map[string]any{"layer": layer})
	}
	start := time.Now()
	n, err := s.generator.GenerateNoiseTerrain(l, region, bands, params)
	if err != nil {
		return n, s.wrap(op, err, map[string]any{"layer": layer})
	}
	logx.ReportStageWithLoggerContext(s.ctx(ctx, layer), s.log, logx.NewStageLog("generate_noise_terrain", time.Since(start), 1, true), zap.Int("placed", n))
	return n, nil
}
