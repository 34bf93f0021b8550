package service

import (
	"context"
	"time"

	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/irregular"
	"Wyrmgus/internal/world/landmass"
	"Wyrmgus/internal/world/territory"
	"Wyrmgus/modules/kit/logx"

	"go.uber.org/zap"
)

// CorrectionReport 汇总三个修正循环。
type CorrectionReport struct {
	Overlay     irregular.Report
	Base        irregular.Report
	Transitions irregular.Report
}

func (r CorrectionReport) Converged() bool {
	return r.Overlay.Converged && r.Base.Converged && r.Transitions.Converged
}

type LayerReport struct {
	Layer       int
	Corrections CorrectionReport
	Landmasses  int
	Territory   territory.Report
}

type PreprocessReport struct {
	Layers  []LayerReport
	Elapsed time.Duration
}

// ApplyCorrections 依次修正覆盖层、基础层的不规则瓦片，再修正无法直接接壤的过渡。
// 只改地形，不重算过渡；达到轮数上限只打 WARN。
func (s *MapService) ApplyCorrections(ctx context.Context, layer int, region entity.Rect) (CorrectionReport, error) {
	l, err := s.layer(layer)
	if err != nil {
		return CorrectionReport{}, s.wrap("service.ApplyCorrections", err, map[string]any{"layer": layer})
	}
	return s.correct(s.ctx(ctx, layer), l, region), nil
}

func (s *MapService) correct(ctx context.Context, l *entity.Layer, region entity.Rect) CorrectionReport {
	var rep CorrectionReport
	stage := func(name string, run func() irregular.Report) irregular.Report {
		start := time.Now()
		r := run()
		logx.ReportStageWithLoggerContext(ctx, s.log, logx.NewStageLog(name, time.Since(start), r.Passes, r.Converged), zap.Int("changed", len(r.Changed)))
		return r
	}
	rep.Overlay = stage("adjust_irregularities_overlay", func() irregular.Report {
		return s.corrector.AdjustIrregularities(l, true, region)
	})
	rep.Base = stage("adjust_irregularities_base", func() irregular.Report {
		return s.corrector.AdjustIrregularities(l, false, region)
	})
	rep.Transitions = stage("adjust_transitions", func() irregular.Report {
		return s.corrector.AdjustTransitions(l, region)
	})
	if len(rep.Overlay.Changed)+len(rep.Base.Changed)+len(rep.Transitions.Changed) > 0 {
		s.state.MarkDirty()
	}
	return rep
}

// Preprocess 对每一层跑完整流水线。地块列表先整体清空，保证重复调用结果一致。
func (s *MapService) Preprocess(ctx context.Context) (PreprocessReport, error) {
	start := time.Now()
	var rep PreprocessReport
	s.state.ResetLandmasses()
	for _, l := range s.state.Layers {
		lr, err := s.PreprocessLayer(ctx, l.Index)
		if err != nil {
			sysErr := s.wrap("service.Preprocess", err, map[string]any{"layer": l.Index})
			logx.ReportSysErrorWithLoggerContext(s.ctx(ctx, l.Index), s.log, logx.NewSysLog("service.Preprocess", sysErr))
			return rep, sysErr
		}
		rep.Layers = append(rep.Layers, lr)
	}
	rep.Elapsed = time.Since(start)
	logx.ReportStageWithLoggerContext(s.ctx(ctx, -1), s.log, logx.NewStageLog("preprocess", rep.Elapsed, len(rep.Layers), true))
	return rep, nil
}

// PreprocessLayer：修正 → 全层过渡 → 全层实心图块 → 地块划分 → 领地 → 领地瓦片回调。
func (s *MapService) PreprocessLayer(ctx context.Context, layer int) (LayerReport, error) {
	const op = "service.PreprocessLayer"
	l, err := s.layer(layer)
	if err != nil {
		return LayerReport{}, s.wrap(op, err, map[string]any{"layer": layer})
	}
	ctx = s.ctx(ctx, layer)
	rep := LayerReport{Layer: layer}
	rep.Corrections = s.correct(ctx, l, l.Bounds())

	start := time.Now()
	if err := s.synthesizeTransitions(l); err != nil {
		return rep, s.wrap(op, err, map[string]any{"layer": layer, "step": "transitions"})
	}
	var solidErr error
	l.ForEach(l.Bounds(), func(p entity.Pos, _ *entity.Tile) {
		if solidErr == nil {
			solidErr = s.selectSolidTiles(l, p)
		}
	})
	if solidErr != nil {
		return rep, s.wrap(op, solidErr, map[string]any{"layer": layer, "step": "solid_tiles"})
	}
	logx.ReportStageWithLoggerContext(ctx, s.log, logx.NewStageLog("synthesize", time.Since(start), 1, true))

	start = time.Now()
	rep.Landmasses = landmass.CalculateLayer(s.state, l)
	logx.ReportStageWithLoggerContext(ctx, s.log, logx.NewStageLog("landmass", time.Since(start), 1, true), zap.Int("created", rep.Landmasses))

	rep.Territory = s.calculateTerritory(ctx, l)
	s.state.MarkDirty()
	return rep, nil
}

// RecalculateTerritory 只重跑领地部分（定居点变化后调用）。
func (s *MapService) RecalculateTerritory(ctx context.Context, layer int) (territory.Report, error) {
	l, err := s.layer(layer)
	if err != nil {
		return territory.Report{}, s.wrap("service.RecalculateTerritory", err, map[string]any{"layer": layer})
	}
	rep := s.calculateTerritory(s.ctx(ctx, layer), l)
	s.state.MarkDirty()
	return rep, nil
}

func (s *MapService) calculateTerritory(ctx context.Context, l *entity.Layer) territory.Report {
	start := time.Now()
	sites := territory.SitesFromDirectory(s.deps.Settlements, l.Index)
	rep := s.territory.Calculate(l, sites)
	territory.ProcessTerritoryTiles(l, s.deps.Settlements, s.deps.Units)
	// 没有据点时不跑兜底循环，不算未收敛
	converged := rep.FallbackConverged || len(sites) == 0
	logx.ReportStageWithLoggerContext(ctx, s.log,
		logx.NewStageLog("territory", time.Since(start), rep.FallbackPasses, converged),
		zap.Int("seeds", rep.Seeds), zap.Int("unassigned", rep.Unassigned))
	if s.deps.Observer != nil {
		s.deps.Observer.TerritoryChanged(l.Index, l.Bounds())
	}
	return rep
}

// synthesizeTransitions 逐格重算整层两层过渡。
func (s *MapService) synthesizeTransitions(l *entity.Layer) error {
	var err error
	l.ForEach(l.Bounds(), func(p entity.Pos, _ *entity.Tile) {
		if err == nil {
			err = s.applyTransitions(l, p)
		}
	})
	return err
}
