package generate

import (
	"Wyrmgus/internal/world/entity"
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/modules/kit/errx"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// NoiseBand：噪声值 <= Max 时取该地形，按 Max 升序给出，最后一档兜底。
type NoiseBand struct {
	Max     float64
	Terrain *terrain.Type
}

type NoiseParams struct {
	Octaves     int
	Frequency   float64
	Persistence float64
}

var DefaultNoiseParams = NoiseParams{Octaves: 4, Frequency: 0.08, Persistence: 0.5}

// GenerateNoiseTerrain 给区域内仍是空地形的格子按多倍频噪声选一个基础地形。
// 噪声种子从共享随机源取，因此同一随机状态下结果可复现。
func (g *Generator) GenerateNoiseTerrain(l *entity.Layer, region entity.Rect, bands []NoiseBand, params NoiseParams) (int, error) {
	if len(bands) == 0 {
		return 0, errx.ErrReqParamERR.WithData("reason", "noise generation needs at least one band")
	}
	for _, b := range bands {
		if b.Terrain == nil || b.Terrain.Overlay {
			return 0, errx.ErrReqParamERR.WithData("reason", "noise bands must use base terrains")
		}
	}
	if params.Octaves <= 0 {
		params = DefaultNoiseParams
	}
	noise := opensimplex.NewNormalized(g.rng.Int63())

	placed := 0
	var err error
	l.ForEach(region, func(p entity.Pos, tile *entity.Tile) {
		if err != nil || tile.Terrain != nil {
			return
		}
		v := octaveNoise(noise, float64(p.X), float64(p.Y), params)
		if err = g.placer.SetTileTerrain(l, p, pickBand(bands, v)); err == nil {
			placed++
		}
	})
	return placed, err
}

func pickBand(bands []NoiseBand, v float64) *terrain.Type {
	for _, b := range bands {
		if v <= b.Max {
			return b.Terrain
		}
	}
	return bands[len(bands)-1].Terrain
}

// octaveNoise 叠加多个频率的噪声，结果仍在 [0,1)。
func octaveNoise(noise opensimplex.Noise, x, y float64, params NoiseParams) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	frequency := params.Frequency
	for i := 0; i < params.Octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= params.Persistence
		frequency *= 2
	}
	return total / maxVal
}
