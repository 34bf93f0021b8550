package entity

import (
	"Wyrmgus/internal/world/terrain"
	"Wyrmgus/internal/world/transition"
)

// Transition 是一条过渡：对着哪种地形、用哪张图块。
type Transition struct {
	Terrain *terrain.Type
	Tile    int
}

// SeenTile 是某个玩家视野里最后一次看到的样子。
type SeenTile struct {
	Terrain            *terrain.Type
	Overlay            *terrain.Type
	SolidTile          int
	OverlaySolidTile   int
	Transitions        []Transition
	OverlayTransitions []Transition
	Owner              PlayerID
}

type Tile struct {
	Terrain            *terrain.Type
	Overlay            *terrain.Type
	SolidTile          int
	OverlaySolidTile   int
	Transitions        []Transition
	OverlayTransitions []Transition
	Flags              terrain.Flag
	OverlayDestroyed   bool
	OverlayDamaged     bool
	Value              int

	Owner           PlayerID
	Settlement      SettlementID
	Landmass        LandmassID
	Feature         FeatureID
	OwnershipBorder transition.Shape

	Seen map[PlayerID]*SeenTile
}

func newTile() Tile {
	return Tile{Owner: NoPlayer, OwnershipBorder: transition.None}
}

// TopTerrain：未被摧毁的覆盖层优先，否则是基础地形。
func (t *Tile) TopTerrain() *terrain.Type {
	if t.Overlay != nil && !t.OverlayDestroyed {
		return t.Overlay
	}
	return t.Terrain
}

// LayerTerrain 返回基础层或覆盖层的地形（覆盖层被摧毁也照样返回）。
func (t *Tile) LayerTerrain(overlay bool) *terrain.Type {
	if overlay {
		return t.Overlay
	}
	return t.Terrain
}

// AdjacencyTerrain 是邻居比较时看到的地形：被摧毁的覆盖层视为空。
func (t *Tile) AdjacencyTerrain(overlay bool) *terrain.Type {
	if overlay {
		if t.OverlayDestroyed {
			return nil
		}
		return t.Overlay
	}
	return t.Terrain
}

func (t *Tile) LayerTransitions(overlay bool) []Transition {
	if overlay {
		return t.OverlayTransitions
	}
	return t.Transitions
}

func (t *Tile) SetLayerTransitions(overlay bool, list []Transition) {
	if overlay {
		t.OverlayTransitions = list
		return
	}
	t.Transitions = list
}

func (t *Tile) SetLayerSolidTile(overlay bool, tile int) {
	if overlay {
		t.OverlaySolidTile = tile
		return
	}
	t.SolidTile = tile
}

func (t *Tile) LayerSolidTile(overlay bool) int {
	if overlay {
		return t.OverlaySolidTile
	}
	return t.SolidTile
}

// HasTransitions：基础层和覆盖层都算。
func (t *Tile) HasTransitions() bool {
	return len(t.Transitions) > 0 || len(t.OverlayTransitions) > 0
}

// SetTerrain 放置地形；nil 表示清空基础地形。
// 放基础地形时，如果现有覆盖层不能压在新地形上就一并移除。
func (t *Tile) SetTerrain(tt *terrain.Type) {
	if tt != nil && tt.Overlay {
		t.Overlay = tt
		t.OverlayDestroyed = false
		t.OverlayDamaged = false
		t.OverlayTransitions = nil
		t.Value = tt.DefaultValue
		t.RecomputeFlags()
		return
	}
	t.Terrain = tt
	t.Transitions = nil
	if t.Overlay != nil && tt != nil && len(t.Overlay.BaseTerrains()) > 0 && !t.Overlay.IsBaseTerrain(tt) {
		t.clearOverlay()
	}
	t.RecomputeFlags()
}

func (t *Tile) RemoveOverlay() {
	t.clearOverlay()
	t.RecomputeFlags()
}

func (t *Tile) clearOverlay() {
	t.Overlay = nil
	t.OverlaySolidTile = 0
	t.OverlayTransitions = nil
	t.OverlayDestroyed = false
	t.OverlayDamaged = false
	t.Value = 0
}

// DestroyOverlay 把覆盖层标为摧毁：清掉它的 flag，换上后继 flag（树桩/碎石）。
func (t *Tile) DestroyOverlay() bool {
	if t.Overlay == nil || t.OverlayDestroyed {
		return false
	}
	t.OverlayDestroyed = true
	t.OverlayDamaged = false
	t.Value = 0
	t.RecomputeFlags()
	return true
}

func (t *Tile) DamageOverlay() bool {
	if t.Overlay == nil || t.OverlayDestroyed || t.OverlayDamaged {
		return false
	}
	t.OverlayDamaged = true
	return true
}

// RecomputeFlags 按当前地形重算地形类 flag，占用类 flag 保留。
func (t *Tile) RecomputeFlags() {
	f := t.Flags &^ terrain.TerrainFlags
	if t.Terrain != nil {
		f |= t.Terrain.Flags
	}
	if t.Overlay != nil {
		if t.OverlayDestroyed {
			f |= t.Overlay.DestroyedFlags
		} else {
			f |= t.Overlay.Flags
		}
	}
	t.Flags = f
}

// IsWater：水或海岸，地块分区按这个分类。
func (t *Tile) IsWater() bool {
	return t.Flags.Any(terrain.FlagWater | terrain.FlagCoast)
}

func (t *Tile) IsSpace() bool {
	return t.Flags.Any(terrain.FlagSpace)
}

func (t *Tile) IsSpaceCliff() bool {
	return t.Flags.Any(terrain.FlagSpaceCliff)
}

// MarkSeen 记录玩家当前看到的样子。
func (t *Tile) MarkSeen(player PlayerID) {
	if t.Seen == nil {
		t.Seen = make(map[PlayerID]*SeenTile)
	}
	t.Seen[player] = &SeenTile{
		Terrain:            t.Terrain,
		Overlay:            t.TopOverlayForSeen(),
		SolidTile:          t.SolidTile,
		OverlaySolidTile:   t.OverlaySolidTile,
		Transitions:        append([]Transition(nil), t.Transitions...),
		OverlayTransitions: append([]Transition(nil), t.OverlayTransitions...),
		Owner:              t.Owner,
	}
}

// TopOverlayForSeen：被摧毁的覆盖层在视野里不再显示。
func (t *Tile) TopOverlayForSeen() *terrain.Type {
	if t.OverlayDestroyed {
		return nil
	}
	return t.Overlay
}
