package entity

import (
	"github.com/emirpasic/gods/sets/linkedhashset"
)

// Landmass 是同一水/陆/太空分类的连通区域。相邻关系对称，只记 id。
type Landmass struct {
	ID    LandmassID
	World string

	borders *linkedhashset.Set
}

func NewLandmass(id LandmassID, world string) *Landmass {
	return &Landmass{
		ID:      id,
		World:   world,
		borders: linkedhashset.New(),
	}
}

func (m *Landmass) AddBorder(id LandmassID) {
	if id == 0 || id == m.ID {
		return
	}
	m.borders.Add(id)
}

func (m *Landmass) HasBorder(id LandmassID) bool {
	return m.borders.Contains(id)
}

// Borders 按加入顺序返回。
func (m *Landmass) Borders() []LandmassID {
	vals := m.borders.Values()
	out := make([]LandmassID, 0, len(vals))
	for _, v := range vals {
		out = append(out, v.(LandmassID))
	}
	return out
}
