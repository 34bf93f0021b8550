package terrain

import (
	"fmt"
	"strings"
)

// Flag 是瓦片的通行/类别位掩码。
type Flag uint32

const (
	FlagLand Flag = 1 << iota
	FlagCoast
	FlagWater
	FlagNoBuilding
	FlagImpassable
	FlagWall
	FlagTree
	FlagRock
	FlagStumps
	FlagGravel
	FlagSpace
	FlagSpaceCliff
	FlagUnderground
	FlagDesert
	FlagRoad

	// 以下不来自地形，由单位/建筑占用维护，换地形时保留
	FlagBuilding
	FlagLandUnit
	FlagSeaUnit
	FlagAirUnit
)

const FlagNone Flag = 0

// TerrainFlags 是可以由地形推导出来的位，每次地形变化都会重算。
const TerrainFlags = FlagLand | FlagCoast | FlagWater | FlagNoBuilding | FlagImpassable | FlagWall |
	FlagTree | FlagRock | FlagStumps | FlagGravel | FlagSpace | FlagSpaceCliff | FlagUnderground |
	FlagDesert | FlagRoad

// OccupancyFlags 是单位/建筑占用位。
const OccupancyFlags = FlagBuilding | FlagLandUnit | FlagSeaUnit | FlagAirUnit

var flagNames = map[string]Flag{
	"land":        FlagLand,
	"coast":       FlagCoast,
	"water":       FlagWater,
	"no_building": FlagNoBuilding,
	"impassable":  FlagImpassable,
	"wall":        FlagWall,
	"tree":        FlagTree,
	"rock":        FlagRock,
	"stumps":      FlagStumps,
	"gravel":      FlagGravel,
	"space":       FlagSpace,
	"space_cliff": FlagSpaceCliff,
	"underground": FlagUnderground,
	"desert":      FlagDesert,
	"road":        FlagRoad,
	"building":    FlagBuilding,
	"land_unit":   FlagLandUnit,
	"sea_unit":    FlagSeaUnit,
	"air_unit":    FlagAirUnit,
}

func (f Flag) Has(o Flag) bool {
	return f&o == o && o != 0
}

func (f Flag) Any(o Flag) bool {
	return f&o != 0
}

func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for b := Flag(1); b != 0 && b <= FlagAirUnit; b <<= 1 {
		if f&b == 0 {
			continue
		}
		for name, v := range flagNames {
			if v == b {
				parts = append(parts, name)
				break
			}
		}
	}
	return strings.Join(parts, "|")
}

func ParseFlag(name string) (Flag, error) {
	f, ok := flagNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown terrain flag %q", name)
	}
	return f, nil
}

// ParseFlags 合并一组 flag 名字。
func ParseFlags(names []string) (Flag, error) {
	var out Flag
	for _, n := range names {
		f, err := ParseFlag(n)
		if err != nil {
			return 0, err
		}
		out |= f
	}
	return out, nil
}
