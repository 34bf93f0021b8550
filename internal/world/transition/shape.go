package transition

import "fmt"

// Shape 是 8 邻居差异图案对应的过渡形状，是封闭枚举。
type Shape int

const None Shape = -1

const (
	NorthShape Shape = iota
	SouthShape
	WestShape
	EastShape
	NorthwestOuter
	NortheastOuter
	SouthwestOuter
	SoutheastOuter
	NorthwestInner
	NortheastInner
	SouthwestInner
	SoutheastInner
	NorthwestSoutheastInner
	NortheastSouthwestInner
	Single
	NorthSingle
	SouthSingle
	WestSingle
	EastSingle
	NorthSouth
	WestEast
	NorthwestNortheastSouthwestSoutheastInner
	NorthwestNortheastSouthwestInner
	NorthwestNortheastSoutheastInner
	NorthwestSouthwestSoutheastInner
	NortheastSouthwestSoutheastInner
	NorthwestNortheastInner
	SouthwestSoutheastInner
	NorthwestSouthwestInner
	NortheastSoutheastInner
	NorthSouthwestInnerSoutheastInner
	NorthSouthwestInner
	NorthSoutheastInner
	SouthNorthwestInnerNortheastInner
	SouthNorthwestInner
	SouthNortheastInner
	WestNortheastInnerSoutheastInner
	WestNortheastInner
	WestSoutheastInner
	EastNorthwestInnerSouthwestInner
	EastNorthwestInner
	EastSouthwestInner
	NorthwestOuterSoutheastInner
	NortheastOuterSouthwestInner
	SouthwestOuterNortheastInner
	SoutheastOuterNorthwestInner

	shapeCount
)

var shapeNames = [shapeCount]string{
	"north",
	"south",
	"west",
	"east",
	"northwest_outer",
	"northeast_outer",
	"southwest_outer",
	"southeast_outer",
	"northwest_inner",
	"northeast_inner",
	"southwest_inner",
	"southeast_inner",
	"northwest_southeast_inner",
	"northeast_southwest_inner",
	"single",
	"north_single",
	"south_single",
	"west_single",
	"east_single",
	"north_south",
	"west_east",
	"northwest_northeast_southwest_southeast_inner",
	"northwest_northeast_southwest_inner",
	"northwest_northeast_southeast_inner",
	"northwest_southwest_southeast_inner",
	"northeast_southwest_southeast_inner",
	"northwest_northeast_inner",
	"southwest_southeast_inner",
	"northwest_southwest_inner",
	"northeast_southeast_inner",
	"north_southwest_inner_southeast_inner",
	"north_southwest_inner",
	"north_southeast_inner",
	"south_northwest_inner_northeast_inner",
	"south_northwest_inner",
	"south_northeast_inner",
	"west_northeast_inner_southeast_inner",
	"west_northeast_inner",
	"west_southeast_inner",
	"east_northwest_inner_southwest_inner",
	"east_northwest_inner",
	"east_southwest_inner",
	"northwest_outer_southeast_inner",
	"northeast_outer_southwest_inner",
	"southwest_outer_northeast_inner",
	"southeast_outer_northwest_inner",
}

// ShapeCount 是有效形状的数量（不含 None）。
const ShapeCount = int(shapeCount)

func (s Shape) Valid() bool {
	return s >= 0 && s < shapeCount
}

func (s Shape) String() string {
	if s == None {
		return "none"
	}
	if !s.Valid() {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShape 按内容里的名字解析形状，大小写敏感。
func ParseShape(name string) (Shape, error) {
	if name == "none" {
		return None, nil
	}
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return None, fmt.Errorf("unknown transition shape %q", name)
}

// Shapes 返回全部有效形状，按枚举顺序。
func Shapes() []Shape {
	out := make([]Shape, 0, shapeCount)
	for s := Shape(0); s < shapeCount; s++ {
		out = append(out, s)
	}
	return out
}
