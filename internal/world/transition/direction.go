package transition

// Direction 是相对当前瓦片的 8 个邻居方向，y 轴向南增长。
type Direction uint8

const (
	North Direction = iota
	South
	West
	East
	Northwest
	Northeast
	Southwest
	Southeast
)

// Offset 返回方向对应的 (dx, dy)。
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case West:
		return -1, 0
	case East:
		return 1, 0
	case Northwest:
		return -1, -1
	case Northeast:
		return 1, -1
	case Southwest:
		return -1, 1
	case Southeast:
		return 1, 1
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	case East:
		return "east"
	case Northwest:
		return "northwest"
	case Northeast:
		return "northeast"
	case Southwest:
		return "southwest"
	case Southeast:
		return "southeast"
	}
	return "unknown"
}

// ScanOrder 是扫描邻居的固定顺序：x 从 -1 到 1 外层，y 从 -1 到 1 内层。
// 分桶、计数、“先出现者胜”的平票规则都依赖这个顺序，不能改。
var ScanOrder = [8]Direction{
	Northwest, West, Southwest,
	North, South,
	Northeast, East, Southeast,
}

// DirectionFromOffset 把 (dx, dy) 转回方向；(0,0) 或越界返回 false。
func DirectionFromOffset(dx, dy int) (Direction, bool) {
	for _, d := range ScanOrder {
		ox, oy := d.Offset()
		if ox == dx && oy == dy {
			return d, true
		}
	}
	return 0, false
}

// DirSet 是方向集合的位掩码，一共 256 种取值。
type DirSet uint8

func Dirs(ds ...Direction) DirSet {
	var s DirSet
	for _, d := range ds {
		s = s.With(d)
	}
	return s
}

func (s DirSet) Has(d Direction) bool {
	return s&(1<<d) != 0
}

func (s DirSet) With(d Direction) DirSet {
	return s | 1<<d
}

func (s DirSet) Without(d Direction) DirSet {
	return s &^ (1 << d)
}

// Minus 去掉 o 里出现的所有方向。
func (s DirSet) Minus(o DirSet) DirSet {
	return s &^ o
}

func (s DirSet) Empty() bool {
	return s == 0
}

func (s DirSet) Len() int {
	n := 0
	for v := s; v != 0; v &= v - 1 {
		n++
	}
	return n
}
