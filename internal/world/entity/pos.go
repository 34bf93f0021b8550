package entity

import (
	"fmt"

	"Wyrmgus/internal/world/transition"
)

type Pos struct {
	X, Y int
}

func P(x, y int) Pos { return Pos{X: x, Y: y} }

func (p Pos) Add(dx, dy int) Pos {
	return Pos{X: p.X + dx, Y: p.Y + dy}
}

// Step 返回 d 方向上的相邻坐标。
func (p Pos) Step(d transition.Direction) Pos {
	dx, dy := d.Offset()
	return p.Add(dx, dy)
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Rect 是半开区间 [Min, Max)。
type Rect struct {
	Min, Max Pos
}

func R(x0, y0, x1, y1 int) Rect {
	return Rect{Min: Pos{x0, y0}, Max: Pos{x1, y1}}
}

func (r Rect) Contains(p Pos) bool {
	return p.X >= r.Min.X && p.X < r.Max.X && p.Y >= r.Min.Y && p.Y < r.Max.Y
}

func (r Rect) Empty() bool {
	return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y
}

func (r Rect) Width() int  { return max(0, r.Max.X-r.Min.X) }
func (r Rect) Height() int { return max(0, r.Max.Y-r.Min.Y) }
func (r Rect) Area() int   { return r.Width() * r.Height() }

func (r Rect) Intersect(o Rect) Rect {
	out := Rect{
		Min: Pos{max(r.Min.X, o.Min.X), max(r.Min.Y, o.Min.Y)},
		Max: Pos{min(r.Max.X, o.Max.X), min(r.Max.Y, o.Max.Y)},
	}
	if out.Empty() {
		return Rect{}
	}
	return out
}

// IsBorder：p 在矩形内且位于最外一圈。
func (r Rect) IsBorder(p Pos) bool {
	if !r.Contains(p) {
		return false
	}
	return p.X == r.Min.X || p.Y == r.Min.Y || p.X == r.Max.X-1 || p.Y == r.Max.Y-1
}

// Positions 按 x 外层、y 内层的顺序列出所有坐标（与邻居扫描顺序一致）。
func (r Rect) Positions() []Pos {
	out := make([]Pos, 0, r.Area())
	for x := r.Min.X; x < r.Max.X; x++ {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			out = append(out, Pos{x, y})
		}
	}
	return out
}
