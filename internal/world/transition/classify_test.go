package transition

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify_全部输入确定且合法(t *testing.T) {
	for _, allowSingle := range []bool{true, false} {
		for v := 0; v < 256; v++ {
			dirs := DirSet(v)
			first := Classify(dirs, allowSingle)
			require.Equal(t, first, Classify(dirs, allowSingle), "dirs=%08b allowSingle=%v", v, allowSingle)
			require.True(t, first == None || first.Valid(), "dirs=%08b 返回了越界形状 %d", v, first)
		}
	}
}

func TestClassify_空集返回None(t *testing.T) {
	require.Equal(t, None, Classify(0, true))
	require.Equal(t, None, Classify(0, false))
}

func TestClassify_直边只给单方向(t *testing.T) {
	// A 在西、B 在东的南北向直边：A 侧看到东、东北、东南三个方向不同
	westSide := Dirs(East, Northeast, Southeast)
	require.Equal(t, EastShape, Classify(westSide, false))
	require.Equal(t, EastShape, Classify(westSide, true))

	eastSide := Dirs(West, Northwest, Southwest)
	require.Equal(t, WestShape, Classify(eastSide, false))
	require.Equal(t, WestShape, Classify(eastSide, true))
}

func TestClassify_单格图案只在允许时出现(t *testing.T) {
	require.Equal(t, Single, Classify(Dirs(North, South, West, East), true))
	require.Equal(t, None, Classify(Dirs(North, South, West, East), false))

	require.Equal(t, NorthSouth, Classify(Dirs(North, South), true))
	require.Equal(t, None, Classify(Dirs(North, South), false))

	require.Equal(t, NorthSingle, Classify(Dirs(North, West, East), true))
	require.Equal(t, None, Classify(Dirs(North, West, East), false))
}

func TestClassify_优先级顺序(t *testing.T) {
	cases := []struct {
		dirs DirSet
		want Shape
	}{
		{Dirs(North, West, Southeast), NorthwestOuterSoutheastInner},
		{Dirs(North, West, Northeast, Southwest), NorthwestOuter},
		{Dirs(South, East, Northwest), SoutheastOuterNorthwestInner},
		{Dirs(North, Southwest, Southeast), NorthSouthwestInnerSoutheastInner},
		{Dirs(North, Northwest, Northeast, Southeast), NorthSoutheastInner},
		{Dirs(West, Northeast), WestNortheastInner},
		{Dirs(East, Northwest, Southwest), EastNorthwestInnerSouthwestInner},
		{Dirs(South), SouthShape},
		{Dirs(Northwest, Northeast, Southwest, Southeast), NorthwestNortheastSouthwestSoutheastInner},
		{Dirs(Northeast, Southwest, Southeast), NortheastSouthwestSoutheastInner},
		{Dirs(Northwest, Southeast), NorthwestSoutheastInner},
		{Dirs(Southwest), SouthwestInner},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Classify(c.dirs, false), "dirs=%08b", c.dirs)
	}
}

func TestParseShape_名字往返(t *testing.T) {
	for _, s := range Shapes() {
		got, err := ParseShape(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	require.Len(t, Shapes(), 46)
	_, err := ParseShape("diagonal")
	require.Error(t, err)
}

func TestScanOrder_覆盖全部方向(t *testing.T) {
	var all DirSet
	for _, d := range ScanOrder {
		all = all.With(d)
		dx, dy := d.Offset()
		back, ok := DirectionFromOffset(dx, dy)
		require.True(t, ok)
		require.Equal(t, d, back)
	}
	require.Equal(t, 8, all.Len())
	_, ok := DirectionFromOffset(0, 0)
	require.False(t, ok)
}
