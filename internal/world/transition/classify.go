package transition

// Classify 把“哪些方向的邻居顶层地形不同”映射成唯一的过渡形状。
//
// 按优先级逐条匹配，第一条命中即返回；多条结构上都能命中时靠顺序决胜，不要合并或重排。
//  1. allowSingle 时的单格宽图案（四面、三面、对边）
//  2. 外角 + 对角内凹
//  3. 外角
//  4. 单一正方向 + 远侧内凹
//  5. 单一正方向
//  6. 只有对角方向
//
// 都不匹配（包括空集）返回 None，调用方按“不需要过渡”处理。
func Classify(dirs DirSet, allowSingle bool) Shape {
	n := dirs.Has(North)
	s := dirs.Has(South)
	w := dirs.Has(West)
	e := dirs.Has(East)
	nw := dirs.Has(Northwest)
	ne := dirs.Has(Northeast)
	sw := dirs.Has(Southwest)
	se := dirs.Has(Southeast)

	if allowSingle {
		switch {
		case n && s && w && e:
			return Single
		case n && w && e && !s:
			return NorthSingle
		case s && w && e && !n:
			return SouthSingle
		case w && n && s && !e:
			return WestSingle
		case e && n && s && !w:
			return EastSingle
		case n && s && !w && !e:
			return NorthSouth
		case w && e && !n && !s:
			return WestEast
		}
	}

	switch {
	case n && w && se && !s && !e:
		return NorthwestOuterSoutheastInner
	case n && e && sw && !s && !w:
		return NortheastOuterSouthwestInner
	case s && w && ne && !n && !e:
		return SouthwestOuterNortheastInner
	case s && e && nw && !n && !w:
		return SoutheastOuterNorthwestInner
	}

	switch {
	case n && w && !s && !e:
		return NorthwestOuter
	case n && e && !s && !w:
		return NortheastOuter
	case s && w && !n && !e:
		return SouthwestOuter
	case s && e && !n && !w:
		return SoutheastOuter
	}

	onlyN := n && !s && !w && !e
	onlyS := s && !n && !w && !e
	onlyW := w && !n && !s && !e
	onlyE := e && !n && !s && !w

	switch {
	case onlyN && sw && se:
		return NorthSouthwestInnerSoutheastInner
	case onlyN && sw:
		return NorthSouthwestInner
	case onlyN && se:
		return NorthSoutheastInner
	case onlyS && nw && ne:
		return SouthNorthwestInnerNortheastInner
	case onlyS && nw:
		return SouthNorthwestInner
	case onlyS && ne:
		return SouthNortheastInner
	case onlyW && ne && se:
		return WestNortheastInnerSoutheastInner
	case onlyW && ne:
		return WestNortheastInner
	case onlyW && se:
		return WestSoutheastInner
	case onlyE && nw && sw:
		return EastNorthwestInnerSouthwestInner
	case onlyE && nw:
		return EastNorthwestInner
	case onlyE && sw:
		return EastSouthwestInner
	}

	switch {
	case onlyN:
		return NorthShape
	case onlyS:
		return SouthShape
	case onlyW:
		return WestShape
	case onlyE:
		return EastShape
	}

	if n || s || w || e {
		return None
	}

	switch {
	case nw && ne && sw && se:
		return NorthwestNortheastSouthwestSoutheastInner
	case nw && ne && sw:
		return NorthwestNortheastSouthwestInner
	case nw && ne && se:
		return NorthwestNortheastSoutheastInner
	case nw && sw && se:
		return NorthwestSouthwestSoutheastInner
	case ne && sw && se:
		return NortheastSouthwestSoutheastInner
	case nw && ne:
		return NorthwestNortheastInner
	case sw && se:
		return SouthwestSoutheastInner
	case nw && sw:
		return NorthwestSouthwestInner
	case ne && se:
		return NortheastSoutheastInner
	case nw && se:
		return NorthwestSoutheastInner
	case ne && sw:
		return NortheastSouthwestInner
	case nw:
		return NorthwestInner
	case ne:
		return NortheastInner
	case sw:
		return SouthwestInner
	case se:
		return SoutheastInner
	}
	return None
}
