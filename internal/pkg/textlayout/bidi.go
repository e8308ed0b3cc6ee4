package textlayout

import (
	"golang.org/x/text/unicode/bidi"
)

// visualOrder returns logical indices in left-to-right display order.
// Only right_to_left text is reordered.
func visualOrder(text []rune, dir Direction) []int {
	order := make([]int, len(text))
	for i := range order {
		order[i] = i
	}
	if dir != RightToLeft || len(text) == 0 {
		return order
	}
	return reorderByLevels(bidiLevels(text))
}

// bidiLevels resolves embedding levels for a right-to-left paragraph.
// Left-to-right runs inside it sit at level 2, right-to-left runs at 1.
func bidiLevels(text []rune) []int {
	levels := make([]int, len(text))
	for i := range levels {
		levels[i] = 1
	}

	var p bidi.Paragraph
	if _, err := p.SetString(string(text), bidi.DefaultDirection(bidi.RightToLeft)); err != nil {
		return levels
	}
	ordering, err := p.Order()
	if err != nil {
		return levels
	}

	// run.Pos() reports rune indices, end inclusive
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		start, end := run.Pos()
		lvl := 1
		if run.Direction() == bidi.LeftToRight {
			lvl = 2
		}
		for j := max(start, 0); j <= end && j < len(levels); j++ {
			levels[j] = lvl
		}
	}
	return levels
}

// reorderByLevels applies rule L2: from the highest level down to the
// lowest odd level, reverse every maximal run at that level or above.
func reorderByLevels(levels []int) []int {
	order := make([]int, len(levels))
	for i := range order {
		order[i] = i
	}
	if len(levels) == 0 {
		return order
	}

	lo, hi := levels[0], levels[0]
	for _, l := range levels {
		lo = min(lo, l)
		hi = max(hi, l)
	}
	if lo%2 == 0 {
		lo++
	}

	for lvl := hi; lvl >= lo; lvl-- {
		for i := 0; i < len(order); {
			if levels[order[i]] < lvl {
				i++
				continue
			}
			j := i
			for j < len(order) && levels[order[j]] >= lvl {
				j++
			}
			for a, b := i, j-1; a < b; a, b = a+1, b-1 {
				order[a], order[b] = order[b], order[a]
			}
			i = j
		}
	}
	return order
}
