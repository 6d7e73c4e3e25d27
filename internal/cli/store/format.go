package store

import (
	"strconv"
	"strings"
)

// Display limits of the grade column.
const (
	MaxLimitBreakGrade = 3
	MaxCore            = 7
)

// FormatGradeAndCore renders a limit break grade as filled and empty stars
// followed by the core level, "+max" at MaxCore.
func FormatGradeAndCore(grade, core int) string {
	var b strings.Builder
	for i := 0; i < MaxLimitBreakGrade; i++ {
		if i < grade {
			b.WriteString("★")
		} else {
			b.WriteString("☆")
		}
	}
	switch {
	case core == MaxCore:
		b.WriteString(" +max")
	case core > 0:
		b.WriteString(" +" + strconv.Itoa(core))
	}
	return b.String()
}

// FormatItem renders a favorite item as rarity-level, or "" without one.
func FormatItem(rare string, level int) string {
	if rare == "" {
		return ""
	}
	return rare + "-" + strconv.Itoa(level)
}

// FormatKilo scales v to units of ten thousand, rounded.
func FormatKilo(v float64) string {
	return strconv.FormatFloat(v/10000, 'f', 0, 64)
}
