package feedback

import "strings"

// Overlay layout used by the original capture loop: first baseline at y=30,
// each further line 20px lower. Renderers are free to ignore it.
const (
	OverlayTop        = 30
	OverlayLineHeight = 20
)

// LineOffsets returns the y offset of each of n display lines. n <= 0 yields none.
func LineOffsets(n int) []int {
	if n < 0 {
		n = 0
	}
	offsets := make([]int, n)
	for i := range offsets {
		offsets[i] = OverlayTop + i*OverlayLineHeight
	}
	return offsets
}

// SplitForOverlay breaks multi-line entries (the risk block) into single rows,
// keeping order, for renderers that cannot draw embedded newlines.
func SplitForOverlay(lines []string) []string {
	var rows []string
	for _, l := range lines {
		rows = append(rows, strings.Split(l, "\n")...)
	}
	return rows
}
