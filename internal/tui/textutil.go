package tui

import "github.com/charmbracelet/x/ansi"

const ellipsis = "…"

// truncateEnd fits s into width terminal cells. Wide runes such as CJK titles
// count as two cells.
func truncateEnd(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, ellipsis)
}

// truncateMiddle keeps both ends of s, which suits URLs and error text.
func truncateMiddle(s string, width int) string {
	if width <= 0 {
		return ""
	}
	total := ansi.StringWidth(s)
	if total <= width {
		return s
	}
	if width == 1 {
		return ellipsis
	}
	keep := width - 1
	left := keep / 2
	right := keep - left
	return ansi.Truncate(s, left, "") + ellipsis + ansi.TruncateLeft(s, total-right, "")
}
