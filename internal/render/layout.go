package render

import "github.com/diogo/companion/internal/models"

// minBubbleWidth keeps bubbles readable in narrow terminals
const minBubbleWidth = 20

// BubbleWidth returns the maximum message bubble width for a font size. Larger sizes
// use more of the viewport so each line holds fewer, more spaced words.
func BubbleWidth(size models.FontSize, viewport int) int {
	var percent int
	switch size {
	case models.FontSmall:
		percent = 60
	case models.FontLarge:
		percent = 85
	case models.FontExtraLarge:
		percent = 95
	default:
		percent = 75
	}

	width := viewport * percent / 100
	if width < minBubbleWidth {
		width = minBubbleWidth
	}
	if viewport > 0 && width > viewport {
		width = viewport
	}
	return width
}

// BubblePadding returns the horizontal padding inside a bubble for a font size
func BubblePadding(size models.FontSize) int {
	switch size {
	case models.FontSmall:
		return 0
	case models.FontLarge:
		return 2
	case models.FontExtraLarge:
		return 3
	default:
		return 1
	}
}

// LineSpacing returns the number of blank lines between messages for a font size
func LineSpacing(size models.FontSize) int {
	if size == models.FontLarge || size == models.FontExtraLarge {
		return 2
	}
	return 1
}
