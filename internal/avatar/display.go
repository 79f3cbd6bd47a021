package avatar

import "github.com/diogo/companion/internal/models"

// Info describes how a sentiment is shown to the user
type Info struct {
	Label       string
	Emoji       string
	Description string
	Color       string
}

var sentimentInfo = map[models.Sentiment]Info{
	models.SentimentPositive: {Label: "Positive", Emoji: "😊", Description: "You seem to be feeling good!", Color: "#4caf50"},
	models.SentimentNeutral:  {Label: "Neutral", Emoji: "😐", Description: "You seem to be feeling okay.", Color: "#2196f3"},
	models.SentimentNegative: {Label: "Concerned", Emoji: "😔", Description: "You seem to be feeling down.", Color: "#ff9800"},
}

// SentimentInfo returns the display info for s. Unknown values show as neutral.
func SentimentInfo(s models.Sentiment) Info {
	if info, ok := sentimentInfo[s]; ok {
		return info
	}
	return sentimentInfo[models.SentimentNeutral]
}

// Face returns a small text face for an animation
func Face(a models.Animation) []string {
	switch a {
	case models.AnimationHappy:
		return []string{
			"╭───────╮",
			"│ ^   ^ │",
			"│  ╰─╯  │",
			"╰───────╯",
		}
	case models.AnimationConcerned:
		return []string{
			"╭───────╮",
			"│ ╥   ╥ │",
			"│  ╭─╮  │",
			"╰───────╯",
		}
	default:
		return []string{
			"╭───────╮",
			"│ •   • │",
			"│  ───  │",
			"╰───────╯",
		}
	}
}
