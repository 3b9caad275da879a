package classify

import "time"

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithFloorPoints sets the default point floor for classified records
// whose table entry carries no point value.
func WithFloorPoints(points int) Option {
	return func(c *Classifier) {
		if points > 0 {
			c.floorPoints = points
		}
	}
}

// WithBonusMultiplier sets the promotional-weekday multiplier.
func WithBonusMultiplier(multiplier float64) Option {
	return func(c *Classifier) {
		if multiplier >= 1 {
			c.bonusMultiplier = multiplier
		}
	}
}

// WithBonusWeekday sets the promotional weekday.
func WithBonusWeekday(day time.Weekday) Option {
	return func(c *Classifier) {
		c.bonusWeekday = day
	}
}

// WithWinsCap bounds the recent-wins feed length.
func WithWinsCap(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.winsCap = n
		}
	}
}

// WithContextRunes bounds the length of denormalized win context fields.
func WithContextRunes(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.contextRunes = n
		}
	}
}
