// Package progression converts experience awards into cumulative totals and
// levels. Everything here is a pure function: same input, same output.
package progression

import (
	"github.com/platewatch/platewatch/internal/models"
)

// Reference reward constants. Config may override them through Rewards.
const (
	DefaultPositiveReward       = 30
	DefaultNegativeReward       = 25
	DefaultLocationBonus        = 5
	DefaultDetailedReasonBonus  = 10
	DefaultDetailedReasonLength = 20
)

// levelThresholds is the fixed ascending table of cumulative-experience
// thresholds, 1-based by level. Experience beyond the last entry keeps the
// maximum level.
var levelThresholds = []int64{
	0, 100, 250, 500, 1000, 2000, 3500, 5000,
	7500, 10000, 15000, 20000, 30000, 50000, 75000,
}

// MaxLevel is the highest level the table defines.
const MaxLevel = 15

// Rewards holds the experience award constants.
type Rewards struct {
	PositiveReward       int
	NegativeReward       int
	LocationBonus        int
	DetailedReasonBonus  int
	DetailedReasonLength int
}

// DefaultRewards returns the reference constants.
func DefaultRewards() Rewards {
	return Rewards{
		PositiveReward:       DefaultPositiveReward,
		NegativeReward:       DefaultNegativeReward,
		LocationBonus:        DefaultLocationBonus,
		DetailedReasonBonus:  DefaultDetailedReasonBonus,
		DetailedReasonLength: DefaultDetailedReasonLength,
	}
}

// Award computes the experience award for an accepted tag.
func (r Rewards) Award(polarity models.Polarity, hasCoordinate bool, reasonLength int) int {
	base := r.NegativeReward
	if polarity == models.PolarityPositive {
		base = r.PositiveReward
	}

	bonus := 0
	if hasCoordinate {
		bonus += r.LocationBonus
	}
	if reasonLength > r.DetailedReasonLength {
		bonus += r.DetailedReasonBonus
	}

	return base + bonus
}

// LevelFor returns the level for a cumulative experience total:
// 1 + the count of thresholds at or below the total, saturating at the
// table's last level.
func LevelFor(experience int64) int {
	level := 0
	for _, threshold := range levelThresholds {
		if experience < threshold {
			break
		}
		level++
	}
	if level == 0 {
		level = 1 // negative totals cannot occur, but never report level 0
	}
	return level
}

// Update describes the outcome of applying an award.
type Update struct {
	Experience int64 // new cumulative total
	Level      int   // level for the new total
	LeveledUp  bool  // true when the award crossed a threshold
}

// Apply computes the progression update for an award on top of a cumulative
// total.
func Apply(current int64, award int) Update {
	next := current + int64(award)
	newLevel := LevelFor(next)
	return Update{
		Experience: next,
		Level:      newLevel,
		LeveledUp:  newLevel > LevelFor(current),
	}
}
