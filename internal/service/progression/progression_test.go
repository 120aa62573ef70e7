package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/platewatch/platewatch/internal/models"
)

func TestAward_BaseValues(t *testing.T) {
	r := DefaultRewards()

	assert.Equal(t, 25, r.Award(models.PolarityNegative, false, 10))
	assert.Equal(t, 30, r.Award(models.PolarityPositive, false, 10))
}

func TestAward_BonusStacking(t *testing.T) {
	r := DefaultRewards()

	// Location and detailed-reason bonuses stack on the base.
	assert.Equal(t, 45, r.Award(models.PolarityPositive, true, 30))
	assert.Equal(t, 35, r.Award(models.PolarityPositive, true, 10))
	assert.Equal(t, 40, r.Award(models.PolarityPositive, false, 30))
}

func TestAward_DetailedReasonBoundary(t *testing.T) {
	r := DefaultRewards()

	// Bonus requires strictly more than 20 characters.
	assert.Equal(t, 25, r.Award(models.PolarityNegative, false, 20))
	assert.Equal(t, 35, r.Award(models.PolarityNegative, false, 21))
}

func TestLevelFor_ReferencePoints(t *testing.T) {
	tests := []struct {
		experience int64
		level      int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{75000, 15},
		{1000000, 15}, // saturates at the table's last level
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelFor(tt.experience), "experience=%d", tt.experience)
	}
}

func TestLevelFor_Monotonic(t *testing.T) {
	prev := 0
	for exp := int64(0); exp <= 80000; exp += 50 {
		level := LevelFor(exp)
		assert.GreaterOrEqual(t, level, prev, "level regressed at experience=%d", exp)
		prev = level
	}
}

func TestApply_LevelUpDetection(t *testing.T) {
	// 90 + 25 = 115 crosses the 100 threshold into level 2.
	u := Apply(90, 25)
	assert.Equal(t, int64(115), u.Experience)
	assert.Equal(t, 2, u.Level)
	assert.True(t, u.LeveledUp)
}

func TestApply_NoLevelUpWithinBand(t *testing.T) {
	u := Apply(10, 25)
	assert.Equal(t, int64(35), u.Experience)
	assert.Equal(t, 1, u.Level)
	assert.False(t, u.LeveledUp)
}

func TestApply_CanCrossMultipleThresholds(t *testing.T) {
	u := Apply(95, 200) // 295: crosses 100 and 250
	assert.Equal(t, 3, u.Level)
	assert.True(t, u.LeveledUp)
}
