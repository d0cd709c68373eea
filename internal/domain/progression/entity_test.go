package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

func TestNewUserProgress_Defaults(t *testing.T) {
	p := NewUserProgress("user-1")

	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, 0, p.XP)
	assert.Equal(t, 1, p.Level)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestUserProgress_AddXP(t *testing.T) {
	calc := NewCalculator(500)
	p := NewUserProgress("user-1")

	result, err := p.AddXP(200, calc)
	assert.NoError(t, err)
	assert.Equal(t, 200, result.NewXP)
	assert.Equal(t, 1, result.NewLevel)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, 500, result.NextLevelThreshold)
}

func TestUserProgress_AddXP_LevelUp(t *testing.T) {
	calc := NewCalculator(500)
	p := NewUserProgress("user-1")

	_, err := p.AddXP(450, calc)
	assert.NoError(t, err)

	result, err := p.AddXP(100, calc)
	assert.NoError(t, err)
	assert.Equal(t, 550, result.NewXP)
	assert.Equal(t, 1, result.PreviousLevel)
	assert.Equal(t, 2, result.NewLevel)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 1000, result.NextLevelThreshold)
}

func TestUserProgress_AddXP_MultipleLevelsAtOnce(t *testing.T) {
	calc := NewCalculator(500)
	p := NewUserProgress("user-1")

	result, err := p.AddXP(1700, calc)
	assert.NoError(t, err)
	assert.Equal(t, 4, result.NewLevel)
	assert.True(t, result.LeveledUp)
}

func TestUserProgress_AddXP_ExactBoundary(t *testing.T) {
	calc := NewCalculator(500)
	p := NewUserProgress("user-1")

	result, err := p.AddXP(500, calc)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.NewLevel)
	assert.True(t, result.LeveledUp)
}

func TestUserProgress_AddXP_ZeroAmount(t *testing.T) {
	calc := NewCalculator(500)
	p := NewUserProgress("user-1")

	result, err := p.AddXP(0, calc)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.NewXP)
	assert.False(t, result.LeveledUp)
}

func TestUserProgress_AddXP_NegativeRejected(t *testing.T) {
	calc := NewCalculator(500)
	p := NewUserProgress("user-1")
	p.XP = 300
	p.Recalculate(calc)

	_, err := p.AddXP(-50, calc)
	assert.ErrorIs(t, err, shared.ErrNegativeValue)

	// Состояние не изменилось.
	assert.Equal(t, 300, p.XP)
	assert.Equal(t, 1, p.Level)
}

func TestUserProgress_Recalculate(t *testing.T) {
	calc := NewCalculator(500)
	p := &UserProgress{UserID: "user-1", XP: 1200, Level: 1}

	p.Recalculate(calc)
	assert.Equal(t, 3, p.Level)
}
