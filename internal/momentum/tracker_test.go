package momentum

import (
	"pickleball-sim/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordPoint_Streaks(t *testing.T) {
	tr := NewTracker()

	streak, reported := tr.RecordPoint(domain.SidePlayer)
	assert.False(t, reported)
	assert.Equal(t, 0, streak)

	for n := 2; n <= 5; n++ {
		streak, reported = tr.RecordPoint(domain.SidePlayer)
		assert.True(t, reported)
		assert.Equal(t, n, streak)
		assert.Equal(t, n, tr.Streak(domain.SidePlayer))
		assert.Equal(t, 0, tr.Streak(domain.SideOpponent))
	}

	tr.RecordPoint(domain.SideOpponent)
	assert.Equal(t, 0, tr.Streak(domain.SidePlayer))
	assert.Equal(t, 1, tr.Streak(domain.SideOpponent))
	assert.Equal(t, 5, tr.Longest(domain.SidePlayer))
}

func TestModifier_Symmetry(t *testing.T) {
	for n := 1; n <= 10; n++ {
		tr := NewTracker()
		for i := 0; i < n; i++ {
			tr.RecordPoint(domain.SideOpponent)
		}
		assert.Equal(t, n, tr.Streak(domain.SideOpponent))
		assert.Equal(t, 0, tr.Streak(domain.SidePlayer))

		if n >= 2 {
			assert.Greater(t, tr.Modifier(domain.SideOpponent), 0.0, "streak %d", n)
			assert.Less(t, tr.Modifier(domain.SidePlayer), 0.0, "streak %d", n)
		} else {
			assert.Equal(t, 0.0, tr.Modifier(domain.SideOpponent))
			assert.Equal(t, 0.0, tr.Modifier(domain.SidePlayer))
		}
	}
}

func TestModifier_TablesCapped(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 25; i++ {
		tr.RecordPoint(domain.SidePlayer)
	}
	assert.InDelta(t, 0.10, tr.Modifier(domain.SidePlayer), 1e-9)
	assert.InDelta(t, -0.04, tr.Modifier(domain.SideOpponent), 1e-9)
}

func TestResets(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 4; i++ {
		tr.RecordPoint(domain.SideOpponent)
	}

	tr.ResetStreak(domain.SideOpponent)
	assert.Equal(t, 0, tr.Streak(domain.SideOpponent))
	assert.Equal(t, 4, tr.Longest(domain.SideOpponent), "longest survives a reset")

	tr.RecordPoint(domain.SidePlayer)
	tr.ResetForNewGame()
	assert.Equal(t, 0, tr.Streak(domain.SidePlayer))
	assert.Equal(t, 0.0, tr.Modifier(domain.SidePlayer))
}
