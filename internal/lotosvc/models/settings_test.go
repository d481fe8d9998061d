package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDefaults_FillsZeroFields(t *testing.T) {
	got := Settings{}.WithDefaults()

	assert.Equal(t, DefaultSettings().WinThreshold, got.WinThreshold)
	assert.Equal(t, 90, got.PoolSize)
	assert.Equal(t, 8, got.TicketSize)
	assert.Equal(t, 30, got.BoardSize)
	assert.Equal(t, 5, got.BaseGuessCount)
	assert.Equal(t, 4000, got.DrawAnimationMs)
}

func TestWithDefaults_KeepsExplicitValues(t *testing.T) {
	set := Settings{
		WinThreshold:   2,
		PoolSize:       99,
		TicketSize:     6,
		BoardSize:      25,
		BaseGuessCount: 3,
	}

	got := set.WithDefaults()

	assert.Equal(t, 2, got.WinThreshold)
	assert.Equal(t, 99, got.PoolSize)
	assert.Equal(t, 6, got.TicketSize)
	assert.Equal(t, 25, got.BoardSize)
	assert.Equal(t, 3, got.BaseGuessCount)
}

func TestWithDefaults_RejectsUnsupportedPoolSize(t *testing.T) {
	got := Settings{PoolSize: 75}.WithDefaults()

	assert.Equal(t, 90, got.PoolSize, "only 90 and 99 number pools are playable")
}

func TestWithDefaults_PrizeCountsAreNotForced(t *testing.T) {
	// a streamer may deliberately configure a board without x3 cells
	got := Settings{X1Count: 5}.WithDefaults()

	assert.Equal(t, 5, got.X1Count)
	assert.Zero(t, got.X2Count)
	assert.Zero(t, got.X3Count)
}
