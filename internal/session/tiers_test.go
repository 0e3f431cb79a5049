package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTierTable_NamingScheme(t *testing.T) {
	table := NewTierTable(3)
	assert.Equal(t, TierTable{"images/image1.jpg", "images/image2.jpg", "images/image3.jpg"}, table)
}

func TestNewTierTable_MinimumOneTier(t *testing.T) {
	assert.Len(t, NewTierTable(0), 1)
	assert.Len(t, NewTierTable(-5), 1)
}

func TestForLikes_SelectsSuccessiveTiers(t *testing.T) {
	table := NewTierTable(3)
	assert.Equal(t, "images/image1.jpg", table.ForLikes(1))
	assert.Equal(t, "images/image2.jpg", table.ForLikes(2))
	assert.Equal(t, "images/image3.jpg", table.ForLikes(3))
}

func TestForLikes_ClampsToLastTier(t *testing.T) {
	table := NewTierTable(3)
	assert.Equal(t, "images/image3.jpg", table.ForLikes(4))
	assert.Equal(t, "images/image3.jpg", table.ForLikes(1_000_000))
}

func TestForLikes_ClampsToFirstTier(t *testing.T) {
	table := NewTierTable(3)
	assert.Equal(t, "images/image1.jpg", table.ForLikes(0))
	assert.Equal(t, "images/image1.jpg", table.ForLikes(-1))
}
