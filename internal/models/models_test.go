package models

import (
	"testing"

	"soloschedule/internal/interval"

	"github.com/stretchr/testify/assert"
)

func TestServiceIndex_DurationOf(t *testing.T) {
	idx := NewServiceIndex([]Service{
		{Name: "Cut", Duration: 30},
		{Name: "Broken", Duration: 0},
	})

	assert.Equal(t, 30, idx.DurationOf("Cut"))
	assert.Equal(t, DefaultServiceDuration, idx.DurationOf("Broken"))
	assert.Equal(t, DefaultServiceDuration, idx.DurationOf("Deleted"))
}

func TestWeeklyAvailability_Clone(t *testing.T) {
	w := WeeklyAvailability{"mon": {{Start: 540, End: 720}}}
	c := w.Clone()
	c["mon"][0].End = 600

	assert.Equal(t, 720, int(w["mon"][0].End))
	assert.Len(t, c, 7)
	assert.Empty(t, c["sun"])
	assert.Equal(t, []interval.Interval{{Start: 540, End: 720}}, w.Ranges("mon"))
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidStatus(StatusNoShow))
	assert.False(t, IsValidStatus("cancelled"))
	assert.True(t, IsValidBlockType(BlockTravel))
	assert.False(t, IsValidBlockType("travel"))
}

func TestBlockout_Matches(t *testing.T) {
	b := Blockout{Type: BlockBreak, Start: 780, End: 840}
	assert.True(t, b.Matches(780, 840, BlockBreak))
	assert.False(t, b.Matches(780, 840, BlockAdmin))
}
