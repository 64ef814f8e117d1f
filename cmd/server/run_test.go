package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James9446/patricia-james-sub001/internal/config"
)

func TestEventFromConfig(t *testing.T) {
	ev, err := eventFromConfig(config.EventConfig{
		Couple:   "Patricia & James",
		Date:     "June 14, 2025",
		Timezone: "America/New_York",
	})
	require.NoError(t, err)
	assert.Equal(t, "Patricia & James", ev.Couple)
	assert.Equal(t, "America/New_York", ev.Location.String())

	ev, err = eventFromConfig(config.EventConfig{})
	require.NoError(t, err)
	assert.Equal(t, time.Local, ev.Location)

	_, err = eventFromConfig(config.EventConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}
