package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventStartsCreated(t *testing.T) {
	creatorID := uuid.New()
	minBudget := 10
	maxBudget := 50
	date := time.Now().Add(30 * 24 * time.Hour)

	ev := NewEvent("Oficina 2026", creatorID, &minBudget, &maxBudget, &date, "a1b2c3d4e5f60718")

	assert.Equal(t, StatusCreated, ev.Status)
	assert.False(t, ev.IsLocked())
	assert.True(t, ev.IsCreator(creatorID))
	assert.False(t, ev.IsCreator(uuid.New()))
	assert.NotEqual(t, uuid.Nil, ev.ID)
}

func TestStatusTransitions(t *testing.T) {
	ev := &Event{Status: StatusCreated}
	assert.True(t, ev.CanTransitionTo(StatusAssigned))

	require.NoError(t, ev.UpdateStatus(StatusAssigned))
	assert.Equal(t, StatusAssigned, ev.Status)
	assert.True(t, ev.IsLocked())

	// assigned is terminal
	assert.False(t, ev.CanTransitionTo(StatusCreated))
	assert.False(t, ev.CanTransitionTo(StatusAssigned))
	assert.Error(t, ev.UpdateStatus(StatusCreated))
}

func TestStatusFromString(t *testing.T) {
	status, ok := StatusFromString("assigned")
	assert.True(t, ok)
	assert.Equal(t, StatusAssigned, status)

	_, ok = StatusFromString("cancelled")
	assert.False(t, ok)
}

func TestStatusJSONRoundTrip(t *testing.T) {
	data, err := StatusAssigned.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"assigned"`, string(data))

	var status Status
	require.NoError(t, status.UnmarshalJSON(data))
	assert.Equal(t, StatusAssigned, status)
}
