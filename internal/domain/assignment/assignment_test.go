package assignment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiftStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    GiftStatus
		to      GiftStatus
		allowed bool
	}{
		{"pending to purchased", GiftPending, GiftPurchased, true},
		{"purchased to delivered", GiftPurchased, GiftDelivered, true},
		{"purchased back to pending", GiftPurchased, GiftPending, true},
		{"delivered back to purchased", GiftDelivered, GiftPurchased, true},
		{"pending skips to delivered", GiftPending, GiftDelivered, false},
		{"delivered skips to pending", GiftDelivered, GiftPending, false},
		{"pending to pending", GiftPending, GiftPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Assignment{GiftStatus: tt.from}
			assert.Equal(t, tt.allowed, a.CanTransitionTo(tt.to))
		})
	}
}

func TestApplyGiftStatusStampsTimestamps(t *testing.T) {
	a := &Assignment{GiftStatus: GiftPending}
	now := time.Now()

	require.NoError(t, a.ApplyGiftStatus(GiftPurchased, now))
	require.NotNil(t, a.PurchasedAt)
	assert.Equal(t, now, *a.PurchasedAt)
	assert.Nil(t, a.DeliveredAt)

	later := now.Add(time.Hour)
	require.NoError(t, a.ApplyGiftStatus(GiftDelivered, later))
	require.NotNil(t, a.DeliveredAt)
	assert.Equal(t, later, *a.DeliveredAt)
	assert.Equal(t, now, *a.PurchasedAt, "purchase timestamp must survive delivery")
}

func TestApplyGiftStatusClearsTimestampOnStepBack(t *testing.T) {
	now := time.Now()
	a := &Assignment{GiftStatus: GiftPending}

	require.NoError(t, a.ApplyGiftStatus(GiftPurchased, now))
	require.NoError(t, a.ApplyGiftStatus(GiftDelivered, now))

	require.NoError(t, a.ApplyGiftStatus(GiftPurchased, now))
	assert.Nil(t, a.DeliveredAt)
	assert.NotNil(t, a.PurchasedAt)

	require.NoError(t, a.ApplyGiftStatus(GiftPending, now))
	assert.Nil(t, a.PurchasedAt)
}

func TestApplyGiftStatusRejectsSkips(t *testing.T) {
	a := &Assignment{GiftStatus: GiftPending}
	err := a.ApplyGiftStatus(GiftDelivered, time.Now())
	require.Error(t, err)
	assert.Equal(t, GiftPending, a.GiftStatus, "failed transition must not change state")
	assert.Nil(t, a.DeliveredAt)
}

func TestGiftStatusFromString(t *testing.T) {
	status, ok := GiftStatusFromString("purchased")
	assert.True(t, ok)
	assert.Equal(t, GiftPurchased, status)

	_, ok = GiftStatusFromString("wrapped")
	assert.False(t, ok)
}
