package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewRoute_AssignsPositionsInInputOrder(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	lat := decimal.RequireFromString("52.5200000")
	route, err := NewRoute(42, []StopDescriptor{
		{Name: "Warehouse", Latitude: &lat},
		{Name: "  Hub  "},
		{Name: "Door", IsReached: true},
	}, now)

	require.NoError(t, err)
	require.Len(t, route, 3)
	for i, step := range route {
		require.Equal(t, int64(42), step.OrderID)
		require.Equal(t, i+1, step.Position)
	}
	require.Equal(t, "Hub", route[1].LocationName)
	require.True(t, route[0].Latitude.Valid)
	require.True(t, route[0].Latitude.Decimal.Equal(lat))
	require.False(t, route[1].Latitude.Valid)
	require.False(t, route[0].IsReached)
	require.Nil(t, route[0].ReachedAt)
	require.True(t, route[2].IsReached)
	require.Equal(t, now, *route[2].ReachedAt)
}

func TestNewRoute_RejectsInvalidInput(t *testing.T) {
	now := time.Now()
	_, err := NewRoute(1, nil, now)
	require.ErrorIs(t, err, ErrEmptyRoute)

	_, err = NewRoute(1, []StopDescriptor{{Name: "A"}, {Name: " "}}, now)
	require.ErrorIs(t, err, ErrMissingLocationName)

	_, err = NewRoute(0, []StopDescriptor{{Name: "A"}}, now)
	require.ErrorIs(t, err, ErrInvalidOrderID)
}

func TestNewRoute_DoesNotAliasDescriptorPointers(t *testing.T) {
	desc := "left at reception"
	route, err := NewRoute(1, []StopDescriptor{{Name: "A", Description: &desc}}, time.Now())
	require.NoError(t, err)

	desc = "changed"
	require.Equal(t, "left at reception", *route[0].StatusDescription)
}

func TestSortRoute_OrdersByPositionThenID(t *testing.T) {
	route := []ShipmentStep{
		{ID: 5, Position: 2},
		{ID: 9, Position: 1},
		{ID: 3, Position: 2},
		{ID: 1, Position: 3},
	}
	SortRoute(route)

	ids := make([]int64, 0, len(route))
	for _, step := range route {
		ids = append(ids, step.ID)
	}
	require.Equal(t, []int64{9, 3, 5, 1}, ids)
}

func TestNextUnreached(t *testing.T) {
	_, ok := NextUnreached(nil)
	require.False(t, ok)

	route := []ShipmentStep{
		{ID: 1, Position: 1, IsReached: true},
		{ID: 4, Position: 3},
		{ID: 3, Position: 2},
		{ID: 2, Position: 2},
	}
	next, ok := NextUnreached(route)
	require.True(t, ok)
	require.Equal(t, int64(2), next.ID)

	for i := range route {
		route[i].IsReached = true
	}
	_, ok = NextUnreached(route)
	require.False(t, ok)
}

func TestToggleReached_LeavesReachedAtUntouched(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	step := ShipmentStep{}
	step.MarkReached(at)

	step.ToggleReached()
	require.False(t, step.IsReached)
	require.NotNil(t, step.ReachedAt)
	require.Equal(t, at, *step.ReachedAt)

	step.ToggleReached()
	require.True(t, step.IsReached)
}

func TestCloneRoute_IsDeep(t *testing.T) {
	at := time.Now()
	route := []ShipmentStep{{ID: 1, ReachedAt: &at}}
	clone := CloneRoute(route)

	*clone[0].ReachedAt = at.Add(time.Hour)
	clone[0].LocationName = "changed"
	require.Equal(t, at, *route[0].ReachedAt)
	require.Empty(t, route[0].LocationName)
	require.Nil(t, CloneRoute(nil))
}
