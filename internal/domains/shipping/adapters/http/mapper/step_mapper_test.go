package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	shippingdomain "github.com/Apurer/storefront-tracking/internal/domains/shipping/domain"
)

func TestFromDomainProgress_NoTracking(t *testing.T) {
	body, err := json.Marshal(FromDomainProgress(shippingdomain.NoTracking()))
	require.NoError(t, err)
	require.JSONEq(t, `{"percentage":0,"label":"No tracking"}`, string(body))
}

func TestFromDomainProgress_WithRoute(t *testing.T) {
	body, err := json.Marshal(FromDomainProgress(shippingdomain.Progress{
		Percentage: 33, CurrentStep: 1, TotalSteps: 3,
	}))
	require.NoError(t, err)
	require.JSONEq(t, `{"percentage":33,"currentStep":1,"totalSteps":3,"isDelivered":false}`, string(body))
}

func TestFromDomainRoute_EmptyIsArray(t *testing.T) {
	body, err := json.Marshal(FromDomainRoute(nil))
	require.NoError(t, err)
	require.Equal(t, "[]", string(body))
}

func TestFromDomainStep_OmitsUnsetCoordinates(t *testing.T) {
	reachedAt := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	step := shippingdomain.ShipmentStep{
		ID:           3,
		OrderID:      42,
		Position:     1,
		LocationName: "Warehouse",
		Latitude:     decimal.NewNullDecimal(decimal.RequireFromString("52.52")),
		IsReached:    true,
		ReachedAt:    &reachedAt,
	}
	got := FromDomainStep(&step)
	require.NotNil(t, got.Latitude)
	require.Equal(t, "52.52", got.Latitude.String())
	require.Nil(t, got.Longitude)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	require.NotContains(t, string(body), "longitude")
	require.Contains(t, string(body), `"reachedAt":"2024-06-01T10:00:00Z"`)
}

func TestToStopDescriptors(t *testing.T) {
	var req BuildRouteRequest
	require.NoError(t, json.Unmarshal([]byte(`{"stops":[
		{"name":"Warehouse","lat":"52.5200000","lng":13.405,"isReached":true},
		{"name":"Door","description":"ring twice"}
	]}`), &req))

	stops := ToStopDescriptors(req.Stops)
	require.Len(t, stops, 2)
	require.Equal(t, "Warehouse", stops[0].Name)
	require.True(t, stops[0].IsReached)
	require.True(t, stops[0].Latitude.Equal(decimal.RequireFromString("52.52")))
	require.True(t, stops[0].Longitude.Equal(decimal.RequireFromString("13.405")))
	require.Nil(t, stops[1].Latitude)
	require.Equal(t, "ring twice", *stops[1].Description)
}

func TestToDomainPatch_CarriesClears(t *testing.T) {
	var patch StepPatch
	require.NoError(t, json.Unmarshal([]byte(`{"isReached":false,"clear":["reachedAt","latitude"]}`), &patch))

	got := ToDomainPatch(patch)
	require.NotNil(t, got.IsReached)
	require.False(t, *got.IsReached)
	require.Equal(t, []shippingdomain.StepField{shippingdomain.FieldReachedAt, shippingdomain.FieldLatitude}, got.Clear)
	require.Nil(t, ToDomainPatch(StepPatch{}).Clear)
}
