package grouprequest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplan_OneWayThroughHub(t *testing.T) {
	plan := Replan("DAC", "KUL", RoutingOneWay, DefaultHub, nil)

	require.Len(t, plan, 2)
	assert.Equal(t, "DAC", plan[0].From)
	assert.Equal(t, "CMB", plan[0].To)
	assert.Equal(t, "CMB", plan[1].From)
	assert.Equal(t, "KUL", plan[1].To)
}

func TestReplan_OneWayFromHub(t *testing.T) {
	plan := Replan("CMB", "KUL", RoutingOneWay, DefaultHub, nil)

	require.Len(t, plan, 1)
	assert.Equal(t, "CMB", plan[0].From)
	assert.Equal(t, "KUL", plan[0].To)
}

func TestReplan_OneWayToHub(t *testing.T) {
	plan := Replan("DAC", "CMB", RoutingOneWay, DefaultHub, nil)

	require.Len(t, plan, 1)
	assert.Equal(t, "DAC", plan[0].From)
	assert.Equal(t, "CMB", plan[0].To)
}

func TestReplan_ReturnBetweenNonHubAirports(t *testing.T) {
	plan := Replan("DAC", "KUL", RoutingReturn, DefaultHub, nil)

	require.Len(t, plan, 4)
	assert.Equal(t, Segment{From: "DAC", To: "CMB"}, plan[0])
	assert.Equal(t, Segment{From: "CMB", To: "KUL"}, plan[1])
	assert.Equal(t, Segment{From: "KUL", To: "CMB"}, plan[2])
	assert.Equal(t, Segment{From: "CMB", To: "DAC"}, plan[3])
}

func TestReplan_ReturnTouchingHub(t *testing.T) {
	plan := Replan("CMB", "SIN", RoutingReturn, DefaultHub, nil)

	require.Len(t, plan, 2)
	assert.Equal(t, Segment{From: "CMB", To: "SIN"}, plan[0])
	assert.Equal(t, Segment{From: "SIN", To: "CMB"}, plan[1])
}

func TestReplan_NormalizesCaseAndWhitespace(t *testing.T) {
	plan := Replan(" dac ", "kul", RoutingOneWay, "cmb", nil)

	require.Len(t, plan, 2)
	assert.Equal(t, "DAC", plan[0].From)
	assert.Equal(t, "CMB", plan[0].To)
}

func TestReplan_PreservesDatesAndExtrasByPosition(t *testing.T) {
	previous := []Segment{
		{From: "DAC", To: "CMB", Date: "2026-09-10", Extras: SegmentExtras{Meal: "VGML", ExtraBaggageKg: 10}},
		{From: "CMB", To: "KUL", Date: "2026-09-11"},
	}

	plan := Replan("DAC", "SIN", RoutingReturn, DefaultHub, previous)

	require.Len(t, plan, 4)
	assert.Equal(t, "2026-09-10", plan[0].Date)
	assert.Equal(t, "VGML", plan[0].Extras.Meal)
	assert.Equal(t, 10.0, plan[0].Extras.ExtraBaggageKg)
	assert.Equal(t, "2026-09-11", plan[1].Date)
	assert.Empty(t, plan[2].Date)
	assert.Empty(t, plan[3].Date)
}

func TestReplan_DegenerateEndpointsYieldNoPlan(t *testing.T) {
	require.Empty(t, Replan("", "KUL", RoutingOneWay, DefaultHub, nil))
	require.Empty(t, Replan("DAC", "", RoutingOneWay, DefaultHub, nil))
	require.Empty(t, Replan("DAC", "DAC", RoutingReturn, DefaultHub, nil))
	require.Empty(t, Replan("cmb", " CMB ", RoutingOneWay, DefaultHub, nil))
}
