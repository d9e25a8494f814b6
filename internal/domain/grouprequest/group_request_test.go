package grouprequest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsair-platform/service-groupdesk/internal/domain/shared"
)

func newTestRequest(t *testing.T) *GroupRequest {
	t.Helper()
	gr, err := NewGroupRequest(
		ContactInfo{FirstName: "Nuwan", LastName: "Perera", Email: "nuwan@example.com"},
		"Island Tours",
		"DAC", "KUL",
		RoutingOneWay,
		nil,
		PaxCounts{Adult: 20, Child: 4},
		"", "2026-09-15", "",
		CategoryAgent,
		"CMB", "LKR",
		GroupTypeEducation,
		"", "", "",
	)
	require.NoError(t, err)
	return gr
}

func TestNewGroupRequest_Defaults(t *testing.T) {
	gr := newTestRequest(t)

	assert.Equal(t, StatusNew, gr.Status())
	assert.Equal(t, int64(1), gr.Version())
	assert.NotEmpty(t, gr.RequestDate())
	require.Len(t, gr.Segments(), 2)
	assert.Equal(t, "DAC-CMB-KUL", gr.Route())
}

func TestNewGroupRequest_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ContactInfo, *string, *PaxCounts, *RoutingType, *string)
	}{
		{"missing email", func(c *ContactInfo, agent *string, pax *PaxCounts, r *RoutingType, ret *string) {
			c.Email = ""
		}},
		{"missing agent name", func(c *ContactInfo, agent *string, pax *PaxCounts, r *RoutingType, ret *string) {
			*agent = ""
		}},
		{"no adults", func(c *ContactInfo, agent *string, pax *PaxCounts, r *RoutingType, ret *string) {
			pax.Adult = 0
		}},
		{"return routing without return date", func(c *ContactInfo, agent *string, pax *PaxCounts, r *RoutingType, ret *string) {
			*r = RoutingReturn
			*ret = ""
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contact := ContactInfo{Email: "a@b.com"}
			agent := "Island Tours"
			pax := PaxCounts{Adult: 10}
			routing := RoutingOneWay
			returnDate := ""
			tt.mutate(&contact, &agent, &pax, &routing, &returnDate)

			_, err := NewGroupRequest(contact, agent, "DAC", "KUL", routing, nil, pax,
				"", "2026-09-15", returnDate, CategoryAgent, "CMB", "LKR", "", "", "", "")
			require.Error(t, err)
			assert.Equal(t, shared.KindValidation, shared.KindOf(err))
		})
	}
}

func TestNewGroupRequest_RejectsDegenerateEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
	}{
		{"identical endpoints", "CMB", "CMB"},
		{"identical endpoints after normalization", "cmb", " CMB "},
		{"missing origin", "", "KUL"},
		{"missing destination", "DAC", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gr, err := NewGroupRequest(
				ContactInfo{Email: "a@b.com"}, "Island Tours",
				tt.from, tt.to, RoutingOneWay, nil,
				PaxCounts{Adult: 10},
				"", "2026-09-15", "", CategoryAgent, "CMB", "LKR", "", "", "", "",
			)
			require.Error(t, err)
			assert.Nil(t, gr)
			assert.Equal(t, shared.KindValidation, shared.KindOf(err))
		})
	}
}

func TestNewGroupRequest_RejectsSelfLoopSegment(t *testing.T) {
	_, err := NewGroupRequest(
		ContactInfo{Email: "a@b.com"}, "Island Tours",
		"DAC", "KUL", RoutingOneWay,
		[]Segment{{From: "DAC", To: "DAC"}},
		PaxCounts{Adult: 10},
		"", "2026-09-15", "", CategoryAgent, "CMB", "LKR", "", "", "", "",
	)
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestAssignToRouteController(t *testing.T) {
	gr := newTestRequest(t)

	require.NoError(t, gr.AssignToRouteController("rc.silva"))
	assert.Equal(t, StatusReviewing, gr.Status())
	require.NotNil(t, gr.AssignedRcUsername())
	assert.Equal(t, "rc.silva", *gr.AssignedRcUsername())

	// Not assignable twice.
	err := gr.AssignToRouteController("rc.fernando")
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestWorkflowHappyPath(t *testing.T) {
	gr := newTestRequest(t)

	require.NoError(t, gr.AssignToRouteController("rc.silva"))
	require.NoError(t, gr.MarkQuoted())
	require.NoError(t, gr.ConfirmWithFare("125000.00"))
	require.NotNil(t, gr.QuotedFare())
	assert.Equal(t, "125000.00", *gr.QuotedFare())
	require.NoError(t, gr.MarkTicketed())
	assert.Equal(t, StatusTicketed, gr.Status())
}

func TestMarkQuoted_RequiresReviewing(t *testing.T) {
	gr := newTestRequest(t)

	err := gr.MarkQuoted()
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestMarkTicketed_AllowedFromAnyLiveStatus(t *testing.T) {
	gr := newTestRequest(t)
	require.NoError(t, gr.MarkTicketed())

	// Repeat ticketing is rejected.
	err := gr.MarkTicketed()
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestMarkTicketed_RejectedWhenCancelled(t *testing.T) {
	gr := newTestRequest(t)
	require.NoError(t, gr.Cancel("customer withdrew"))

	err := gr.MarkTicketed()
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestCancel_RecordsNoteAndBlocksFurtherMoves(t *testing.T) {
	gr := newTestRequest(t)

	require.NoError(t, gr.Cancel("dates no longer work"))
	assert.Equal(t, StatusCancelled, gr.Status())
	assert.Equal(t, "dates no longer work", gr.CancelNote())

	err := gr.Cancel("again")
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestIssuePNR(t *testing.T) {
	gr := newTestRequest(t)

	require.NoError(t, gr.IssuePNR("AB12CD"))
	require.NotNil(t, gr.PNRCode())
	assert.Equal(t, "AB12CD", *gr.PNRCode())

	err := gr.IssuePNR("XY34ZW")
	assert.Equal(t, shared.KindAlreadyIssued, shared.KindOf(err))
}

func TestIssuePNR_Format(t *testing.T) {
	invalid := []string{"ab12cd", "A1", "ABCDEFGHI", "AB12-CD", ""}
	for _, code := range invalid {
		gr := newTestRequest(t)
		err := gr.IssuePNR(code)
		assert.Equal(t, shared.KindInvalidFormat, shared.KindOf(err), "code %q", code)
	}

	for _, code := range []string{"ABC123", "ABCD1234", "ZZZZZZ"} {
		gr := newTestRequest(t)
		assert.NoError(t, gr.IssuePNR(code), "code %q", code)
	}
}

func TestDeletable_OnlyWhileNew(t *testing.T) {
	gr := newTestRequest(t)
	assert.True(t, gr.Deletable())

	require.NoError(t, gr.AssignToRouteController("rc.silva"))
	assert.False(t, gr.Deletable())
}

func TestUpdateSegmentDate(t *testing.T) {
	gr := newTestRequest(t)

	require.NoError(t, gr.UpdateSegmentDate(2, "2026-09-16"))
	assert.Equal(t, "2026-09-16", gr.Segments()[1].Date)

	err := gr.UpdateSegmentDate(3, "2026-09-16")
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	err = gr.UpdateSegmentDate(1, "16/09/2026")
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestUpdateSegmentExtras(t *testing.T) {
	gr := newTestRequest(t)

	extras := SegmentExtras{ExtraBaggageKg: 15, Meal: "AVML", SpecialRequirements: []string{"WCHR"}}
	require.NoError(t, gr.UpdateSegmentExtras(1, extras))
	assert.Equal(t, extras, gr.Segments()[0].Extras)

	err := gr.UpdateSegmentExtras(0, extras)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestUpdateDetails(t *testing.T) {
	gr := newTestRequest(t)

	err := gr.UpdateDetails(
		ContactInfo{Email: "new@example.com"},
		"Lanka Travels",
		PaxCounts{Adult: 25},
		"2026-10-01", "", "UL318", "kosher meals",
	)
	require.NoError(t, err)
	assert.Equal(t, "Lanka Travels", gr.AgentName())
	assert.Equal(t, "2026-10-01", gr.DepartureDate())
	assert.Equal(t, "UL318", gr.FlightNumber())

	require.NoError(t, gr.Cancel("done"))
	err = gr.UpdateDetails(ContactInfo{Email: "x@y.com"}, "A", PaxCounts{Adult: 1}, "", "", "", "")
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestIncrementVersion(t *testing.T) {
	gr := newTestRequest(t)
	gr.IncrementVersion()
	assert.Equal(t, int64(2), gr.Version())
}
