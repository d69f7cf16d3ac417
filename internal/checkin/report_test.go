package checkin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    Summary
	}{
		{"empty", nil, Summary{}},
		{
			"mixed",
			[]Record{
				{IsMember: true},
				{IsMember: true},
				{IsGuest: true},
				{}, // non-member student
			},
			Summary{Total: 4, Members: 2, Guests: 1, NonMembers: 1},
		},
		{
			"all guests",
			[]Record{{IsGuest: true}, {IsGuest: true}},
			Summary{Total: 2, Members: 0, Guests: 2, NonMembers: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.records)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Total, got.Members+got.Guests+got.NonMembers)
		})
	}
}

func TestRecordType(t *testing.T) {
	assert.Equal(t, "Guest", recordType(Record{IsGuest: true}))
	assert.Equal(t, "Member", recordType(Record{IsMember: true}))
	assert.Equal(t, "Non-Member", recordType(Record{}))
}

func TestRenderReportPDF(t *testing.T) {
	evt := Event{ID: "e1", Name: "Fall Mixer", Date: time.Date(2025, 9, 12, 18, 0, 0, 0, time.UTC)}
	records := []Record{
		{Name: "Jane Doe", CWID: "12345678", Email: "jane@warhawks.ulm.edu", IsMember: true, CheckedAt: evt.Date},
		{Name: "Visiting Friend", IsGuest: true, CheckedAt: evt.Date},
	}

	out, err := RenderReportPDF(evt, records)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRenderReportPDFEmptyEvent(t *testing.T) {
	out, err := RenderReportPDF(Event{Name: "Quiet Night", Date: time.Now()}, nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
