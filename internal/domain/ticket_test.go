package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChannelName(t *testing.T) {
	cases := []struct {
		name    string
		want    int64
		wantErr bool
	}{
		{name: "ticket-1", want: 1},
		{name: "ticket-42", want: 42},
		{name: "ticket-", wantErr: true},
		{name: "ticket-007", wantErr: true},
		{name: "ticket-0", wantErr: true},
		{name: "ticket--3", wantErr: true},
		{name: "ticket-12a", wantErr: true},
		{name: "general", wantErr: true},
		{name: "ticket-99999999999999999999", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseChannelName(tc.name)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.name, ChannelName(got))
		})
	}
}

func TestTicketTypeValid(t *testing.T) {
	assert.True(t, TicketTypeGeneral.Valid())
	assert.True(t, TicketTypeItemShop.Valid())
	assert.True(t, TicketTypeAssistance.Valid())
	assert.False(t, TicketType("billing").Valid())
	assert.Equal(t, "billing", TicketType("billing").Label())
}

func TestSnapshotJSONLayout(t *testing.T) {
	closedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	staff := "staff1"
	snap := StoreSnapshot{
		Counter: 2,
		Tickets: []Ticket{
			{ID: 1, User: "alice", Type: TicketTypeGeneral, CreatedAt: closedAt.Add(-time.Hour), ClosedAt: &closedAt, ClosedBy: &staff},
			{ID: 2, User: "bob", Type: TicketTypeAssistance, CreatedAt: closedAt},
		},
	}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	tickets := generic["tickets"].([]any)
	open := tickets[1].(map[string]any)
	assert.Contains(t, open, "closed_at")
	assert.Nil(t, open["closed_at"])
	assert.Nil(t, open["closed_by"])
	assert.Equal(t, "2026-01-02T03:04:05Z", open["created_at"])

	var back StoreSnapshot
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, snap, back)
	assert.Equal(t, TicketStatusClosed, back.Tickets[0].Status())
	assert.Equal(t, TicketStatusOpen, back.Tickets[1].Status())
}
