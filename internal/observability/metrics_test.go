package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordTicketOpened("general")
	m.RecordTicketOpened("general")
	m.RecordTicketOpened("itemshop")
	m.RecordTicketClosed()
	m.RecordError("create_ticket", "PROVISIONING_FAILED")
	m.RecordRequest("/admin/tickets", "GET", 200, time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TicketsOpened["general"])
	assert.Equal(t, int64(1), snap.TicketsOpened["itemshop"])
	assert.Equal(t, int64(1), snap.TicketsClosed)
	assert.Equal(t, int64(1), snap.Errors["create_ticket|PROVISIONING_FAILED"])
	assert.Equal(t, int64(1), snap.Requests["/admin/tickets|GET|200"])

	snap.TicketsOpened["general"] = 99
	assert.Equal(t, int64(2), m.Snapshot().TicketsOpened["general"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordTicketOpened("general")
	m.RecordTicketClosed()
	m.RecordError("op", "code")
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())
}
