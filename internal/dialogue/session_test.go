package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketgenie/internal/models"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()

	sess := m.Create("s1", "alice")
	assert.Equal(t, StateIdle, sess.State)
	assert.Equal(t, "alice", sess.Username)
	assert.False(t, sess.CreatedAt.IsZero())

	got, ok := m.Get("s1")
	require.True(t, ok)
	assert.Same(t, sess, got)

	_, ok = m.Get("s2")
	assert.False(t, ok)

	m.Delete("s1")
	_, ok = m.Get("s1")
	assert.False(t, ok)
}

func TestGetOrCreateRematerializes(t *testing.T) {
	m := NewManager()

	sess := m.GetOrCreate("s1", "alice")
	assert.Same(t, sess, m.GetOrCreate("s1", "alice"))
}

func TestResetKeepsTranscript(t *testing.T) {
	m := NewManager()
	sess := m.Create("s1", "alice")

	sess.State = StateAwaitingTicketCount
	sess.SelectedShow = &models.Show{ID: 1, Name: "Dune"}
	sess.TicketCount = 2
	sess.appendTurn(models.RoleUser, "book movie")
	sess.appendTurn(models.RoleAssistant, "here are the movies")

	m.Reset("s1")

	assert.Equal(t, StateIdle, sess.State)
	assert.Nil(t, sess.SelectedShow)
	assert.Zero(t, sess.TicketCount)
	assert.Len(t, sess.Snapshot(), 2)
}

func TestSnapshotIsACopy(t *testing.T) {
	m := NewManager()
	sess := m.Create("s1", "alice")
	sess.appendTurn(models.RoleUser, "hello")

	snap := sess.Snapshot()
	snap[0].Content = "mutated"

	assert.Equal(t, "hello", sess.Transcript[0].Content)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "AWAITING_MOVIE_ID", StateAwaitingMovieID.String())
	assert.Equal(t, "AWAITING_TICKET_COUNT", StateAwaitingTicketCount.String())
	assert.Equal(t, "AWAITING_CONTACT_INFO", StateAwaitingContactInfo.String())
	assert.Equal(t, "AWAITING_DELETE_CONFIRM", StateAwaitingDeleteConfirm.String())
	assert.Equal(t, "AWAITING_BOOKING_ID_TO_DELETE", StateAwaitingBookingIDToDelete.String())
}
