package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimUnknownRequest(t *testing.T) {
	tracker := NewTracker()

	_, ok := tracker.Claim(101)
	assert.False(t, ok)
}

func TestClaimCompleteIsTerminal(t *testing.T) {
	tracker := NewTracker()
	tracker.Track(Notice{RequestID: 101, Subject: "Movie X"})

	claimed, ok := tracker.Claim(101)
	require.True(t, ok)
	assert.Equal(t, "Movie X", claimed.Subject)
	assert.Equal(t, Pending, claimed.Disposition)

	tracker.Complete(101, Approved)

	// Terminal notices cannot be claimed again
	_, ok = tracker.Claim(101)
	assert.False(t, ok)

	// But remain visible for "no longer pending" replies
	notice, ok := tracker.Get(101)
	require.True(t, ok)
	assert.Equal(t, Approved, notice.Disposition)
}

func TestClaimIsExclusiveWhileInFlight(t *testing.T) {
	tracker := NewTracker()
	tracker.Track(Notice{RequestID: 101})

	_, ok := tracker.Claim(101)
	require.True(t, ok)

	// A concurrent callback on the same request must not reach the API
	_, ok = tracker.Claim(101)
	assert.False(t, ok)
}

func TestAbortLeavesNoticeActionable(t *testing.T) {
	tracker := NewTracker()
	tracker.Track(Notice{RequestID: 101})

	_, ok := tracker.Claim(101)
	require.True(t, ok)

	tracker.Abort(101)

	notice, ok := tracker.Get(101)
	require.True(t, ok)
	assert.Equal(t, Pending, notice.Disposition)

	_, ok = tracker.Claim(101)
	assert.True(t, ok)
}

func TestTrackResetsDisposition(t *testing.T) {
	tracker := NewTracker()
	tracker.Track(Notice{RequestID: 101, Disposition: Approved})

	notice, ok := tracker.Get(101)
	require.True(t, ok)
	assert.Equal(t, Pending, notice.Disposition)
	assert.Equal(t, 1, tracker.Len())
}

func TestParseCallback(t *testing.T) {
	d, id, err := ParseCallback("approve_101")
	require.NoError(t, err)
	assert.Equal(t, Approved, d)
	assert.Equal(t, int64(101), id)

	d, id, err = ParseCallback("deny_202")
	require.NoError(t, err)
	assert.Equal(t, Denied, d)
	assert.Equal(t, int64(202), id)

	_, _, err = ParseCallback("approve_abc")
	assert.Error(t, err)

	_, _, err = ParseCallback("something_else")
	assert.Error(t, err)
}

func TestCallbackRoundTrip(t *testing.T) {
	d, id, err := ParseCallback(ApproveCallback(42))
	require.NoError(t, err)
	assert.Equal(t, Approved, d)
	assert.Equal(t, int64(42), id)

	d, id, err = ParseCallback(DenyCallback(42))
	require.NoError(t, err)
	assert.Equal(t, Denied, d)
	assert.Equal(t, int64(42), id)
}
