package notify

import "sync"

// Disposition is the lifecycle state of a request notice.
type Disposition int

const (
	Pending Disposition = iota
	Approved
	Denied
)

func (d Disposition) String() string {
	switch d {
	case Approved:
		return "approved"
	case Denied:
		return "denied"
	default:
		return "pending"
	}
}

// PendingRequest is a validated "pending approval" webhook payload, the input
// to the dispatcher.
type PendingRequest struct {
	RequestID int64
	MediaType string
	TmdbID    int64
	Subject   string
	Requester string
	PosterURL string
}

// Notice correlates an Overseerr request with the Telegram message presenting
// it. Entries stay in the tracker after resolution so repeat callbacks can be
// answered as "no longer pending".
type Notice struct {
	RequestID   int64
	MediaType   string
	Subject     string
	Requester   string
	ChatID      int64
	MessageID   int
	HasPhoto    bool
	Disposition Disposition
}

type trackedNotice struct {
	notice   Notice
	inFlight bool
}

// Tracker is the in-memory correlation table keyed by request id. All methods
// are safe for concurrent use. State is volatile: a restart orphans any
// still-pending chat messages, which then simply can no longer be acted on.
type Tracker struct {
	mu      sync.Mutex
	notices map[int64]*trackedNotice
}

func NewTracker() *Tracker {
	return &Tracker{notices: make(map[int64]*trackedNotice)}
}

// Track records a freshly dispatched notice as pending.
func (t *Tracker) Track(n Notice) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n.Disposition = Pending
	t.notices[n.RequestID] = &trackedNotice{notice: n}
}

// Get returns a copy of the notice for requestID.
func (t *Tracker) Get(requestID int64) (Notice, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tn, ok := t.notices[requestID]
	if !ok {
		return Notice{}, false
	}
	return tn.notice, true
}

// Claim atomically marks a pending notice as in flight and returns it. It
// fails for unknown ids, resolved notices and notices another claim already
// holds, which makes it the single idempotency gate in front of the external
// approve/deny call.
func (t *Tracker) Claim(requestID int64) (Notice, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tn, ok := t.notices[requestID]
	if !ok || tn.notice.Disposition != Pending || tn.inFlight {
		return Notice{}, false
	}
	tn.inFlight = true
	return tn.notice, true
}

// Complete transitions a claimed notice to its terminal disposition.
func (t *Tracker) Complete(requestID int64, d Disposition) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tn, ok := t.notices[requestID]; ok {
		tn.notice.Disposition = d
		tn.inFlight = false
	}
}

// Abort releases a claim without resolving the notice, leaving it actionable.
func (t *Tracker) Abort(requestID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tn, ok := t.notices[requestID]; ok {
		tn.inFlight = false
	}
}

// Len returns the number of tracked notices.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.notices)
}
