package core

import "sync"

// Tracker maintains the process-wide map from user identity to that
// identity's live connections. A user is online iff the set is non-empty.
type Tracker struct {
	mu    sync.Mutex
	conns map[string]map[*Client]struct{}
}

// NewTracker constructs an empty presence tracker.
func NewTracker() *Tracker {
	return &Tracker{conns: make(map[string]map[*Client]struct{})}
}

// Register adds the client to its identity's connection set. It reports
// whether this was the identity's offline-to-online transition.
func (t *Tracker) Register(c *Client) (first bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := c.Principal.ID
	set, ok := t.conns[id]
	if !ok {
		set = make(map[*Client]struct{})
		t.conns[id] = set
	}
	set[c] = struct{}{}
	return !ok
}

// Deregister removes the client from its identity's connection set. It
// reports whether this was the identity's online-to-offline transition.
// Deregistering a client twice is a no-op.
func (t *Tracker) Deregister(c *Client) (last bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := c.Principal.ID
	set, ok := t.conns[id]
	if !ok {
		return false
	}
	if _, member := set[c]; !member {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(t.conns, id)
		return true
	}
	return false
}

// IsOnline reports whether the identity has at least one live connection.
func (t *Tracker) IsOnline(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns[id]) > 0
}

// OnlineCount returns the number of identities currently online.
func (t *Tracker) OnlineCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns)
}

// OnlineIdentities returns every identity with a live connection.
func (t *Tracker) OnlineIdentities() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.conns))
	for id := range t.conns {
		ids = append(ids, id)
	}
	return ids
}

// ClientsOf returns the live connections attached to the identity.
func (t *Tracker) ClientsOf(id string) []*Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	clients := make([]*Client, 0, len(t.conns[id]))
	for c := range t.conns[id] {
		clients = append(clients, c)
	}
	return clients
}
