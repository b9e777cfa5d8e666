package core

import "sync"

// Directory is the in-memory mapping from channel names to the clients
// subscribed to them. A logical room has one canonical name plus any
// number of aliases; membership under any name implies membership under
// all of them, because every operation resolves through the alias index
// before touching the room.
type Directory struct {
	mu        sync.Mutex
	rooms     map[string]map[*Client]struct{}
	alias     map[string]string   // name -> canonical
	aliasesOf map[string][]string // canonical -> registered names
	joined    map[*Client]map[string]struct{}
}

// NewDirectory constructs an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		rooms:     make(map[string]map[*Client]struct{}),
		alias:     make(map[string]string),
		aliasesOf: make(map[string][]string),
		joined:    make(map[*Client]map[string]struct{}),
	}
}

// Join subscribes the client to the room named canonical, registering the
// given aliases for it. Joining twice is a no-op.
func (d *Directory) Join(c *Client, canonical string, aliases ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[canonical]
	if !ok {
		room = make(map[*Client]struct{})
		d.rooms[canonical] = room
		d.register(canonical, canonical)
	}
	for _, name := range aliases {
		d.register(name, canonical)
	}

	room[c] = struct{}{}
	if d.joined[c] == nil {
		d.joined[c] = make(map[string]struct{})
	}
	d.joined[c][canonical] = struct{}{}
}

func (d *Directory) register(name, canonical string) {
	if _, ok := d.alias[name]; ok {
		return
	}
	d.alias[name] = canonical
	d.aliasesOf[canonical] = append(d.aliasesOf[canonical], name)
}

// Leave unsubscribes the client from the room addressed by name (canonical
// or alias). Leaving a room the client is not in is a no-op.
func (d *Directory) Leave(c *Client, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if canonical, ok := d.alias[name]; ok {
		d.leaveCanonical(c, canonical)
	}
}

// LeaveAll unsubscribes the client from every room it joined.
func (d *Directory) LeaveAll(c *Client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for canonical := range d.joined[c] {
		d.leaveCanonical(c, canonical)
	}
	delete(d.joined, c)
}

func (d *Directory) leaveCanonical(c *Client, canonical string) {
	room, ok := d.rooms[canonical]
	if !ok {
		return
	}
	delete(room, c)
	if set := d.joined[c]; set != nil {
		delete(set, canonical)
	}
	if len(room) == 0 {
		delete(d.rooms, canonical)
		for _, name := range d.aliasesOf[canonical] {
			delete(d.alias, name)
		}
		delete(d.aliasesOf, canonical)
	}
}

// Broadcast delivers the event to every member of the named channels.
// A client subscribed under more than one of the names receives the event
// exactly once.
func (d *Directory) Broadcast(ev *Event, names ...string) {
	d.mu.Lock()
	targets := make([]*Client, 0, 8)
	seen := make(map[*Client]struct{})
	for _, name := range names {
		canonical, ok := d.alias[name]
		if !ok {
			continue
		}
		for c := range d.rooms[canonical] {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			targets = append(targets, c)
		}
	}
	d.mu.Unlock()

	for _, c := range targets {
		c.push(ev)
	}
}

// Members returns the clients currently in the room addressed by name.
func (d *Directory) Members(name string) []*Client {
	d.mu.Lock()
	defer d.mu.Unlock()
	canonical, ok := d.alias[name]
	if !ok {
		return nil
	}
	members := make([]*Client, 0, len(d.rooms[canonical]))
	for c := range d.rooms[canonical] {
		members = append(members, c)
	}
	return members
}

// Contains reports whether the client is a member of the room addressed
// by name.
func (d *Directory) Contains(c *Client, name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	canonical, ok := d.alias[name]
	if !ok {
		return false
	}
	_, member := d.rooms[canonical][c]
	return member
}
