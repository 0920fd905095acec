package chathub

// Registry maps connections to the logical rooms they are subscribed to:
// the per-user inbox room and any tryout chat rooms joined while viewing.
// It is owned by the hub loop and must not be shared across goroutines.
type Registry struct {
	members map[string]map[string]Client // room -> conn id -> client
	joined  map[string]map[string]bool   // conn id -> room set
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		members: make(map[string]map[string]Client),
		joined:  make(map[string]map[string]bool),
	}
}

// Join subscribes the client to a room. Joining twice is a no-op.
func (r *Registry) Join(room string, c Client) {
	if r.members[room] == nil {
		r.members[room] = make(map[string]Client)
	}
	r.members[room][c.GetConnID()] = c

	if r.joined[c.GetConnID()] == nil {
		r.joined[c.GetConnID()] = make(map[string]bool)
	}
	r.joined[c.GetConnID()][room] = true
}

// Leave unsubscribes the client from a room.
func (r *Registry) Leave(room string, c Client) {
	if conns, ok := r.members[room]; ok {
		delete(conns, c.GetConnID())
		if len(conns) == 0 {
			delete(r.members, room)
		}
	}
	if rooms, ok := r.joined[c.GetConnID()]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.joined, c.GetConnID())
		}
	}
}

// LeaveAll removes a disconnecting client from every room it joined.
func (r *Registry) LeaveAll(c Client) {
	for room := range r.joined[c.GetConnID()] {
		if conns, ok := r.members[room]; ok {
			delete(conns, c.GetConnID())
			if len(conns) == 0 {
				delete(r.members, room)
			}
		}
	}
	delete(r.joined, c.GetConnID())
}

// Members returns the clients currently subscribed to a room.
func (r *Registry) Members(room string) []Client {
	conns := r.members[room]
	out := make([]Client, 0, len(conns))
	for _, c := range conns {
		out = append(out, c)
	}
	return out
}

// InRoom reports whether the client is subscribed to the room.
func (r *Registry) InRoom(room string, c Client) bool {
	return r.joined[c.GetConnID()][room]
}
