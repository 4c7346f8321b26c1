package matchmaking

// WaitingQueue is a FIFO of session ids with no duplicates.
type WaitingQueue struct {
	ids     []string
	present map[string]struct{}
}

// NewWaitingQueue creates an empty queue.
func NewWaitingQueue() *WaitingQueue {
	return &WaitingQueue{present: make(map[string]struct{})}
}

// Push appends id at the tail. It reports false if id is already queued.
func (q *WaitingQueue) Push(id string) bool {
	if q.Contains(id) {
		return false
	}
	q.ids = append(q.ids, id)
	q.present[id] = struct{}{}
	return true
}

// PushFront puts id back at the head, keeping its fairness position.
func (q *WaitingQueue) PushFront(id string) bool {
	if q.Contains(id) {
		return false
	}
	q.ids = append([]string{id}, q.ids...)
	q.present[id] = struct{}{}
	return true
}

// PopHead removes and returns the longest-waiting id.
func (q *WaitingQueue) PopHead() (string, bool) {
	if len(q.ids) == 0 {
		return "", false
	}
	id := q.ids[0]
	q.ids[0] = ""
	q.ids = q.ids[1:]
	delete(q.present, id)
	return id, true
}

// Remove drops id if queued; otherwise it is a no-op.
func (q *WaitingQueue) Remove(id string) bool {
	if !q.Contains(id) {
		return false
	}
	delete(q.present, id)
	for i, v := range q.ids {
		if v == id {
			q.ids = append(q.ids[:i], q.ids[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether id is queued.
func (q *WaitingQueue) Contains(id string) bool {
	_, ok := q.present[id]
	return ok
}

// Len returns the number of queued sessions.
func (q *WaitingQueue) Len() int {
	return len(q.ids)
}

// IDs returns a copy of the queue in order, head first.
func (q *WaitingQueue) IDs() []string {
	out := make([]string, len(q.ids))
	copy(out, q.ids)
	return out
}
