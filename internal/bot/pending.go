package bot

import "sync"

// pendingInputs tracks users whose next plain text message is to be
// interpreted as a page-size value. One flag per user; it is cleared on
// the next message no matter whether that message validates.
type pendingInputs struct {
	mu    sync.Mutex
	users map[int64]struct{}
}

func newPendingInputs() *pendingInputs {
	return &pendingInputs{users: make(map[int64]struct{})}
}

func (p *pendingInputs) await(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.users[userID] = struct{}{}
}

// consume reports whether the user was awaiting input and clears the
// flag either way.
func (p *pendingInputs) consume(userID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.users[userID]
	delete(p.users, userID)

	return ok
}
