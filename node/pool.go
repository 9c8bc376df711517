package node

import (
	"sync"

	"github.com/pasarfleet/p-ui/database/model"
	"github.com/pasarfleet/p-ui/util/common"
)

// Pool holds zero-or-one live session per node id. Only the
// orchestrator mutates it: add/replace on connect, remove on
// disconnect or disable.
type Pool struct {
	mu       sync.RWMutex
	dialer   Dialer
	sessions map[uint]Session
}

func NewPool(dialer Dialer) *Pool {
	return &Pool{
		dialer:   dialer,
		sessions: make(map[uint]Session),
	}
}

// Update dials a session for the node and replaces any previous one.
// Disabled and limited nodes must never hold a session; updating one
// tears its session down and fails.
func (p *Pool) Update(n *model.Node) (Session, error) {
	if n.Status.Excluded() {
		p.Remove(n.Id)
		return nil, common.NewErrorf("node %d is %s", n.Id, n.Status)
	}

	session, err := p.dialer.Dial(n)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	old := p.sessions[n.Id]
	p.sessions[n.Id] = session
	p.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return session, nil
}

func (p *Pool) Get(id uint) Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sessions[id]
}

func (p *Pool) Remove(id uint) {
	p.mu.Lock()
	session := p.sessions[id]
	delete(p.sessions, id)
	p.mu.Unlock()

	if session != nil {
		session.Close()
	}
}

// Healthy returns a snapshot of every live session keyed by node id.
func (p *Pool) Healthy() map[uint]Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[uint]Session, len(p.sessions))
	for id, session := range p.sessions {
		out[id] = session
	}
	return out
}

func (p *Pool) Close() {
	p.mu.Lock()
	sessions := p.sessions
	p.sessions = make(map[uint]Session)
	p.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
