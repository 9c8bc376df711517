// Package notification fan-outs typed fleet events to registered
// sinks. Emission is fire-and-forget: the orchestrator never blocks on
// or observes delivery.
package notification

import (
	"sync"

	"github.com/pasarfleet/p-ui/logger"
)

// MaxMessageLength bounds the error detail carried inside an event.
// The full detail stays in the node's persisted status message.
const MaxMessageLength = 128

type Kind string

const (
	KindNodeConnected  Kind = "node_connected"
	KindNodeError      Kind = "node_error"
	KindNodeCreated    Kind = "node_created"
	KindNodeModified   Kind = "node_modified"
	KindNodeRemoved    Kind = "node_removed"
	KindNodeUsageReset Kind = "node_usage_reset"
)

type Event struct {
	Kind        Kind   `json:"kind"`
	NodeId      uint   `json:"nodeId"`
	NodeName    string `json:"nodeName"`
	CoreVersion string `json:"coreVersion,omitempty"`
	NodeVersion string `json:"nodeVersion,omitempty"`
	Message     string `json:"message,omitempty"`
	By          string `json:"by,omitempty"`
	OldUplink   uint64 `json:"oldUplink,omitempty"`
	OldDownlink uint64 `json:"oldDownlink,omitempty"`
}

// Sender delivers one event to an external channel, best-effort.
type Sender interface {
	Send(event Event)
}

// Notifier owns a bounded queue and one worker goroutine.
type Notifier struct {
	events  chan Event
	done    chan struct{}
	mu      sync.RWMutex
	stopped bool
	senders []Sender
}

const queueSize = 128

func NewNotifier() *Notifier {
	n := &Notifier{
		events: make(chan Event, queueSize),
		done:   make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *Notifier) Register(sender Sender) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.senders = append(n.senders, sender)
}

// Emit enqueues an event without blocking. When the queue is full, or
// the notifier is already stopped, the event is dropped; delivery is
// best-effort by contract.
func (n *Notifier) Emit(event Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.stopped {
		return
	}
	select {
	case n.events <- event:
	default:
		logger.Warning("notification queue full, dropping event: ", event.Kind)
	}
}

// Stop drains pending events and stops the worker.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		<-n.done
		return
	}
	n.stopped = true
	close(n.events)
	n.mu.Unlock()
	<-n.done
}

func (n *Notifier) run() {
	defer close(n.done)
	for event := range n.events {
		n.mu.RLock()
		senders := n.senders
		n.mu.RUnlock()

		for _, sender := range senders {
			sender.Send(event)
		}
	}
}

// Truncate shortens an error detail to MaxMessageLength for carrying
// inside an event.
func Truncate(message string) string {
	if len(message) > MaxMessageLength {
		return message[:MaxMessageLength-3] + "..."
	}
	return message
}
