// Package node holds the contract with remote proxy-serving agents:
// the session capability an external bridge supplies, and the pool of
// live sessions keyed by node id.
package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/pasarfleet/p-ui/database/model"
)

// CodeSkip is the bridge's sentinel error code meaning "skip, not an
// error": no status change and no notification. The semantics are a
// backend convention the panel preserves without interpreting.
const CodeSkip = -4

// RemoteError is a failure reported by a node's bridge session.
type RemoteError struct {
	Code   int
	Detail string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("node api error %d: %s", e.Code, e.Detail)
}

// AsRemoteError unwraps err into a RemoteError when possible.
func AsRemoteError(err error) (*RemoteError, bool) {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr, true
	}
	return nil, false
}

// IsSkip reports whether err carries the sentinel skip code.
func IsSkip(err error) bool {
	remoteErr, ok := AsRemoteError(err)
	return ok && remoteErr.Code == CodeSkip
}

// SessionInfo is the reply to a successful start call.
type SessionInfo struct {
	CoreVersion string `json:"coreVersion"`
	NodeVersion string `json:"nodeVersion"`
}

type SystemStats struct {
	MemTotal               uint64  `json:"memTotal"`
	MemUsed                uint64  `json:"memUsed"`
	CpuCores               int     `json:"cpuCores"`
	CpuUsage               float64 `json:"cpuUsage"`
	IncomingBandwidthSpeed uint64  `json:"incomingBandwidthSpeed"`
	OutgoingBandwidthSpeed uint64  `json:"outgoingBandwidthSpeed"`
}

// User is one panel client as dispatched to nodes.
type User struct {
	Id       uint     `json:"id"`
	Name     string   `json:"name"`
	Key      string   `json:"key"`
	Inbounds []string `json:"inbounds"`
}

// Email is the identity nodes report per-user stats under.
func (u *User) Email() string {
	return fmt.Sprintf("%d.%s", u.Id, u.Name)
}

type StartRequest struct {
	Config          string   `json:"config"`
	BackendType     int      `json:"backendType"`
	Users           []*User  `json:"users"`
	KeepAlive       bool     `json:"keepAlive"`
	ExcludeInbounds []string `json:"excludeInbounds"`
}

// Session is one node's live remote-procedure handle. Every call may
// fail with a RemoteError.
type Session interface {
	Start(ctx context.Context, req *StartRequest) (*SessionInfo, error)
	SyncUsers(ctx context.Context, users []*User, flushQueue bool) error
	GetSystemStats(ctx context.Context) (*SystemStats, error)
	GetUserOnlineStats(ctx context.Context, email string) (int64, error)
	GetUserOnlineIpList(ctx context.Context, email string) (map[string]int64, error)
	// StreamLogs returns a fresh unbounded log sequence on every
	// call; the channel closes when ctx is done or the stream ends.
	StreamLogs(ctx context.Context) (<-chan string, error)
	Close() error
}

// Dialer creates sessions from node records. Implementations live
// outside this module; the panel only consumes the capability.
type Dialer interface {
	Dial(n *model.Node) (Session, error)
}

var registeredDialer Dialer

// RegisterDialer installs the bridge implementation used for every
// node session. Called once before the app starts.
func RegisterDialer(d Dialer) {
	registeredDialer = d
}

// DefaultDialer returns the registered bridge, or a dialer that fails
// every attempt with a clear message when none is installed.
func DefaultDialer() Dialer {
	if registeredDialer != nil {
		return registeredDialer
	}
	return errDialer{}
}

type errDialer struct{}

func (errDialer) Dial(n *model.Node) (Session, error) {
	return nil, errors.New("node bridge is not registered")
}
