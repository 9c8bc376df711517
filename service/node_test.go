package service

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasarfleet/p-ui/core"
	"github.com/pasarfleet/p-ui/database"
	"github.com/pasarfleet/p-ui/database/model"
	"github.com/pasarfleet/p-ui/node"
	"github.com/pasarfleet/p-ui/notification"
)

type stubSession struct {
	mu       sync.Mutex
	startReq *node.StartRequest
	startErr error
	info     node.SessionInfo
	syncErr  error
	stats    *node.SystemStats
	statsErr error
	ipList   map[string]int64
	ipErr    error
	closed   bool
}

func (s *stubSession) Start(ctx context.Context, req *node.StartRequest) (*node.SessionInfo, error) {
	s.mu.Lock()
	s.startReq = req
	s.mu.Unlock()
	if s.startErr != nil {
		return nil, s.startErr
	}
	info := s.info
	if info.CoreVersion == "" {
		info = node.SessionInfo{CoreVersion: "25.1.0", NodeVersion: "0.4.0"}
	}
	return &info, nil
}

func (s *stubSession) SyncUsers(ctx context.Context, users []*node.User, flushQueue bool) error {
	return s.syncErr
}

func (s *stubSession) GetSystemStats(ctx context.Context) (*node.SystemStats, error) {
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	if s.stats != nil {
		return s.stats, nil
	}
	return &node.SystemStats{CpuCores: 2}, nil
}

func (s *stubSession) GetUserOnlineStats(ctx context.Context, email string) (int64, error) {
	return 1, nil
}

func (s *stubSession) GetUserOnlineIpList(ctx context.Context, email string) (map[string]int64, error) {
	if s.ipErr != nil {
		return nil, s.ipErr
	}
	return s.ipList, nil
}

func (s *stubSession) StreamLogs(ctx context.Context) (<-chan string, error) {
	ch := make(chan string)
	close(ch)
	return ch, nil
}

func (s *stubSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubSession) request() *node.StartRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startReq
}

type stubDialer struct {
	mu       sync.Mutex
	sessions map[uint]*stubSession
	dialErr  map[uint]error
	dials    map[uint]int
}

func newStubDialer() *stubDialer {
	return &stubDialer{
		sessions: make(map[uint]*stubSession),
		dialErr:  make(map[uint]error),
		dials:    make(map[uint]int),
	}
}

func (d *stubDialer) session(id uint) *stubSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	session, ok := d.sessions[id]
	if !ok {
		session = &stubSession{}
		d.sessions[id] = session
	}
	return session
}

func (d *stubDialer) Dial(n *model.Node) (node.Session, error) {
	d.mu.Lock()
	d.dials[n.Id]++
	err := d.dialErr[n.Id]
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return d.session(n.Id), nil
}

func (d *stubDialer) dialCount(id uint) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials[id]
}

type recordingSink struct {
	mu     sync.Mutex
	events []notification.Event
}

func (s *recordingSink) Send(event notification.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) ofKind(kind notification.Kind) []notification.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notification.Event
	for _, event := range s.events {
		if event.Kind == kind {
			out = append(out, event)
		}
	}
	return out
}

const testCoreDoc = `{"inbounds": [
	{"protocol": "vless", "tag": "in1", "port": 443},
	{"protocol": "vmess", "tag": "hidden", "port": 8080}
]}`

func setupNodeService(t *testing.T, dialer node.Dialer) (*NodeService, *notification.Notifier, *recordingSink) {
	t.Helper()
	require.NoError(t, database.InitDB(filepath.Join(t.TempDir(), "p-ui.db")))

	cores := core.NewManager()
	record := model.CoreConfig{
		Id:                 core.DefaultConfigId,
		Name:               "default",
		CoreType:           string(core.Xray),
		Config:             json.RawMessage(testCoreDoc),
		ExcludeInboundTags: json.RawMessage(`["hidden"]`),
	}
	require.NoError(t, cores.Put(&record))

	notifier := notification.NewNotifier()
	sink := &recordingSink{}
	notifier.Register(sink)

	return NewNodeService(node.NewPool(dialer), cores, notifier), notifier, sink
}

func createTestNode(t *testing.T, n *model.Node) *model.Node {
	t.Helper()
	require.NoError(t, database.GetDB().Create(n).Error)
	return n
}

func fetchNode(t *testing.T, id uint) *model.Node {
	t.Helper()
	var dbNode model.Node
	require.NoError(t, database.GetDB().First(&dbNode, id).Error)
	return &dbNode
}

func TestConnectSingleNodeSuccess(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, sink := setupNodeService(t, dialer)
	n := createTestNode(t, &model.Node{Name: "n1", Address: "10.0.0.1", Status: model.NodeError, KeepAlive: true})

	require.NoError(t, svc.CreateClient(&model.Client{Enable: true, Name: "alice"}))
	require.NoError(t, svc.CreateClient(&model.Client{Enable: true, Name: "bob"}))
	require.NoError(t, database.GetDB().Model(&model.Client{}).
		Where("name = ?", "bob").Update("enable", false).Error)

	require.NoError(t, svc.ConnectSingleNode(context.Background(), n.Id))

	dbNode := fetchNode(t, n.Id)
	assert.Equal(t, model.NodeConnected, dbNode.Status)
	assert.Empty(t, dbNode.Message)
	assert.Equal(t, "25.1.0", dbNode.CoreVersion)
	assert.Equal(t, "0.4.0", dbNode.NodeVersion)

	req := dialer.session(n.Id).request()
	require.NotNil(t, req)
	assert.Equal(t, int(core.BackendXray), req.BackendType)
	assert.True(t, req.KeepAlive)
	assert.Equal(t, []string{"hidden"}, req.ExcludeInbounds)
	assert.Contains(t, req.Config, `"in1"`)
	require.Len(t, req.Users, 1)
	assert.Equal(t, "alice", req.Users[0].Name)

	notifier.Stop()
	events := sink.ofKind(notification.KindNodeConnected)
	require.Len(t, events, 1)
	assert.Equal(t, "n1", events[0].NodeName)
	assert.Equal(t, "25.1.0", events[0].CoreVersion)
}

func TestConnectSingleNodeExcludedStatusNeverDialed(t *testing.T) {
	for _, status := range []model.NodeStatus{model.NodeDisabled, model.NodeLimited} {
		t.Run(string(status), func(t *testing.T) {
			dialer := newStubDialer()
			svc, notifier, sink := setupNodeService(t, dialer)
			n := createTestNode(t, &model.Node{Name: "n1", Status: status, Message: "kept"})

			require.NoError(t, svc.ConnectSingleNode(context.Background(), n.Id))

			assert.Zero(t, dialer.dialCount(n.Id))
			dbNode := fetchNode(t, n.Id)
			assert.Equal(t, status, dbNode.Status)
			assert.Equal(t, "kept", dbNode.Message)

			notifier.Stop()
			assert.Empty(t, sink.ofKind(notification.KindNodeError))
		})
	}
}

func TestConnectSingleNodePoolFailure(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, sink := setupNodeService(t, dialer)
	n := createTestNode(t, &model.Node{Name: "n1", Status: model.NodeConnected})
	dialer.dialErr[n.Id] = errors.New("connection refused")

	err := svc.ConnectSingleNode(context.Background(), n.Id)
	require.Error(t, err)

	dbNode := fetchNode(t, n.Id)
	assert.Equal(t, model.NodeError, dbNode.Status)
	assert.Equal(t, "connection refused", dbNode.Message)
	// no start attempt happened
	assert.Nil(t, dialer.session(n.Id).request())

	notifier.Stop()
	events := sink.ofKind(notification.KindNodeError)
	require.Len(t, events, 1)
	assert.Equal(t, "connection refused", events[0].Message)
}

func TestConnectSingleNodeSkipLeavesRowUntouched(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, sink := setupNodeService(t, dialer)
	n := createTestNode(t, &model.Node{
		Name: "n1", Status: model.NodeConnected, Message: "earlier",
		CoreVersion: "24.0.0", NodeVersion: "0.3.0",
	})
	dialer.session(n.Id).startErr = &node.RemoteError{Code: node.CodeSkip, Detail: "already started"}

	require.NoError(t, svc.ConnectSingleNode(context.Background(), n.Id))

	dbNode := fetchNode(t, n.Id)
	assert.Equal(t, model.NodeConnected, dbNode.Status)
	assert.Equal(t, "earlier", dbNode.Message)
	assert.Equal(t, "24.0.0", dbNode.CoreVersion)

	notifier.Stop()
	assert.Empty(t, sink.ofKind(notification.KindNodeConnected))
	assert.Empty(t, sink.ofKind(notification.KindNodeError))
}

func TestConnectSingleNodeRemoteErrorTruncation(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, sink := setupNodeService(t, dialer)
	n := createTestNode(t, &model.Node{Name: "n1", Status: model.NodeConnected})

	longDetail := strings.Repeat("z", 2000)
	dialer.session(n.Id).startErr = &node.RemoteError{Code: 500, Detail: longDetail}

	err := svc.ConnectSingleNode(context.Background(), n.Id)
	require.Error(t, err)

	dbNode := fetchNode(t, n.Id)
	assert.Equal(t, model.NodeError, dbNode.Status)
	// 1020 detail chars plus the ellipsis
	assert.Len(t, dbNode.Message, maxDetailLength-1)
	assert.Equal(t, strings.Repeat("z", maxDetailLength-4)+"...", dbNode.Message)

	notifier.Stop()
	events := sink.ofKind(notification.KindNodeError)
	require.Len(t, events, 1)
	assert.Len(t, events[0].Message, notification.MaxMessageLength)
	assert.True(t, strings.HasSuffix(events[0].Message, "..."))
}

func TestConnectSingleNodeErrorToErrorSuppressed(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, sink := setupNodeService(t, dialer)
	n := createTestNode(t, &model.Node{Name: "n1", Status: model.NodeError})
	dialer.session(n.Id).startErr = &node.RemoteError{Code: 500, Detail: "still down"}

	err := svc.ConnectSingleNode(context.Background(), n.Id)
	require.Error(t, err)

	dbNode := fetchNode(t, n.Id)
	assert.Equal(t, "still down", dbNode.Message)

	notifier.Stop()
	assert.Empty(t, sink.ofKind(notification.KindNodeError))
}

func TestConnectNodesBulkIsolation(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, sink := setupNodeService(t, dialer)

	good := createTestNode(t, &model.Node{Name: "good", Status: model.NodeError})
	unreachable := createTestNode(t, &model.Node{Name: "unreachable", Status: model.NodeConnected})
	broken := createTestNode(t, &model.Node{Name: "broken", Status: model.NodeConnected})
	disabled := createTestNode(t, &model.Node{Name: "off", Status: model.NodeDisabled})

	dialer.dialErr[unreachable.Id] = errors.New("dial timeout")
	dialer.session(broken.Id).startErr = &node.RemoteError{Code: 500, Detail: "exec failed"}

	nodes, _, err := svc.GetNodes(NodeFilter{})
	require.NoError(t, err)
	require.NoError(t, svc.ConnectNodesBulk(context.Background(), nodes))

	assert.Equal(t, model.NodeConnected, fetchNode(t, good.Id).Status)
	assert.Equal(t, model.NodeError, fetchNode(t, unreachable.Id).Status)
	assert.Equal(t, "dial timeout", fetchNode(t, unreachable.Id).Message)
	assert.Equal(t, model.NodeError, fetchNode(t, broken.Id).Status)
	assert.Equal(t, "exec failed", fetchNode(t, broken.Id).Message)

	// the disabled node was never dialed and never written
	assert.Zero(t, dialer.dialCount(disabled.Id))
	assert.Equal(t, model.NodeDisabled, fetchNode(t, disabled.Id).Status)

	notifier.Stop()
	assert.Len(t, sink.ofKind(notification.KindNodeConnected), 1)
	assert.Len(t, sink.ofKind(notification.KindNodeError), 2)
}

func TestConnectNodesBulkFetchesUsersOnce(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, _ := setupNodeService(t, dialer)
	defer notifier.Stop()

	require.NoError(t, svc.CreateClient(&model.Client{Enable: true, Name: "alice"}))
	first := createTestNode(t, &model.Node{Name: "n1", Status: model.NodeError})
	second := createTestNode(t, &model.Node{Name: "n2", Status: model.NodeError})

	nodes, _, err := svc.GetNodes(NodeFilter{})
	require.NoError(t, err)
	require.NoError(t, svc.ConnectNodesBulk(context.Background(), nodes))

	firstReq := dialer.session(first.Id).request()
	secondReq := dialer.session(second.Id).request()
	require.NotNil(t, firstReq)
	require.NotNil(t, secondReq)
	require.Len(t, firstReq.Users, 1)
	// both attempts received the same fetched set, not fresh copies
	assert.Same(t, firstReq.Users[0], secondReq.Users[0])
}

func TestConnectNodesBulkSkipLeavesRowUntouched(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, sink := setupNodeService(t, dialer)

	skipped := createTestNode(t, &model.Node{Name: "running", Status: model.NodeConnected, Message: "prev"})
	fresh := createTestNode(t, &model.Node{Name: "fresh", Status: model.NodeError})
	dialer.session(skipped.Id).startErr = &node.RemoteError{Code: node.CodeSkip, Detail: "already started"}

	nodes, _, err := svc.GetNodes(NodeFilter{})
	require.NoError(t, err)
	require.NoError(t, svc.ConnectNodesBulk(context.Background(), nodes))

	assert.Equal(t, "prev", fetchNode(t, skipped.Id).Message)
	assert.Equal(t, model.NodeConnected, fetchNode(t, fresh.Id).Status)

	notifier.Stop()
	assert.Len(t, sink.ofKind(notification.KindNodeConnected), 1)
}

func TestRestartNodePropagatesRemoteFailure(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, _ := setupNodeService(t, dialer)
	defer notifier.Stop()
	n := createTestNode(t, &model.Node{Name: "n1", Status: model.NodeConnected})
	dialer.session(n.Id).startErr = &node.RemoteError{Code: 500, Detail: "exec failed"}

	err := svc.RestartNode(context.Background(), n.Id, "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec failed")
}

func TestSyncNodeUsersGuards(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, _ := setupNodeService(t, dialer)
	defer notifier.Stop()

	notConnected := createTestNode(t, &model.Node{Name: "down", Status: model.NodeError})
	_, err := svc.SyncNodeUsers(context.Background(), notConnected.Id, false)
	assert.Error(t, err)

	// connected status but no live session
	stale := createTestNode(t, &model.Node{Name: "stale", Status: model.NodeConnected})
	_, err = svc.SyncNodeUsers(context.Background(), stale.Id, false)
	assert.Error(t, err)
}

func TestSyncNodeUsersRemoteFailurePersisted(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, _ := setupNodeService(t, dialer)
	defer notifier.Stop()

	n := createTestNode(t, &model.Node{Name: "n1", Status: model.NodeError})
	require.NoError(t, svc.ConnectSingleNode(context.Background(), n.Id))

	dialer.session(n.Id).syncErr = &node.RemoteError{Code: 502, Detail: "sync refused"}
	_, err := svc.SyncNodeUsers(context.Background(), n.Id, true)
	require.Error(t, err)

	dbNode := fetchNode(t, n.Id)
	assert.Equal(t, model.NodeError, dbNode.Status)
	assert.Equal(t, "sync refused", dbNode.Message)
}

func TestGetNodesSystemStatsFailureIsolated(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, _ := setupNodeService(t, dialer)
	defer notifier.Stop()

	healthy := createTestNode(t, &model.Node{Name: "ok", Status: model.NodeError})
	failing := createTestNode(t, &model.Node{Name: "bad", Status: model.NodeError})
	require.NoError(t, svc.ConnectSingleNode(context.Background(), healthy.Id))
	require.NoError(t, svc.ConnectSingleNode(context.Background(), failing.Id))

	dialer.session(failing.Id).statsErr = errors.New("stats offline")

	stats := svc.GetNodesSystemStats(context.Background())
	require.Len(t, stats, 2)
	require.NotNil(t, stats[healthy.Id])
	assert.Equal(t, 2, stats[healthy.Id].CpuCores)
	assert.Nil(t, stats[failing.Id])
}

func TestResetNodeUsage(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, sink := setupNodeService(t, dialer)
	n := createTestNode(t, &model.Node{Name: "n1", Status: model.NodeError, Uplink: 100, Downlink: 200})

	dbNode, err := svc.ResetNodeUsage(n.Id, "admin")
	require.NoError(t, err)
	assert.Zero(t, dbNode.Uplink)
	assert.Zero(t, dbNode.Downlink)

	fresh := fetchNode(t, n.Id)
	assert.Zero(t, fresh.Uplink)
	assert.Zero(t, fresh.Downlink)

	var logs []model.NodeUsageLog
	require.NoError(t, database.GetDB().Where("node_id = ?", n.Id).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, uint64(100), logs[0].Uplink)
	assert.Equal(t, uint64(200), logs[0].Downlink)

	notifier.Stop()
	events := sink.ofKind(notification.KindNodeUsageReset)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(100), events[0].OldUplink)
	assert.Equal(t, "admin", events[0].By)
}

func TestCreateNodeRejectsUnknownCoreConfig(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, _ := setupNodeService(t, dialer)
	defer notifier.Stop()

	_, err := svc.CreateNode(&model.Node{Name: "n1", CoreConfigId: 99}, "admin")
	assert.Error(t, err)
}

func TestCreateNodeEmitsAndConnects(t *testing.T) {
	dialer := newStubDialer()
	svc, _, sink := setupNodeService(t, dialer)

	created, err := svc.CreateNode(&model.Node{Name: "n1", Address: "10.0.0.1"}, "admin")
	require.NoError(t, err)
	require.NotZero(t, created.Id)

	require.Eventually(t, func() bool {
		return len(sink.ofKind(notification.KindNodeCreated)) == 1
	}, time.Second, 10*time.Millisecond)

	// the background connect dials the new node and persists the outcome
	require.Eventually(t, func() bool {
		return dialer.dialCount(created.Id) == 1
	}, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		var dbNode model.Node
		if err := database.GetDB().First(&dbNode, created.Id).Error; err != nil {
			return false
		}
		return dbNode.Status == model.NodeConnected
	}, time.Second, 10*time.Millisecond)
}

func TestModifyNodeToDisabledTearsDownSession(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, _ := setupNodeService(t, dialer)
	defer notifier.Stop()

	n := createTestNode(t, &model.Node{Name: "n1", Status: model.NodeError})
	require.NoError(t, svc.ConnectSingleNode(context.Background(), n.Id))
	require.NotNil(t, svc.pool.Get(n.Id))

	_, err := svc.ModifyNode(n.Id, &model.Node{Name: "n1", Status: model.NodeDisabled}, "admin")
	require.NoError(t, err)

	assert.Nil(t, svc.pool.Get(n.Id))
	assert.True(t, dialer.session(n.Id).closed)
}

func TestModifyNodeWritesZeroValues(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, _ := setupNodeService(t, dialer)
	defer notifier.Stop()

	n := createTestNode(t, &model.Node{
		Name: "n1", Address: "10.0.0.1", Status: model.NodeError,
		KeepAlive: true, CoreConfigId: core.DefaultConfigId,
	})

	updated, err := svc.ModifyNode(n.Id, &model.Node{
		Name: "n1", Address: "10.0.0.1", Status: model.NodeError,
		KeepAlive: false, CoreConfigId: 0,
	}, "admin")
	require.NoError(t, err)
	assert.False(t, updated.KeepAlive)
	assert.Zero(t, updated.CoreConfigId)

	dbNode := fetchNode(t, n.Id)
	assert.False(t, dbNode.KeepAlive)
	assert.Zero(t, dbNode.CoreConfigId)

	// let the background reconnect finish before the test tears down
	require.Eventually(t, func() bool {
		var fresh model.Node
		if err := database.GetDB().First(&fresh, n.Id).Error; err != nil {
			return false
		}
		return fresh.Status == model.NodeConnected
	}, time.Second, 10*time.Millisecond)
}

func TestRemoveNodeClosesSession(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, sink := setupNodeService(t, dialer)

	n := createTestNode(t, &model.Node{Name: "n1", Status: model.NodeError})
	require.NoError(t, svc.ConnectSingleNode(context.Background(), n.Id))

	require.NoError(t, svc.RemoveNode(n.Id, "admin"))
	assert.Nil(t, svc.pool.Get(n.Id))
	assert.True(t, dialer.session(n.Id).closed)
	_, err := svc.GetNode(n.Id)
	assert.Error(t, err)

	notifier.Stop()
	assert.Len(t, sink.ofKind(notification.KindNodeRemoved), 1)
}

func TestGetLogsRequiresSession(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, _ := setupNodeService(t, dialer)
	defer notifier.Stop()

	_, err := svc.GetLogs(42)
	assert.Error(t, err)

	n := createTestNode(t, &model.Node{Name: "n1", Status: model.NodeError})
	require.NoError(t, svc.ConnectSingleNode(context.Background(), n.Id))

	factory, err := svc.GetLogs(n.Id)
	require.NoError(t, err)
	ch, err := factory(context.Background())
	require.NoError(t, err)
	_, open := <-ch
	assert.False(t, open)
}

func TestGetUserIpListSkips404(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, _ := setupNodeService(t, dialer)
	defer notifier.Stop()

	require.NoError(t, svc.CreateClient(&model.Client{Enable: true, Name: "alice"}))
	reachable := createTestNode(t, &model.Node{Name: "ok", Status: model.NodeError})
	missing := createTestNode(t, &model.Node{Name: "no-user", Status: model.NodeError})
	require.NoError(t, svc.ConnectSingleNode(context.Background(), reachable.Id))
	require.NoError(t, svc.ConnectSingleNode(context.Background(), missing.Id))

	dialer.session(reachable.Id).ipList = map[string]int64{"192.0.2.1": 3}
	dialer.session(missing.Id).ipErr = &node.RemoteError{Code: 404, Detail: "user not found"}

	ips, err := svc.GetUserIpListAllNodes(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, ips, 1)
	assert.Equal(t, int64(3), ips[reachable.Id]["192.0.2.1"])
}

func TestGetNodesFilters(t *testing.T) {
	dialer := newStubDialer()
	svc, notifier, _ := setupNodeService(t, dialer)
	defer notifier.Stop()

	createTestNode(t, &model.Node{Name: "alpha", Status: model.NodeConnected})
	createTestNode(t, &model.Node{Name: "beta", Status: model.NodeDisabled})
	createTestNode(t, &model.Node{Name: "gamma", Status: model.NodeError, CoreConfigId: core.DefaultConfigId})

	enabled, count, err := svc.GetNodes(NodeFilter{Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, enabled, 2)

	byStatus, _, err := svc.GetNodes(NodeFilter{Status: []model.NodeStatus{model.NodeDisabled}})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "beta", byStatus[0].Name)

	bySearch, _, err := svc.GetNodes(NodeFilter{Search: "gam"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "gamma", bySearch[0].Name)

	paged, total, err := svc.GetNodes(NodeFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, paged, 1)
}
