package node

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasarfleet/p-ui/database/model"
)

type fakeSession struct {
	closed bool
}

func (s *fakeSession) Start(ctx context.Context, req *StartRequest) (*SessionInfo, error) {
	return &SessionInfo{CoreVersion: "1.0.0", NodeVersion: "0.1.0"}, nil
}

func (s *fakeSession) SyncUsers(ctx context.Context, users []*User, flushQueue bool) error {
	return nil
}

func (s *fakeSession) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	return &SystemStats{}, nil
}

func (s *fakeSession) GetUserOnlineStats(ctx context.Context, email string) (int64, error) {
	return 0, nil
}

func (s *fakeSession) GetUserOnlineIpList(ctx context.Context, email string) (map[string]int64, error) {
	return nil, nil
}

func (s *fakeSession) StreamLogs(ctx context.Context) (<-chan string, error) {
	ch := make(chan string)
	close(ch)
	return ch, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeDialer struct {
	err      error
	sessions []*fakeSession
}

func (d *fakeDialer) Dial(n *model.Node) (Session, error) {
	if d.err != nil {
		return nil, d.err
	}
	session := &fakeSession{}
	d.sessions = append(d.sessions, session)
	return session, nil
}

func TestPoolUpdateReplacesAndClosesOldSession(t *testing.T) {
	dialer := &fakeDialer{}
	pool := NewPool(dialer)
	n := &model.Node{Id: 1, Status: model.NodeConnected}

	first, err := pool.Update(n)
	require.NoError(t, err)
	second, err := pool.Update(n)
	require.NoError(t, err)

	assert.NotSame(t, first.(*fakeSession), second.(*fakeSession))
	assert.True(t, dialer.sessions[0].closed)
	assert.False(t, dialer.sessions[1].closed)
	assert.Same(t, second.(*fakeSession), pool.Get(1).(*fakeSession))
}

func TestPoolUpdateRejectsExcludedStatus(t *testing.T) {
	dialer := &fakeDialer{}
	pool := NewPool(dialer)

	_, err := pool.Update(&model.Node{Id: 1, Status: model.NodeConnected})
	require.NoError(t, err)

	for _, status := range []model.NodeStatus{model.NodeDisabled, model.NodeLimited} {
		_, err := pool.Update(&model.Node{Id: 1, Status: status})
		assert.Error(t, err)
		assert.Nil(t, pool.Get(1))
	}
	// only the first dial happened
	assert.Len(t, dialer.sessions, 1)
	assert.True(t, dialer.sessions[0].closed)
}

func TestPoolUpdateDialFailure(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("refused")}
	pool := NewPool(dialer)

	_, err := pool.Update(&model.Node{Id: 1, Status: model.NodeError})
	assert.Error(t, err)
	assert.Nil(t, pool.Get(1))
}

func TestPoolRemoveClosesSession(t *testing.T) {
	dialer := &fakeDialer{}
	pool := NewPool(dialer)

	_, err := pool.Update(&model.Node{Id: 1, Status: model.NodeConnected})
	require.NoError(t, err)

	pool.Remove(1)
	assert.Nil(t, pool.Get(1))
	assert.True(t, dialer.sessions[0].closed)

	// removing an absent id is a no-op
	pool.Remove(42)
}

func TestPoolHealthySnapshot(t *testing.T) {
	dialer := &fakeDialer{}
	pool := NewPool(dialer)

	_, err := pool.Update(&model.Node{Id: 1, Status: model.NodeConnected})
	require.NoError(t, err)
	_, err = pool.Update(&model.Node{Id: 2, Status: model.NodeError})
	require.NoError(t, err)

	healthy := pool.Healthy()
	assert.Len(t, healthy, 2)

	pool.Remove(1)
	// snapshot is not live
	assert.Len(t, healthy, 2)
	assert.Len(t, pool.Healthy(), 1)
}

func TestPoolCloseDrainsAll(t *testing.T) {
	dialer := &fakeDialer{}
	pool := NewPool(dialer)

	for id := uint(1); id <= 3; id++ {
		_, err := pool.Update(&model.Node{Id: id, Status: model.NodeConnected})
		require.NoError(t, err)
	}

	pool.Close()
	for _, session := range dialer.sessions {
		assert.True(t, session.closed)
	}
	assert.Empty(t, pool.Healthy())
}

func TestIsSkip(t *testing.T) {
	assert.True(t, IsSkip(&RemoteError{Code: CodeSkip, Detail: "already started"}))
	assert.False(t, IsSkip(&RemoteError{Code: 500, Detail: "boom"}))
	assert.False(t, IsSkip(errors.New("plain")))
}

func TestUserEmail(t *testing.T) {
	u := &User{Id: 7, Name: "alice"}
	assert.Equal(t, "7.alice", u.Email())
}
