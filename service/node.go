package service

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/pasarfleet/p-ui/core"
	"github.com/pasarfleet/p-ui/database"
	"github.com/pasarfleet/p-ui/database/model"
	"github.com/pasarfleet/p-ui/logger"
	"github.com/pasarfleet/p-ui/node"
	"github.com/pasarfleet/p-ui/notification"
	"github.com/pasarfleet/p-ui/util/common"
)

// maxDetailLength bounds the error detail kept in the persisted status
// message.
const maxDetailLength = 1024

// NodeService drives every node through the connection state machine
// and owns the only mutations of the session pool.
type NodeService struct {
	ClientService
	pool     *node.Pool
	cores    *core.Manager
	notifier *notification.Notifier
}

func NewNodeService(pool *node.Pool, cores *core.Manager, notifier *notification.Notifier) *NodeService {
	return &NodeService{
		pool:     pool,
		cores:    cores,
		notifier: notifier,
	}
}

// connectResult is the outcome of one connect attempt, applied to the
// database after the attempt completes. A nil result means the attempt
// was skipped.
type connectResult struct {
	nodeId      uint
	nodeName    string
	status      model.NodeStatus
	message     string
	coreVersion string
	nodeVersion string
	oldStatus   model.NodeStatus
}

// NodeFilter selects nodes for listing and bulk operations.
type NodeFilter struct {
	CoreConfigId uint
	Offset       int
	Limit        int
	Enabled      bool
	Status       []model.NodeStatus
	Ids          []uint
	Search       string
}

func (s *NodeService) GetNodes(filter NodeFilter) ([]model.Node, int64, error) {
	db := database.GetDB().Model(&model.Node{})

	if filter.CoreConfigId != 0 {
		db = db.Where("core_config_id = ?", filter.CoreConfigId)
	}
	if filter.Enabled {
		db = db.Where("status <> ?", model.NodeDisabled)
	}
	if len(filter.Status) > 0 {
		db = db.Where("status IN ?", filter.Status)
	}
	if len(filter.Ids) > 0 {
		db = db.Where("id IN ?", filter.Ids)
	}
	if filter.Search != "" {
		db = db.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if filter.Offset > 0 {
		db = db.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	var nodes []model.Node
	err := db.Find(&nodes).Error
	return nodes, count, err
}

func (s *NodeService) GetNode(id uint) (*model.Node, error) {
	db := database.GetDB()
	var dbNode model.Node
	err := db.First(&dbNode, id).Error
	if database.IsNotFound(err) {
		return nil, common.NewErrorf("node %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &dbNode, nil
}

func (s *NodeService) CreateNode(newNode *model.Node, by string) (*model.Node, error) {
	if newNode.CoreConfigId != 0 && !s.cores.Has(newNode.CoreConfigId) {
		return nil, common.NewErrorf("core config %d not found", newNode.CoreConfigId)
	}

	db := database.GetDB()
	if err := db.Create(newNode).Error; err != nil {
		return nil, err
	}

	logger.Infof(`New node "%s" with id "%d" added by "%s"`, newNode.Name, newNode.Id, by)
	s.notifier.Emit(notification.Event{
		Kind:     notification.KindNodeCreated,
		NodeId:   newNode.Id,
		NodeName: newNode.Name,
		By:       by,
	})

	go s.ConnectSingleNode(context.Background(), newNode.Id)

	return newNode, nil
}

func (s *NodeService) ModifyNode(id uint, modified *model.Node, by string) (*model.Node, error) {
	dbNode, err := s.GetNode(id)
	if err != nil {
		return nil, err
	}
	if modified.CoreConfigId != 0 && !s.cores.Has(modified.CoreConfigId) {
		return nil, common.NewErrorf("core config %d not found", modified.CoreConfigId)
	}

	// a map update so zero values (keepAlive false, default config id)
	// are written too
	db := database.GetDB()
	err = db.Model(&model.Node{}).Where("id = ?", dbNode.Id).Updates(map[string]interface{}{
		"name":           modified.Name,
		"address":        modified.Address,
		"port":           modified.Port,
		"api_key":        modified.ApiKey,
		"status":         modified.Status,
		"core_config_id": modified.CoreConfigId,
		"keep_alive":     modified.KeepAlive,
	}).Error
	if err != nil {
		return nil, err
	}

	if modified.Status.Excluded() {
		s.DisconnectNode(dbNode.Id)
	} else {
		go s.ConnectSingleNode(context.Background(), dbNode.Id)
	}

	logger.Infof(`Node "%s" with id "%d" modified by "%s"`, modified.Name, dbNode.Id, by)
	s.notifier.Emit(notification.Event{
		Kind:     notification.KindNodeModified,
		NodeId:   dbNode.Id,
		NodeName: modified.Name,
		By:       by,
	})

	return s.GetNode(dbNode.Id)
}

func (s *NodeService) RemoveNode(id uint, by string) error {
	dbNode, err := s.GetNode(id)
	if err != nil {
		return err
	}

	s.pool.Remove(dbNode.Id)

	db := database.GetDB()
	if err := db.Delete(&model.Node{}, dbNode.Id).Error; err != nil {
		return err
	}

	logger.Infof(`Node "%s" with id "%d" deleted by "%s"`, dbNode.Name, dbNode.Id, by)
	s.notifier.Emit(notification.Event{
		Kind:     notification.KindNodeRemoved,
		NodeId:   dbNode.Id,
		NodeName: dbNode.Name,
		By:       by,
	})

	return nil
}

// ResetNodeUsage zeroes the node's usage counters and appends a usage
// log row, in one transaction.
func (s *NodeService) ResetNodeUsage(id uint, by string) (*model.Node, error) {
	dbNode, err := s.GetNode(id)
	if err != nil {
		return nil, err
	}

	oldUplink, oldDownlink := dbNode.Uplink, dbNode.Downlink

	db := database.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		logRow := model.NodeUsageLog{
			NodeId:   dbNode.Id,
			Uplink:   oldUplink,
			Downlink: oldDownlink,
		}
		if err := tx.Create(&logRow).Error; err != nil {
			return err
		}
		return tx.Model(dbNode).Updates(map[string]interface{}{
			"uplink":   0,
			"downlink": 0,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	dbNode.Uplink, dbNode.Downlink = 0, 0

	logger.Infof(`Node "%s" (ID: %d) usage reset by "%s"`, dbNode.Name, dbNode.Id, by)
	s.notifier.Emit(notification.Event{
		Kind:        notification.KindNodeUsageReset,
		NodeId:      dbNode.Id,
		NodeName:    dbNode.Name,
		By:          by,
		OldUplink:   oldUplink,
		OldDownlink: oldDownlink,
	})

	return dbNode, nil
}

// connectNode attempts one start call and returns its outcome without
// touching the database. A nil result means the attempt is a skip: the
// node has no pool session, or the bridge answered with the sentinel
// skip code.
func (s *NodeService) connectNode(ctx context.Context, dbNode *model.Node, users []*node.User) *connectResult {
	session := s.pool.Get(dbNode.Id)
	if session == nil {
		return nil
	}

	oldStatus := dbNode.Status
	logger.Infof(`Connecting to "%s" node`, dbNode.Name)

	result := &connectResult{
		nodeId:    dbNode.Id,
		nodeName:  dbNode.Name,
		oldStatus: oldStatus,
	}

	c, err := s.cores.Get(dbNode.CoreConfigId)
	if err != nil {
		result.status = model.NodeError
		result.message = err.Error()
		return result
	}

	info, err := session.Start(ctx, &node.StartRequest{
		Config:          c.ToString(),
		BackendType:     int(c.BackendType()),
		Users:           users,
		KeepAlive:       dbNode.KeepAlive,
		ExcludeInbounds: c.ExcludeInboundTags(),
	})
	if err != nil {
		if node.IsSkip(err) {
			return nil
		}
		detail := remoteDetail(err)
		logger.Errorf("Failed to connect node %s with id %d, Error: %s", dbNode.Name, dbNode.Id, detail)
		result.status = model.NodeError
		result.message = detail
		return result
	}

	logger.Infof(`Connected to "%s" node v%s, core run on v%s`, dbNode.Name, info.NodeVersion, info.CoreVersion)

	result.status = model.NodeConnected
	result.coreVersion = info.CoreVersion
	result.nodeVersion = info.NodeVersion
	return result
}

func remoteDetail(err error) string {
	detail := err.Error()
	if remoteErr, ok := node.AsRemoteError(err); ok {
		detail = remoteErr.Detail
	}
	if len(detail) > maxDetailLength {
		detail = detail[:maxDetailLength-4] + "..."
	}
	return detail
}

// ConnectSingleNode connects one node and persists the outcome with a
// targeted single-row update. The returned error is the remote
// failure, for callers performing an explicit administrative action;
// background callers ignore it.
func (s *NodeService) ConnectSingleNode(ctx context.Context, nodeId uint) error {
	db := database.GetDB()
	var dbNode model.Node
	if err := db.First(&dbNode, nodeId).Error; err != nil {
		return err
	}
	if dbNode.Status.Excluded() {
		return nil
	}

	users, err := s.CoreUsers()
	if err != nil {
		return err
	}

	if _, err := s.pool.Update(&dbNode); err != nil {
		detail := remoteDetail(err)
		if updateErr := updateNodeStatus(db, dbNode.Id, model.NodeError, detail, "", ""); updateErr != nil {
			logger.Error("update node status failed: ", updateErr)
		}
		s.notifier.Emit(notification.Event{
			Kind:     notification.KindNodeError,
			NodeId:   dbNode.Id,
			NodeName: dbNode.Name,
			Message:  notification.Truncate(detail),
		})
		return err
	}

	result := s.connectNode(ctx, &dbNode, users)
	if result == nil {
		return nil
	}

	if err := updateNodeStatus(db, result.nodeId, result.status, result.message, result.coreVersion, result.nodeVersion); err != nil {
		logger.Error("update node status failed: ", err)
	}

	s.notifyResult(result)

	if result.status == model.NodeError {
		return common.NewError(result.message)
	}
	return nil
}

// ConnectNodesBulk connects the given nodes concurrently and applies
// one aggregate status write once every attempt has completed. One
// node's failure never affects its siblings.
func (s *NodeService) ConnectNodesBulk(ctx context.Context, nodes []model.Node) error {
	if len(nodes) == 0 {
		return nil
	}

	// Fetch the active user set once for the whole batch.
	users, err := s.CoreUsers()
	if err != nil {
		return err
	}

	results := make([]*connectResult, len(nodes))
	var wg sync.WaitGroup
	for i := range nodes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n := &nodes[i]
			if n.Status.Excluded() {
				return
			}

			if _, err := s.pool.Update(n); err != nil {
				results[i] = &connectResult{
					nodeId:    n.Id,
					nodeName:  n.Name,
					status:    model.NodeError,
					message:   remoteDetail(err),
					oldStatus: n.Status,
				}
				return
			}

			results[i] = s.connectNode(ctx, n, users)
		}(i)
	}
	wg.Wait()

	valid := make([]*connectResult, 0, len(results))
	for _, result := range results {
		if result != nil {
			valid = append(valid, result)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	if err := bulkUpdateNodeStatus(database.GetDB(), valid); err != nil {
		logger.Error("bulk update node status failed: ", err)
		return err
	}

	for _, result := range valid {
		s.notifyResult(result)
	}
	return nil
}

// notifyResult emits connected events always and error events only on
// a transition into error, so repeated failures do not storm the sink.
func (s *NodeService) notifyResult(result *connectResult) {
	switch {
	case result.status == model.NodeConnected:
		s.notifier.Emit(notification.Event{
			Kind:        notification.KindNodeConnected,
			NodeId:      result.nodeId,
			NodeName:    result.nodeName,
			CoreVersion: result.coreVersion,
			NodeVersion: result.nodeVersion,
		})
	case result.status == model.NodeError && result.oldStatus != model.NodeError:
		s.notifier.Emit(notification.Event{
			Kind:     notification.KindNodeError,
			NodeId:   result.nodeId,
			NodeName: result.nodeName,
			Message:  notification.Truncate(result.message),
		})
	}
}

// DisconnectNode tears down the node's live session, if any.
func (s *NodeService) DisconnectNode(nodeId uint) {
	s.pool.Remove(nodeId)
	logger.Infof(`Node "%d" disconnected`, nodeId)
}

// RestartNode reconnects one node and propagates the remote outcome to
// the caller.
func (s *NodeService) RestartNode(ctx context.Context, nodeId uint, by string) error {
	err := s.ConnectSingleNode(ctx, nodeId)
	logger.Infof(`Node "%d" restarted by "%s"`, nodeId, by)
	return err
}

// RestartAllNodes reconnects the whole fleet, optionally filtered to
// one core config. Per-node failures stay inside the batch.
func (s *NodeService) RestartAllNodes(ctx context.Context, coreConfigId uint, by string) error {
	nodes, _, err := s.GetNodes(NodeFilter{CoreConfigId: coreConfigId, Enabled: true})
	if err != nil {
		return err
	}
	err = s.ConnectNodesBulk(ctx, nodes)
	if err != nil {
		return err
	}
	logger.Infof(`All nodes restarted by "%s"`, by)
	return nil
}

func (s *NodeService) GetNodeSystemStats(ctx context.Context, nodeId uint) (*node.SystemStats, error) {
	session := s.pool.Get(nodeId)
	if session == nil {
		return nil, common.NewErrorf("node %d not found", nodeId)
	}
	return session.GetSystemStats(ctx)
}

// GetNodesSystemStats fans out one stats call per live session. An
// unreachable node yields a nil entry; the rest still report.
func (s *NodeService) GetNodesSystemStats(ctx context.Context) map[uint]*node.SystemStats {
	sessions := s.pool.Healthy()

	results := make(map[uint]*node.SystemStats, len(sessions))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for id, session := range sessions {
		wg.Add(1)
		go func(id uint, session node.Session) {
			defer wg.Done()
			stats, err := session.GetSystemStats(ctx)
			if err != nil {
				logger.Errorf("Error getting system stats for node %d: %v", id, err)
				stats = nil
			}
			mu.Lock()
			results[id] = stats
			mu.Unlock()
		}(id, session)
	}
	wg.Wait()

	return results
}

func (s *NodeService) GetUserOnlineStats(ctx context.Context, nodeId uint, clientName string) (map[uint]int64, error) {
	client, err := s.GetClientByName(clientName)
	if err != nil {
		return nil, common.NewErrorf("user %s not found", clientName)
	}

	session := s.pool.Get(nodeId)
	if session == nil {
		return nil, common.NewErrorf("node %d not found", nodeId)
	}

	user := node.User{Id: client.Id, Name: client.Name}
	count, err := session.GetUserOnlineStats(ctx, user.Email())
	if err != nil {
		return nil, err
	}

	return map[uint]int64{nodeId: count}, nil
}

func (s *NodeService) GetUserIpList(ctx context.Context, nodeId uint, clientName string) (map[string]int64, error) {
	client, err := s.GetClientByName(clientName)
	if err != nil {
		return nil, common.NewErrorf("user %s not found", clientName)
	}

	user := node.User{Id: client.Id, Name: client.Name}
	ips := s.getUserIpListSafe(ctx, nodeId, user.Email())
	if ips == nil {
		return nil, common.NewError("node unavailable or user not found")
	}
	return ips, nil
}

// GetUserIpListAllNodes collects a client's observed IPs from every
// live session, skipping unreachable nodes.
func (s *NodeService) GetUserIpListAllNodes(ctx context.Context, clientName string) (map[uint]map[string]int64, error) {
	client, err := s.GetClientByName(clientName)
	if err != nil {
		return nil, common.NewErrorf("user %s not found", clientName)
	}

	sessions := s.pool.Healthy()
	user := node.User{Id: client.Id, Name: client.Name}
	email := user.Email()

	results := make(map[uint]map[string]int64)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for id := range sessions {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			ips := s.getUserIpListSafe(ctx, id, email)
			if ips == nil {
				return
			}
			mu.Lock()
			results[id] = ips
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	return results, nil
}

func (s *NodeService) getUserIpListSafe(ctx context.Context, nodeId uint, email string) map[string]int64 {
	session := s.pool.Get(nodeId)
	if session == nil {
		return nil
	}

	ips, err := session.GetUserOnlineIpList(ctx, email)
	if err != nil {
		if remoteErr, ok := node.AsRemoteError(err); !ok || remoteErr.Code != 404 {
			logger.Errorf("Error getting IP list for user %s on node %d: %v", email, nodeId, err)
		}
		return nil
	}
	return ips
}

// SyncNodeUsers pushes the current user set to one node. The node must
// already be connected and hold a live session; a remote failure is
// persisted as error status and propagated to the caller.
func (s *NodeService) SyncNodeUsers(ctx context.Context, nodeId uint, flushUsers bool) (*model.Node, error) {
	dbNode, err := s.GetNode(nodeId)
	if err != nil {
		return nil, err
	}

	if dbNode.Status != model.NodeConnected {
		return nil, common.NewError("node is not connected")
	}

	session := s.pool.Get(nodeId)
	if session == nil {
		return nil, common.NewError("node is not connected")
	}

	users, err := s.CoreUsers()
	if err != nil {
		return nil, err
	}

	if err := session.SyncUsers(ctx, users, flushUsers); err != nil {
		detail := remoteDetail(err)
		if updateErr := updateNodeStatus(database.GetDB(), dbNode.Id, model.NodeError, detail, "", ""); updateErr != nil {
			logger.Error("update node status failed: ", updateErr)
		}
		return nil, err
	}

	return dbNode, nil
}

// GetLogs returns a restartable log-stream factory for the node. It
// fails immediately when the node has no live session.
func (s *NodeService) GetLogs(nodeId uint) (func(ctx context.Context) (<-chan string, error), error) {
	session := s.pool.Get(nodeId)
	if session == nil {
		return nil, common.NewErrorf("node %d not found", nodeId)
	}
	return session.StreamLogs, nil
}

func updateNodeStatus(db *gorm.DB, nodeId uint, status model.NodeStatus, message string, coreVersion string, nodeVersion string) error {
	return db.Model(&model.Node{}).Where("id = ?", nodeId).Updates(map[string]interface{}{
		"status":       status,
		"message":      message,
		"core_version": coreVersion,
		"node_version": nodeVersion,
	}).Error
}

// bulkUpdateNodeStatus applies every result of a batch in one
// transaction, after all attempts have completed.
func bulkUpdateNodeStatus(db *gorm.DB, results []*connectResult) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, result := range results {
			err := tx.Model(&model.Node{}).Where("id = ?", result.nodeId).Updates(map[string]interface{}{
				"status":       result.status,
				"message":      result.message,
				"core_version": result.coreVersion,
				"node_version": result.nodeVersion,
			}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
