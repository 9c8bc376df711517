package cronjob

import (
	"context"

	"github.com/pasarfleet/p-ui/database/model"
	"github.com/pasarfleet/p-ui/logger"
	"github.com/pasarfleet/p-ui/service"
)

// NodeJob is the periodic fleet reconciliation: every enabled node in
// connected or error status gets a bulk connect attempt. Nodes whose
// backend is already running answer with the skip code, so the pass is
// cheap for a healthy fleet.
type NodeJob struct {
	nodeService *service.NodeService
}

func NewNodeJob(nodeService *service.NodeService) *NodeJob {
	return &NodeJob{nodeService: nodeService}
}

func (j *NodeJob) Run() {
	nodes, _, err := j.nodeService.GetNodes(service.NodeFilter{
		Enabled: true,
		Status:  []model.NodeStatus{model.NodeConnected, model.NodeError},
	})
	if err != nil {
		logger.Warning("node check: list nodes failed: ", err)
		return
	}

	if err := j.nodeService.ConnectNodesBulk(context.Background(), nodes); err != nil {
		logger.Warning("node check failed: ", err)
	}
}
