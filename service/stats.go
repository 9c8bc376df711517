package service

import (
	"context"
	"time"

	"github.com/pasarfleet/p-ui/database"
	"github.com/pasarfleet/p-ui/database/model"
)

type StatsService struct {
	nodes *NodeService
}

func NewStatsService(nodes *NodeService) *StatsService {
	return &StatsService{nodes: nodes}
}

// SaveNodeStats snapshots realtime stats of every live node.
// Unreachable nodes are simply absent from the snapshot.
func (s *StatsService) SaveNodeStats(ctx context.Context) error {
	stats := s.nodes.GetNodesSystemStats(ctx)

	rows := make([]model.NodeStat, 0, len(stats))
	for nodeId, stat := range stats {
		if stat == nil {
			continue
		}
		rows = append(rows, model.NodeStat{
			NodeId:                 nodeId,
			MemTotal:               stat.MemTotal,
			MemUsed:                stat.MemUsed,
			CpuCores:               stat.CpuCores,
			CpuUsage:               stat.CpuUsage,
			IncomingBandwidthSpeed: stat.IncomingBandwidthSpeed,
			OutgoingBandwidthSpeed: stat.OutgoingBandwidthSpeed,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	db := database.GetDB()
	return db.Create(&rows).Error
}

func (s *StatsService) GetNodeStats(nodeId uint, start int64, end int64) ([]model.NodeStat, error) {
	db := database.GetDB()
	var rows []model.NodeStat
	query := db.Where("node_id = ?", nodeId)
	if start > 0 {
		query = query.Where("date_time >= ?", start)
	}
	if end > 0 {
		query = query.Where("date_time <= ?", end)
	}
	err := query.Order("date_time").Find(&rows).Error
	return rows, err
}

// DelOldStats drops snapshots older than the retention window.
func (s *StatsService) DelOldStats(days int) error {
	if days < 1 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days).Unix()
	db := database.GetDB()
	return db.Where("date_time < ?", cutoff).Delete(&model.NodeStat{}).Error
}
