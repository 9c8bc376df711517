package cronjob

import (
	"context"

	"github.com/pasarfleet/p-ui/logger"
	"github.com/pasarfleet/p-ui/service"
)

type StatsJob struct {
	statsService *service.StatsService
}

func NewStatsJob(statsService *service.StatsService) *StatsJob {
	return &StatsJob{statsService: statsService}
}

func (s *StatsJob) Run() {
	err := s.statsService.SaveNodeStats(context.Background())
	if err != nil {
		logger.Warning("Get stats failed: ", err)
		return
	}
}
