package cronjob

import (
	"github.com/pasarfleet/p-ui/logger"
	"github.com/pasarfleet/p-ui/service"
)

type DelStatsJob struct {
	statsService *service.StatsService
	statsAge     int
}

func NewDelStatsJob(statsService *service.StatsService, statsAge int) *DelStatsJob {
	return &DelStatsJob{
		statsService: statsService,
		statsAge:     statsAge,
	}
}

func (s *DelStatsJob) Run() {
	err := s.statsService.DelOldStats(s.statsAge)
	if err != nil {
		logger.Warning("Deleting old statistics failed: ", err)
		return
	}
	logger.Debug("Stats older than ", s.statsAge, " days were deleted")
}
