package cronjob

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pasarfleet/p-ui/service"
)

type CronJob struct {
	cron *cron.Cron
}

func NewCronJob() *CronJob {
	return new(CronJob)
}

func (c *CronJob) Start(loc *time.Location, nodeService *service.NodeService, statsService *service.StatsService, checkInterval int, statsAge int) error {
	c.cron = cron.New(cron.WithLocation(loc), cron.WithSeconds())

	_, err := c.cron.AddJob(fmt.Sprintf("@every %dm", checkInterval), NewNodeJob(nodeService))
	if err != nil {
		return err
	}

	_, err = c.cron.AddJob("@every 1h", NewStatsJob(statsService))
	if err != nil {
		return err
	}

	_, err = c.cron.AddJob("@daily", NewDelStatsJob(statsService, statsAge))
	if err != nil {
		return err
	}

	c.cron.Start()
	return nil
}

func (c *CronJob) Stop() {
	if c.cron != nil {
		c.cron.Stop()
	}
}
