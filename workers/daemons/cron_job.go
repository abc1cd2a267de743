package daemons

import (
	"github.com/jasonlvhit/gocron"

	"github.com/omxtrade/omx/jobs"
	"github.com/omxtrade/omx/jobs/cron"
)

type Worker interface {
	Start()
}

type CronJob struct {
	Jobs []jobs.Job
}

func NewCronJob() *CronJob {
	return &CronJob{
		Jobs: []jobs.Job{cron.NewOrderExpiryJob()},
	}
}

func (c *CronJob) Start() {
	for _, job := range c.Jobs {
		gocron.Every(30).Seconds().Do(job.Process)
	}

	<-gocron.Start()
}
