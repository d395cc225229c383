package work

import (
	"time"

	"github.com/Daskott/zantag/colors"
	"github.com/Daskott/zantag/server/models"
)

// KEEP_SUCCESSFUL_JOBS_DAYS is how long finished jobs are kept for inspection.
const KEEP_SUCCESSFUL_JOBS_DAYS = 7

type successfulJobsReaper struct {
	interval time.Duration
	stopChan chan struct{}
}

func newSuccessfulJobsReaper(interval time.Duration) *successfulJobsReaper {
	return &successfulJobsReaper{
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// start starts the reaper loop that prunes old successful jobs
func (r *successfulJobsReaper) start() {
	go r.loop()
}

func (r *successfulJobsReaper) stop() {
	r.stopChan <- struct{}{}
}

func (r *successfulJobsReaper) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.reap()
		}
	}
}

func (r *successfulJobsReaper) reap() {
	deleted, err := models.DeleteJobsInStatusOlderThan(KEEP_SUCCESSFUL_JOBS_DAYS, models.SUCCESSFUL_JOB)
	if err != nil {
		logg.Error(colors.Red("[job reaper] "), err)
		return
	}

	if deleted > 0 {
		logg.Infof(colors.Yellow("[job reaper] ")+"removed %v successful jobs", deleted)
	}
}
