package work

import (
	"errors"
	"fmt"
	"time"

	"github.com/Daskott/zantag/colors"
	"github.com/Daskott/zantag/server/models"
	"gorm.io/gorm"
)

// STUCK_AFTER_MINUTES is how long a job may stay in-progress before it is
// considered abandoned by its worker.
const STUCK_AFTER_MINUTES = 10

type requeuer struct {
	stopChan chan struct{}
}

func newRequeuer() *requeuer {
	return &requeuer{stopChan: make(chan struct{})}
}

// start starts the requeuer loop that pulls jobs from 'in-progress'
// that are stuck(i.e stayed too long in-progress) and requeue them
func (r *requeuer) start() {
	go r.loop()
}

func (r *requeuer) stop() {
	r.stopChan <- struct{}{}
}

func (r *requeuer) loop() {
	var job *models.Job
	var err error

	// At some point we may need an expnential back-off,
	// but for now keep it simple
	sleepBackOff := 30
	rateLimiter := time.NewTicker(DefaultTickerDuration)
	defer rateLimiter.Stop()

	logg.Infof("Starting in-progress job requeuer")
	for {
		select {
		case <-r.stopChan:
			logg.Infof("Stopping in-progress job requeuer")
			return
		case <-rateLimiter.C:
			job, err = models.LastJobLastUpdated(STUCK_AFTER_MINUTES, models.IN_PROGRESS_JOB)

			// If no job found, sleep for 'sleepBackOff' seconds
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rateLimiter.Reset(time.Duration(sleepBackOff) * time.Second)
				continue
			}

			if err != nil {
				r.logError(err)
				rateLimiter.Reset(TickerDurationOnError)
				continue
			}

			r.requeue(job)
			rateLimiter.Reset(DefaultTickerDuration)
		}
	}
}

func (r *requeuer) requeue(job *models.Job) {
	jobStatus, err := models.FindJobStatus(models.ENQUEUED_JOB)
	if err != nil {
		r.logError(err)
		return
	}

	err = job.Update(map[string]interface{}{
		"claimed":       false,
		"job_status_id": jobStatus.ID,
	})
	if err != nil {
		r.logError(err)
		return
	}

	r.logInfof("job with id=%v requeued", job.ID)
}

func (r *requeuer) logInfof(template string, args ...interface{}) {
	prefix := colors.Yellow("[in-progress job requeuer] ")
	logg.Infof(prefix+template, args...)
}

func (r *requeuer) logError(err error) {
	prefix := colors.Red("[in-progress job requeuer] ")
	logg.Error(prefix, fmt.Sprint(err))
}
