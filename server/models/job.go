package models

import (
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const jobStatusJoin = "INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ?"

var ErrDuplicateJob = errors.New("job with the given name already exists in queue")

type Job struct {
	BaseModel
	Fails       int        `json:"fails"`
	Name        string     `json:"name"`
	Handler     string     `json:"handler"`
	Args        string     `json:"args"`
	LastError   string     `json:"last_error"`
	Claimed     bool       `json:"claimed" gorm:"default:false"`
	JobStatusID uint       `json:"job_status_id"`
	JobStatus   *JobStatus `json:"status,omitempty"`
}

// MarkAsClaimed flips the job to in-progress, returning false when another
// worker claimed it first.
func (job *Job) MarkAsClaimed() (bool, error) {
	inProgressStatus, err := FindJobStatus(IN_PROGRESS_JOB)
	if err != nil {
		return false, err
	}

	res := db.Model(&Job{}).Where("id = ? AND claimed = ?", job.ID, false).Updates(map[string]interface{}{
		"claimed":       true,
		"job_status_id": inProgressStatus.ID,
	})

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (job *Job) Update(data map[string]interface{}) error {
	return db.Model(job).Updates(data).Error
}

// CreateJob adds an enqueued job. When unique is set and a job with the same
// name is still enqueued or in-progress, ErrDuplicateJob is returned.
func CreateJob(name, handler, args string, unique bool) error {
	enqueuedStatus, err := FindJobStatus(ENQUEUED_JOB)
	if err != nil {
		return err
	}

	if unique {
		var count int64
		err = db.Model(&Job{}).
			Joins("INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id").
			Where("jobs.name = ? AND job_statuses.name IN ?", name, []string{ENQUEUED_JOB, IN_PROGRESS_JOB}).
			Count(&count).Error
		if err != nil {
			return errors.Wrap(err, "CreateJob")
		}

		if count > 0 {
			return ErrDuplicateJob
		}
	}

	return db.Create(&Job{
		Name:        name,
		Handler:     handler,
		Args:        args,
		JobStatusID: enqueuedStatus.ID,
	}).Error
}

// NextJob returns the oldest job with the given status & claim flag.
func NextJob(status string, claimed bool) (*Job, error) {
	job := Job{}
	err := db.Joins(jobStatusJoin, status).Where("claimed = ?", claimed).Order("jobs.id asc").First(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

func FindJob(id interface{}) (*Job, error) {
	job := Job{}
	err := db.Preload("JobStatus").First(&job, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

func FetchJobs(page int, status string) ([]Job, *Paging, error) {
	var total int64
	jobs := []Job{}

	query := func() *gorm.DB {
		if status == "" {
			return db.Model(&Job{})
		}
		return db.Model(&Job{}).Joins(jobStatusJoin, status)
	}

	err := query().Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = query().Scopes(paginate(page, MAX_PAGE_SIZE)).
		Preload("JobStatus").Order("jobs.id desc").Find(&jobs).Error
	if err != nil {
		return nil, nil, err
	}

	return jobs, newPaging(int64(page), MAX_PAGE_SIZE, total), nil
}

func CurrentJobsStats() (*JobsStats, error) {
	stats := JobsStats{}
	counters := map[string]*int64{
		ENQUEUED_JOB:    &stats.EnqueuedJobCount,
		IN_PROGRESS_JOB: &stats.InProgressJobCount,
		SUCCESSFUL_JOB:  &stats.SuccessfulJobCount,
		DEAD_JOB:        &stats.DeadJobCount,
	}

	for status, count := range counters {
		err := db.Model(&Job{}).Joins(jobStatusJoin, status).Count(count).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return &stats, nil
}

// LastJobLastUpdated returns the last job in 'status' that has not been
// touched for at least minutesAgo minutes.
//
// WARNING: datetime() is sqlite specific.
func LastJobLastUpdated(minutesAgo uint, status string) (*Job, error) {
	jobStatus, err := FindJobStatus(status)
	if err != nil {
		return nil, err
	}

	job := Job{}
	err = db.Where(
		fmt.Sprintf("job_status_id = ? AND datetime(updated_at, '+%v minute') <= datetime('now')", minutesAgo),
		jobStatus.ID,
	).Last(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// DeleteJobsInStatusOlderThan removes jobs in 'status' last updated more than
// days ago & returns how many were removed.
//
// WARNING: datetime() is sqlite specific.
func DeleteJobsInStatusOlderThan(days uint, status string) (int64, error) {
	jobStatus, err := FindJobStatus(status)
	if err != nil {
		return 0, err
	}

	res := db.Where(
		fmt.Sprintf("job_status_id = ? AND datetime(updated_at, '+%v day') <= datetime('now')", days),
		jobStatus.ID,
	).Delete(&Job{})

	return res.RowsAffected, res.Error
}
