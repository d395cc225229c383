package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJob(t *testing.T) {
	InitializeTestDb()

	require.Nil(t, CreateJob("backup", "backup_sqlite_db", "{}", true))
	assert.ErrorIs(t, CreateJob("backup", "backup_sqlite_db", "{}", true), ErrDuplicateJob)
	assert.Nil(t, CreateJob("backup", "backup_sqlite_db", "{}", false))

	stats, err := CurrentJobsStats()
	require.Nil(t, err)
	assert.Equal(t, int64(2), stats.EnqueuedJobCount)
}

func TestClaimJob(t *testing.T) {
	InitializeTestDb()

	require.Nil(t, CreateJob("first", "noop", "{}", false))
	require.Nil(t, CreateJob("second", "noop", "{}", false))

	job, err := NextJob(ENQUEUED_JOB, false)
	require.Nil(t, err)
	assert.Equal(t, "first", job.Name)

	claimed, err := job.MarkAsClaimed()
	require.Nil(t, err)
	assert.True(t, claimed)

	claimed, err = job.MarkAsClaimed()
	require.Nil(t, err)
	assert.False(t, claimed)

	stored, err := FindJob(job.ID)
	require.Nil(t, err)
	assert.Equal(t, IN_PROGRESS_JOB, stored.JobStatus.Name)

	jobs, paging, err := FetchJobs(1, IN_PROGRESS_JOB)
	require.Nil(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, int64(1), paging.Total)

	next, err := NextJob(ENQUEUED_JOB, false)
	require.Nil(t, err)
	assert.Equal(t, "second", next.Name)
}

func TestDeleteJobsInStatusOlderThan(t *testing.T) {
	InitializeTestDb()

	require.Nil(t, CreateJob("recent", "noop", "{}", false))

	deleted, err := DeleteJobsInStatusOlderThan(0, ENQUEUED_JOB)
	require.Nil(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = DeleteJobsInStatusOlderThan(7, SUCCESSFUL_JOB)
	require.Nil(t, err)
	assert.Equal(t, int64(0), deleted)
}
