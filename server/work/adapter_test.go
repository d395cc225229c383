package work

import (
	"errors"
	"testing"
	"time"

	"github.com/Daskott/zantag/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerform(t *testing.T) {
	models.InitializeTestDb()

	adapter := NewWorkerAdapter("UTC")
	received := make(chan map[string]interface{}, 1)

	err := adapter.Register("greet", func(args map[string]interface{}) error {
		received <- args
		return nil
	})
	require.Nil(t, err)
	assert.ErrorIs(t, adapter.Register("greet", func(map[string]interface{}) error { return nil }), ErrDuplicateHandler)

	err = adapter.Perform(JobParams{
		Name:    "greet-mike",
		Handler: "greet",
		Args:    map[string]interface{}{"first_name": "mike"},
	})
	require.Nil(t, err)

	adapter.Start()
	defer adapter.Stop()

	select {
	case args := <-received:
		assert.Equal(t, "mike", args["first_name"])
	case <-time.After(5 * time.Second):
		t.Fatal("job was not processed")
	}

	assert.Eventually(t, func() bool {
		stats, err := models.CurrentJobsStats()
		return err == nil && stats.SuccessfulJobCount == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestPerformRetriesUntilDead(t *testing.T) {
	models.InitializeTestDb()

	adapter := NewWorkerAdapter("UTC")
	require.Nil(t, adapter.Register("always_fails", func(map[string]interface{}) error {
		return errors.New("boom")
	}))

	require.Nil(t, adapter.Perform(JobParams{Name: "doomed", Handler: "always_fails"}))

	adapter.Start()
	defer adapter.Stop()

	assert.Eventually(t, func() bool {
		stats, err := models.CurrentJobsStats()
		return err == nil && stats.DeadJobCount == 1
	}, 10*time.Second, 50*time.Millisecond)

	jobs, _, err := models.FetchJobs(1, models.DEAD_JOB)
	require.Nil(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, MAX_FAILS, jobs[0].Fails)
	assert.Equal(t, "boom", jobs[0].LastError)
}

func TestPerformIgnoresDuplicateUniqueJobs(t *testing.T) {
	models.InitializeTestDb()

	adapter := NewWorkerAdapter("UTC")
	job := JobParams{Name: "backup", Handler: "backup_sqlite_db", Unique: true}

	assert.Nil(t, adapter.Perform(job))
	assert.Nil(t, adapter.Perform(job))
	assert.NotNil(t, adapter.Perform(JobParams{Name: "nameless"}))

	stats, err := models.CurrentJobsStats()
	require.Nil(t, err)
	assert.Equal(t, int64(1), stats.EnqueuedJobCount)
}

func TestPeriodicallyPerform(t *testing.T) {
	models.InitializeTestDb()

	adapter := NewWorkerAdapter("UTC")
	job := JobParams{Name: "nightly", Handler: "noop", Unique: true}

	assert.Nil(t, adapter.PeriodicallyPerform("0 2 * * *", job))
	assert.NotNil(t, adapter.PeriodicallyPerform("0 2 * * *", job))
	assert.Nil(t, adapter.RemovePeriodicJob("nightly"))
	assert.NotNil(t, adapter.RemovePeriodicJob("nightly"))
}
