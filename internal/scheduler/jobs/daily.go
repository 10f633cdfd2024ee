package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/signalboard/internal/digest"
)

// DailyJobName is the scheduler name of the daily digest job
const DailyJobName = "daily_digest"

// DailyDigestJob runs the daily cache refresh and digest mailing on a schedule
type DailyDigestJob struct {
	job      *digest.DailyJob
	schedule string
}

// NewDailyDigestJob creates the scheduled wrapper; schedule comes from CRON_DAILY_SCHEDULE
func NewDailyDigestJob(job *digest.DailyJob, schedule string) *DailyDigestJob {
	return &DailyDigestJob{job: job, schedule: schedule}
}

// Name returns the job name
func (j *DailyDigestJob) Name() string {
	return DailyJobName
}

// Schedule returns the cron schedule
func (j *DailyDigestJob) Schedule() string {
	return j.schedule
}

// Run executes the daily job. Failed sends are retried by the scheduler;
// already served subscribers are skipped on the retry.
func (j *DailyDigestJob) Run(ctx context.Context) error {
	result, err := j.job.Run(ctx, "scheduler")
	if err != nil {
		return err
	}
	if result.EmailsFailed > 0 {
		return fmt.Errorf("%d digest emails failed", result.EmailsFailed)
	}
	return nil
}
