package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/transcodehub/transcodebot/internal/config"
	"github.com/transcodehub/transcodebot/internal/jobs"
	"github.com/transcodehub/transcodebot/internal/models"
)

const jobStatusExpiry = 24 * time.Hour

// jobsRedisRepo mirrors job status into Redis so it survives process
// restarts and is visible to the status API.
type jobsRedisRepo struct {
	redisClient *redis.Client
	cfg         *config.Config
}

func NewJobsRedisRepository(redisClient *redis.Client, cfg *config.Config) jobs.StatusRepository {
	return &jobsRedisRepo{redisClient: redisClient, cfg: cfg}
}

func (r *jobsRedisRepo) key(jobID string) string {
	return r.cfg.Redis.JobKeyPrefix + jobID
}

func (r *jobsRedisRepo) UpdateStatus(ctx context.Context, job *models.Job) error {
	view := jobs.JobView{
		JobID:     job.JobID,
		SessionID: job.SessionID,
		Operation: job.Operation,
		Status:    job.Status(),
		CreatedAt: job.CreatedAt,
	}
	viewBytes, err := json.Marshal(&view)
	if err != nil {
		return errors.Wrap(err, "jobsRedisRepo.UpdateStatus.json.Marshal")
	}
	if err := r.redisClient.Set(ctx, r.key(job.JobID), viewBytes, jobStatusExpiry).Err(); err != nil {
		return errors.Wrap(err, "jobsRedisRepo.UpdateStatus.redisClient.Set")
	}
	return nil
}

func (r *jobsRedisRepo) UpdateProgress(ctx context.Context, jobID string, percent int) error {
	viewBytes, err := r.redisClient.Get(ctx, r.key(jobID)).Bytes()
	if err != nil {
		return errors.Wrap(err, "jobsRedisRepo.UpdateProgress.redisClient.Get")
	}
	var view jobs.JobView
	if err := json.Unmarshal(viewBytes, &view); err != nil {
		return errors.Wrap(err, "jobsRedisRepo.UpdateProgress.json.Unmarshal")
	}
	view.Progress = percent
	updated, err := json.Marshal(&view)
	if err != nil {
		return errors.Wrap(err, "jobsRedisRepo.UpdateProgress.json.Marshal")
	}
	if err := r.redisClient.Set(ctx, r.key(jobID), updated, redis.KeepTTL).Err(); err != nil {
		return errors.Wrap(err, "jobsRedisRepo.UpdateProgress.redisClient.Set")
	}
	return nil
}

func (r *jobsRedisRepo) GetStatus(ctx context.Context, jobID string) (*jobs.JobView, error) {
	viewBytes, err := r.redisClient.Get(ctx, r.key(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.Wrap(err, "jobsRedisRepo.GetStatus.redisClient.Get")
	}
	var view jobs.JobView
	if err := json.Unmarshal(viewBytes, &view); err != nil {
		return nil, errors.Wrap(err, "jobsRedisRepo.GetStatus.json.Unmarshal")
	}
	return &view, nil
}
