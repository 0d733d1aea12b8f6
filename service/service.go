package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"video-api/config"
	"video-api/constant"
	"video-api/dto"
	"video-api/entities"
	"video-api/pkg/rabbitmq"
	"video-api/repository"
	"video-api/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const contentTypePrefix = "video/"

type Service interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (*dto.UploadResponse, error)
	Status(ctx context.Context, jobID string) (*dto.JobStatusResponse, error)
}

type service struct {
	repo      repository.Repository
	store     storage.Storage
	registry  *Registry
	events    rabbitmq.Publisher
	transcode config.Transcode
}

func NewService(repo repository.Repository, store storage.Storage, registry *Registry, events rabbitmq.Publisher, transcode config.Transcode) Service {
	return &service{
		repo:      repo,
		store:     store,
		registry:  registry,
		events:    events,
		transcode: transcode,
	}
}

// Upload stages the raw bytes, inserts the queued job and detaches the
// transcode task. It returns as soon as the task is scheduled.
func (s *service) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (*dto.UploadResponse, error) {
	if !strings.HasPrefix(contentType, contentTypePrefix) {
		return nil, fmt.Errorf("file must be a video: %w", ErrValidation)
	}

	jobID := uuid.NewString()
	objectName := fmt.Sprintf("%s_%s", jobID, filename)

	path, err := s.store.Save(ctx, objectName, r, size)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("job_id", jobID).Msg("failed to stage uploaded file")
		return nil, err
	}

	now := time.Now().UTC()
	job := &entities.Job{
		JobID:     jobID,
		Filename:  filename,
		Status:    constant.JobStatusQueued,
		Progress:  0,
		Formats:   s.transcode.Formats,
		FilePath:  path,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertJob(ctx, job); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("job_id", jobID).Msg("failed to insert job")
		return nil, err
	}

	s.publishEvent(ctx, jobID, constant.JobStatusQueued, 0)

	if err := s.registry.Start(jobID, func(taskCtx context.Context) {
		s.simulate(taskCtx, jobID)
	}); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("job_id", jobID).Msg("failed to schedule transcode task")
	}

	return &dto.UploadResponse{
		JobID:   jobID,
		Message: "Upload accepted, transcoding started",
	}, nil
}

// Status projects the most recently persisted job state.
func (s *service) Status(ctx context.Context, jobID string) (*dto.JobStatusResponse, error) {
	job, err := s.repo.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &dto.JobStatusResponse{
		ID:       job.JobID,
		Filename: job.Filename,
		Status:   job.Status.String(),
		Progress: job.Progress,
		Formats:  job.Formats,
	}, nil
}

func (s *service) publishEvent(ctx context.Context, jobID string, status constant.JobStatus, progress float64) {
	err := s.events.PublishJobEvent(ctx, rabbitmq.JobEvent{
		JobID:    jobID,
		Status:   status.String(),
		Progress: progress,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("job_id", jobID).Msg("failed to publish job event")
	}
}
