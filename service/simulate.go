package service

import (
	"context"
	"time"
	"video-api/constant"

	"github.com/rs/zerolog"
)

// simulate walks one job through the fixed transcode sequence:
// processing, then equal progress steps with a fixed delay between
// them, then completed at exactly 100. There is no failed state; if a
// store write errors the task logs and stops, leaving the record at
// its last persisted progress.
func (s *service) simulate(ctx context.Context, jobID string) {
	logger := zerolog.Ctx(ctx)

	if err := s.repo.UpdateJobStatus(ctx, jobID, constant.JobStatusProcessing); err != nil {
		logger.Error().Err(err).Str("job_id", jobID).Msg("failed to mark job processing")
		return
	}
	s.publishEvent(ctx, jobID, constant.JobStatusProcessing, 0)

	for i := 1; i <= s.transcode.Steps; i++ {
		select {
		case <-ctx.Done():
			logger.Info().Str("job_id", jobID).Msg("transcode task abandoned on shutdown")
			return
		case <-time.After(s.transcode.StepDelay):
		}

		progress := float64(i) * 100 / float64(s.transcode.Steps)
		if err := s.repo.UpdateJobProgress(ctx, jobID, progress); err != nil {
			logger.Error().Err(err).Str("job_id", jobID).Float64("progress", progress).
				Msg("failed to write progress, job left at last persisted value")
			return
		}
	}

	if err := s.repo.CompleteJob(ctx, jobID); err != nil {
		logger.Error().Err(err).Str("job_id", jobID).Msg("failed to mark job completed")
		return
	}
	s.publishEvent(ctx, jobID, constant.JobStatusCompleted, 100)

	logger.Info().Str("job_id", jobID).Msg("job transcoding completed")
}
