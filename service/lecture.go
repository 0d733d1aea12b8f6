package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"video-api/dto"
	"video-api/entities"
	"video-api/repository"

	"github.com/rs/zerolog"
)

type LectureService interface {
	List(ctx context.Context) ([]dto.Lecture, error)
	Get(ctx context.Context, slug string) (*dto.Lecture, error)
	Create(ctx context.Context, lecture dto.Lecture) (*dto.Lecture, error)
}

type lectureService struct {
	repo repository.Repository
}

func NewLectureService(repo repository.Repository) LectureService {
	return &lectureService{repo: repo}
}

func (s *lectureService) List(ctx context.Context) ([]dto.Lecture, error) {
	records, err := s.repo.ListLectures(ctx)
	if err != nil {
		return nil, err
	}

	lectures := make([]dto.Lecture, 0, len(records))
	for _, record := range records {
		lectures = append(lectures, dto.LectureFromEntity(record))
	}
	return lectures, nil
}

func (s *lectureService) Get(ctx context.Context, slug string) (*dto.Lecture, error) {
	record, err := s.repo.FindLectureBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	lecture := dto.LectureFromEntity(record)
	return &lecture, nil
}

// Create inserts a new catalog entry after checking slug uniqueness.
// The response echoes the submitted payload, not a re-read of the
// store.
func (s *lectureService) Create(ctx context.Context, lecture dto.Lecture) (*dto.Lecture, error) {
	if lecture.Slug == "" {
		return nil, fmt.Errorf("slug is required: %w", ErrValidation)
	}

	_, err := s.repo.FindLectureBySlug(ctx, lecture.Slug)
	if err == nil {
		return nil, fmt.Errorf("lecture with this slug already exists: %w", ErrConflict)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	record := &entities.Lecture{
		Slug:          lecture.Slug,
		Title:         lecture.Title,
		Description:   lecture.Description,
		Duration:      lecture.Duration,
		Image:         lecture.Image,
		PublishedDate: lecture.PublishedDate,
		Views:         lecture.Views,
		AiSummary:     lecture.AiSummary,
		KeyConcepts:   lecture.KeyConcepts,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.InsertLecture(ctx, record); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("slug", lecture.Slug).Msg("lecture created")
	return &lecture, nil
}
