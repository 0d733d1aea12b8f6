package handler

import (
	"errors"
	"fmt"
	"net/http"
	"video-api/dto"
	"video-api/repository"
	"video-api/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	video       service.Service
	lectures    service.LectureService
	repo        repository.Repository
	serviceName string
}

func NewHandler(video service.Service, lectures service.LectureService, repo repository.Repository, serviceName string) *Handler {
	return &Handler{
		video:       video,
		lectures:    lectures,
		repo:        repo,
		serviceName: serviceName,
	}
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.repo.Ping(c.Request.Context()); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("store unreachable")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "store unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.serviceName,
	})
}

func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, fmt.Errorf("multipart file is required: %w", service.ErrValidation))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	resp, err := h.video.Upload(c.Request.Context(), fileHeader.Filename, contentType, f, fileHeader.Size)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Status(c *gin.Context) {
	resp, err := h.video.Status(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListLectures(c *gin.Context) {
	lectures, err := h.lectures.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, lectures)
}

func (h *Handler) GetLecture(c *gin.Context) {
	lecture, err := h.lectures.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, lecture)
}

func (h *Handler) CreateLecture(c *gin.Context) {
	var req dto.Lecture
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("invalid lecture payload: %w", service.ErrValidation))
		return
	}

	lecture, err := h.lectures.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, lecture)
}

// writeError maps the error taxonomy onto HTTP statuses. Anything
// outside the taxonomy (store faults, staging failures) is a 500.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}
