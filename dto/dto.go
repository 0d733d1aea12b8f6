package dto

import "video-api/entities"

type UploadResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

type JobStatusResponse struct {
	ID       string   `json:"id"`
	Filename string   `json:"filename"`
	Status   string   `json:"status"`
	Progress float64  `json:"progress"`
	Formats  []string `json:"formats"`
}

// Lecture is the wire shape of a catalog entry. Create echoes the
// submitted payload back, so timestamps never cross the API boundary.
type Lecture struct {
	Slug          string                `json:"slug"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Duration      string                `json:"duration"`
	Image         string                `json:"image"`
	PublishedDate string                `json:"publishedDate"`
	Views         string                `json:"views"`
	AiSummary     string                `json:"aiSummary"`
	KeyConcepts   []entities.KeyConcept `json:"keyConcepts"`
}

func LectureFromEntity(e *entities.Lecture) Lecture {
	return Lecture{
		Slug:          e.Slug,
		Title:         e.Title,
		Description:   e.Description,
		Duration:      e.Duration,
		Image:         e.Image,
		PublishedDate: e.PublishedDate,
		Views:         e.Views,
		AiSummary:     e.AiSummary,
		KeyConcepts:   e.KeyConcepts,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}
