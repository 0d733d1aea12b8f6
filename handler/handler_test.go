package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"reflect"
	"sync"
	"testing"
	"time"
	"video-api/config"
	"video-api/constant"
	"video-api/dto"
	"video-api/entities"
	"video-api/pkg/rabbitmq"
	"video-api/repository"
	"video-api/service"
	"video-api/storage"

	"github.com/gin-gonic/gin"
)

type memRepo struct {
	mu       sync.Mutex
	jobs     map[string]*entities.Job
	lectures map[string]*entities.Lecture
	slugs    []string
	pingErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{
		jobs:     make(map[string]*entities.Job),
		lectures: make(map[string]*entities.Lecture),
	}
}

func (m *memRepo) Ping(ctx context.Context) error { return m.pingErr }

func (m *memRepo) InsertJob(ctx context.Context, job *entities.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.jobs[job.JobID] = &copied
	return nil
}

func (m *memRepo) FindJobByID(ctx context.Context, jobID string) (*entities.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *memRepo) UpdateJobStatus(ctx context.Context, jobID string, status constant.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.Status = status
		job.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *memRepo) UpdateJobProgress(ctx context.Context, jobID string, progress float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.Progress = progress
		job.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *memRepo) CompleteJob(ctx context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.Status = constant.JobStatusCompleted
		job.Progress = 100
		job.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *memRepo) InsertLecture(ctx context.Context, lecture *entities.Lecture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *lecture
	m.lectures[lecture.Slug] = &copied
	m.slugs = append(m.slugs, lecture.Slug)
	return nil
}

func (m *memRepo) FindLectureBySlug(ctx context.Context, slug string) (*entities.Lecture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lecture, ok := m.lectures[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *lecture
	return &copied, nil
}

func (m *memRepo) ListLectures(ctx context.Context) ([]*entities.Lecture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entities.Lecture, 0, len(m.slugs))
	for _, slug := range m.slugs {
		copied := *m.lectures[slug]
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memRepo) jobCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func setupTestRouter(t *testing.T, repo *memRepo, stepDelay time.Duration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := service.NewRegistry(context.Background())
	transcode := config.Transcode{
		StepDelay: stepDelay,
		Steps:     10,
		Formats:   []string{"720p", "480p", "360p"},
	}
	store := storage.NewLocal(t.TempDir())
	videoService := service.NewService(repo, store, registry, rabbitmq.NewNopPublisher(), transcode)
	lectureService := service.NewLectureService(repo)
	h := NewHandler(videoService, lectureService, repo, "video-api")

	r := gin.New()
	r.GET("/health", h.Health)
	api := r.Group("/api")
	api.POST("/upload", h.Upload)
	api.GET("/status/:job_id", h.Status)
	api.GET("/lectures", h.ListLectures)
	api.GET("/lectures/:slug", h.GetLecture)
	api.POST("/lectures", h.CreateLecture)
	return r
}

func multipartUpload(t *testing.T, filename, contentType, body string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte(body)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	repo := newMemRepo()
	router := setupTestRouter(t, repo, time.Hour)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "healthy" || resp["service"] != "video-api" {
		t.Errorf("body = %v", resp)
	}
}

func TestHealthStoreUnreachable(t *testing.T) {
	repo := newMemRepo()
	repo.pingErr = errors.New("connection refused")
	router := setupTestRouter(t, repo, time.Hour)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", w.Code)
	}
}

func TestUploadAcceptedAndQueued(t *testing.T) {
	repo := newMemRepo()
	router := setupTestRouter(t, repo, time.Hour)

	buf, contentType := multipartUpload(t, "lecture.mp4", "video/mp4", "not really video bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var resp dto.UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.JobID == "" {
		t.Fatal("expected a job id")
	}

	// The returned id must be immediately retrievable, starting queued
	// at progress 0.
	sw := doJSON(t, router, http.MethodGet, "/api/status/"+resp.JobID, nil)
	if sw.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", sw.Code)
	}
	var status dto.JobStatusResponse
	if err := json.Unmarshal(sw.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.ID != resp.JobID || status.Filename != "lecture.mp4" {
		t.Errorf("status = %+v", status)
	}
	if status.Status != "queued" && status.Status != "processing" {
		t.Errorf("status = %q, want queued or processing", status.Status)
	}
	if status.Progress != 0 {
		t.Errorf("progress = %v, want 0", status.Progress)
	}
	if !reflect.DeepEqual(status.Formats, []string{"720p", "480p", "360p"}) {
		t.Errorf("formats = %v", status.Formats)
	}
}

func TestUploadRejectsNonVideo(t *testing.T) {
	repo := newMemRepo()
	router := setupTestRouter(t, repo, time.Hour)

	buf, contentType := multipartUpload(t, "cat.png", "image/png", "png bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
	if repo.jobCount() != 0 {
		t.Error("rejected upload must not create a job")
	}
}

func TestUploadMissingFile(t *testing.T) {
	repo := newMemRepo()
	router := setupTestRouter(t, repo, time.Hour)

	w := doJSON(t, router, http.MethodPost, "/api/upload", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("code = %d, want 400", w.Code)
	}
}

func TestUploadEventuallyCompletes(t *testing.T) {
	repo := newMemRepo()
	router := setupTestRouter(t, repo, time.Millisecond)

	buf, contentType := multipartUpload(t, "lecture.mp4", "video/mp4", "bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}

	var resp dto.UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	last := float64(-1)
	for time.Now().Before(deadline) {
		sw := doJSON(t, router, http.MethodGet, "/api/status/"+resp.JobID, nil)
		if sw.Code != http.StatusOK {
			t.Fatalf("status code = %d", sw.Code)
		}
		var status dto.JobStatusResponse
		if err := json.Unmarshal(sw.Body.Bytes(), &status); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if status.Progress < last {
			t.Fatalf("progress decreased: %v -> %v", last, status.Progress)
		}
		last = status.Progress

		if status.Status == "completed" {
			if status.Progress != 100 {
				t.Fatalf("completed with progress %v, want exactly 100", status.Progress)
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never reached completed")
}

func TestStatusUnknownJobIs404(t *testing.T) {
	router := setupTestRouter(t, newMemRepo(), time.Hour)

	w := doJSON(t, router, http.MethodGet, "/api/status/definitely-not-a-job", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", w.Code)
	}
}

func testLecture(slug string) dto.Lecture {
	return dto.Lecture{
		Slug:          slug,
		Title:         "Fourier Series",
		Description:   "Decomposing periodic signals",
		Duration:      "52:30",
		Image:         "/images/fourier.png",
		PublishedDate: "2024-02-01",
		Views:         "2048",
		AiSummary:     "Builds the series from first principles.",
		KeyConcepts: []entities.KeyConcept{
			{Title: "Periodic functions", Timestamp: "01:05"},
			{Title: "Orthogonality", Timestamp: "14:30"},
			{Title: "Convergence", Timestamp: "40:00"},
		},
	}
}

func TestLectureCreateAndRoundTrip(t *testing.T) {
	router := setupTestRouter(t, newMemRepo(), time.Hour)

	submitted := testLecture("fourier-series")
	w := doJSON(t, router, http.MethodPost, "/api/lectures", submitted)
	if w.Code != http.StatusOK {
		t.Fatalf("create code = %d, body: %s", w.Code, w.Body.String())
	}

	var created dto.Lecture
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create: %v", err)
	}
	if !reflect.DeepEqual(created, submitted) {
		t.Errorf("create response = %+v, want echo of submitted payload", created)
	}

	gw := doJSON(t, router, http.MethodGet, "/api/lectures/fourier-series", nil)
	if gw.Code != http.StatusOK {
		t.Fatalf("get code = %d", gw.Code)
	}
	var fetched dto.Lecture
	if err := json.Unmarshal(gw.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode get: %v", err)
	}
	if !reflect.DeepEqual(fetched, submitted) {
		t.Errorf("round-trip = %+v, want %+v", fetched, submitted)
	}
}

func TestLectureDuplicateSlugIs409(t *testing.T) {
	router := setupTestRouter(t, newMemRepo(), time.Hour)

	first := testLecture("fourier-series")
	if w := doJSON(t, router, http.MethodPost, "/api/lectures", first); w.Code != http.StatusOK {
		t.Fatalf("first create code = %d", w.Code)
	}

	second := testLecture("fourier-series")
	second.Title = "Another title"
	if w := doJSON(t, router, http.MethodPost, "/api/lectures", second); w.Code != http.StatusConflict {
		t.Fatalf("second create code = %d, want 409", w.Code)
	}

	gw := doJSON(t, router, http.MethodGet, "/api/lectures/fourier-series", nil)
	var fetched dto.Lecture
	if err := json.Unmarshal(gw.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode get: %v", err)
	}
	if fetched.Title != first.Title {
		t.Errorf("title = %q, first record must remain unchanged", fetched.Title)
	}
}

func TestLectureUnknownSlugIs404(t *testing.T) {
	router := setupTestRouter(t, newMemRepo(), time.Hour)

	w := doJSON(t, router, http.MethodGet, "/api/lectures/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", w.Code)
	}
}

func TestListLectures(t *testing.T) {
	router := setupTestRouter(t, newMemRepo(), time.Hour)

	for _, slug := range []string{"one", "two"} {
		if w := doJSON(t, router, http.MethodPost, "/api/lectures", testLecture(slug)); w.Code != http.StatusOK {
			t.Fatalf("create %s code = %d", slug, w.Code)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/api/lectures", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", w.Code)
	}
	var lectures []dto.Lecture
	if err := json.Unmarshal(w.Body.Bytes(), &lectures); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(lectures) != 2 {
		t.Fatalf("len = %d, want 2", len(lectures))
	}
}
