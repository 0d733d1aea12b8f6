package repository

import (
	"context"
	"errors"
	"time"
	"video-api/constant"
	"video-api/entities"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotFound is returned when a point lookup matches no document.
var ErrNotFound = errors.New("not found")

type Repository interface {
	Ping(ctx context.Context) error
	InsertJob(ctx context.Context, job *entities.Job) error
	FindJobByID(ctx context.Context, jobID string) (*entities.Job, error)
	UpdateJobStatus(ctx context.Context, jobID string, status constant.JobStatus) error
	UpdateJobProgress(ctx context.Context, jobID string, progress float64) error
	CompleteJob(ctx context.Context, jobID string) error
	InsertLecture(ctx context.Context, lecture *entities.Lecture) error
	FindLectureBySlug(ctx context.Context, slug string) (*entities.Lecture, error)
	ListLectures(ctx context.Context) ([]*entities.Lecture, error)
}

type repo struct {
	db *mongo.Database
}

func NewRepo(db *mongo.Database) Repository {
	return &repo{db: db}
}

func (r *repo) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

func (r *repo) jobs() *mongo.Collection {
	return r.db.Collection(constant.CollectionJobs)
}

func (r *repo) lectures() *mongo.Collection {
	return r.db.Collection(constant.CollectionLectures)
}

func (r *repo) InsertJob(ctx context.Context, job *entities.Job) error {
	_, err := r.jobs().InsertOne(ctx, job)
	return err
}

func (r *repo) FindJobByID(ctx context.Context, jobID string) (*entities.Job, error) {
	job := &entities.Job{}
	err := r.jobs().FindOne(ctx, bson.M{"job_id": jobID}).Decode(job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *repo) UpdateJobStatus(ctx context.Context, jobID string, status constant.JobStatus) error {
	return r.setJobFields(ctx, jobID, bson.M{"status": status})
}

func (r *repo) UpdateJobProgress(ctx context.Context, jobID string, progress float64) error {
	return r.setJobFields(ctx, jobID, bson.M{"progress": progress})
}

func (r *repo) CompleteJob(ctx context.Context, jobID string) error {
	return r.setJobFields(ctx, jobID, bson.M{
		"status":   constant.JobStatusCompleted,
		"progress": float64(100),
	})
}

// setJobFields applies a partial update and refreshes updated_at in the
// same write.
func (r *repo) setJobFields(ctx context.Context, jobID string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	_, err := r.jobs().UpdateOne(ctx, bson.M{"job_id": jobID}, bson.M{"$set": fields})
	return err
}

func (r *repo) InsertLecture(ctx context.Context, lecture *entities.Lecture) error {
	_, err := r.lectures().InsertOne(ctx, lecture)
	return err
}

func (r *repo) FindLectureBySlug(ctx context.Context, slug string) (*entities.Lecture, error) {
	lecture := &entities.Lecture{}
	err := r.lectures().FindOne(ctx, bson.M{"slug": slug}).Decode(lecture)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return lecture, nil
}

func (r *repo) ListLectures(ctx context.Context) ([]*entities.Lecture, error) {
	cursor, err := r.lectures().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var lectures []*entities.Lecture
	if err := cursor.All(ctx, &lectures); err != nil {
		return nil, err
	}
	return lectures, nil
}
