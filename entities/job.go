package entities

import (
	"time"
	"video-api/constant"
)

// Job tracks one upload from staging through the transcode sequence.
// The raw bytes live at FilePath; only status, progress and updated_at
// change after insert.
type Job struct {
	JobID     string             `bson:"job_id" json:"job_id"`
	Filename  string             `bson:"filename" json:"filename"`
	Status    constant.JobStatus `bson:"status" json:"status"`
	Progress  float64            `bson:"progress" json:"progress"`
	Formats   []string           `bson:"formats" json:"formats"`
	FilePath  string             `bson:"file_path" json:"file_path"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
