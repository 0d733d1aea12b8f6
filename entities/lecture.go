package entities

import "time"

type KeyConcept struct {
	Title     string `bson:"title" json:"title"`
	Timestamp string `bson:"timestamp" json:"timestamp"`
}

// Lecture is one published catalog entry, keyed by slug.
type Lecture struct {
	Slug          string       `bson:"slug" json:"slug"`
	Title         string       `bson:"title" json:"title"`
	Description   string       `bson:"description" json:"description"`
	Duration      string       `bson:"duration" json:"duration"`
	Image         string       `bson:"image" json:"image"`
	PublishedDate string       `bson:"publishedDate" json:"publishedDate"`
	Views         string       `bson:"views" json:"views"`
	AiSummary     string       `bson:"aiSummary" json:"aiSummary"`
	KeyConcepts   []KeyConcept `bson:"keyConcepts" json:"keyConcepts"`
	CreatedAt     time.Time    `bson:"created_at" json:"-"`
	UpdatedAt     time.Time    `bson:"updated_at" json:"-"`
}
