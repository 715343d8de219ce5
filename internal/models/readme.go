package models

import "time"

// DefaultReadmeTitle is used when a README was generated from inline code.
const DefaultReadmeTitle = "Generated README"

// Readme is one persisted README generation.
type Readme struct {
	ID                  string    `gorm:"primaryKey;size:36" json:"id"`
	Title               string    `gorm:"size:255;not null" json:"title"`
	Content             string    `gorm:"type:text;not null" json:"content"`
	SourceCode          string    `gorm:"type:text" json:"sourceCode,omitempty"`
	RepositoryReference string    `gorm:"size:1024" json:"repositoryReference"`
	CreatedAt           time.Time `gorm:"index" json:"createdAt"`
}

// ReadmeSummary is the history listing view of a Readme.
type ReadmeSummary struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Content             string    `json:"content"`
	RepositoryReference string    `json:"repositoryReference"`
	CreatedAt           time.Time `json:"createdAt"`
}

func (r Readme) Summary() ReadmeSummary {
	return ReadmeSummary{
		ID:                  r.ID,
		Title:               r.Title,
		Content:             r.Content,
		RepositoryReference: r.RepositoryReference,
		CreatedAt:           r.CreatedAt,
	}
}
