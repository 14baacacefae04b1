package resources

import (
	"time"

	"github.com/studyhub/portal/ids"
)

// ResourceType classifies an uploaded document
type ResourceType string

const (
	TypeNotes      ResourceType = "notes"
	TypePaper      ResourceType = "question_paper"
	TypeAssignment ResourceType = "assignment"
	TypeLab        ResourceType = "lab_manual"
	TypeSyllabus   ResourceType = "syllabus"
	TypeOther      ResourceType = "other"
)

// ResourceTypes lists the types offered by the upload form
var ResourceTypes = []ResourceType{TypeNotes, TypePaper, TypeAssignment, TypeLab, TypeSyllabus, TypeOther}

// Document is a shared study resource
type Document struct {
	ID           ids.ID       `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	College      string       `json:"college,omitempty"`
	Branch       string       `json:"branch,omitempty"`
	ResourceType ResourceType `json:"resource_type,omitempty"`
	FileURL      string       `json:"file_url,omitempty"`
	UploadedBy   ids.ID       `json:"uploaded_by"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// OwnedBy reports whether user uploaded the document
func (d Document) OwnedBy(user ids.ID) bool {
	return ids.Equal(d.UploadedBy, user)
}
