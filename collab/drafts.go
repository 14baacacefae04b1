package collab

import (
	"time"

	"github.com/studyhub/portal/ids"
)

// Drafts are the bodies of the create endpoints. They are validated before dispatch.

type ProjectDraft struct {
	Title       string   `json:"title" validate:"notblank,max=200"`
	Description string   `json:"description" validate:"notblank"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,notblank"`
	RepoURL     string   `json:"repo_url,omitempty" validate:"omitempty,url"`
}

type ClubDraft struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description" validate:"notblank"`
	Category    string `json:"category,omitempty" validate:"omitempty,max=100"`
}

type CommunityDraft struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description" validate:"notblank"`
	Topic       string `json:"topic,omitempty" validate:"omitempty,max=100"`
}

type GroupDraft struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description,omitempty"`
	Project     ids.ID `json:"project,omitempty"`
	MaxMembers  int    `json:"max_members,omitempty" validate:"omitempty,min=1,max=50"`
}

type EventDraft struct {
	Title       string    `json:"title" validate:"notblank,max=200"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty" validate:"omitempty,max=200"`
	Date        time.Time `json:"date"`
}

type PostDraft struct {
	Title   string `json:"title,omitempty" validate:"omitempty,max=200"`
	Content string `json:"content" validate:"notblank"`
}

type ResourceDraft struct {
	Title       string `json:"title" validate:"notblank,max=200"`
	URL         string `json:"url" validate:"notblank,url"`
	Description string `json:"description,omitempty"`
}
