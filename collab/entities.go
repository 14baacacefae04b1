package collab

import (
	"time"

	"github.com/studyhub/portal/ids"
)

// Project is a student project open for collaborators
type Project struct {
	ID          ids.ID    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags,omitempty"`
	RepoURL     string    `json:"repo_url,omitempty"`
	Status      string    `json:"status,omitempty"`
	Owner       ids.ID    `json:"owner"`
	Members     []ids.ID  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Project) Key() ids.ID { return p.ID }

// IsMember reports whether user owns or has joined the project
func (p Project) IsMember(user ids.ID) bool {
	return ids.Equal(p.Owner, user) || ids.Contains(p.Members, user)
}

type Club struct {
	ID          ids.ID    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Organizer   ids.ID    `json:"organizer"`
	Members     []ids.ID  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c Club) Key() ids.ID { return c.ID }

func (c Club) IsMember(user ids.ID) bool {
	return ids.Equal(c.Organizer, user) || ids.Contains(c.Members, user)
}

type Community struct {
	ID          ids.ID    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Topic       string    `json:"topic,omitempty"`
	CreatedBy   ids.ID    `json:"created_by"`
	Members     []ids.ID  `json:"members"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c Community) Key() ids.ID { return c.ID }

func (c Community) IsMember(user ids.ID) bool {
	return ids.Equal(c.CreatedBy, user) || ids.Contains(c.Members, user)
}

// ProjectGroup is a team formed around a project
type ProjectGroup struct {
	ID          ids.ID    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Project     ids.ID    `json:"project,omitempty"`
	CreatedBy   ids.ID    `json:"created_by"`
	Members     []ids.ID  `json:"members"`
	MaxMembers  int       `json:"max_members,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (g ProjectGroup) Key() ids.ID { return g.ID }

func (g ProjectGroup) IsMember(user ids.ID) bool {
	return ids.Equal(g.CreatedBy, user) || ids.Contains(g.Members, user)
}

// Full reports whether the group has reached its size limit
func (g ProjectGroup) Full() bool {
	return g.MaxMembers > 0 && len(g.Members) >= g.MaxMembers
}

type ClubEvent struct {
	ID          ids.ID    `json:"id"`
	Club        ids.ID    `json:"club"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Date        time.Time `json:"date"`
	Organizer   ids.ID    `json:"organizer"`
	Attendees   []ids.ID  `json:"attendees"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e ClubEvent) Key() ids.ID { return e.ID }

func (e ClubEvent) IsRegistered(user ids.ID) bool {
	return ids.Contains(e.Attendees, user)
}

type ClubPost struct {
	ID        ids.ID    `json:"id"`
	Club      ids.ID    `json:"club"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Author    ids.ID    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p ClubPost) Key() ids.ID { return p.ID }

type ClubResource struct {
	ID          ids.ID    `json:"id"`
	Club        ids.ID    `json:"club"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	UploadedBy  ids.ID    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r ClubResource) Key() ids.ID { return r.ID }

// MentorSession is a scheduled mentorship meeting
type MentorSession struct {
	ID           ids.ID    `json:"id"`
	Mentor       ids.ID    `json:"mentor"`
	Topic        string    `json:"topic"`
	Description  string    `json:"description,omitempty"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	Status       string    `json:"status,omitempty"`
	Participants []ids.ID  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s MentorSession) Key() ids.ID { return s.ID }

func (s MentorSession) Involves(user ids.ID) bool {
	return ids.Equal(s.Mentor, user) || ids.Contains(s.Participants, user)
}
