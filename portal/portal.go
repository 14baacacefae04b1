// Package portal holds the screen models behind the terminal front end.
//
// Each screen caches the latest snapshot it fetched and applies successful mutations
// locally instead of reloading. A failing section records its error and leaves the
// rest of the screen usable.
package portal

import (
	"context"

	"github.com/studyhub/portal/collab"
	"github.com/studyhub/portal/ids"
	"github.com/studyhub/portal/resources"
	"github.com/studyhub/portal/users"
)

// Section names one independently loaded part of a screen
type Section string

const (
	SectionProjects    Section = "projects"
	SectionClubs       Section = "clubs"
	SectionCommunities Section = "communities"
	SectionGroups      Section = "groups"
	SectionSessions    Section = "sessions"

	SectionClub      Section = "club"
	SectionEvents    Section = "events"
	SectionPosts     Section = "posts"
	SectionResources Section = "resources"

	SectionDocuments Section = "documents"
)

// Identity is the part of the session manager screens need
type Identity interface {
	WaitResolved(ctx context.Context) error
	CurrentUser() *users.User
}

// CollabService is implemented by *collab.Service
type CollabService interface {
	Projects(ctx context.Context) ([]collab.Project, error)
	CreateProject(ctx context.Context, draft collab.ProjectDraft) (*collab.Project, error)
	JoinProject(ctx context.Context, id ids.ID) (*collab.Project, error)

	Clubs(ctx context.Context) ([]collab.Club, error)
	Club(ctx context.Context, id ids.ID) (*collab.Club, error)
	CreateClub(ctx context.Context, draft collab.ClubDraft) (*collab.Club, error)
	JoinClub(ctx context.Context, id ids.ID) (*collab.Club, error)
	ClubEvents(ctx context.Context, clubID ids.ID) ([]collab.ClubEvent, error)
	CreateClubEvent(ctx context.Context, clubID ids.ID, draft collab.EventDraft) (*collab.ClubEvent, error)
	RegisterEvent(ctx context.Context, eventID ids.ID) (*collab.ClubEvent, error)
	ClubPosts(ctx context.Context, clubID ids.ID) ([]collab.ClubPost, error)
	CreateClubPost(ctx context.Context, clubID ids.ID, draft collab.PostDraft) (*collab.ClubPost, error)
	ClubResources(ctx context.Context, clubID ids.ID) ([]collab.ClubResource, error)
	CreateClubResource(ctx context.Context, clubID ids.ID, draft collab.ResourceDraft) (*collab.ClubResource, error)

	Groups(ctx context.Context) ([]collab.ProjectGroup, error)
	CreateGroup(ctx context.Context, draft collab.GroupDraft) (*collab.ProjectGroup, error)
	JoinGroup(ctx context.Context, id ids.ID) (*collab.ProjectGroup, error)

	Communities(ctx context.Context) ([]collab.Community, error)
	CreateCommunity(ctx context.Context, draft collab.CommunityDraft) (*collab.Community, error)

	MentorSessions(ctx context.Context) ([]collab.MentorSession, error)
}

// DocumentService is implemented by *resources.Service
type DocumentService interface {
	Recent(ctx context.Context) ([]resources.Document, error)
	Upload(ctx context.Context, form *resources.UploadForm) (*resources.Document, error)
	Delete(ctx context.Context, id ids.ID) error
}

var (
	_ CollabService   = (*collab.Service)(nil)
	_ DocumentService = (*resources.Service)(nil)
)

type keyed interface {
	Key() ids.ID
}

func indexOf[T keyed](list []T, id ids.ID) int {
	for i, item := range list {
		if ids.Equal(item.Key(), id) {
			return i
		}
	}
	return -1
}

// upsert replaces the entry with the same key or appends item
func upsert[T keyed](list []T, item T) []T {
	if i := indexOf(list, item.Key()); i >= 0 {
		list[i] = item
		return list
	}
	return append(list, item)
}

func userID(identity Identity) ids.ID {
	if user := identity.CurrentUser(); user != nil {
		return user.ID
	}
	return ""
}

func copyErrors(src map[Section]error) map[Section]error {
	dst := make(map[Section]error, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
