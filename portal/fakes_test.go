package portal_test

import (
	"context"
	"sync"

	"github.com/studyhub/portal/collab"
	"github.com/studyhub/portal/ids"
	"github.com/studyhub/portal/resources"
	"github.com/studyhub/portal/users"
)

type fakeIdentity struct {
	user *users.User
}

func (f fakeIdentity) WaitResolved(ctx context.Context) error { return ctx.Err() }
func (f fakeIdentity) CurrentUser() *users.User                { return f.user }

var me = fakeIdentity{user: &users.User{ID: "7", Username: "asha", Role: users.RoleStudent}}

// fakeCollab serves canned collections; an entry in errs fails that method
type fakeCollab struct {
	lock sync.Mutex
	errs map[string]error

	projects    []collab.Project
	clubs       []collab.Club
	communities []collab.Community
	groups      []collab.ProjectGroup
	sessions    []collab.MentorSession
	events      []collab.ClubEvent
	posts       []collab.ClubPost
	resources   []collab.ClubResource

	joinProject *collab.Project
	joinClub    *collab.Club
	joinGroup   *collab.ProjectGroup
	register    *collab.ClubEvent

	calls []string
}

func newFakeCollab() *fakeCollab {
	return &fakeCollab{errs: map[string]error{}}
}

func (f *fakeCollab) call(name string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeCollab) Projects(ctx context.Context) ([]collab.Project, error) {
	if err := f.call("Projects"); err != nil {
		return nil, err
	}
	return f.projects, nil
}

func (f *fakeCollab) CreateProject(ctx context.Context, draft collab.ProjectDraft) (*collab.Project, error) {
	if err := f.call("CreateProject"); err != nil {
		return nil, err
	}
	return &collab.Project{ID: "100", Title: draft.Title, Description: draft.Description, Owner: "7"}, nil
}

func (f *fakeCollab) JoinProject(ctx context.Context, id ids.ID) (*collab.Project, error) {
	if err := f.call("JoinProject"); err != nil {
		return nil, err
	}
	return f.joinProject, nil
}

func (f *fakeCollab) Clubs(ctx context.Context) ([]collab.Club, error) {
	if err := f.call("Clubs"); err != nil {
		return nil, err
	}
	return f.clubs, nil
}

func (f *fakeCollab) Club(ctx context.Context, id ids.ID) (*collab.Club, error) {
	if err := f.call("Club"); err != nil {
		return nil, err
	}
	for _, c := range f.clubs {
		if ids.Equal(c.ID, id) {
			club := c
			return &club, nil
		}
	}
	return nil, collab.ErrUnexpectedResponse
}

func (f *fakeCollab) CreateClub(ctx context.Context, draft collab.ClubDraft) (*collab.Club, error) {
	if err := f.call("CreateClub"); err != nil {
		return nil, err
	}
	return &collab.Club{ID: "200", Name: draft.Name, Organizer: "7"}, nil
}

func (f *fakeCollab) JoinClub(ctx context.Context, id ids.ID) (*collab.Club, error) {
	if err := f.call("JoinClub"); err != nil {
		return nil, err
	}
	return f.joinClub, nil
}

func (f *fakeCollab) ClubEvents(ctx context.Context, clubID ids.ID) ([]collab.ClubEvent, error) {
	if err := f.call("ClubEvents"); err != nil {
		return nil, err
	}
	return f.events, nil
}

func (f *fakeCollab) CreateClubEvent(ctx context.Context, clubID ids.ID, draft collab.EventDraft) (*collab.ClubEvent, error) {
	if err := f.call("CreateClubEvent"); err != nil {
		return nil, err
	}
	return &collab.ClubEvent{ID: "300", Club: clubID, Title: draft.Title, Date: draft.Date}, nil
}

func (f *fakeCollab) RegisterEvent(ctx context.Context, eventID ids.ID) (*collab.ClubEvent, error) {
	if err := f.call("RegisterEvent"); err != nil {
		return nil, err
	}
	return f.register, nil
}

func (f *fakeCollab) ClubPosts(ctx context.Context, clubID ids.ID) ([]collab.ClubPost, error) {
	if err := f.call("ClubPosts"); err != nil {
		return nil, err
	}
	return f.posts, nil
}

func (f *fakeCollab) CreateClubPost(ctx context.Context, clubID ids.ID, draft collab.PostDraft) (*collab.ClubPost, error) {
	if err := f.call("CreateClubPost"); err != nil {
		return nil, err
	}
	return &collab.ClubPost{ID: "400", Club: clubID, Content: draft.Content, Author: "7"}, nil
}

func (f *fakeCollab) ClubResources(ctx context.Context, clubID ids.ID) ([]collab.ClubResource, error) {
	if err := f.call("ClubResources"); err != nil {
		return nil, err
	}
	return f.resources, nil
}

func (f *fakeCollab) CreateClubResource(ctx context.Context, clubID ids.ID, draft collab.ResourceDraft) (*collab.ClubResource, error) {
	if err := f.call("CreateClubResource"); err != nil {
		return nil, err
	}
	return &collab.ClubResource{ID: "500", Club: clubID, Title: draft.Title, URL: draft.URL}, nil
}

func (f *fakeCollab) Groups(ctx context.Context) ([]collab.ProjectGroup, error) {
	if err := f.call("Groups"); err != nil {
		return nil, err
	}
	return f.groups, nil
}

func (f *fakeCollab) CreateGroup(ctx context.Context, draft collab.GroupDraft) (*collab.ProjectGroup, error) {
	if err := f.call("CreateGroup"); err != nil {
		return nil, err
	}
	return &collab.ProjectGroup{ID: "600", Name: draft.Name, CreatedBy: "7"}, nil
}

func (f *fakeCollab) JoinGroup(ctx context.Context, id ids.ID) (*collab.ProjectGroup, error) {
	if err := f.call("JoinGroup"); err != nil {
		return nil, err
	}
	return f.joinGroup, nil
}

func (f *fakeCollab) Communities(ctx context.Context) ([]collab.Community, error) {
	if err := f.call("Communities"); err != nil {
		return nil, err
	}
	return f.communities, nil
}

func (f *fakeCollab) CreateCommunity(ctx context.Context, draft collab.CommunityDraft) (*collab.Community, error) {
	if err := f.call("CreateCommunity"); err != nil {
		return nil, err
	}
	return &collab.Community{ID: "700", Name: draft.Name, CreatedBy: "7"}, nil
}

func (f *fakeCollab) MentorSessions(ctx context.Context) ([]collab.MentorSession, error) {
	if err := f.call("MentorSessions"); err != nil {
		return nil, err
	}
	return f.sessions, nil
}

// fakeDocuments is an in-memory DocumentService
type fakeDocuments struct {
	docs      []resources.Document
	recentErr error
	uploadErr error
	deleteErr error
	uploads   int
}

func (f *fakeDocuments) Recent(ctx context.Context) ([]resources.Document, error) {
	return f.docs, f.recentErr
}

func (f *fakeDocuments) Upload(ctx context.Context, form *resources.UploadForm) (*resources.Document, error) {
	f.uploads++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &resources.Document{ID: "99", Title: form.Title, College: form.College, Branch: form.Branch, ResourceType: form.ResourceType}, nil
}

func (f *fakeDocuments) Delete(ctx context.Context, id ids.ID) error {
	return f.deleteErr
}
