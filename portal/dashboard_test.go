package portal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/studyhub/portal/collab"
	"github.com/studyhub/portal/ids"
	"github.com/studyhub/portal/portal"
)

func setupDashboard(t *testing.T, svc *fakeCollab) *portal.Dashboard {
	t.Helper()
	d, err := portal.NewDashboard(svc, me)
	require.NoError(t, err)
	return d
}

func TestNewDashboardRequiresDependencies(t *testing.T) {
	_, err := portal.NewDashboard(nil, me)
	require.Error(t, err)
	_, err = portal.NewDashboard(newFakeCollab(), nil)
	require.Error(t, err)
}

func TestDashboardSectionsLoadIndependently(t *testing.T) {
	svc := newFakeCollab()
	svc.errs["Projects"] = errors.New("API request failed with status 500: boom")
	svc.clubs = []collab.Club{{ID: "1", Name: "Robotics"}, {ID: "2", Name: "Chess"}}
	svc.communities = []collab.Community{{ID: "1", Name: "Gophers"}}
	svc.sessions = []collab.MentorSession{{ID: "1", Topic: "Go"}}

	d := setupDashboard(t, svc)
	require.NoError(t, d.Load(context.Background()))

	require.Empty(t, d.Projects())
	require.Len(t, d.Clubs(), 2)
	require.Len(t, d.Communities(), 1)
	require.Len(t, d.Sessions(), 1)
	require.Empty(t, d.Groups())

	errs := d.Errors()
	require.Len(t, errs, 1)
	require.Error(t, errs[portal.SectionProjects])
	require.NoError(t, d.Err(portal.SectionClubs))
}

func TestDashboardReloadClearsSectionError(t *testing.T) {
	svc := newFakeCollab()
	svc.errs["Groups"] = errors.New("network error: refused")
	d := setupDashboard(t, svc)
	require.NoError(t, d.Load(context.Background()))
	require.Error(t, d.Err(portal.SectionGroups))

	delete(svc.errs, "Groups")
	svc.groups = []collab.ProjectGroup{{ID: "g1", Name: "Team A"}}
	require.NoError(t, d.Load(context.Background()))
	require.NoError(t, d.Err(portal.SectionGroups))
	require.Len(t, d.Groups(), 1)
}

func TestDashboardWaitsForSession(t *testing.T) {
	d := setupDashboard(t, newFakeCollab())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, d.Load(ctx))
}

func TestOptimisticCreate(t *testing.T) {
	svc := newFakeCollab()
	svc.projects = []collab.Project{{ID: "1", Title: "Existing"}}
	d := setupDashboard(t, svc)
	require.NoError(t, d.Load(context.Background()))

	project, err := d.CreateProject(context.Background(), collab.ProjectDraft{Title: "New", Description: "d"})
	require.NoError(t, err)
	require.Equal(t, ids.ID("100"), project.ID)
	require.Len(t, d.Projects(), 2)

	_, err = d.CreateClub(context.Background(), collab.ClubDraft{Name: "Astro"})
	require.NoError(t, err)
	_, err = d.CreateCommunity(context.Background(), collab.CommunityDraft{Name: "Rust"})
	require.NoError(t, err)
	_, err = d.CreateGroup(context.Background(), collab.GroupDraft{Name: "Team"})
	require.NoError(t, err)
	require.Len(t, d.Clubs(), 1)
	require.Len(t, d.Communities(), 1)
	require.Len(t, d.Groups(), 1)
}

func TestOptimisticCreateFailureKeepsState(t *testing.T) {
	svc := newFakeCollab()
	svc.projects = []collab.Project{{ID: "1", Title: "Existing"}}
	d := setupDashboard(t, svc)
	require.NoError(t, d.Load(context.Background()))

	svc.errs["CreateProject"] = errors.New("API request failed with status 400: title taken")
	_, err := d.CreateProject(context.Background(), collab.ProjectDraft{Title: "Existing", Description: "d"})
	require.Error(t, err)
	require.Len(t, d.Projects(), 1)
	require.Error(t, d.Err(portal.SectionProjects))
}

func TestJoinReplacesWithReturnedEntity(t *testing.T) {
	svc := newFakeCollab()
	svc.projects = []collab.Project{{ID: "1", Title: "Bot", Members: []ids.ID{"3"}}}
	svc.joinProject = &collab.Project{ID: "1", Title: "Bot", Members: []ids.ID{"3", "7"}}
	d := setupDashboard(t, svc)
	require.NoError(t, d.Load(context.Background()))

	require.NoError(t, d.JoinProject(context.Background(), ids.MustParse(1)))
	projects := d.Projects()
	require.Len(t, projects, 1)
	require.True(t, projects[0].IsMember("7"))
}

func TestJoinAddsCurrentUserOnAcknowledgement(t *testing.T) {
	svc := newFakeCollab()
	svc.clubs = []collab.Club{{ID: "4", Name: "Chess", Members: []ids.ID{"1"}}}
	svc.groups = []collab.ProjectGroup{{ID: "5", Name: "Team", Members: []ids.ID{"7"}}}
	d := setupDashboard(t, svc)
	require.NoError(t, d.Load(context.Background()))

	require.NoError(t, d.JoinClub(context.Background(), ids.MustParse(4)))
	require.True(t, d.Clubs()[0].IsMember(ids.MustParse(7)))

	require.NoError(t, d.JoinGroup(context.Background(), "5"))
	require.Equal(t, []ids.ID{"7"}, d.Groups()[0].Members)

	svc.errs["JoinClub"] = errors.New("API request failed with status 409: already a member")
	require.Error(t, d.JoinClub(context.Background(), "4"))
	require.Len(t, d.Clubs()[0].Members, 2)
}
