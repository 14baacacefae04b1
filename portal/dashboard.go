package portal

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/studyhub/portal/collab"
	"github.com/studyhub/portal/ids"
	"golang.org/x/sync/errgroup"
)

// Dashboard is the collaboration screen: projects, clubs, communities, project groups
// and mentorship sessions.
type Dashboard struct {
	service  CollabService
	identity Identity
	logger   zerolog.Logger

	lock        sync.RWMutex
	projects    []collab.Project
	clubs       []collab.Club
	communities []collab.Community
	groups      []collab.ProjectGroup
	sessions    []collab.MentorSession
	errs        map[Section]error
}

// DashboardOption defines a function type to modify the Dashboard instance.
type DashboardOption func(*Dashboard)

func WithLogger(logger zerolog.Logger) DashboardOption {
	return func(d *Dashboard) {
		d.logger = logger
	}
}

func NewDashboard(service CollabService, identity Identity, options ...DashboardOption) (*Dashboard, error) {
	if service == nil {
		return nil, errors.New("[NewDashboard] collab service is required")
	}
	if identity == nil {
		return nil, errors.New("[NewDashboard] identity is required")
	}
	d := &Dashboard{
		service:  service,
		identity: identity,
		logger:   zerolog.Nop(),
		errs:     make(map[Section]error),
	}
	for _, opt := range options {
		opt(d)
	}
	return d, nil
}

// Load waits for the session to resolve, then fetches every section concurrently.
// Each section is stored as soon as it arrives; a failure is recorded in Errors and
// does not affect the others. Load only fails when the session never resolves.
func (d *Dashboard) Load(ctx context.Context) error {
	if err := d.identity.WaitResolved(ctx); err != nil {
		return errors.Wrap(err, "[Dashboard.Load] waiting for session")
	}

	var g errgroup.Group
	g.Go(func() error {
		items, err := d.service.Projects(ctx)
		d.store(SectionProjects, err, func() { d.projects = items })
		return nil
	})
	g.Go(func() error {
		items, err := d.service.Clubs(ctx)
		d.store(SectionClubs, err, func() { d.clubs = items })
		return nil
	})
	g.Go(func() error {
		items, err := d.service.Communities(ctx)
		d.store(SectionCommunities, err, func() { d.communities = items })
		return nil
	})
	g.Go(func() error {
		items, err := d.service.Groups(ctx)
		d.store(SectionGroups, err, func() { d.groups = items })
		return nil
	})
	g.Go(func() error {
		items, err := d.service.MentorSessions(ctx)
		d.store(SectionSessions, err, func() { d.sessions = items })
		return nil
	})
	_ = g.Wait()
	return nil
}

// store applies set under the lock when err is nil, otherwise records err
func (d *Dashboard) store(section Section, err error, set func()) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if err != nil {
		d.logger.Warn().Err(err).Str("section", string(section)).Msg("section failed to load")
		d.errs[section] = err
		return
	}
	delete(d.errs, section)
	set()
}

func (d *Dashboard) fail(section Section, err error) error {
	d.lock.Lock()
	d.errs[section] = err
	d.lock.Unlock()
	return err
}

// Errors returns the current per-section failures
func (d *Dashboard) Errors() map[Section]error {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return copyErrors(d.errs)
}

func (d *Dashboard) Err(section Section) error {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.errs[section]
}

func (d *Dashboard) Projects() []collab.Project {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return append([]collab.Project{}, d.projects...)
}

func (d *Dashboard) Clubs() []collab.Club {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return append([]collab.Club{}, d.clubs...)
}

func (d *Dashboard) Communities() []collab.Community {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return append([]collab.Community{}, d.communities...)
}

func (d *Dashboard) Groups() []collab.ProjectGroup {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return append([]collab.ProjectGroup{}, d.groups...)
}

func (d *Dashboard) Sessions() []collab.MentorSession {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return append([]collab.MentorSession{}, d.sessions...)
}

func (d *Dashboard) CreateProject(ctx context.Context, draft collab.ProjectDraft) (*collab.Project, error) {
	project, err := d.service.CreateProject(ctx, draft)
	if err != nil {
		return nil, d.fail(SectionProjects, err)
	}
	d.store(SectionProjects, nil, func() { d.projects = append(d.projects, *project) })
	return project, nil
}

// JoinProject replaces the project with the backend's copy, or adds the current user
// to its members when the backend only acknowledged.
func (d *Dashboard) JoinProject(ctx context.Context, id ids.ID) error {
	updated, err := d.service.JoinProject(ctx, id)
	if err != nil {
		return d.fail(SectionProjects, err)
	}
	me := userID(d.identity)
	d.store(SectionProjects, nil, func() {
		if updated != nil {
			d.projects = upsert(d.projects, *updated)
			return
		}
		if i := indexOf(d.projects, id); i >= 0 {
			d.projects[i].Members = ids.Add(d.projects[i].Members, me)
		}
	})
	return nil
}

func (d *Dashboard) CreateClub(ctx context.Context, draft collab.ClubDraft) (*collab.Club, error) {
	club, err := d.service.CreateClub(ctx, draft)
	if err != nil {
		return nil, d.fail(SectionClubs, err)
	}
	d.store(SectionClubs, nil, func() { d.clubs = append(d.clubs, *club) })
	return club, nil
}

func (d *Dashboard) JoinClub(ctx context.Context, id ids.ID) error {
	updated, err := d.service.JoinClub(ctx, id)
	if err != nil {
		return d.fail(SectionClubs, err)
	}
	me := userID(d.identity)
	d.store(SectionClubs, nil, func() {
		if updated != nil {
			d.clubs = upsert(d.clubs, *updated)
			return
		}
		if i := indexOf(d.clubs, id); i >= 0 {
			d.clubs[i].Members = ids.Add(d.clubs[i].Members, me)
		}
	})
	return nil
}

func (d *Dashboard) CreateCommunity(ctx context.Context, draft collab.CommunityDraft) (*collab.Community, error) {
	community, err := d.service.CreateCommunity(ctx, draft)
	if err != nil {
		return nil, d.fail(SectionCommunities, err)
	}
	d.store(SectionCommunities, nil, func() { d.communities = append(d.communities, *community) })
	return community, nil
}

func (d *Dashboard) CreateGroup(ctx context.Context, draft collab.GroupDraft) (*collab.ProjectGroup, error) {
	group, err := d.service.CreateGroup(ctx, draft)
	if err != nil {
		return nil, d.fail(SectionGroups, err)
	}
	d.store(SectionGroups, nil, func() { d.groups = append(d.groups, *group) })
	return group, nil
}

func (d *Dashboard) JoinGroup(ctx context.Context, id ids.ID) error {
	updated, err := d.service.JoinGroup(ctx, id)
	if err != nil {
		return d.fail(SectionGroups, err)
	}
	me := userID(d.identity)
	d.store(SectionGroups, nil, func() {
		if updated != nil {
			d.groups = upsert(d.groups, *updated)
			return
		}
		if i := indexOf(d.groups, id); i >= 0 {
			d.groups[i].Members = ids.Add(d.groups[i].Members, me)
		}
	})
	return nil
}
