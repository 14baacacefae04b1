package portal

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/studyhub/portal/collab"
	"github.com/studyhub/portal/ids"
	"golang.org/x/sync/errgroup"
)

// ClubView is the club detail screen
type ClubView struct {
	service  CollabService
	identity Identity
	clubID   ids.ID

	lock      sync.RWMutex
	club      *collab.Club
	events    []collab.ClubEvent
	posts     []collab.ClubPost
	resources []collab.ClubResource
	errs      map[Section]error
}

func NewClubView(service CollabService, identity Identity, clubID ids.ID) (*ClubView, error) {
	if service == nil || identity == nil {
		return nil, errors.New("[NewClubView] collab service and identity are required")
	}
	if clubID.IsZero() {
		return nil, errors.New("[NewClubView] club id is required")
	}
	return &ClubView{
		service:  service,
		identity: identity,
		clubID:   clubID,
		errs:     make(map[Section]error),
	}, nil
}

// Load fetches the club, its events, posts and resources concurrently
func (v *ClubView) Load(ctx context.Context) error {
	if err := v.identity.WaitResolved(ctx); err != nil {
		return errors.Wrap(err, "[ClubView.Load] waiting for session")
	}

	var g errgroup.Group
	g.Go(func() error {
		club, err := v.service.Club(ctx, v.clubID)
		v.store(SectionClub, err, func() { v.club = club })
		return nil
	})
	g.Go(func() error {
		items, err := v.service.ClubEvents(ctx, v.clubID)
		v.store(SectionEvents, err, func() { v.events = items })
		return nil
	})
	g.Go(func() error {
		items, err := v.service.ClubPosts(ctx, v.clubID)
		v.store(SectionPosts, err, func() { v.posts = items })
		return nil
	})
	g.Go(func() error {
		items, err := v.service.ClubResources(ctx, v.clubID)
		v.store(SectionResources, err, func() { v.resources = items })
		return nil
	})
	_ = g.Wait()
	return nil
}

func (v *ClubView) store(section Section, err error, set func()) {
	v.lock.Lock()
	defer v.lock.Unlock()
	if err != nil {
		v.errs[section] = err
		return
	}
	delete(v.errs, section)
	set()
}

func (v *ClubView) fail(section Section, err error) error {
	v.lock.Lock()
	v.errs[section] = err
	v.lock.Unlock()
	return err
}

func (v *ClubView) Errors() map[Section]error {
	v.lock.RLock()
	defer v.lock.RUnlock()
	return copyErrors(v.errs)
}

// Club returns a copy of the loaded club, or nil
func (v *ClubView) Club() *collab.Club {
	v.lock.RLock()
	defer v.lock.RUnlock()
	if v.club == nil {
		return nil
	}
	c := *v.club
	c.Members = append([]ids.ID(nil), v.club.Members...)
	return &c
}

func (v *ClubView) Events() []collab.ClubEvent {
	v.lock.RLock()
	defer v.lock.RUnlock()
	return append([]collab.ClubEvent{}, v.events...)
}

func (v *ClubView) Posts() []collab.ClubPost {
	v.lock.RLock()
	defer v.lock.RUnlock()
	return append([]collab.ClubPost{}, v.posts...)
}

func (v *ClubView) Resources() []collab.ClubResource {
	v.lock.RLock()
	defer v.lock.RUnlock()
	return append([]collab.ClubResource{}, v.resources...)
}

// IsMember reports whether the current user belongs to the loaded club
func (v *ClubView) IsMember() bool {
	club := v.Club()
	return club != nil && club.IsMember(userID(v.identity))
}

func (v *ClubView) Join(ctx context.Context) error {
	updated, err := v.service.JoinClub(ctx, v.clubID)
	if err != nil {
		return v.fail(SectionClub, err)
	}
	me := userID(v.identity)
	v.store(SectionClub, nil, func() {
		switch {
		case updated != nil:
			v.club = updated
		case v.club != nil:
			v.club.Members = ids.Add(v.club.Members, me)
		}
	})
	return nil
}

func (v *ClubView) AddEvent(ctx context.Context, draft collab.EventDraft) (*collab.ClubEvent, error) {
	event, err := v.service.CreateClubEvent(ctx, v.clubID, draft)
	if err != nil {
		return nil, v.fail(SectionEvents, err)
	}
	v.store(SectionEvents, nil, func() { v.events = append(v.events, *event) })
	return event, nil
}

// Register signs the current user up for an event
func (v *ClubView) Register(ctx context.Context, eventID ids.ID) error {
	updated, err := v.service.RegisterEvent(ctx, eventID)
	if err != nil {
		return v.fail(SectionEvents, err)
	}
	me := userID(v.identity)
	v.store(SectionEvents, nil, func() {
		if updated != nil {
			v.events = upsert(v.events, *updated)
			return
		}
		if i := indexOf(v.events, eventID); i >= 0 {
			v.events[i].Attendees = ids.Add(v.events[i].Attendees, me)
		}
	})
	return nil
}

func (v *ClubView) AddPost(ctx context.Context, draft collab.PostDraft) (*collab.ClubPost, error) {
	post, err := v.service.CreateClubPost(ctx, v.clubID, draft)
	if err != nil {
		return nil, v.fail(SectionPosts, err)
	}
	v.store(SectionPosts, nil, func() { v.posts = append(v.posts, *post) })
	return post, nil
}

func (v *ClubView) AddResource(ctx context.Context, draft collab.ResourceDraft) (*collab.ClubResource, error) {
	resource, err := v.service.CreateClubResource(ctx, v.clubID, draft)
	if err != nil {
		return nil, v.fail(SectionResources, err)
	}
	v.store(SectionResources, nil, func() { v.resources = append(v.resources, *resource) })
	return resource, nil
}
