// Package collab is the typed client for the collaboration endpoints: projects, clubs
// and their events, posts and resources, project groups, communities and mentorship.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/studyhub/portal/gateway"
	"github.com/studyhub/portal/ids"
	"github.com/studyhub/portal/internal/validation"
	"github.com/studyhub/portal/users"
)

// ErrUnexpectedResponse is returned when a create endpoint answers without the new record
var ErrUnexpectedResponse = errors.New("backend response did not contain the record")

// Gateway sends a request and returns the parsed body
type Gateway interface {
	Do(ctx context.Context, r gateway.Request) (gateway.Body, error)
}

type Service struct {
	gateway   Gateway
	validator *validation.Validator
	logger    zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(gw Gateway, options ...ServiceOption) (*Service, error) {
	if gw == nil {
		return nil, errors.New("[collab.NewService] gateway is required")
	}
	s := &Service{
		gateway:   gw,
		validator: validation.New(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Projects

func (s *Service) Projects(ctx context.Context) ([]Project, error) {
	return list[Project](ctx, s, "/projects/")
}

func (s *Service) CreateProject(ctx context.Context, draft ProjectDraft) (*Project, error) {
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}
	return create[Project](ctx, s, "/projects/", draft)
}

// JoinProject returns the updated project, or nil when the backend only acknowledged
// the join.
func (s *Service) JoinProject(ctx context.Context, id ids.ID) (*Project, error) {
	return action[Project](ctx, s, path("/projects/", id, "join/"))
}

// Clubs

func (s *Service) Clubs(ctx context.Context) ([]Club, error) {
	return list[Club](ctx, s, "/clubs/")
}

func (s *Service) Club(ctx context.Context, id ids.ID) (*Club, error) {
	body, err := s.gateway.Do(ctx, gateway.Request{Method: http.MethodGet, Path: path("/clubs/", id, "")})
	if err != nil {
		return nil, err
	}
	var club Club
	if err := body.Decode(&club); err != nil {
		return nil, errors.Wrap(err, "[Service.Club] Decode")
	}
	if club.ID.IsZero() {
		return nil, ErrUnexpectedResponse
	}
	return &club, nil
}

func (s *Service) CreateClub(ctx context.Context, draft ClubDraft) (*Club, error) {
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}
	return create[Club](ctx, s, "/clubs/", draft)
}

func (s *Service) JoinClub(ctx context.Context, id ids.ID) (*Club, error) {
	return action[Club](ctx, s, path("/clubs/", id, "join/"))
}

func (s *Service) ClubEvents(ctx context.Context, clubID ids.ID) ([]ClubEvent, error) {
	return list[ClubEvent](ctx, s, path("/clubs/", clubID, "events/"))
}

func (s *Service) CreateClubEvent(ctx context.Context, clubID ids.ID, draft EventDraft) (*ClubEvent, error) {
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}
	if draft.Date.IsZero() {
		return nil, &validation.Error{Fields: map[string]string{"date": "date is required"}}
	}
	return create[ClubEvent](ctx, s, path("/clubs/", clubID, "events/"), draft)
}

// RegisterEvent returns the updated event, or nil when the backend only acknowledged
func (s *Service) RegisterEvent(ctx context.Context, eventID ids.ID) (*ClubEvent, error) {
	return action[ClubEvent](ctx, s, path("/events/", eventID, "register/"))
}

func (s *Service) ClubPosts(ctx context.Context, clubID ids.ID) ([]ClubPost, error) {
	return list[ClubPost](ctx, s, path("/clubs/", clubID, "posts/"))
}

func (s *Service) CreateClubPost(ctx context.Context, clubID ids.ID, draft PostDraft) (*ClubPost, error) {
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}
	return create[ClubPost](ctx, s, path("/clubs/", clubID, "posts/"), draft)
}

func (s *Service) ClubResources(ctx context.Context, clubID ids.ID) ([]ClubResource, error) {
	return list[ClubResource](ctx, s, path("/clubs/", clubID, "resources/"))
}

func (s *Service) CreateClubResource(ctx context.Context, clubID ids.ID, draft ResourceDraft) (*ClubResource, error) {
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}
	return create[ClubResource](ctx, s, path("/clubs/", clubID, "resources/"), draft)
}

// Project groups

func (s *Service) Groups(ctx context.Context) ([]ProjectGroup, error) {
	return list[ProjectGroup](ctx, s, "/project-groups/")
}

func (s *Service) CreateGroup(ctx context.Context, draft GroupDraft) (*ProjectGroup, error) {
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}
	return create[ProjectGroup](ctx, s, "/project-groups/", draft)
}

func (s *Service) JoinGroup(ctx context.Context, id ids.ID) (*ProjectGroup, error) {
	return action[ProjectGroup](ctx, s, path("/project-groups/", id, "join/"))
}

// Communities

func (s *Service) Communities(ctx context.Context) ([]Community, error) {
	return list[Community](ctx, s, "/communities/")
}

func (s *Service) CreateCommunity(ctx context.Context, draft CommunityDraft) (*Community, error) {
	if err := s.validator.Validate(draft); err != nil {
		return nil, err
	}
	return create[Community](ctx, s, "/communities/", draft)
}

// Mentorship

// Mentors lists users offering mentorship, normalized like the session user
func (s *Service) Mentors(ctx context.Context) ([]*users.User, error) {
	payloads, err := list[users.Payload](ctx, s, "/users/mentors/")
	if err != nil {
		return nil, err
	}
	mentors := make([]*users.User, 0, len(payloads))
	for _, p := range payloads {
		mentors = append(mentors, users.Normalize(p))
	}
	return mentors, nil
}

// BecomeMentor asks the backend to mark the current user as a mentor and returns its message
func (s *Service) BecomeMentor(ctx context.Context) (string, error) {
	body, err := s.gateway.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/users/become-mentor/"})
	if err != nil {
		return "", err
	}
	return body.Message(), nil
}

func (s *Service) MentorSessions(ctx context.Context) ([]MentorSession, error) {
	return list[MentorSession](ctx, s, "/mentorship/sessions/")
}

func path(prefix string, id ids.ID, suffix string) string {
	return prefix + url.PathEscape(id.String()) + "/" + suffix
}

func list[T any](ctx context.Context, s *Service, p string) ([]T, error) {
	body, err := s.gateway.Do(ctx, gateway.Request{Method: http.MethodGet, Path: p})
	if err != nil {
		return nil, err
	}
	items, err := gateway.DecodeList[T](body)
	if err != nil {
		return nil, errors.Wrapf(err, "[collab.list] %s", p)
	}
	s.logger.Debug().Str("path", p).Int("count", len(items)).Msg("listed")
	return items, nil
}

type keyed interface {
	Key() ids.ID
}

func create[T any, P interface {
	*T
	keyed
}](ctx context.Context, s *Service, p string, draft any) (*T, error) {
	body, err := s.gateway.Do(ctx, gateway.Request{Method: http.MethodPost, Path: p, JSON: draft})
	if err != nil {
		return nil, err
	}
	entity := decodeEntity[T, P](body)
	if entity == nil {
		return nil, ErrUnexpectedResponse
	}
	return entity, nil
}

func action[T any, P interface {
	*T
	keyed
}](ctx context.Context, s *Service, p string) (*T, error) {
	body, err := s.gateway.Do(ctx, gateway.Request{Method: http.MethodPost, Path: p})
	if err != nil {
		return nil, err
	}
	return decodeEntity[T, P](body), nil
}

// decodeEntity returns the record in body, or nil when body is a message or acknowledgement
func decodeEntity[T any, P interface {
	*T
	keyed
}](body gateway.Body) *T {
	if body.Kind() != gateway.BodyJSON || !bytes.HasPrefix(body.Raw(), []byte("{")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(body.Raw(), &v); err != nil {
		return nil
	}
	if P(&v).Key().IsZero() {
		return nil
	}
	return &v
}
