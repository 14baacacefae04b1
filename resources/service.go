// Package resources is the resource hub client: recent documents, validated uploads
// and deletion.
package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/studyhub/portal/gateway"
	"github.com/studyhub/portal/ids"
	"github.com/studyhub/portal/internal/validation"
)

const (
	RecentPath = "/documents/recent/"
	UploadPath = "/upload/"
)

// ErrUnexpectedResponse is returned when an upload succeeds without describing the document
var ErrUnexpectedResponse = errors.New("upload response did not contain the document")

type Gateway interface {
	Do(ctx context.Context, r gateway.Request) (gateway.Body, error)
}

type Service struct {
	gateway   Gateway
	limits    Limits
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

func NewService(gw Gateway, limits Limits, options ...ServiceOption) (*Service, error) {
	if gw == nil {
		return nil, errors.New("[resources.NewService] gateway is required")
	}
	s := &Service{
		gateway:   gw,
		limits:    limits,
		validator: validation.New(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

func (s *Service) Limits() Limits {
	return s.limits
}

func (s *Service) Recent(ctx context.Context) ([]Document, error) {
	body, err := s.gateway.Do(ctx, gateway.Request{Method: http.MethodGet, Path: RecentPath})
	if err != nil {
		return nil, err
	}
	docs, err := gateway.DecodeList[Document](body)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Recent] DecodeList")
	}
	return docs, nil
}

// Validate runs the same checks Upload runs before sending
func (s *Service) Validate(form *UploadForm) error {
	return form.Validate(s.validator, s.limits)
}

// Upload validates the form and posts it as multipart. Invalid forms never reach the
// network.
func (s *Service) Upload(ctx context.Context, form *UploadForm) (*Document, error) {
	if err := s.Validate(form); err != nil {
		return nil, err
	}

	body, err := s.gateway.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   UploadPath,
		Multipart: &gateway.Multipart{
			Fields:    form.fields(),
			FileField: "file",
			FileName:  form.FileName,
			File:      form.File,
		},
	})
	if err != nil {
		return nil, err
	}

	doc, err := decodeUploaded(body)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("title", doc.Title).Str("id", doc.ID.String()).Msg("document uploaded")
	return doc, nil
}

// decodeUploaded accepts the document itself or {"document": {...}}
func decodeUploaded(body gateway.Body) (*Document, error) {
	if body.Kind() != gateway.BodyJSON {
		return nil, ErrUnexpectedResponse
	}

	var wrapped struct {
		Document *Document `json:"document"`
	}
	if err := json.Unmarshal(body.Raw(), &wrapped); err == nil && wrapped.Document != nil && !wrapped.Document.ID.IsZero() {
		return wrapped.Document, nil
	}

	var doc Document
	if err := json.Unmarshal(body.Raw(), &doc); err != nil || doc.ID.IsZero() {
		return nil, ErrUnexpectedResponse
	}
	return &doc, nil
}

func (s *Service) Delete(ctx context.Context, id ids.ID) error {
	if id.IsZero() {
		return errors.New("[Service.Delete] document id is required")
	}
	_, err := s.gateway.Do(ctx, gateway.Request{
		Method: http.MethodDelete,
		Path:   "/documents/" + url.PathEscape(id.String()) + "/",
	})
	return err
}
