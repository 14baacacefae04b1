package portal

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/studyhub/portal/ids"
	"github.com/studyhub/portal/resources"
)

// ResourceHub is the document browsing and upload screen
type ResourceHub struct {
	service  DocumentService
	identity Identity

	lock      sync.RWMutex
	documents []resources.Document
	err       error
}

func NewResourceHub(service DocumentService, identity Identity) (*ResourceHub, error) {
	if service == nil || identity == nil {
		return nil, errors.New("[NewResourceHub] document service and identity are required")
	}
	return &ResourceHub{service: service, identity: identity}, nil
}

func (h *ResourceHub) Load(ctx context.Context) error {
	if err := h.identity.WaitResolved(ctx); err != nil {
		return errors.Wrap(err, "[ResourceHub.Load] waiting for session")
	}

	docs, err := h.service.Recent(ctx)
	h.lock.Lock()
	defer h.lock.Unlock()
	h.err = err
	if err != nil {
		return err
	}
	h.documents = docs
	return nil
}

// Err returns the last failure, if any
func (h *ResourceHub) Err() error {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.err
}

// Documents returns the loaded documents matching filter
func (h *ResourceHub) Documents(filter DocumentFilter) []resources.Document {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return FilterDocuments(h.documents, filter)
}

// Upload sends the form and puts the new document first
func (h *ResourceHub) Upload(ctx context.Context, form *resources.UploadForm) (*resources.Document, error) {
	doc, err := h.service.Upload(ctx, form)

	h.lock.Lock()
	defer h.lock.Unlock()
	h.err = err
	if err != nil {
		return nil, err
	}
	h.documents = append([]resources.Document{*doc}, h.documents...)
	return doc, nil
}

// Delete removes the document once the backend has deleted it
func (h *ResourceHub) Delete(ctx context.Context, id ids.ID) error {
	err := h.service.Delete(ctx, id)

	h.lock.Lock()
	defer h.lock.Unlock()
	h.err = err
	if err != nil {
		return err
	}
	kept := make([]resources.Document, 0, len(h.documents))
	for _, doc := range h.documents {
		if !ids.Equal(doc.ID, id) {
			kept = append(kept, doc)
		}
	}
	h.documents = kept
	return nil
}
