package portal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/studyhub/portal/ids"
	"github.com/studyhub/portal/portal"
	"github.com/studyhub/portal/resources"
)

func TestResourceHub(t *testing.T) {
	svc := &fakeDocuments{docs: []resources.Document{
		{ID: "1", Title: "DSA notes", Branch: "CSE"},
		{ID: "2", Title: "Circuits", Branch: "ECE"},
	}}
	hub, err := portal.NewResourceHub(svc, me)
	require.NoError(t, err)
	require.NoError(t, hub.Load(context.Background()))
	require.Len(t, hub.Documents(portal.DocumentFilter{}), 2)

	doc, err := hub.Upload(context.Background(), &resources.UploadForm{Title: "OS notes", Branch: "CSE"})
	require.NoError(t, err)
	docs := hub.Documents(portal.DocumentFilter{})
	require.Len(t, docs, 3)
	require.Equal(t, doc.ID, docs[0].ID)
	require.Len(t, hub.Documents(portal.DocumentFilter{Branch: "cse"}), 2)

	require.NoError(t, hub.Delete(context.Background(), ids.MustParse(1)))
	require.Len(t, hub.Documents(portal.DocumentFilter{}), 2)

	svc.deleteErr = errors.New("API request failed with status 403: not yours")
	require.Error(t, hub.Delete(context.Background(), "2"))
	require.Len(t, hub.Documents(portal.DocumentFilter{}), 2)
	require.Error(t, hub.Err())
}

func TestResourceHubUploadFailure(t *testing.T) {
	svc := &fakeDocuments{uploadErr: resources.ErrFileTooLarge}
	hub, err := portal.NewResourceHub(svc, me)
	require.NoError(t, err)

	_, err = hub.Upload(context.Background(), &resources.UploadForm{Title: "big"})
	require.ErrorIs(t, err, resources.ErrFileTooLarge)
	require.Empty(t, hub.Documents(portal.DocumentFilter{}))
}
