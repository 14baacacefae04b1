package validation_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/studyhub/portal/internal/validation"
)

type draft struct {
	Title string `json:"title" validate:"notblank,max=10"`
	Link  string `json:"link" validate:"omitempty,url"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestValidate(t *testing.T) {
	v := validation.New()

	require.NoError(t, v.Validate(draft{Title: "ok"}))

	err := v.Validate(draft{Title: "   ", Link: "not a url", Kind: "c"})
	require.Error(t, err)

	var vErr *validation.Error
	require.True(t, errors.As(err, &vErr))
	require.Equal(t, "title is required", vErr.Fields["title"])
	require.Equal(t, "link must be a valid URL", vErr.Fields["link"])
	require.Equal(t, "kind must be one of: a b", vErr.Fields["kind"])
	require.Equal(t, "validation failed: kind must be one of: a b, link must be a valid URL, title is required", err.Error())
}

func TestValidateMax(t *testing.T) {
	err := validation.New().Validate(draft{Title: "this title is too long"})
	require.EqualError(t, err, "validation failed: title must be at most 10")
}
