package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/studyhub/portal/internal/utils"
)

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{".pdf", ".docx"}, utils.SplitList(" .pdf, ,.docx,"))
	require.Empty(t, utils.SplitList(""))
}

func TestContainsFold(t *testing.T) {
	require.True(t, utils.ContainsFold("Intro to React", "react"))
	require.False(t, utils.ContainsFold("Intro to Go", "react"))
}

func TestOptionalTime(t *testing.T) {
	require.Nil(t, utils.OptionalTime(time.Time{}))
	require.True(t, utils.TimeOrZero(nil).IsZero())

	local := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	got := utils.OptionalTime(local)
	require.NotNil(t, got)
	require.Equal(t, time.UTC, got.Location())
	require.True(t, local.Equal(utils.TimeOrZero(got)))
}
