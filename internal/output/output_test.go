package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/studyhub/portal/internal/output"
)

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input string
		want  output.ColorMode
	}{
		{"", output.ColorAuto},
		{"auto", output.ColorAuto},
		{"ALWAYS", output.ColorAlways},
		{"never", output.ColorNever},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := output.ParseColorMode(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := output.ParseColorMode("sometimes")
	require.Error(t, err)
}

func TestResolveColors(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	require.True(t, output.ResolveColors(output.ColorAlways))
	require.False(t, output.ResolveColors(output.ColorNever))
	require.False(t, output.ResolveColors(output.ColorAuto))
}

func TestPrinterPlain(t *testing.T) {
	var out, errOut bytes.Buffer
	p := output.NewPrinterWithWriters(&out, &errOut, false)

	p.Success("joined %s", "Robotics")
	p.Info("3 items")
	p.Error("request failed with status %d", 500)
	p.Warning("section %s unavailable", "clubs")
	p.Header("Projects")

	require.Contains(t, out.String(), "[OK] joined Robotics")
	require.Contains(t, out.String(), "3 items")
	require.Contains(t, out.String(), "Projects\n--------")
	require.Contains(t, errOut.String(), "[ERROR] request failed with status 500")
	require.Contains(t, errOut.String(), "[WARN] section clubs unavailable")
	require.NotContains(t, out.String(), "ERROR")

	require.Equal(t, "x", p.Bold("x"))
	require.Equal(t, "[member]", p.Badge(true, "member"))
	require.Empty(t, p.Badge(false, "member"))
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	table := output.NewTable(&buf, []string{"ID", "TITLE"})
	table.AddRow("1", "Line follower")
	table.AddRow("2", "Compiler")
	require.Equal(t, 2, table.Len())

	require.NoError(t, table.Render())
	require.Contains(t, buf.String(), "TITLE")
	require.Contains(t, buf.String(), "Line follower")
	require.Contains(t, buf.String(), "Compiler")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", output.Truncate("short", 10))
	require.Equal(t, "abc…", output.Truncate("abcdefg", 4))
	require.Equal(t, "abc", output.Truncate("abc", 0))
}
