package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/studyhub/portal/auth"
	"github.com/studyhub/portal/collab"
	"github.com/studyhub/portal/gateway"
	"github.com/studyhub/portal/ids"
	"github.com/studyhub/portal/internal/config"
	portalerrors "github.com/studyhub/portal/internal/errors"
	"github.com/studyhub/portal/internal/logging"
	"github.com/studyhub/portal/internal/output"
	"github.com/studyhub/portal/internal/validation"
	"github.com/studyhub/portal/resources"
	"github.com/studyhub/portal/sessions/filestore"
	"github.com/studyhub/portal/users"
)

const keyAPIOrigin = "api_origin"

type app struct {
	cfg       config.Config
	logger    zerolog.Logger
	printer   *output.Printer
	gateway   *gateway.Client
	store     *filestore.Store
	manager   *auth.Manager
	collab    *collab.Service
	documents *resources.Service
}

// newApp loads configuration and restores the stored session
func newApp(ctx context.Context, out, errOut io.Writer) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	mode, err := output.ParseColorMode(colorMode)
	if err != nil {
		return nil, err
	}

	v, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if apiOrigin != "" {
		v.Set(keyAPIOrigin, apiOrigin)
	}
	cfg := config.New(v)

	// The terminal stays quiet unless a level is configured or --verbose is set
	level := zerolog.WarnLevel
	switch {
	case verbose:
		level = zerolog.DebugLevel
	case cfg.GetLogLevel() != "":
		level = logging.Level(cfg.GetLogLevel(), cfg.GetEnv())
	}
	logger := logging.New(errOut, level)

	gw, err := gateway.New(cfg.GetAPIBaseURL(), gateway.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	store := filestore.New(cfg.GetSessionFile(), cfg.GetStorePassphrase())
	manager, err := auth.NewManager(gw, store,
		auth.WithLogger(logger),
		auth.WithSessionTTL(cfg.GetSessionTTL()),
	)
	if err != nil {
		return nil, err
	}

	collabService, err := collab.NewService(gw, collab.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	documents, err := resources.NewService(gw, resources.Limits{
		MaxMB:      cfg.GetUploadMaxMB(),
		Extensions: cfg.GetUploadExtensions(),
	}, resources.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		printer:   output.NewPrinterWithWriters(out, errOut, output.ResolveColors(mode)),
		gateway:   gw,
		store:     store,
		manager:   manager,
		collab:    collabService,
		documents: documents,
	}

	if err := manager.Restore(ctx); err != nil {
		a.printer.Warning("could not restore the saved session: %s", userMessage(err))
	}
	logger.Debug().Str("api", gw.BaseURL()).Stringer("state", manager.State()).Msg("portal ready")
	return a, nil
}

func (a *app) close() {
	a.manager.Close()
}

// requireUser fails unless a session is active
func (a *app) requireUser() (*users.User, error) {
	user := a.manager.CurrentUser()
	if user == nil {
		return nil, fmt.Errorf("%w, run `portal login` first", portalerrors.ErrNotAuthenticated)
	}
	return user, nil
}

func (a *app) table(headers ...string) *output.Table {
	return output.NewTable(a.printer.Out(), headers)
}

func (a *app) me() ids.ID {
	if user := a.manager.CurrentUser(); user != nil {
		return user.ID
	}
	return ""
}

// userMessage strips the call-site prefixes from wrapped errors
func userMessage(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Unauthorized() {
			return portalerrors.ErrSessionExpired.Error() + ", run `portal login` again"
		}
		return apiErr.Error()
	}
	var netErr *gateway.NetworkError
	if errors.As(err, &netErr) {
		return netErr.Error()
	}
	var uploadErr *resources.UploadError
	if errors.As(err, &uploadErr) {
		return uploadErr.Error()
	}
	var validationErr *validation.Error
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	msg := errors.Cause(err).Error()
	for strings.HasPrefix(msg, "[") {
		end := strings.Index(msg, "] ")
		if end < 0 {
			break
		}
		msg = msg[end+2:]
	}
	return msg
}

func parseID(arg string) (ids.ID, error) {
	id := ids.MustParse(arg)
	if id.IsZero() {
		return "", fmt.Errorf("an id is required")
	}
	return id, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD HH:MM", s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
