package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/studyhub/portal/auth"
	"github.com/studyhub/portal/server"
	"github.com/studyhub/portal/server/authflowrepo"
	"github.com/studyhub/portal/users"
	"golang.org/x/term"
)

const socialLoginTimeout = 5 * time.Minute

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the portal",
	Long: `Sign in with a username and password, or with --social through the configured
OpenID Connect provider. The password is read from --password, PORTAL_PASSWORD or
an interactive prompt.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		if !a.manager.IsAuthenticated() {
			a.printer.Info("not logged in")
			return nil
		}
		if err := a.manager.Logout(cmd.Context()); err != nil {
			return err
		}
		a.printer.Success("logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		user, err := a.requireUser()
		if err != nil {
			return err
		}
		printUser(a, user)
		if session := a.manager.Session(); session != nil && !session.Expiry.IsZero() {
			a.printer.Print("%-13s %s", "Session until", formatTime(session.Expiry))
		}
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your profile",
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Long: `Update one or more profile fields. Only the flags you pass are sent.

Example:
  portal profile update --skills go,react --availability "weekends"`,
	Args: cobra.NoArgs,
	RunE: runProfileUpdate,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, profileCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	loginCmd.Flags().StringP("username", "u", "", "username")
	loginCmd.Flags().StringP("password", "p", "", "password (prompted when omitted)")
	loginCmd.Flags().Bool("social", false, "sign in through the configured OpenID Connect provider")

	profileUpdateCmd.Flags().String("first-name", "", "first name")
	profileUpdateCmd.Flags().String("last-name", "", "last name")
	profileUpdateCmd.Flags().String("email", "", "email address")
	profileUpdateCmd.Flags().StringSlice("skills", nil, "comma separated skills")
	profileUpdateCmd.Flags().String("availability", "", "when you are available")
	profileUpdateCmd.Flags().String("college", "", "college")
	profileUpdateCmd.Flags().String("branch", "", "branch")
	profileUpdateCmd.Flags().String("bio", "", "short bio")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	social, _ := cmd.Flags().GetBool("social")
	var user *users.User
	if social {
		user, err = socialLogin(cmd.Context(), a)
	} else {
		user, err = passwordLogin(cmd, a)
	}
	if err != nil {
		return err
	}

	a.printer.Success("logged in as %s (%s)", user.DisplayName(), user.Role)
	return nil
}

func passwordLogin(cmd *cobra.Command, a *app) (*users.User, error) {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("PORTAL_PASSWORD")
	}

	if username == "" {
		line, err := prompt(cmd, "Username: ")
		if err != nil {
			return nil, err
		}
		username = line
	}
	if password == "" {
		secret, err := promptPassword(cmd, "Password: ")
		if err != nil {
			return nil, err
		}
		password = secret
	}

	return a.manager.Login(cmd.Context(), username, password)
}

func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, "reading input")
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(cmd *cobra.Command, label string) (string, error) {
	in, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		return prompt(cmd, label)
	}
	fmt.Fprint(cmd.ErrOrStderr(), label)
	secret, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(secret), nil
}

// socialLogin runs the loopback OpenID Connect flow and exchanges the verified ID token
// for a backend session
func socialLogin(ctx context.Context, a *app) (*users.User, error) {
	oidcConfig, err := server.NewOidcConfig(ctx, a.cfg)
	if err != nil {
		return nil, err
	}

	srv, err := server.New(oidcConfig, authflowrepo.NewInMemoryRepo(),
		server.WithEnv(a.cfg.GetEnv()),
		server.WithProvider(a.cfg.GetSocialProvider()),
		server.WithAddr(a.cfg.GetCallbackAddr()),
		server.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	if err := srv.Start(); err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn().Err(err).Msg("callback server shutdown")
		}
	}()

	authURL, err := srv.Begin()
	if err != nil {
		return nil, err
	}
	a.printer.Info("Open this address in your browser to continue:")
	a.printer.Print("  %s", authURL)
	a.printer.Print("%s", a.printer.Dim("waiting for the provider to redirect to "+srv.Addr()))

	waitCtx, cancel := context.WithTimeout(ctx, socialLoginTimeout)
	defer cancel()
	result, err := srv.Wait(waitCtx)
	if err != nil {
		return nil, err
	}

	return a.manager.SocialLogin(ctx, auth.SocialCredentials{
		Provider:    result.Provider,
		IDToken:     result.IDToken,
		AccessToken: result.AccessToken,
	})
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	if _, err := a.requireUser(); err != nil {
		return err
	}

	flags := cmd.Flags()
	var update auth.ProfileUpdate
	update.FirstName, _ = flags.GetString("first-name")
	update.LastName, _ = flags.GetString("last-name")
	update.Email, _ = flags.GetString("email")
	update.Skills, _ = flags.GetStringSlice("skills")
	update.Availability, _ = flags.GetString("availability")
	update.College, _ = flags.GetString("college")
	update.Branch, _ = flags.GetString("branch")
	update.Bio, _ = flags.GetString("bio")
	if update.Empty() {
		return errors.New("nothing to update, pass at least one field flag")
	}

	user, err := a.manager.UpdateProfile(cmd.Context(), update)
	if err != nil {
		return err
	}
	a.printer.Success("profile updated")
	printUser(a, user)
	return nil
}

func printUser(a *app, user *users.User) {
	a.printer.Header(user.DisplayName())
	a.printer.Print("%-13s %s", "Username", user.Username)
	a.printer.Print("%-13s %s", "Role", user.Role)
	a.printer.Print("%-13s %s", "Email", orDash(user.Email))
	a.printer.Print("%-13s %s", "College", orDash(user.College))
	a.printer.Print("%-13s %s", "Branch", orDash(user.Branch))
	a.printer.Print("%-13s %s", "Skills", orDash(strings.Join(user.Skills, ", ")))
	a.printer.Print("%-13s %s", "Availability", orDash(user.Availability))
	if user.IsMentor {
		a.printer.Print("%-13s %s", "Mentor", "yes")
	}
}
