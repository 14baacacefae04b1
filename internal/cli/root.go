// Package cli contains the portal terminal commands.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/studyhub/portal/internal/output"
)

var (
	cfgFile   string
	apiOrigin string
	colorMode string
	verbose   bool
	version   = "dev"

	current *app
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "StudyHub student portal client",
	Long: `portal signs you in to the StudyHub backend and lets you browse and share
study resources, projects, clubs, communities and mentorship from the terminal.

Example usage:
  portal login -u alice            # Sign in with a password
  portal login --social            # Sign in through the configured provider
  portal dashboard                 # Projects, clubs, communities, groups, sessions
  portal docs upload notes.pdf --title "DBMS unit 2" --college MIT --branch CSE --type notes`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if current != nil {
			current.close()
			current = nil
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		displayAppname(cmd.OutOrStdout(), a.cfg.GetAppName())
		return cmd.Help()
	},
}

// Execute runs the command line and prints any failure in red on stderr
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is portal.yaml in the working or data folder)")
	rootCmd.PersistentFlags().StringVar(&apiOrigin, "api-origin", "", "backend origin, e.g. https://portal.example.edu")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "colour output: auto, always or never")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func reportError(w io.Writer, err error) {
	mode, parseErr := output.ParseColorMode(colorMode)
	if parseErr != nil {
		mode = output.ColorNever
	}
	printer := output.NewPrinterWithWriters(w, w, output.ResolveColors(mode))
	printer.Error("%s", userMessage(err))
}

// requireApp returns the dependencies built for the running command
func requireApp() (*app, error) {
	if current == nil {
		return nil, errors.New("portal is not initialised")
	}
	return current, nil
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}
