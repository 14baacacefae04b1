package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/studyhub/portal/collab"
	"github.com/studyhub/portal/internal/output"
	"github.com/studyhub/portal/portal"
)

var clubsCmd = &cobra.Command{Use: "clubs", Short: "Clubs, their events, posts and resources"}

var clubsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List clubs",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		clubs, err := a.collab.Clubs(cmd.Context())
		if err != nil {
			return err
		}
		query, _ := cmd.Flags().GetString("query")
		category, _ := cmd.Flags().GetString("category")
		return renderClubs(a, portal.FilterClubs(clubs, query, category))
	},
}

var clubsShowCmd = &cobra.Command{
	Use:   "show <club-id>",
	Short: "Show a club with its events, posts and resources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, view, err := loadClub(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		club := view.Club()
		if club == nil {
			if err := view.Errors()[portal.SectionClub]; err != nil {
				return err
			}
			return fmt.Errorf("club %s not found", args[0])
		}

		a.printer.Header(club.Name)
		a.printer.Print("%s", club.Description)
		a.printer.Print("%-10s %s", "Category", orDash(club.Category))
		a.printer.Print("%-10s %d", "Members", len(club.Members))
		if view.IsMember() {
			a.printer.Print("%s", a.printer.Badge(true, "member"))
		}

		errs := view.Errors()
		a.printer.Header("Events")
		if err := sectionOr(a, errs[portal.SectionEvents], func() error { return renderEvents(a, view.Events()) }); err != nil {
			return err
		}
		a.printer.Header("Posts")
		if err := sectionOr(a, errs[portal.SectionPosts], func() error { return renderPosts(a, view.Posts()) }); err != nil {
			return err
		}
		a.printer.Header("Resources")
		return sectionOr(a, errs[portal.SectionResources], func() error { return renderClubResources(a, view.Resources()) })
	},
}

var clubsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a club",
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
		if !user.CanCreateClub() {
			a.printer.Warning("your role (%s) may not be allowed to create clubs", user.Role)
		}
		dashboard, err := newDashboard(a)
		if err != nil {
			return err
		}
		var draft collab.ClubDraft
		draft.Name, _ = cmd.Flags().GetString("name")
		draft.Description, _ = cmd.Flags().GetString("description")
		draft.Category, _ = cmd.Flags().GetString("category")

		club, err := dashboard.CreateClub(cmd.Context(), draft)
		if err != nil {
			return err
		}
		a.printer.Success("created club %s (id %s)", club.Name, club.ID)
		return nil
	},
}

var clubsJoinCmd = &cobra.Command{
	Use:   "join <club-id>",
	Short: "Join a club",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, view, err := clubAction(args[0])
		if err != nil {
			return err
		}
		if err := view.Join(cmd.Context()); err != nil {
			return err
		}
		if club := view.Club(); club != nil {
			a.printer.Success("joined club %s (%d members)", club.Name, len(club.Members))
			return nil
		}
		a.printer.Success("joined club %s", args[0])
		return nil
	},
}

var clubsEventsCmd = &cobra.Command{
	Use:   "events <club-id>",
	Short: "List a club's events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		events, err := a.collab.ClubEvents(cmd.Context(), id)
		if err != nil {
			return err
		}
		return renderEvents(a, events)
	},
}

var clubsAddEventCmd = &cobra.Command{
	Use:   "add-event <club-id>",
	Short: "Schedule a club event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, view, err := clubAction(args[0])
		if err != nil {
			return err
		}
		var draft collab.EventDraft
		draft.Title, _ = cmd.Flags().GetString("title")
		draft.Description, _ = cmd.Flags().GetString("description")
		draft.Location, _ = cmd.Flags().GetString("location")
		if date, _ := cmd.Flags().GetString("date"); date != "" {
			if draft.Date, err = parseDate(date); err != nil {
				return err
			}
		}

		event, err := view.AddEvent(cmd.Context(), draft)
		if err != nil {
			return err
		}
		a.printer.Success("scheduled %s on %s (id %s)", event.Title, formatTime(event.Date), event.ID)
		return nil
	},
}

var clubsPostsCmd = &cobra.Command{
	Use:   "posts <club-id>",
	Short: "List a club's posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		posts, err := a.collab.ClubPosts(cmd.Context(), id)
		if err != nil {
			return err
		}
		return renderPosts(a, posts)
	},
}

var clubsAddPostCmd = &cobra.Command{
	Use:   "add-post <club-id>",
	Short: "Post to a club",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, view, err := clubAction(args[0])
		if err != nil {
			return err
		}
		var draft collab.PostDraft
		draft.Title, _ = cmd.Flags().GetString("title")
		draft.Content, _ = cmd.Flags().GetString("content")

		post, err := view.AddPost(cmd.Context(), draft)
		if err != nil {
			return err
		}
		a.printer.Success("posted (id %s)", post.ID)
		return nil
	},
}

var clubsResourcesCmd = &cobra.Command{
	Use:   "resources <club-id>",
	Short: "List a club's shared links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		resources, err := a.collab.ClubResources(cmd.Context(), id)
		if err != nil {
			return err
		}
		return renderClubResources(a, resources)
	},
}

var clubsAddResourceCmd = &cobra.Command{
	Use:   "add-resource <club-id>",
	Short: "Share a link with a club",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, view, err := clubAction(args[0])
		if err != nil {
			return err
		}
		var draft collab.ResourceDraft
		draft.Title, _ = cmd.Flags().GetString("title")
		draft.URL, _ = cmd.Flags().GetString("url")
		draft.Description, _ = cmd.Flags().GetString("description")

		resource, err := view.AddResource(cmd.Context(), draft)
		if err != nil {
			return err
		}
		a.printer.Success("shared %s (id %s)", resource.Title, resource.ID)
		return nil
	},
}

var eventsCmd = &cobra.Command{Use: "events", Short: "Club events"}

var eventsRegisterCmd = &cobra.Command{
	Use:   "register <event-id>",
	Short: "Register for a club event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		club, _ := cmd.Flags().GetString("club")
		a, view, err := clubAction(club)
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := view.Register(cmd.Context(), id); err != nil {
			return err
		}
		if event, ok := find(view.Events(), id); ok {
			a.printer.Success("registered for %s on %s", event.Title, formatTime(event.Date))
			return nil
		}
		a.printer.Success("registered for event %s", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clubsCmd, eventsCmd)

	clubsCmd.AddCommand(clubsListCmd, clubsShowCmd, clubsCreateCmd, clubsJoinCmd,
		clubsEventsCmd, clubsAddEventCmd, clubsPostsCmd, clubsAddPostCmd,
		clubsResourcesCmd, clubsAddResourceCmd)
	eventsCmd.AddCommand(eventsRegisterCmd)

	eventsRegisterCmd.Flags().String("club", "", "club id the event belongs to")
	_ = eventsRegisterCmd.MarkFlagRequired("club")

	clubsListCmd.Flags().String("query", "", "match name or description")
	clubsListCmd.Flags().String("category", "", "only clubs in this category")

	clubsCreateCmd.Flags().String("name", "", "club name")
	clubsCreateCmd.Flags().String("description", "", "club description")
	clubsCreateCmd.Flags().String("category", "", "category")

	clubsAddEventCmd.Flags().String("title", "", "event title")
	clubsAddEventCmd.Flags().String("description", "", "event description")
	clubsAddEventCmd.Flags().String("location", "", "where it happens")
	clubsAddEventCmd.Flags().String("date", "", "when it happens, YYYY-MM-DD HH:MM")

	clubsAddPostCmd.Flags().String("title", "", "post title")
	clubsAddPostCmd.Flags().String("content", "", "post body")

	clubsAddResourceCmd.Flags().String("title", "", "link title")
	clubsAddResourceCmd.Flags().String("url", "", "link URL")
	clubsAddResourceCmd.Flags().String("description", "", "what the link is")
}

// loadClub builds the club screen and loads all of its sections
func loadClub(ctx context.Context, arg string) (*app, *portal.ClubView, error) {
	a, err := requireApp()
	if err != nil {
		return nil, nil, err
	}
	id, err := parseID(arg)
	if err != nil {
		return nil, nil, err
	}
	view, err := portal.NewClubView(a.collab, a.manager, id)
	if err != nil {
		return nil, nil, err
	}
	if err := view.Load(ctx); err != nil {
		return nil, nil, err
	}
	return a, view, nil
}

// clubAction builds an unloaded club screen for a single mutation
func clubAction(arg string) (*app, *portal.ClubView, error) {
	a, id, err := memberAction(arg)
	if err != nil {
		return nil, nil, err
	}
	view, err := portal.NewClubView(a.collab, a.manager, id)
	if err != nil {
		return nil, nil, err
	}
	return a, view, nil
}

func sectionOr(a *app, err error, render func() error) error {
	if err != nil {
		a.printer.Error("%s", userMessage(err))
		return nil
	}
	return render()
}

func renderEvents(a *app, events []collab.ClubEvent) error {
	me := a.me()
	table := a.table("ID", "TITLE", "WHEN", "WHERE", "ATTENDEES", "")
	for _, e := range events {
		table.AddRow(e.ID.String(), e.Title, formatTime(e.Date), orDash(e.Location), strconv.Itoa(len(e.Attendees)), a.printer.Badge(e.IsRegistered(me), "registered"))
	}
	return renderTable(a, table, "no events")
}

func renderPosts(a *app, posts []collab.ClubPost) error {
	table := a.table("ID", "TITLE", "POSTED", "CONTENT")
	for _, p := range posts {
		table.AddRow(p.ID.String(), orDash(p.Title), formatTime(p.CreatedAt), output.Truncate(p.Content, 60))
	}
	return renderTable(a, table, "no posts")
}

func renderClubResources(a *app, resources []collab.ClubResource) error {
	table := a.table("ID", "TITLE", "URL")
	for _, r := range resources {
		table.AddRow(r.ID.String(), r.Title, r.URL)
	}
	return renderTable(a, table, "no resources")
}
