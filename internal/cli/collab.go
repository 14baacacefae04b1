package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/studyhub/portal/collab"
	"github.com/studyhub/portal/ids"
	"github.com/studyhub/portal/portal"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show projects, clubs, communities, groups and mentorship sessions",
	Long: `Load every collaboration section at once. A section that fails to load is
reported in place and the others are still shown.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

var projectsCmd = &cobra.Command{Use: "projects", Short: "Browse and join student projects"}

var projectsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		projects, err := a.collab.Projects(cmd.Context())
		if err != nil {
			return err
		}
		query, _ := cmd.Flags().GetString("query")
		tag, _ := cmd.Flags().GetString("tag")
		return renderProjects(a, portal.FilterProjects(projects, query, tag))
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		dashboard, err := userDashboard(a)
		if err != nil {
			return err
		}
		var draft collab.ProjectDraft
		draft.Title, _ = cmd.Flags().GetString("title")
		draft.Description, _ = cmd.Flags().GetString("description")
		draft.Tags, _ = cmd.Flags().GetStringSlice("tags")
		draft.RepoURL, _ = cmd.Flags().GetString("repo")

		project, err := dashboard.CreateProject(cmd.Context(), draft)
		if err != nil {
			return err
		}
		a.printer.Success("created project %s (id %s)", project.Title, project.ID)
		return nil
	},
}

var projectsJoinCmd = &cobra.Command{
	Use:   "join <project-id>",
	Short: "Join a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, id, err := memberAction(args[0])
		if err != nil {
			return err
		}
		dashboard, err := newDashboard(a)
		if err != nil {
			return err
		}
		if err := dashboard.JoinProject(cmd.Context(), id); err != nil {
			return err
		}
		if project, ok := find(dashboard.Projects(), id); ok {
			a.printer.Success("joined project %s (%d members)", project.Title, len(project.Members))
			return nil
		}
		a.printer.Success("joined project %s", id)
		return nil
	},
}

var groupsCmd = &cobra.Command{Use: "groups", Short: "Browse and join project groups"}

var groupsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List project groups",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		groups, err := a.collab.Groups(cmd.Context())
		if err != nil {
			return err
		}
		return renderGroups(a, groups)
	},
}

var groupsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project group",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		dashboard, err := userDashboard(a)
		if err != nil {
			return err
		}
		var draft collab.GroupDraft
		draft.Name, _ = cmd.Flags().GetString("name")
		draft.Description, _ = cmd.Flags().GetString("description")
		project, _ := cmd.Flags().GetString("project")
		draft.Project = ids.MustParse(project)
		draft.MaxMembers, _ = cmd.Flags().GetInt("max-members")

		group, err := dashboard.CreateGroup(cmd.Context(), draft)
		if err != nil {
			return err
		}
		a.printer.Success("created group %s (id %s)", group.Name, group.ID)
		return nil
	},
}

var groupsJoinCmd = &cobra.Command{
	Use:   "join <group-id>",
	Short: "Join a project group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, id, err := memberAction(args[0])
		if err != nil {
			return err
		}
		dashboard, err := newDashboard(a)
		if err != nil {
			return err
		}
		if err := dashboard.JoinGroup(cmd.Context(), id); err != nil {
			return err
		}
		if group, ok := find(dashboard.Groups(), id); ok {
			a.printer.Success("joined group %s (%s)", group.Name, groupSize(&group))
			return nil
		}
		a.printer.Success("joined group %s", id)
		return nil
	},
}

var communitiesCmd = &cobra.Command{Use: "communities", Short: "Browse and create communities"}

var communitiesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List communities",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		communities, err := a.collab.Communities(cmd.Context())
		if err != nil {
			return err
		}
		query, _ := cmd.Flags().GetString("query")
		return renderCommunities(a, portal.FilterCommunities(communities, query))
	},
}

var communitiesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a community",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		dashboard, err := userDashboard(a)
		if err != nil {
			return err
		}
		var draft collab.CommunityDraft
		draft.Name, _ = cmd.Flags().GetString("name")
		draft.Description, _ = cmd.Flags().GetString("description")
		draft.Topic, _ = cmd.Flags().GetString("topic")

		community, err := dashboard.CreateCommunity(cmd.Context(), draft)
		if err != nil {
			return err
		}
		a.printer.Success("created community %s (id %s)", community.Name, community.ID)
		return nil
	},
}

var mentorsCmd = &cobra.Command{Use: "mentors", Short: "Find mentors or become one"}

var mentorsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List mentors",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		mentors, err := a.collab.Mentors(cmd.Context())
		if err != nil {
			return err
		}
		query, _ := cmd.Flags().GetString("query")
		skill, _ := cmd.Flags().GetString("skill")
		mentors = portal.FilterMentors(mentors, query, skill)

		table := a.table("ID", "NAME", "SKILLS", "COLLEGE", "AVAILABILITY")
		for _, m := range mentors {
			table.AddRow(m.ID.String(), m.DisplayName(), strings.Join(m.Skills, ", "), orDash(m.College), orDash(m.Availability))
		}
		return renderTable(a, table, "no mentors found")
	},
}

var mentorsBecomeCmd = &cobra.Command{
	Use:   "become",
	Short: "Offer yourself as a mentor",
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
		if !user.CanBecomeMentor() {
			a.printer.Info("you are already a mentor")
			return nil
		}
		msg, err := a.collab.BecomeMentor(cmd.Context())
		if err != nil {
			return err
		}
		if _, err := a.manager.RefreshUser(cmd.Context()); err != nil {
			a.printer.Warning("could not refresh your profile: %s", userMessage(err))
		}
		if msg == "" {
			msg = "you are now a mentor"
		}
		a.printer.Success("%s", msg)
		return nil
	},
}

var mentorshipCmd = &cobra.Command{Use: "mentorship", Short: "Mentorship sessions"}

var mentorshipSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List mentorship sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireApp()
		if err != nil {
			return err
		}
		sessions, err := a.collab.MentorSessions(cmd.Context())
		if err != nil {
			return err
		}
		mine, _ := cmd.Flags().GetBool("mine")
		if mine {
			me := a.me()
			kept := sessions[:0:0]
			for _, s := range sessions {
				if s.Involves(me) {
					kept = append(kept, s)
				}
			}
			sessions = kept
		}
		return renderSessions(a, sessions)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd, projectsCmd, groupsCmd, communitiesCmd, mentorsCmd, mentorshipCmd)

	projectsCmd.AddCommand(projectsListCmd, projectsCreateCmd, projectsJoinCmd)
	projectsListCmd.Flags().String("query", "", "match title or description")
	projectsListCmd.Flags().String("tag", "", "only projects with this tag")
	projectsCreateCmd.Flags().String("title", "", "project title")
	projectsCreateCmd.Flags().String("description", "", "what the project is about")
	projectsCreateCmd.Flags().StringSlice("tags", nil, "comma separated tags")
	projectsCreateCmd.Flags().String("repo", "", "repository URL")

	groupsCmd.AddCommand(groupsListCmd, groupsCreateCmd, groupsJoinCmd)
	groupsCreateCmd.Flags().String("name", "", "group name")
	groupsCreateCmd.Flags().String("description", "", "group description")
	groupsCreateCmd.Flags().String("project", "", "project id the group works on")
	groupsCreateCmd.Flags().Int("max-members", 0, "member limit (0 for none)")

	communitiesCmd.AddCommand(communitiesListCmd, communitiesCreateCmd)
	communitiesListCmd.Flags().String("query", "", "match name, description or topic")
	communitiesCreateCmd.Flags().String("name", "", "community name")
	communitiesCreateCmd.Flags().String("description", "", "community description")
	communitiesCreateCmd.Flags().String("topic", "", "topic")

	mentorsCmd.AddCommand(mentorsListCmd, mentorsBecomeCmd)
	mentorsListCmd.Flags().String("query", "", "match name, college or bio")
	mentorsListCmd.Flags().String("skill", "", "only mentors with this skill")

	mentorshipCmd.AddCommand(mentorshipSessionsCmd)
	mentorshipSessionsCmd.Flags().Bool("mine", false, "only sessions you mentor or attend")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	dashboard, err := newDashboard(a)
	if err != nil {
		return err
	}
	if err := dashboard.Load(cmd.Context()); err != nil {
		return err
	}

	if user := a.manager.CurrentUser(); user != nil {
		a.printer.Info("Signed in as %s", user.DisplayName())
	}

	sections := []struct {
		title   string
		section portal.Section
		render  func() error
	}{
		{"Projects", portal.SectionProjects, func() error { return renderProjects(a, dashboard.Projects()) }},
		{"Clubs", portal.SectionClubs, func() error { return renderClubs(a, dashboard.Clubs()) }},
		{"Communities", portal.SectionCommunities, func() error { return renderCommunities(a, dashboard.Communities()) }},
		{"Project groups", portal.SectionGroups, func() error { return renderGroups(a, dashboard.Groups()) }},
		{"Mentorship sessions", portal.SectionSessions, func() error { return renderSessions(a, dashboard.Sessions()) }},
	}
	for _, s := range sections {
		a.printer.Header(s.title)
		if err := dashboard.Err(s.section); err != nil {
			a.printer.Error("%s", userMessage(err))
			continue
		}
		if err := s.render(); err != nil {
			return err
		}
	}
	return nil
}

func newDashboard(a *app) (*portal.Dashboard, error) {
	return portal.NewDashboard(a.collab, a.manager, portal.WithLogger(a.logger))
}

// userDashboard checks the session and returns an unloaded dashboard for a single mutation
func userDashboard(a *app) (*portal.Dashboard, error) {
	if _, err := a.requireUser(); err != nil {
		return nil, err
	}
	return newDashboard(a)
}

// find returns the entry of list with the given id
func find[T interface{ Key() ids.ID }](list []T, id ids.ID) (T, bool) {
	for _, item := range list {
		if ids.Equal(item.Key(), id) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// memberAction resolves the id argument of a join command and checks the session
func memberAction(arg string) (*app, ids.ID, error) {
	a, err := requireApp()
	if err != nil {
		return nil, "", err
	}
	if _, err := a.requireUser(); err != nil {
		return nil, "", err
	}
	id, err := parseID(arg)
	if err != nil {
		return nil, "", err
	}
	return a, id, nil
}

func renderTable(a *app, table interface {
	Len() int
	Render() error
}, empty string) error {
	if table.Len() == 0 {
		a.printer.Print("%s", a.printer.Dim(empty))
		return nil
	}
	return table.Render()
}

func renderProjects(a *app, projects []collab.Project) error {
	me := a.me()
	table := a.table("ID", "TITLE", "TAGS", "MEMBERS", "")
	for _, p := range projects {
		table.AddRow(p.ID.String(), p.Title, strings.Join(p.Tags, ", "), strconv.Itoa(len(p.Members)), a.printer.Badge(p.IsMember(me), "member"))
	}
	return renderTable(a, table, "no projects")
}

func renderClubs(a *app, clubs []collab.Club) error {
	me := a.me()
	table := a.table("ID", "NAME", "CATEGORY", "MEMBERS", "")
	for _, c := range clubs {
		table.AddRow(c.ID.String(), c.Name, orDash(c.Category), strconv.Itoa(len(c.Members)), a.printer.Badge(c.IsMember(me), "member"))
	}
	return renderTable(a, table, "no clubs")
}

func renderCommunities(a *app, communities []collab.Community) error {
	me := a.me()
	table := a.table("ID", "NAME", "TOPIC", "MEMBERS", "")
	for _, c := range communities {
		table.AddRow(c.ID.String(), c.Name, orDash(c.Topic), strconv.Itoa(len(c.Members)), a.printer.Badge(c.IsMember(me), "member"))
	}
	return renderTable(a, table, "no communities")
}

func renderGroups(a *app, groups []collab.ProjectGroup) error {
	me := a.me()
	table := a.table("ID", "NAME", "PROJECT", "SIZE", "")
	for _, g := range groups {
		table.AddRow(g.ID.String(), g.Name, orDash(g.Project.String()), groupSize(&g), a.printer.Badge(g.IsMember(me), "member"))
	}
	return renderTable(a, table, "no project groups")
}

func renderSessions(a *app, sessions []collab.MentorSession) error {
	table := a.table("ID", "TOPIC", "WHEN", "STATUS", "MENTOR")
	for _, s := range sessions {
		table.AddRow(s.ID.String(), s.Topic, formatTime(s.ScheduledAt), orDash(s.Status), s.Mentor.String())
	}
	return renderTable(a, table, "no mentorship sessions")
}

func groupSize(g *collab.ProjectGroup) string {
	size := strconv.Itoa(len(g.Members))
	if g.MaxMembers > 0 {
		size += "/" + strconv.Itoa(g.MaxMembers)
	}
	if g.Full() {
		size += " full"
	}
	return size
}
