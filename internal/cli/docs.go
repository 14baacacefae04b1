package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/studyhub/portal/internal/output"
	"github.com/studyhub/portal/portal"
	"github.com/studyhub/portal/resources"
)

var docsCmd = &cobra.Command{Use: "docs", Short: "Shared study resources"}

var docsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently shared documents",
	Long: `List recently shared documents. The filters match case-insensitively.

Example:
  portal docs recent --branch cse --type question_paper`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, hub, err := resourceHub()
		if err != nil {
			return err
		}
		if err := hub.Load(cmd.Context()); err != nil {
			return err
		}

		var filter portal.DocumentFilter
		filter.Query, _ = cmd.Flags().GetString("query")
		filter.College, _ = cmd.Flags().GetString("college")
		filter.Branch, _ = cmd.Flags().GetString("branch")
		kind, _ := cmd.Flags().GetString("type")
		filter.ResourceType = resources.ResourceType(kind)

		me := a.me()
		table := a.table("ID", "TITLE", "TYPE", "COLLEGE", "BRANCH", "SHARED", "")
		for _, d := range hub.Documents(filter) {
			table.AddRow(d.ID.String(), output.Truncate(d.Title, 48), orDash(string(d.ResourceType)),
				orDash(d.College), orDash(d.Branch), formatTime(d.CreatedAt), a.printer.Badge(d.OwnedBy(me), "yours"))
		}
		return renderTable(a, table, "no documents")
	},
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Share a document",
	Long: `Upload a document to the resource hub. The file type and size are checked
before anything is sent.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, hub, err := resourceHub()
		if err != nil {
			return err
		}
		if _, err := a.requireUser(); err != nil {
			return err
		}

		form := &resources.UploadForm{}
		form.Title, _ = cmd.Flags().GetString("title")
		form.Description, _ = cmd.Flags().GetString("description")
		form.College, _ = cmd.Flags().GetString("college")
		form.Branch, _ = cmd.Flags().GetString("branch")
		kind, _ := cmd.Flags().GetString("type")
		form.ResourceType = resources.ResourceType(kind)

		file, err := form.OpenFile(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		doc, err := hub.Upload(cmd.Context(), form)
		if err != nil {
			return err
		}
		a.printer.Success("uploaded %s (id %s)", doc.Title, doc.ID)
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document you shared",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, hub, err := resourceHub()
		if err != nil {
			return err
		}
		if _, err := a.requireUser(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := hub.Delete(cmd.Context(), id); err != nil {
			return err
		}
		a.printer.Success("deleted document %s", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsRecentCmd, docsUploadCmd, docsDeleteCmd)

	docsRecentCmd.Flags().String("query", "", "match title or description")
	docsRecentCmd.Flags().String("college", "", "only this college")
	docsRecentCmd.Flags().String("branch", "", "only this branch")
	docsRecentCmd.Flags().String("type", "", "only this resource type")

	docsUploadCmd.Flags().String("title", "", "document title")
	docsUploadCmd.Flags().String("description", "", "what the document covers")
	docsUploadCmd.Flags().String("college", "", "college")
	docsUploadCmd.Flags().String("branch", "", "branch")
	docsUploadCmd.Flags().String("type", string(resources.TypeNotes), "resource type: "+resourceTypeNames())
}

func resourceHub() (*app, *portal.ResourceHub, error) {
	a, err := requireApp()
	if err != nil {
		return nil, nil, err
	}
	hub, err := portal.NewResourceHub(a.documents, a.manager)
	if err != nil {
		return nil, nil, err
	}
	return a, hub, nil
}

func resourceTypeNames() string {
	names := make([]string, 0, len(resources.ResourceTypes))
	for _, t := range resources.ResourceTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
