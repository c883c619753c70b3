package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ncanzani/salesdeck/internal/backend"
	"github.com/ncanzani/salesdeck/internal/export"
)

func pageFlags(cmd *cobra.Command) (page, pageSize int, err error) {
	page, _ = cmd.Flags().GetInt("page")
	pageSize, _ = cmd.Flags().GetInt("page-size")
	if page < 1 {
		return 0, 0, fmt.Errorf("--page must be a positive integer")
	}
	if pageSize < 1 {
		return 0, 0, fmt.Errorf("--page-size must be a positive integer")
	}
	return page, pageSize, nil
}

// truncate shortens s to at most n runes. Messages are often Spanish, so
// cutting on byte offsets could split a multibyte character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func printPageFooter[T any](p backend.Page[T]) {
	last := backend.LastPage(p.Total, p.PageSize)
	nav := ""
	if p.HasPrev() {
		nav += "  ← --page " + fmt.Sprint(p.Page-1)
	}
	if p.HasNext() {
		nav += "  → --page " + fmt.Sprint(p.Page+1)
	}
	printStep("page %d of %d (%d total)%s", p.Page, last, p.Total, nav)
}

// --- conversations ---

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List WhatsApp conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, pageSize, err := pageFlags(cmd)
		if err != nil {
			return err
		}

		client, _, err := newConsoleClient()
		if err != nil {
			return err
		}

		p, err := client.Conversations(cmd.Context(), page, pageSize)
		if err != nil {
			return friendly(err)
		}

		if len(p.Items) == 0 {
			cmd.Println("No conversations on this page.")
			printPageFooter(p)
			return nil
		}

		for _, c := range p.Items {
			last := ""
			if n := len(c.Messages); n > 0 {
				last = truncate(c.Messages[n-1].Content, 60)
			}
			cmd.Printf("%s  %-16s %-14s %-8s %s\n",
				colorize(colorCyan, c.ID),
				c.Phone,
				orDash(c.ContactName),
				c.Status,
				orDash(last),
			)
		}
		printPageFooter(p)
		return nil
	},
}

// --- leads ---

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List sales leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, pageSize, err := pageFlags(cmd)
		if err != nil {
			return err
		}

		client, _, err := newConsoleClient()
		if err != nil {
			return err
		}

		p, err := client.Leads(cmd.Context(), page, pageSize)
		if err != nil {
			return friendly(err)
		}

		if len(p.Items) == 0 {
			cmd.Println("No leads on this page.")
			printPageFooter(p)
			return nil
		}

		for _, l := range p.Items {
			cmd.Printf("%s  %-16s %-14s %-10s %-20s %s\n",
				colorize(colorCyan, l.ID),
				l.Phone,
				orDash(l.ContactName),
				export.StageLabel(l.Stage),
				orDash(l.Interest),
				l.CreatedAt.Format(time.RFC3339),
			)
		}
		printPageFooter(p)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{conversationsCmd, leadsCmd} {
		cmd.Flags().Int("page", 1, "1-based page index")
		cmd.Flags().Int("page-size", 20, "records per page")
	}
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export backend records to files",
}

var exportLeadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Export all leads as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		client, _, err := newConsoleClient()
		if err != nil {
			return err
		}

		leads, err := client.AllLeads(cmd.Context(), pageSize)
		if err != nil {
			return friendly(err)
		}

		csv := export.LeadsCSV(leads)
		if output == "" {
			cmd.Print(csv)
			return nil
		}
		if err := os.WriteFile(output, []byte(csv), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		printSuccess("Exported %d lead(s) to %s", len(leads), output)
		return nil
	},
}

func init() {
	exportLeadsCmd.Flags().String("output", "", "write CSV to this file instead of stdout")
	exportLeadsCmd.Flags().Int("page-size", 100, "page size used while fetching")
	exportCmd.AddCommand(exportLeadsCmd)
}
