package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/folioworks/folio/internal/api"
	"github.com/folioworks/folio/internal/cache"
	"github.com/folioworks/folio/internal/model"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <projects|certificates|timeline|skills|messages>",
	Short: "List portfolio content",
	Long: `List portfolio content from the API.

Examples:
  folio list projects
  folio list skills
  folio list messages`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()
	entity := args[0]

	switch entity {
	case model.EntityProjects:
		result, err := listEntity[model.Project](ctx, a, entity)
		if err != nil {
			return err
		}
		printDegraded(result.Degraded)
		if len(result.Items) == 0 {
			fmt.Println("No projects.")
			return nil
		}
		fmt.Printf("\nProjects (%d)\n%s\n", len(result.Items), strings.Repeat("─", 60))
		for _, p := range result.Items {
			star := " "
			if p.Featured {
				star = "★"
			}
			fmt.Printf("  %s %-30s %s\n", star, truncate(p.Title, 30), strings.Join(p.Tech, ", "))
		}

	case model.EntityCertificates:
		result, err := listEntity[model.Certificate](ctx, a, entity)
		if err != nil {
			return err
		}
		printDegraded(result.Degraded)
		if len(result.Items) == 0 {
			fmt.Println("No certificates.")
			return nil
		}
		fmt.Printf("\nCertificates (%d)\n%s\n", len(result.Items), strings.Repeat("─", 60))
		for _, c := range result.Items {
			fmt.Printf("  %-34s %-18s %s\n", truncate(c.Title, 34), truncate(c.Issuer, 18), c.IssuedAt.Format("Jan 2006"))
		}

	case model.EntityTimeline:
		result, err := listEntity[model.TimelineItem](ctx, a, entity)
		if err != nil {
			return err
		}
		printDegraded(result.Degraded)
		if len(result.Items) == 0 {
			fmt.Println("No timeline entries.")
			return nil
		}
		fmt.Printf("\nTimeline (%d)\n%s\n", len(result.Items), strings.Repeat("─", 60))
		for _, t := range result.Items {
			end := "present"
			if t.EndDate != nil {
				end = t.EndDate.Format("Jan 2006")
			}
			fmt.Printf("  %s – %-8s  %-26s %s\n", t.StartDate.Format("Jan 2006"), end, truncate(t.Title, 26), t.Org)
		}

	case model.EntitySkills:
		result, err := listEntity[model.Skill](ctx, a, entity)
		if err != nil {
			return err
		}
		printDegraded(result.Degraded)
		if len(result.Items) == 0 {
			fmt.Println("No skills.")
			return nil
		}
		fmt.Printf("\nSkills (%d)\n%s\n", len(result.Items), strings.Repeat("─", 60))
		for _, s := range result.Items {
			bar := strings.Repeat("█", s.Level/10) + strings.Repeat("░", 10-s.Level/10)
			fmt.Printf("  %-22s %-14s %s %d%%\n", truncate(s.Name, 22), s.Category, bar, s.Level)
		}

	case model.EntityMessages:
		if !a.mgr.Authenticated() {
			return fmt.Errorf("the message inbox requires login: run 'folio auth login'")
		}
		result, err := api.List[model.ContactMessage](ctx, a.client, entity)
		if err != nil {
			return err
		}
		if len(result.Items) == 0 {
			fmt.Println("Inbox empty.")
			return nil
		}
		fmt.Printf("\nInbox (%d)\n%s\n", len(result.Items), strings.Repeat("─", 60))
		for _, msg := range result.Items {
			mark := "●"
			if msg.Read {
				mark = " "
			}
			fmt.Printf("  %s %-20s %-28s %s\n", mark, truncate(msg.Name, 20), truncate(msg.Subject, 28), msg.CreatedAt.Format(time.DateOnly))
		}

	default:
		return fmt.Errorf("unknown entity %q", entity)
	}

	return nil
}

// listEntity fetches an entity list, refreshing the local cache on a
// fresh result and serving the cached rows when the API is unreachable
// and the static fallback is missing too.
func listEntity[T any](ctx context.Context, a *app, entity string) (api.ListResult[T], error) {
	result, err := api.List[T](ctx, a.client, entity)
	if err == nil {
		if a.cache != nil && !result.Degraded {
			_ = cache.SaveItems(a.cache, entity, result.Items)
		}
		return result, nil
	}
	if a.cache != nil && errors.Is(err, api.ErrUnreachable) {
		if items, _, cerr := cache.LoadItems[T](a.cache, entity); cerr == nil {
			return api.ListResult[T]{Items: items, Degraded: true}, nil
		}
	}
	return result, err
}

func printDegraded(degraded bool) {
	if degraded {
		fmt.Println("⚠ API unreachable, showing fallback data")
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
