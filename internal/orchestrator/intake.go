package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/silverl/distill/internal/frontmatter"
	"github.com/silverl/distill/pkg/model"
)

// intakeArchive is the raw-items record persisted per date at
// intake/archive/<date>.json.
type intakeArchive struct {
	Date  string              `json:"date"`
	Items []model.ContentItem `json:"items"`
}

// digestFrontmatter heads the daily external-content digest markdown.
type digestFrontmatter struct {
	Date      string         `yaml:"date"`
	ItemCount int            `yaml:"item_count"`
	Sources   map[string]int `yaml:"sources"`
}

// WriteIntake persists each date's external content twice: the raw items
// at intake/archive/<date>.json and a human-readable digest at
// intake/digest-<date>.md. A date whose archived item-id set is
// unchanged is skipped entirely, keeping a re-run with no new inputs at
// zero writes. Returns the number of digests written.
func (o *Orchestrator) WriteIntake(ctx context.Context, items map[string][]model.ContentItem, force bool) (int, error) {
	dates := make([]string, 0, len(items))
	for date := range items {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	written := 0
	for _, date := range dates {
		dayItems := append([]model.ContentItem(nil), items[date]...)
		if len(dayItems) == 0 {
			continue
		}
		sort.Slice(dayItems, func(i, j int) bool { return dayItems[i].ID < dayItems[j].ID })

		archivePath := []string{"intake", "archive", date}
		if !force {
			var existing intakeArchive
			if err := o.storage.Get(ctx, archivePath, &existing); err == nil && sameItemIDs(existing.Items, dayItems) {
				continue
			}
		}

		if err := o.storage.Put(ctx, archivePath, intakeArchive{Date: date, Items: dayItems}); err != nil {
			return written, fmt.Errorf("orchestrator: archive intake for %s: %w", date, err)
		}

		digest, err := renderDigest(date, dayItems)
		if err != nil {
			return written, fmt.Errorf("orchestrator: render digest for %s: %w", date, err)
		}
		if err := o.storage.PutFile(ctx, fmt.Sprintf("intake/digest-%s.md", date), digest); err != nil {
			return written, fmt.Errorf("orchestrator: write digest for %s: %w", date, err)
		}
		written++
	}
	return written, nil
}

// renderDigest builds the digest markdown: items grouped by source, each
// with its title, link, and excerpt.
func renderDigest(date string, items []model.ContentItem) ([]byte, error) {
	sources := make(map[string]int)
	bySource := make(map[string][]model.ContentItem)
	for _, item := range items {
		src := string(item.Source)
		sources[src]++
		bySource[src] = append(bySource[src], item)
	}

	var sourceNames []string
	for src := range bySource {
		sourceNames = append(sourceNames, src)
	}
	sort.Strings(sourceNames)

	var b strings.Builder
	fmt.Fprintf(&b, "# Intake digest %s\n", date)
	for _, src := range sourceNames {
		fmt.Fprintf(&b, "\n## %s\n\n", src)
		for _, item := range bySource[src] {
			title := item.Title
			if title == "" {
				title = "(untitled)"
			}
			if item.URL != "" {
				fmt.Fprintf(&b, "- [%s](%s)", title, item.URL)
			} else {
				fmt.Fprintf(&b, "- %s", title)
			}
			if excerpt := digestExcerpt(item); excerpt != "" {
				fmt.Fprintf(&b, " — %s", excerpt)
			}
			b.WriteString("\n")
		}
	}

	meta := digestFrontmatter{Date: date, ItemCount: len(items), Sources: sources}
	return frontmatter.Render(meta, b.String())
}

func digestExcerpt(item model.ContentItem) string {
	excerpt := strings.TrimSpace(item.Excerpt)
	if excerpt == "" {
		excerpt = strings.TrimSpace(item.Body)
	}
	excerpt = strings.Join(strings.Fields(excerpt), " ")
	if len(excerpt) > 200 {
		excerpt = excerpt[:200] + "..."
	}
	return excerpt
}

func sameItemIDs(a, b []model.ContentItem) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[string]struct{}, len(a))
	for _, item := range a {
		ids[item.ID] = struct{}{}
	}
	for _, item := range b {
		if _, ok := ids[item.ID]; !ok {
			return false
		}
	}
	return true
}
