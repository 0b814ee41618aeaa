package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/audioctl/internal/catalog"
)

// CatalogSummary is the JSON form of catalog show.
type CatalogSummary struct {
	Path    string           `json:"path"`
	Mains   int              `json:"mains"`
	Effects int              `json:"effects"`
	Skipped []SkippedSection `json:"skipped"`
	Text    string           `json:"text"`
}

// SkippedSection is a section the parser ignored.
type SkippedSection struct {
	Section string `json:"section"`
	Reason  string `json:"reason"`
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Locate and inspect the learned catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the resolved catalog path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return f.Fail(err, nil)
			}
			return f.Success(map[string]any{"path": cfg.Catalog, "config": cfg.Source}, cfg.Catalog)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Parse the catalog and print its usable rules",
		Long: `Parse the catalog and print every usable rule in canonical form.
Sections the parser skipped are listed with the reason.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return f.Fail(err, nil)
			}
			cat, err := catalog.NewStore(cfg.Catalog, catalog.WithQuorumPolicy(cfg.QuorumPolicy())).Load()
			if err != nil {
				return f.Fail(err, nil)
			}
			summary := summarize(cfg.Catalog, cat)
			return f.Success(summary, showText(summary))
		},
	})
	return cmd
}

func summarize(path string, cat *catalog.Catalog) CatalogSummary {
	s := CatalogSummary{
		Path:    path,
		Mains:   len(cat.Mains),
		Effects: len(cat.Effects),
		Skipped: make([]SkippedSection, 0, len(cat.Skipped)),
		Text:    catalog.Format(cat),
	}
	for _, sk := range cat.Skipped {
		s.Skipped = append(s.Skipped, SkippedSection{Section: sk.Section, Reason: sk.Reason})
	}
	return s
}

func showText(s CatalogSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %d main, %d effect\n", s.Path, s.Mains, s.Effects)
	if s.Text != "" {
		b.WriteString("\n")
		b.WriteString(s.Text)
	}
	for _, sk := range s.Skipped {
		fmt.Fprintf(&b, "\n# skipped [%s]: %s", sk.Section, sk.Reason)
	}
	return strings.TrimRight(b.String(), "\n")
}
