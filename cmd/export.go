package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/twir-walkthroughs/internal/export"
)

// newExportCmd creates the 'export' subcommand.
func newExportCmd() *cobra.Command {
	var (
		refresh bool
		limit   int
		output  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download walkthrough articles and reduce them to text",
		Long: `Takes the walkthrough archive (crawling first if needed), drops videos and
ignored hosts, saves each remaining page under <output>/scrape and its text
under <output>/contents. Files that already exist are left alone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			archive, err := loadArchive(cmd, appInstance, refresh)
			if err != nil {
				return err
			}

			cfg := appInstance.Config().ExportSettings()
			if cmd.Flags().Changed("limit") {
				cfg.Limit = limit
			}
			if cmd.Flags().Changed("output") {
				cfg.OutputDir = output
			}

			exporter := export.New(cfg, appInstance.GetFetcher(), appInstance.GetLogger())
			res, err := exporter.Run(cmd.Context(), archive)
			if err != nil {
				return fmt.Errorf("export articles: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"selected %d, fetched %d, existing %d, failed %d, reduced %d\n",
				res.Selected, res.Fetched, res.Existing, res.Failed, res.Reduced)
			return err
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the stored archive and crawl again")
	cmd.Flags().IntVar(&limit, "limit", 0, "fetch at most this many articles (0 = all)")
	cmd.Flags().StringVar(&output, "output", "", "output directory (overrides export.output_dir)")
	return cmd
}
