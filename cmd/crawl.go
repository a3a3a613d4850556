package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/twir-walkthroughs/internal/crawler"
	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

// newCrawlCmd creates the 'crawl' subcommand. It serves the archive from the
// store when one exists, crawls otherwise, and prints every article as a
// markdown list.
func newCrawlCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Collect walkthrough articles and print them as markdown",
		Long: `Loads the cached walkthrough archive, or crawls every This Week in Rust
issue when there is no cache, then prints each article as "- [title](link)".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			archive, err := loadArchive(cmd, appInstance, refresh)
			if err != nil {
				return err
			}
			if err := walkthrough.WriteMarkdown(cmd.OutOrStdout(), archive.Articles()); err != nil {
				return fmt.Errorf("print articles: %w", err)
			}
			appInstance.GetLogger().Info("Crawl command finished",
				zap.Int("issues", len(archive)),
				zap.Int("articles", len(archive.Articles())),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the stored archive and crawl again")
	return cmd
}

func loadArchive(cmd *cobra.Command, appInstance App, refresh bool) (walkthrough.Archive, error) {
	c := crawler.New(appInstance.Config().CrawlerSettings(), appInstance.GetFetcher(), appInstance.GetLogger())
	archive, err := c.LoadOrCrawl(cmd.Context(), appInstance.GetStore(), refresh)
	if err != nil {
		return nil, fmt.Errorf("collect walkthroughs: %w", err)
	}
	return archive, nil
}
