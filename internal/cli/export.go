package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ping13/star-collector/internal/collector"
	"github.com/ping13/star-collector/internal/config"
	"github.com/ping13/star-collector/internal/feed"
	"github.com/ping13/star-collector/pkg/clients/mastodon"
	pkgconfig "github.com/ping13/star-collector/pkg/config"
	"github.com/ping13/star-collector/pkg/logging"
)

func newExportCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch favourites and bookmarks once and write the feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLoggerWithService("starctl")
			if !verbose {
				// Keep stderr quiet for pipeline use; warnings still show.
				logger.SetLevel(logging.WarnLevel)
			}
			pkgconfig.LoadEnv(logger)

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			client := mastodon.NewClient(cfg.InstanceBaseURL, cfg.AccessToken)
			source := collector.New(client, logger)

			var opts []feed.AssemblerOption
			if len(cfg.ExtraFeedURLs) > 0 {
				opts = append(opts, feed.WithExtraSources(feed.NewExtraSources(cfg.ExtraFeedURLs, cfg.ItemLimit, logger)))
			}
			assembler := feed.NewAssembler(cfg, source, logger, opts...)

			selfURL := cfg.SelfURL
			if selfURL == "" {
				selfURL = cfg.ChannelLink()
			}

			doc, err := assembler.Assemble(cmd.Context(), selfURL)
			if err != nil {
				return err
			}
			if len(doc.Channel.Items) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "Note: the feed is empty.")
			}

			body, err := doc.Render()
			if err != nil {
				return err
			}

			if outputPath == "" || outputPath == "-" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			return os.WriteFile(outputPath, body, 0o644)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the feed to this file instead of stdout")

	return cmd
}
