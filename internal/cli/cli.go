// Package cli implements the nextlive command line: serving the HTTP API,
// running a refresh by hand, and debugging the extractor against saved
// pages.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"nextlive/internal/config"
	"nextlive/internal/logger"
	"nextlive/internal/notifier"
	"nextlive/internal/refresher"
	"nextlive/internal/server"
	"nextlive/internal/storage"
	"nextlive/internal/ticketdive"
)

var (
	flagFormat string
	flagArtist string
	flagDryRun bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nextlive",
		Short: "Keep per-artist next-event records synced from TicketDive",
		Long: `nextlive scrapes TicketDive artist pages, extracts upcoming events and
keeps the nearest one per artist in the database. Configuration comes from
the environment (optionally overlaid by a YAML file via NEXTLIVE_CONFIG).`,
		SilenceUsage: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newRefreshCmd())
	root.AddCommand(newExtractCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyLogLevel(cfg)

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(store, buildRefresher(cfg, store), cfg.RefreshSecret)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(":" + cfg.Port) }()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				logger.Info("shutting down", logger.Fields{"signal": sig.String()})
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
}

func newRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh next events for all artists (or one with --artist)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyLogLevel(cfg)

			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ref := buildRefresher(cfg, store)

			if flagArtist != "" {
				return refreshOne(cmd, store, ref, flagArtist)
			}

			sum := ref.RefreshAll(cmd.Context())
			return writeJSONOrText(cmd, sum, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d/%d artists, %d failed\n",
					sum.Success, sum.Total, sum.Failed)
				for _, e := range sum.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", e)
				}
			})
		},
	}
	cmd.Flags().StringVar(&flagArtist, "artist", "", "Refresh a single artist by id")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Log announcements instead of posting them")
	return cmd
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract FILE",
		Short: "Run the event extractor over a saved HTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading page: %w", err)
			}

			candidates := ticketdive.ExtractEvents(string(data))
			return writeJSONOrText(cmd, candidates, func() {
				if len(candidates) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no candidates")
					return
				}
				for _, c := range candidates {
					fmt.Fprintf(cmd.OutOrStdout(), "%s | %s | %s | %s\n",
						c.Date, c.Name, c.Venue, c.URL)
				}
			})
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	return cmd
}

func refreshOne(cmd *cobra.Command, store *storage.Store, ref *refresher.Refresher, id string) error {
	artists, err := store.ListTicketDiveArtists(cmd.Context())
	if err != nil {
		return err
	}
	for _, a := range artists {
		if a.ID != id {
			continue
		}
		outcome := ref.Refresh(cmd.Context(), a)
		return writeJSONOrText(cmd, outcome, func() {
			if outcome.Success {
				fmt.Fprintf(cmd.OutOrStdout(), "ok: %d candidates\n", outcome.Count)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "failed: %s\n", outcome.Error)
			}
		})
	}
	return fmt.Errorf("artist %s not found or has no TicketDive id", id)
}

func openStore(ctx context.Context, cfg *config.Config) (*storage.Store, error) {
	store, err := storage.Open(cfg.DatabaseURL, cfg.DatabaseAuthToken)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func buildRefresher(cfg *config.Config, store *storage.Store) *refresher.Refresher {
	client := ticketdive.NewClient(cfg.TicketDiveBaseURL, cfg.HTTPTimeout)

	opts := []refresher.Option{
		refresher.WithBatch(cfg.BatchSize, cfg.BatchDelay),
	}

	switch {
	case flagDryRun:
		opts = append(opts, refresher.WithNotifier(notifier.NewDryRunNotifier()))
	default:
		creds := notifier.Credentials{
			APIKey:       cfg.Twitter.APIKey,
			APISecret:    cfg.Twitter.APISecret,
			AccessToken:  cfg.Twitter.AccessToken,
			AccessSecret: cfg.Twitter.AccessSecret,
		}
		if creds.Complete() {
			if tw, err := notifier.NewTwitterNotifier(creds); err == nil {
				opts = append(opts, refresher.WithNotifier(tw))
			} else {
				logger.Warn("twitter notifier disabled", logger.Fields{"err": err.Error()})
			}
		}
	}

	return refresher.New(client, store, opts...)
}

func applyLogLevel(cfg *config.Config) {
	logger.SetDefault(logger.New(logger.ParseLevel(cfg.LogLevel), os.Stdout))
}

func writeJSONOrText(cmd *cobra.Command, v interface{}, text func()) error {
	if flagFormat == "json" {
		return writeJSON(cmd.OutOrStdout(), v)
	}
	text()
	return nil
}
