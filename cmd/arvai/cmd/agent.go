package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/arvai/internal/agent"
	"github.com/MrSnakeDoc/arvai/internal/domain"
	"github.com/MrSnakeDoc/arvai/internal/kv"
	"github.com/MrSnakeDoc/arvai/internal/library"
	"github.com/MrSnakeDoc/arvai/internal/logger"
	"github.com/MrSnakeDoc/arvai/internal/scheduler"
	"github.com/MrSnakeDoc/arvai/internal/version"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the extension background as a daemon",
	Long: `Serve extension messages on a unix socket (local.agent_socket) so the
status cache, tab icons and active tab outlive single commands.

When local.homepage_bookmarks or local.homepage_services is set the agent
also imports them at startup, every local.homepage_interval and on SIGHUP.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := sess.cfg, sess.log
		log.Infof("🚀 Starting arvai agent v%s", version.Version)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sweeper := scheduler.NewStatusSweeper(sess.bg.Cache(), log, cfg.Local.StatusSweepInterval)
		sweeper.Start(ctx)
		defer sweeper.Stop()

		if cfg.Local.HomepageBookmarks != "" || cfg.Local.HomepageServices != "" {
			importer, err := startHomepageImport(ctx, log)
			if err != nil {
				return err
			}
			defer importer.Stop()
		}

		srv := agent.NewServer(cfg.Local.AgentSocket, sess.router, log)
		if err := srv.Serve(ctx); err != nil {
			return fmt.Errorf("agent: %w", err)
		}

		log.Info("✅ agent stopped cleanly")
		return nil
	},
}

func startHomepageImport(ctx context.Context, log logger.Logger) (*scheduler.HomepageImporter, error) {
	cfg := sess.cfg

	trigger := make(chan struct{}, 1)
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		defer signal.Stop(hup)
		for {
			select {
			case <-hup:
				select {
				case trigger <- struct{}{}:
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	importer := scheduler.NewHomepageImporter(
		cfg.Local.HomepageBookmarks,
		cfg.Local.HomepageServices,
		snapshotImporter{store: sess.store, log: log},
		log,
		cfg.Local.HomepageInterval,
		trigger,
	)
	if err := importer.Start(ctx); err != nil {
		return nil, err
	}
	log.Info("homepage importer started",
		logger.String("bookmarks", cfg.Local.HomepageBookmarks),
		logger.String("services", cfg.Local.HomepageServices),
		logger.Duration("interval", cfg.Local.HomepageInterval))
	return importer, nil
}

// snapshotImporter reopens the library before each import: CLI commands
// rewrite the same snapshot while the agent runs.
type snapshotImporter struct {
	store kv.Store
	log   logger.Logger
}

func (s snapshotImporter) Import(ctx context.Context, forms []domain.BookmarkForm) (int, int, error) {
	return library.Open(ctx, s.store, s.log).Import(ctx, forms)
}

func init() {
	rootCmd.AddCommand(agentCmd)
}
