package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/arvai/internal/agent"
	"github.com/MrSnakeDoc/arvai/internal/config"
	"github.com/MrSnakeDoc/arvai/internal/extension"
	"github.com/MrSnakeDoc/arvai/internal/kv"
	"github.com/MrSnakeDoc/arvai/internal/library"
	"github.com/MrSnakeDoc/arvai/internal/logger"
	"github.com/MrSnakeDoc/arvai/internal/utils"
	"github.com/MrSnakeDoc/arvai/internal/version"
)

var (
	configPath string
	verbose    bool
	jsonOutput bool

	sess *session
)

// session holds what one CLI invocation opened.
type session struct {
	cfg    *config.Config
	log    logger.Logger
	store  kv.Store
	lib    *library.Library
	conns  *extension.ConnectionManager
	bg     *extension.Background
	badges *extension.BadgeBoard
	router *extension.Router
	sender agent.Sender
}

var rootCmd = &cobra.Command{
	Use:   "arvai",
	Short: "Bookmark manager for the desktop and the browser",
	Long: `arvai manages a local bookmark library and talks to an Arvai kernel
the way the browser extension does.

Desktop commands (list, search, add, ...) work on the local library.
The ext commands drive the extension background, through the agent
when one is running and in-process otherwise.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		s, err := openSession(cmd.Context(), cmd.Name() == "agent")
		if err != nil {
			return err
		}
		sess = s
		return nil
	},
}

// Execute runs the root command
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	if sess != nil {
		sess.close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "arvai:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $ARVAI_CONFIG or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
}

func openSession(ctx context.Context, daemon bool) (*session, error) {
	if configPath != "" {
		if err := os.Setenv("ARVAI_CONFIG", configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// stdout belongs to command output, keep the logs quiet unless asked
	level := "warn"
	switch {
	case verbose:
		level = "debug"
	case daemon:
		level = cfg.Log.Level
	}
	log := logger.New(level, cfg.Log.Pretty)

	store, err := kv.Open(ctx, cfg.KVOptions(), log)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	clients := extension.HTTPClients(&http.Client{})
	conns := extension.NewConnectionManager(store, clients, log)
	badges := extension.NewBadgeBoard(log)
	bg := extension.NewBackground(extension.BackgroundConfig{
		Connections: conns,
		Cache:       extension.NewStatusCache(cfg.Local.StatusTTL, nil),
		Clients:     clients,
		Painter:     badges,
		Pages:       extension.NewPageFetcher(&http.Client{Timeout: cfg.Local.FetchTimeout}, "arvai/"+version.Version),
		Logger:      log,
	})

	return &session{
		cfg:    cfg,
		log:    log,
		store:  store,
		lib:    library.Open(ctx, store, log),
		conns:  conns,
		bg:     bg,
		badges: badges,
		router: extension.NewRouter(bg, badges, log),
	}, nil
}

// messenger returns the agent connection, or an in-process router when no
// agent listens on the socket.
func (s *session) messenger(ctx context.Context) agent.Sender {
	if s.sender != nil {
		return s.sender
	}
	c, err := agent.Dial(ctx, s.cfg.Local.AgentSocket)
	if err != nil {
		s.log.Debug("agent not reachable, handling messages in-process",
			logger.String("socket", s.cfg.Local.AgentSocket),
			logger.Error(err))
		s.sender = agent.NewLocal(s.router)
		return s.sender
	}
	s.log.Debug("connected to agent", logger.String("socket", s.cfg.Local.AgentSocket))
	s.sender = c
	return s.sender
}

func (s *session) send(ctx context.Context, msg extension.Message, out any) error {
	return s.messenger(ctx).Send(ctx, msg, out)
}

func (s *session) close() {
	if s.sender != nil {
		utils.CloseLogged(s.sender, s.log, "agent connection")
	}
	utils.CloseLogged(s.store, s.log, "local storage")
	_ = s.log.Sync()
}
