package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kjannette/coinchat/internal/api"
	"github.com/kjannette/coinchat/internal/chat"
	"github.com/kjannette/coinchat/internal/config"
	"github.com/kjannette/coinchat/internal/dispatch"
	"github.com/kjannette/coinchat/internal/external"
	"github.com/kjannette/coinchat/internal/httputil"
	"github.com/kjannette/coinchat/internal/lexicon"
	"github.com/kjannette/coinchat/internal/logging"
	"github.com/kjannette/coinchat/internal/notifications"
	"github.com/kjannette/coinchat/internal/parser"
	"github.com/kjannette/coinchat/internal/portfolio"
	"github.com/kjannette/coinchat/internal/response"
)

const banner = `
╔══════════════════════════════════════╗
║          CoinChat backend            ║
╚══════════════════════════════════════╝
`

// app holds the components shared by every subcommand.
type app struct {
	cfg      *config.Config
	log      *logging.Logger
	gateway  *external.CoinGeckoClient
	store    *portfolio.MemoryStore
	chat     *chat.Service
	notifier *notifications.Sender
}

func newRootCmd() *cobra.Command {
	var configPath string
	a := &app{}

	root := &cobra.Command{
		Use:           "coinchat",
		Short:         "Crypto chat backend",
		Long:          "CoinChat answers free-form questions about crypto prices, trending coins and a per-session portfolio.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.serve()
			},
		},
		newAskCmd(a),
		newLexiconCmd(a),
	)
	return root
}

func (a *app) init(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	format, _ := logging.ParseFormat(cfg.LogFormat)
	logging.SetDefault(logging.New(nil, level, format))

	lex, err := lexicon.Load(cfg.LexiconFile)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logging.Component("main")
	a.gateway = external.NewCoinGeckoClient(external.Options{
		BaseURL:    cfg.CoinGeckoBaseURL,
		APIKey:     cfg.CoinGeckoAPIKey,
		VsCurrency: cfg.VsCurrency,
		Timeout:    cfg.UpstreamTimeout(),
		Retry: httputil.RetryConfig{
			MaxAttempts: cfg.UpstreamMaxAttempts,
			BaseDelay:   time.Second,
			MaxDelay:    5 * time.Second,
		},
	})
	a.store = portfolio.NewMemoryStore()
	a.notifier = notifications.NewSender(cfg.WebhookURL, cfg.BotName)
	a.chat = chat.NewService(
		parser.New(lex),
		dispatch.New(a.gateway, a.store),
		response.New(response.Options{Symbol: a.gateway.Symbol()}),
		a.notifier,
	)
	return nil
}

func (a *app) serve() error {
	fmt.Print(banner)
	a.cfg.Print(a.log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(api.Options{
		Addr:            a.cfg.Addr(),
		CORSAllowOrigin: a.cfg.CORSAllowOrigin,
		ChatInterval:    a.cfg.RateLimitDelay(),
	}, a.chat, a.store, a.gateway)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	a.log.Infof("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.WithError(err).Errorf("shutdown error")
	}
	a.log.Infof("Shutdown complete")
	return nil
}

func newAskCmd(a *app) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "ask MESSAGE...",
		Short: "Run one message through the chat pipeline and print the reply JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.chat.Handle(cmd.Context(), strings.Join(args, " "), sessionID)
			if err != nil && !errors.Is(err, chat.ErrServerError) {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "cli", "portfolio session id")
	return cmd
}

func newLexiconCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Manage coin aliases",
	}

	var out string
	sync := &cobra.Command{
		Use:   "sync",
		Short: "Write an alias file from the upstream coin list",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			listings, err := a.gateway.ListCoins(ctx)
			if err != nil {
				return err
			}
			aliases := lexicon.FromListings(listings)
			if err := lexicon.Write(out, aliases); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d aliases for %d coins to %s\n", len(aliases), len(listings), out)
			return nil
		},
	}
	sync.Flags().StringVar(&out, "out", "coin-aliases.yaml", "output file")
	cmd.AddCommand(sync)
	return cmd
}
