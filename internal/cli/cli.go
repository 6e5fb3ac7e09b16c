package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rvik/scraptf-autoenter/internal/bot"
	"github.com/rvik/scraptf-autoenter/internal/browser"
	"github.com/rvik/scraptf-autoenter/internal/config"
	"github.com/rvik/scraptf-autoenter/internal/logger"
	"github.com/rvik/scraptf-autoenter/internal/scraptf"
	"github.com/rvik/scraptf-autoenter/internal/session"
	"github.com/rvik/scraptf-autoenter/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagCookies  string
	flagUAFile   string
	flagRandomUA bool
	flagDelay    time.Duration
	flagInterval time.Duration
	flagDataDir  string
	flagBaseURL  string
	flagOnce     bool
	flagDryRun   bool
	flagVerbose  bool
	flagJSONLogs bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scraptf-autoenter",
		Short: "Automatically enter open scrap.tf raffles",
		Long: `Enters every open scrap.tf raffle the logged-in account hasn't joined yet.
Credentials come from a browser cookie export (cookies.txt); the bot walks the
public raffle listing and submits one entry per unentered raffle, oldest
first, then sleeps and repeats until interrupted.`,
		SilenceUsage: true,
		RunE:         runBot,
	}

	// Define flags
	cmd.Flags().StringVar(&flagConfig, "config", "", "Config file (default: ./config.json if present)")
	cmd.Flags().StringVar(&flagCookies, "cookies", session.DefaultCookiesPath, "Cookie export file (Netscape format)")
	cmd.Flags().StringVar(&flagUAFile, "user-agent-file", session.DefaultUserAgentPath, "File holding the User-Agent header value")
	cmd.Flags().BoolVar(&flagRandomUA, "random-user-agent", false, "Use a randomized Chrome user agent")
	cmd.Flags().DurationVar(&flagDelay, "delay", config.DefaultEntryDelay, "Delay between entry submissions")
	cmd.Flags().DurationVar(&flagInterval, "interval", config.DefaultLoopInterval, "Delay between passes over the listing")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", config.DefaultDataDir, "Data directory for run reports")
	cmd.Flags().StringVar(&flagBaseURL, "base-url", scraptf.DefaultBaseURL, "Site base URL")
	cmd.Flags().BoolVar(&flagOnce, "once", false, "Make a single pass and exit")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Show what would be entered without submitting")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	cmd.Flags().BoolVar(&flagJSONLogs, "json-logs", false, "Emit logs as JSON instead of console text")

	return cmd
}

// runBot is the main command logic
func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	log := logger.New(level, os.Stderr, flagJSONLogs)
	logger.SetDefault(log)

	// Credentials load before anything touches the network; a missing or
	// empty cookie file is fatal here.
	sess, err := session.Load(cfg.CookiesPath, cfg.UserAgentPath)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if cfg.RandomUserAgent {
		sess.UserAgent = session.RandomUserAgent()
	}
	log.Info("session loaded", logger.Fields{
		"cookies":    len(sess.Cookies),
		"user_agent": sess.UserAgent,
	})

	br, err := browser.New(cfg.BaseURL, sess)
	if err != nil {
		return fmt.Errorf("building browser: %w", err)
	}
	client := scraptf.NewClient(br)

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	var submitter bot.Submitter = client
	if flagDryRun {
		log.Info("dry run: no entries will be submitted", nil)
		submitter = bot.NewDryRunSubmitter(log)
	}

	b := bot.New(bot.Options{
		Client:       client,
		Submitter:    submitter,
		Session:      sess,
		Browser:      br,
		Store:        store,
		Log:          log,
		EntryDelay:   cfg.EntryDelay,
		LoopInterval: cfg.LoopInterval,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagOnce {
		return b.RunOnce(ctx)
	}
	return b.Run(ctx)
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("cookies") {
		cfg.CookiesPath = flagCookies
	}
	if cmd.Flags().Changed("user-agent-file") {
		cfg.UserAgentPath = flagUAFile
	}
	if cmd.Flags().Changed("random-user-agent") {
		cfg.RandomUserAgent = flagRandomUA
	}
	if cmd.Flags().Changed("delay") {
		cfg.EntryDelay = flagDelay
	}
	if cmd.Flags().Changed("interval") {
		cfg.LoopInterval = flagInterval
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = flagBaseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
