package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jholhewres/coachbot/pkg/coachbot/channels/discord"
	"github.com/jholhewres/coachbot/pkg/coachbot/coach"
	"github.com/jholhewres/coachbot/pkg/coachbot/notes"
	"github.com/jholhewres/coachbot/pkg/coachbot/scheduler"
)

// newServeCmd creates the `coachbot serve` command that starts the daemon.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the check-in daemon",
		Long: `Start CoachBot as a daemon: connect to Discord, schedule the daily
check-ins, and process DM replies until interrupted.

Examples:
  coachbot serve
  coachbot serve --config ./config.yaml`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// ── Load config ──
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := coach.LoadConfig(configPath)
	if err != nil {
		return err
	}

	// ── Configure logger ──
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logLevel := slog.LevelInfo
	if verbose || cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	logger := slog.New(handler)

	// ── Resolve credentials and validate ──
	coach.ResolveBotToken(cfg, logger)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Wire components ──
	channel := discord.New(discord.Config{Token: cfg.Discord.Token}, logger)
	publisher := notes.New(cfg.Craft.APIURL, logger)
	bot := coach.New(cfg, channel, publisher, logger)

	morning, _ := scheduler.ParseClockTime(cfg.Schedule.Morning)
	evening, _ := scheduler.ParseClockTime(cfg.Schedule.Evening)
	sched := scheduler.New(cfg.Location(), morning, evening, bot.HandleFire, logger)
	bot.SetScheduler(sched)

	// ── Connect and run ──
	if err := channel.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to Discord: %w", err)
	}
	defer channel.Disconnect()

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	logger.Info("coachbot started",
		"user_id", cfg.Discord.UserID,
		"timezone", cfg.Timezone,
	)

	if err := bot.Run(ctx); err != nil {
		return err
	}

	logger.Info("shutdown requested")
	return nil
}
