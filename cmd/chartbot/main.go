package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/codegangsta/chartbot/internal/birthdays"
	"github.com/codegangsta/chartbot/internal/catalog"
	"github.com/codegangsta/chartbot/internal/chart"
	"github.com/codegangsta/chartbot/internal/commands"
	"github.com/codegangsta/chartbot/internal/config"
	"github.com/codegangsta/chartbot/internal/httpapi"
	"github.com/codegangsta/chartbot/internal/jobs"
	"github.com/codegangsta/chartbot/internal/ledger"
	"github.com/codegangsta/chartbot/internal/replies"
	"github.com/codegangsta/chartbot/internal/songs"
	"github.com/codegangsta/chartbot/internal/telegram"
	"github.com/codegangsta/chartbot/internal/twitter"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	greet := flag.Bool("greet", false, "post today's birthday greetings and exit")
	numberOne := flag.Bool("post-number-one", false, "post the number one song of a random date and exit")
	flag.Parse()

	if *configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get home directory: %v\n", err)
			os.Exit(1)
		}
		*configPath = homeDir + "/.config/chartbot/config.yaml"
		if _, err := os.Stat(*configPath); os.IsNotExist(err) {
			*configPath = ""
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	setupLogger(cfg)

	slog.Info("config loaded",
		"config", *configPath,
		"telegram", cfg.Telegram.Enabled,
		"x", cfg.X.Enabled,
		"language", cfg.Language,
		"debug", cfg.Debug,
	)

	if err := run(cfg, *greet, *numberOne); err != nil {
		slog.Error("chartbot stopped with error", "error", err)
		os.Exit(1)
	}
}

// run wires every component and either runs a one-shot job or serves until a signal arrives
func run(cfg *config.Config, greet, numberOne bool) error {
	log := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := birthdays.NewSQLite(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("opening birthday store: %w", err)
	}
	defer store.Close()

	composer, err := replies.NewComposer(cfg.Language, log)
	if err != nil {
		return fmt.Errorf("loading reply texts: %w", err)
	}

	billboard := chart.NewBillboard(cfg.Chart.BaseURL, cfg.Chart.Timeout, log)
	spotify := catalog.NewSpotify(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, log)
	resolver := songs.NewResolver(billboard, spotify, log)

	// Create platform clients
	var (
		bot       *telegram.Bot
		x         *twitter.Client
		publisher jobs.Broadcast
	)
	if cfg.Telegram.Enabled {
		bot, err = telegram.New(cfg.Telegram.Token, cfg.Telegram.Allowlist, cfg.Telegram.BroadcastChat, log)
		if err != nil {
			return fmt.Errorf("creating telegram bot: %w", err)
		}
		if cfg.Telegram.BroadcastChat != 0 {
			publisher = append(publisher, jobs.NamedPublisher{Name: "telegram", Publisher: bot})
		}
	}
	if cfg.X.Enabled {
		x = twitter.New(twitter.Credentials{
			APIKey:       cfg.X.APIKey,
			APISecret:    cfg.X.APISecret,
			AccessToken:  cfg.X.AccessToken,
			AccessSecret: cfg.X.AccessSecret,
		}, cfg.X.BaseURL, cfg.X.UserID, 30*time.Second, log)
		publisher = append(publisher, jobs.NamedPublisher{Name: "x", Publisher: x})
	}

	if greet {
		n, err := jobs.NewGreeter(store, publisher, composer, jobs.RealClock{}, log).Run(ctx)
		if err != nil {
			return err
		}
		slog.Info("birthday greetings posted", "count", n)
		return nil
	}
	if numberOne {
		rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
		d, err := jobs.NewNumberOne(resolver, publisher, composer, jobs.RealClock{}, rng, cfg.Jobs.NumberOneAttempts, log).Run(ctx)
		if err != nil {
			return err
		}
		slog.Info("number one posted", "date", d.String())
		return nil
	}

	answered, err := ledger.Open(cfg.Storage.LedgerDir, cfg.Storage.LedgerRetention)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer answered.Close()

	router := commands.NewRouter()
	classifier, err := commands.NewClassifier(router)
	if err != nil {
		return fmt.Errorf("building classifier: %w", err)
	}
	handler := replies.NewHandler(classifier, resolver, store, composer, log)

	var wg sync.WaitGroup
	errCh := make(chan error, 3)
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				errCh <- fmt.Errorf("%s: %w", name, err)
				stop()
			}
		}()
	}

	if bot != nil {
		bot.SetDispatcher(replies.NewDispatcher(handler, bot, answered, log.With("platform", "telegram")))
		start("telegram", bot.Start)
	}
	if x != nil {
		dispatcher := replies.NewDispatcher(handler, x, answered, log.With("platform", "x"))
		poller := twitter.NewPoller(x, dispatcher, answered, cfg.X.PollInterval, cfg.X.Lookback, log)
		start("x", poller.Start)
	}
	if cfg.HTTP.Addr != "" {
		start("http", httpapi.NewServer(cfg.HTTP.Addr, handler, store, log).Start)
	}

	slog.Info("chartbot started")
	<-ctx.Done()
	slog.Info("shutdown signal received")

	wg.Wait()
	close(errCh)
	if err, ok := <-errCh; ok {
		return err
	}
	slog.Info("chartbot stopped")
	return nil
}

// setupLogger configures slog based on config settings
func setupLogger(cfg *config.Config) {
	var level slog.Level
	if cfg.Debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelInfo
	}

	// Determine output destination
	var w io.Writer = os.Stdout
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		// Write to both stdout and file
		w = io.MultiWriter(os.Stdout, f)
	}

	opts := &slog.HandlerOptions{Level: level}
	handler := slog.NewTextHandler(w, opts)
	slog.SetDefault(slog.New(handler))
}
