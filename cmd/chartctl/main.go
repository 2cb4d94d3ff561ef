package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"github.com/codegangsta/chartbot/internal/birthdays"
	"github.com/codegangsta/chartbot/internal/catalog"
	"github.com/codegangsta/chartbot/internal/chart"
	"github.com/codegangsta/chartbot/internal/commands"
	"github.com/codegangsta/chartbot/internal/config"
	"github.com/codegangsta/chartbot/internal/dates"
	"github.com/codegangsta/chartbot/internal/ledger"
	"github.com/codegangsta/chartbot/internal/replies"
	"github.com/codegangsta/chartbot/internal/songs"
	"github.com/codegangsta/chartbot/internal/types"
)

const usage = `usage: chartctl [-config path] [-log-level level] <command> [args]

commands:
  lookup DATE     resolve the number one song of DATE
  classify TEXT   show how a mention would be understood
  birthdays       list registered birthdays
  ledger          show answered mention counts and poll cursors
`

func main() {
	configPath := flag.String("config", "", "path to config file")
	level := flag.String("log-level", "ERROR", "log level (DEBUG, INFO, WARN, ERROR)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := logs.GetLoggerFromString(*level)
	args := flag.Args()
	text := strings.Join(args[1:], " ")

	var err error
	switch args[0] {
	case "classify":
		err = classify(text)
	case "lookup":
		err = withConfig(*configPath, func(cfg *config.Config) error { return lookup(cfg, text, log) })
	case "birthdays":
		err = withConfig(*configPath, listBirthdays)
	case "ledger":
		err = withConfig(*configPath, showLedger)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed).Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func withConfig(path string, fn func(*config.Config) error) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	return fn(cfg)
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func classify(text string) error {
	classifier, err := commands.NewClassifier(commands.NewRouter())
	if err != nil {
		return err
	}
	cmd := classifier.Classify(types.InboundMessage{Platform: types.PlatformX, Text: text})

	date := ""
	if cmd.RawDate != "" {
		if d, err := dates.Extract(cmd.RawDate); err == nil {
			date = d.String()
		} else {
			date = color.New(color.FgYellow).Render("invalid")
		}
	}

	table := newTable("Command", "Raw date", "Date")
	table.Append([]string{cmd.Kind.String(), cmd.RawDate, date})
	table.Render()
	return nil
}

func lookup(cfg *config.Config, raw string, log *slog.Logger) error {
	d, err := dates.Extract(raw)
	if err != nil {
		return err
	}

	ctx := context.Background()
	resolver := songs.NewResolver(
		chart.NewBillboard(cfg.Chart.BaseURL, cfg.Chart.Timeout, log),
		catalog.NewSpotify(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, log),
		log,
	)
	res, err := resolver.Resolve(ctx, d)
	if err != nil {
		return err
	}

	composer, err := replies.NewComposer(cfg.Language, log)
	if err != nil {
		return err
	}

	status := color.New(color.FgGreen).Render("found")
	if !res.Found {
		status = color.New(color.FgYellow).Render("not found")
	}
	table := newTable("Date", "Status", "Song", "Artist", "Link")
	table.Append([]string{res.Date.String(), status, res.Song, res.Artist, res.Link})
	table.Render()

	fmt.Println()
	fmt.Println(composer.Compose(
		commands.Command{Kind: commands.SongLookup, RawDate: raw},
		replies.Outcome{Kind: replies.SongResolved, Resolution: res},
	))
	return nil
}

func listBirthdays(cfg *config.Config) error {
	store, err := birthdays.NewSQLite(cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background())
	if err != nil {
		return err
	}

	today := dates.FromTime(time.Now())
	table := newTable("Handle", "Birthday", "Age")
	for _, r := range records {
		table.Append([]string{"@" + r.Handle, r.Date.String(), strconv.Itoa(birthdays.Age(r.Date, today))})
	}
	table.Render()
	return nil
}

func showLedger(cfg *config.Config) error {
	l, err := ledger.Open(cfg.Storage.LedgerDir, cfg.Storage.LedgerRetention)
	if err != nil {
		return err
	}
	defer l.Close()

	table := newTable("Platform", "Answered", "Cursor")
	for _, p := range []types.Platform{types.PlatformTelegram, types.PlatformX} {
		count, err := l.Count(p)
		if err != nil {
			return err
		}
		cursor, err := l.Cursor(p)
		if err != nil {
			return err
		}
		table.Append([]string{string(p), strconv.Itoa(count), cursor})
	}
	table.Render()
	return nil
}
