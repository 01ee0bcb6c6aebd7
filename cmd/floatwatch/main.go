package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"floatwatch/internal/app"
	"floatwatch/internal/config"
	"floatwatch/internal/domain"
	"floatwatch/internal/service"
	"floatwatch/internal/snapshotlog"
	"floatwatch/pkg/logging"
	"floatwatch/pkg/tracing"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type snapshotter interface {
	Resolve(ctx context.Context, req service.SnapshotRequest) (*domain.Snapshot, error)
	DepthQuote(ctx context.Context, req service.SnapshotRequest, pages int) (*domain.DepthQuote, error)
	Close() error
}

var (
	loadEnvFunc     = godotenv.Load
	loadConfigFunc  = config.Load
	initTracerFunc  = tracing.InitLocalTracer
	newResolverFunc = func(ctx context.Context, cfg *config.Config, tracer trace.Tracer, logger *logrus.Logger) (snapshotter, error) {
		return app.NewResolver(ctx, cfg, tracer, logger)
	}
	exportXLSXFunc = snapshotlog.ExportXLSX
)

var (
	labelStyle  = lipgloss.NewStyle().Bold(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	noteStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

type options struct {
	snapshot   string
	wear       domain.WearKey
	category   domain.Category
	debug      bool
	probe      bool
	depth      int
	exportXLSX string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	var wear, category string

	fs := flag.NewFlagSet("floatwatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Fetch current CSFloat snapshot (lowest ask, highest bid, 24h sales).")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.snapshot, "snapshot", "", "base item name, e.g. 'AK-47 | Redline' (defaults to DEFAULT_ITEM)")
	fs.StringVar(&wear, "wear", "", "wear tier: fn, mw, ft, ww or bs (skins, knives and gloves only)")
	fs.StringVar(&category, "category", "", "item type: normal, stattrak or souvenir")
	fs.BoolVar(&opts.debug, "debug", false, "verbose debug output")
	fs.BoolVar(&opts.probe, "probe", false, "print the result without writing logs")
	fs.IntVar(&opts.depth, "depth", 0, "also scan N pages of listings for a depth quote")
	fs.StringVar(&opts.exportXLSX, "export-xlsx", "", "convert the snapshot history CSV to an XLSX workbook at PATH and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	var err error
	if opts.wear, err = domain.ParseWear(wear); err != nil {
		return opts, err
	}
	if opts.category, err = domain.ParseCategory(category); err != nil {
		return opts, err
	}
	if opts.depth < 0 {
		return opts, errors.New("--depth must not be negative")
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	_ = loadEnvFunc()

	opts, err := parseArgs(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, errorStyle.Render("ERROR:"), err)
		return exitUsage
	}

	cfg := loadConfigFunc()

	if opts.exportXLSX != "" {
		n, err := exportXLSXFunc(cfg.SnapshotHistoryPath, opts.exportXLSX)
		if err != nil {
			fmt.Fprintln(stderr, errorStyle.Render("ERROR:"), err)
			return exitFailure
		}
		fmt.Fprintf(stdout, "Exported %d rows from %s to %s\n", n, cfg.SnapshotHistoryPath, opts.exportXLSX)
		return exitOK
	}

	if err := cfg.RequireAPIKey(); err != nil {
		fmt.Fprintln(stderr, errorStyle.Render("ERROR:"), "Missing CSFLOAT_API_KEY in .env")
		return exitUsage
	}

	item := opts.snapshot
	if item == "" {
		item = cfg.DefaultItem
	}

	logger := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Debug:  opts.debug,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, tracer, err := initTracerFunc(ctx, "floatwatch")
	if err != nil {
		fmt.Fprintln(stderr, errorStyle.Render("ERROR:"), "init tracer:", err)
		return exitFailure
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Warn("error shutting down tracer provider")
		}
	}()

	resolver, err := newResolverFunc(ctx, cfg, tracer, logger)
	if err != nil {
		fmt.Fprintln(stderr, errorStyle.Render("ERROR:"), err)
		if errors.Is(err, config.ErrMissingAPIKey) {
			return exitUsage
		}
		return exitFailure
	}
	defer resolver.Close()

	req := service.SnapshotRequest{BaseName: item, Wear: opts.wear, Category: opts.category}
	snap, err := resolver.Resolve(ctx, req)
	if err != nil {
		fmt.Fprintln(stderr, errorStyle.Render("ERROR:"), err)
		return exitFailure
	}
	printSnapshot(stdout, item, opts.wear, opts.category, snap, cfg.AnchorBufferPct)

	if opts.depth > 0 {
		quote, err := resolver.DepthQuote(ctx, req, opts.depth)
		if err != nil {
			logger.WithError(err).Warn("depth quote failed")
		} else {
			printDepth(stdout, quote)
		}
	}

	if !opts.probe {
		w := snapshotlog.NewWriter(cfg.SnapshotHistoryPath, cfg.SnapshotLatestPath)
		if err := w.Write(item, opts.wear, opts.category, snap); err != nil {
			fmt.Fprintln(stderr, errorStyle.Render("ERROR:"), err)
			return exitFailure
		}
		fmt.Fprintln(stdout, noteStyle.Render(fmt.Sprintf("Wrote logs -> %s (append), %s (overwrite)", w.HistoryPath(), w.LatestPath())))
	}
	return exitOK
}

func fmtMoney(v *float64) string {
	if v == nil {
		return "None"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

func printSnapshot(w io.Writer, item string, wear domain.WearKey, category domain.Category, snap *domain.Snapshot, anchorPct float64) {
	label := func(s string) string { return labelStyle.Render(s) }

	fmt.Fprintf(w, "%s %s\n", label("Item:"), titleStyle.Render(item))
	fmt.Fprintf(w, "%s %s\n", label("Market name:"), snap.MarketHashName)
	if snap.UsedNameVariant != "" {
		fmt.Fprintf(w, "%s %s\n", label("Matched via:"), snap.UsedNameVariant)
	}
	fmt.Fprintf(w, "%s %s  %s %s  %s %s\n",
		label("Wear:"), orAny(string(wear)),
		label("Category:"), orAny(string(category)),
		label("Source:"), sourceStyle.Render(snap.Source))

	ask := snap.LowestAsk
	fmt.Fprintf(w, "%s  %s   (id: %s)\n", label("Lowest ask:"), fmtMoney(&ask), snap.LowestAskID)

	qty := ""
	if snap.HighestBidQty != nil {
		qty = fmt.Sprintf("  (qty: %d)", *snap.HighestBidQty)
	}
	fmt.Fprintf(w, "%s %s%s\n", label("Highest bid:"), fmtMoney(snap.HighestBid), qty)

	fmt.Fprintf(w, "%s     %d\n", label("Vol 24h:"), snap.Vol24h)
	asp := snap.ASP24h
	fmt.Fprintf(w, "%s     %s\n", label("ASP 24h:"), fmtMoney(&asp))

	if anchorPct > 0 && snap.LowestAsk > 0 {
		anchor := snap.LowestAsk * (1 - anchorPct/100)
		fmt.Fprintf(w, "%s      %s  (ask - %.2f%%)\n", label("Anchor:"), fmtMoney(&anchor), anchorPct)
	}
	if !snap.IsFloatable {
		fmt.Fprintln(w, noteStyle.Render("Note: This item type has no float/wear values."))
	}
}

func printDepth(w io.Writer, q *domain.DepthQuote) {
	fmt.Fprintf(w, "%s %d listings over %d page(s)\n", labelStyle.Render("Depth:"), q.Count, q.Pages)
	if q.Count == 0 {
		return
	}
	fmt.Fprintf(w, "  min $%.2f  median $%.2f  trimmed mean $%.2f\n", q.Min, q.Median, q.TrimmedMean)
}
