package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/imdbscrape"
	"github.com/fwojciec/imdbscrape/goquery"
	imdbhttp "github.com/fwojciec/imdbscrape/http"
	"github.com/fwojciec/imdbscrape/rod"
	imdbslog "github.com/fwojciec/imdbscrape/slog"
)

// DefaultPort is used when no valid port argument is given.
const DefaultPort = 3000

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Fetcher replaces the fetcher built from flags. Set before calling Run().
	Fetcher imdbscrape.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run parses args and serves scrape requests until ctx is cancelled.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("imdbscraped"),
		kong.Description("Serve IMDb title page scraping over HTTP"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars(vars),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	if cli.Timeout <= 0 {
		return imdbscrape.Errorf(imdbscrape.EINVALID, "timeout must be positive, got %s", cli.Timeout)
	}
	extra, err := imdbscrape.ParseLabels(cli.Label)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	fetcher := m.Fetcher
	if fetcher == nil {
		if fetcher, err = newFetcher(cli); err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed to use --render")
			return fmt.Errorf("failed to start browser: %w", err)
		}
	}
	fetcher = imdbslog.NewLoggingFetcher(fetcher, logger)
	defer fetcher.Close()

	server := imdbhttp.NewServer()
	server.Addr = fmt.Sprintf(":%d", parsePort(cli.Port))
	server.Fetcher = fetcher
	server.FetchTimeout = cli.Timeout
	server.Extractor = imdbslog.NewLoggingExtractor(
		goquery.NewExtractor(goquery.WithLabels(imdbscrape.DefaultLabels().Merge(extra))),
		logger,
	)
	server.Logger = logger

	logger.Info("starting server", "addr", server.Addr, "render", cli.Render, "timeout", cli.Timeout)
	if err := server.Run(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newFetcher builds the plain HTTP fetcher, or the headless browser fetcher
// when rendering is requested.
func newFetcher(cli *CLI) (imdbscrape.Fetcher, error) {
	if cli.Render {
		return rod.NewFetcher(
			rod.WithFetchTimeout(cli.Timeout),
			rod.WithUserAgent(cli.UserAgent),
			rod.WithAcceptLanguage(cli.Lang),
		)
	}
	return imdbhttp.NewFetcher(
		imdbhttp.WithTimeout(cli.Timeout),
		imdbhttp.WithUserAgent(cli.UserAgent),
		imdbhttp.WithAcceptLanguage(cli.Lang),
	), nil
}

// parsePort returns the TCP port named by s, or DefaultPort if s is missing,
// not a number, or out of range.
func parsePort(s string) int {
	port, err := strconv.Atoi(s)
	if err != nil || port < 0 || port > 65535 {
		return DefaultPort
	}
	return port
}
