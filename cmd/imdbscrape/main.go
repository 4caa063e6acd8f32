package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/imdbscrape"
	"github.com/fwojciec/imdbscrape/htmltomarkdown"
	imdbhttp "github.com/fwojciec/imdbscrape/http"
)

// Port bounds accepted by the form.
const (
	MinPort = 1024
	MaxPort = 65536
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run validates the form and sends one scrape request to the server.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("imdbscrape"),
		kong.Description("Scrape an IMDb title page through an imdbscraped server"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
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

	if err := validateForm(cli.URL, cli.Port); err != nil {
		return err
	}

	client := imdbhttp.NewClient("http://" + net.JoinHostPort(cli.Host, cli.Port))
	client.HTTPClient.Timeout = cli.Timeout

	deps := &Dependencies{
		Ctx:       ctx,
		Stdout:    stdout,
		Stderr:    stderr,
		Client:    client,
		Converter: htmltomarkdown.NewConverter(),
	}

	cmd := &ScrapeCmd{
		URL:    cli.URL,
		Output: cli.Output,
	}
	return cmd.Run(deps)
}

// validateForm applies the local checks made before contacting the server.
func validateForm(url, port string) error {
	if url == "" {
		return imdbscrape.Errorf(imdbscrape.EINVALID, "a movie URL is required")
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return imdbscrape.Errorf(imdbscrape.EINVALID, "port %q is not a number", port)
	}
	if n < MinPort || n >= MaxPort {
		return imdbscrape.Errorf(imdbscrape.EINVALID, "port must be between %d and %d", MinPort, MaxPort-1)
	}
	return nil
}
