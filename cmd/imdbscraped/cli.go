package main

import (
	"time"

	imdbhttp "github.com/fwojciec/imdbscrape/http"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Port      string        `arg:"" optional:"" help:"TCP port to listen on (default: 3000)"`
	Timeout   time.Duration `short:"t" default:"10s" help:"Timeout for fetching a title page"`
	Render    bool          `short:"r" help:"Render pages in headless Chrome before extracting"`
	UserAgent string        `name:"user-agent" help:"User-Agent sent when fetching title pages"`
	Lang      string        `short:"l" default:"${lang}" help:"Accept-Language sent when fetching title pages"`
	Label     []string      `name:"label" short:"L" placeholder:"FIELD=CAPTION" help:"Extra caption for Genre, Rating or Duration, e.g. Genre=Genere (repeatable)"`
	Debug     bool          `short:"d" help:"Enable debug logging"`
}

// vars are interpolated into the CLI struct tags.
var vars = map[string]string{
	"lang": imdbhttp.DefaultAcceptLanguage,
}
