package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/imdbscrape"
	"github.com/fwojciec/imdbscrape/goquery"
	imdbhttp "github.com/fwojciec/imdbscrape/http"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Client    *imdbhttp.Client
	Converter imdbscrape.Converter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URL     string        `arg:"" optional:"" help:"IMDb title page URL, e.g. https://imdb.com/title/tt0111161"`
	Port    string        `short:"p" default:"3000" help:"Port of the imdbscraped server"`
	Host    string        `default:"127.0.0.1" help:"Host of the imdbscraped server"`
	Output  string        `short:"o" enum:"markdown,html,json" default:"markdown" help:"Output format (markdown, html, json)"`
	Timeout time.Duration `short:"t" default:"30s" help:"Timeout for the whole request"`
}

// ScrapeCmd sends one scrape request and prints the movie.
type ScrapeCmd struct {
	URL    string
	Output string
}

// Run executes the scrape.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	fragment, err := deps.Client.Scrape(deps.Ctx, c.URL)
	if err != nil {
		return err
	}

	switch c.Output {
	case "html":
		_, err = fmt.Fprintln(deps.Stdout, fragment)
		return err
	case "json":
		movie, err := goquery.ParseMovie(fragment)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(movie)
	default:
		md, err := deps.Converter.Convert(fragment)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(deps.Stdout, md)
		return err
	}
}
