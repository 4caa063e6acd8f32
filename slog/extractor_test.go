package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fwojciec/imdbscrape"
	"github.com/fwojciec/imdbscrape/mock"
	imdbslog "github.com/fwojciec/imdbscrape/slog"
	"github.com/stretchr/testify/assert"
)

func TestLoggingExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("logs found and missing fields", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		want := &imdbscrape.Movie{Title: "The Shawshank Redemption", Rating: "9.3"}
		inner := &mock.Extractor{
			ExtractFn: func(html string) *imdbscrape.Movie {
				return want
			},
		}

		extractor := imdbslog.NewLoggingExtractor(inner, logger)
		got := extractor.Extract("<html></html>")

		assert.Same(t, want, got)
		output := buf.String()
		assert.Contains(t, output, "msg=extract")
		assert.Contains(t, output, "bytes=13")
		assert.Contains(t, output, "found=2")
		assert.Contains(t, output, "missing=\"[Description Genre Duration]\"")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Extractor{
			ExtractFn: func(html string) *imdbscrape.Movie {
				return &imdbscrape.Movie{}
			},
		}

		imdbslog.NewLoggingExtractor(inner, logger).Extract("")

		assert.Empty(t, buf.String())
	})

	t.Run("tolerates nil movie", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.Extractor{
			ExtractFn: func(html string) *imdbscrape.Movie {
				return nil
			},
		}

		got := imdbslog.NewLoggingExtractor(inner, logger).Extract("")

		assert.Nil(t, got)
		assert.Contains(t, buf.String(), "found=0")
	})
}
