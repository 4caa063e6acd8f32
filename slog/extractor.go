package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/imdbscrape"
)

// Ensure LoggingExtractor implements imdbscrape.Extractor.
var _ imdbscrape.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   imdbscrape.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next imdbscrape.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs which fields were found.
func (e *LoggingExtractor) Extract(html string) (m *imdbscrape.Movie) {
	defer func(begin time.Time) {
		var missing []string
		for _, fv := range m.Fields() {
			if fv.Value == "" {
				missing = append(missing, fv.Field.Label())
			}
		}
		e.logger.Debug("extract",
			"bytes", len(html),
			"found", m.Found(),
			"missing", missing,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return e.next.Extract(html)
}
