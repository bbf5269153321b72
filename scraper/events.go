package scraper

import (
	"log/slog"

	"github.com/aluiziolira/go-book-parser/models"
)

// LogSink renders walk events as structured log lines. Failures log at warn
// level, added items at debug.
func LogSink(logger *slog.Logger) models.EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return func(e models.Event) {
		attrs := []any{slog.String("event", e.Kind.String())}
		if e.Page > 0 {
			attrs = append(attrs, slog.Int("page", e.Page))
		}

		switch e.Kind {
		case models.EventPageError, models.EventItemError:
			logger.Warn(e.Message, append(attrs, slog.Any("error", e.Err))...)
		case models.EventItemAdded:
			logger.Debug(e.Message, attrs...)
		case models.EventRunComplete:
			if e.Err != nil {
				attrs = append(attrs, slog.Any("error", e.Err))
			}
			logger.Info(e.Message, attrs...)
		default:
			if e.URL != "" {
				attrs = append(attrs, slog.String("url", e.URL))
			}
			logger.Info(e.Message, attrs...)
		}
	}
}
