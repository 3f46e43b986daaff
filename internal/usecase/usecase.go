// Package usecase holds the progress and eligibility engine: the domain
// registry, progress tracker, reading/review ledger, eligibility evaluator
// and the article catalog built on top of them.
package usecase

import "log/slog"

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
