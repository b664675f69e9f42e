package storage

import (
	"context"

	"torrentbot/pkg/logx"
)

// SaveAsync saves p in the background. The returned channel yields the
// outcome exactly once and is then closed; failures are also logged.
func SaveAsync(ctx context.Context, s Store, p Preferences, log logx.Logger) <-chan error {
	out := make(chan error, 1)
	if s == nil {
		out <- ErrDisabled
		close(out)
		return out
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	// Copy so the caller may reuse its buffer right away.
	doc := append(Preferences(nil), p...)
	go func() {
		defer close(out)
		err := s.Save(ctx, doc)
		if err != nil {
			log.Warn("preferences save failed", logx.Err(err))
		}
		out <- err
	}()
	return out
}
