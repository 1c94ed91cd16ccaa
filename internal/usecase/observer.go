package usecase

import (
	"context"
	"log/slog"

	"inquiry-backend/internal/domain"
)

// MultiObserver fans every event out to each observer in order
type MultiObserver []domain.Observer

func (m MultiObserver) OnTransition(a *domain.Attempt, from, to domain.SubmissionState) {
	for _, o := range m {
		o.OnTransition(a, from, to)
	}
}

func (m MultiObserver) OnFailure(a *domain.Attempt, f domain.Failure) {
	for _, o := range m {
		o.OnFailure(a, f)
	}
}

// LoggingObserver writes one structured record per event
type LoggingObserver struct {
	Log *slog.Logger
}

func (o LoggingObserver) OnTransition(a *domain.Attempt, from, to domain.SubmissionState) {
	o.Log.Info("inquiry state changed",
		"attempt_id", a.ID,
		"from", string(from),
		"to", string(to),
	)
}

func (o LoggingObserver) OnFailure(a *domain.Attempt, f domain.Failure) {
	level := slog.LevelInfo
	if f.Kind == domain.FailureDispatch || f.Kind == domain.FailureVerificationUnavailable {
		level = slog.LevelWarn
	}
	o.Log.Log(context.Background(), level, "inquiry attempt failed",
		"attempt_id", a.ID,
		"kind", string(f.Kind),
		"field", f.Field,
		"detail", f.Detail,
	)
}
