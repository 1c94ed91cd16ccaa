package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inquiry-backend/internal/domain"
	"inquiry-backend/pkg/email"
	"inquiry-backend/pkg/validation"
)

// SequencerConfig holds the switches that used to be page-wide flags
type SequencerConfig struct {
	VerificationRequired bool
	RetryPolicy          domain.RetryPolicy
	// DispatchTimeout bounds a dispatch; the request context's cancellation does not
	DispatchTimeout time.Duration
	Now             func() time.Time
}

// Checkpoint persists an attempt mid-flow so readers can observe Submitting
type Checkpoint func(ctx context.Context, a *domain.Attempt) error

// Sequencer moves one attempt through idle -> (awaiting_verification) -> submitting -> succeeded|failed
type Sequencer struct {
	dispatcher domain.Dispatcher
	markers    domain.MarkerStore
	observer   domain.Observer
	checkpoint Checkpoint
	cfg        SequencerConfig
}

// NewSequencer creates a sequencer. markers, observer and checkpoint may be nil.
func NewSequencer(dispatcher domain.Dispatcher, markers domain.MarkerStore, observer domain.Observer, checkpoint Checkpoint, cfg SequencerConfig) *Sequencer {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RetryPolicy == "" {
		cfg.RetryPolicy = domain.ReverifyAfterFailure
	}
	if observer == nil {
		observer = MultiObserver{}
	}
	return &Sequencer{
		dispatcher: dispatcher,
		markers:    markers,
		observer:   observer,
		checkpoint: checkpoint,
		cfg:        cfg,
	}
}

// VerificationRequired reports whether dispatch is gated by the bot check
func (s *Sequencer) VerificationRequired() bool {
	return s.cfg.VerificationRequired
}

// Submit handles a click on the submit button
func (s *Sequencer) Submit(ctx context.Context, a *domain.Attempt, input domain.Inquiry) error {
	switch a.State {
	case domain.StateSubmitting:
		return domain.ErrDispatchInFlight
	case domain.StateAwaitingVerification:
		return domain.ErrInvalidTransition
	case domain.StateSucceeded, domain.StateFailed:
		s.transition(a, domain.StateIdle)
	}

	// keep what the visitor typed so a rejected form stays populated
	a.Input = input
	a.LastFailure = nil

	if fe := validation.ValidateForm(input); fe != nil {
		kind := domain.FailureInvalidFormat
		if fe.Reason == domain.OutcomeEmpty {
			kind = domain.FailureMissingField
		}
		s.fail(a, domain.Failure{Kind: kind, Field: fe.Field.Key(), MessageKey: fe.MessageKey()})
		return fe
	}
	a.Input = input.Trimmed()

	if s.cfg.VerificationRequired && !a.Verified {
		s.transition(a, domain.StateAwaitingVerification)
		return nil
	}

	return s.dispatch(ctx, a)
}

// Verified is the verification widget's completion callback
func (s *Sequencer) Verified(ctx context.Context, a *domain.Attempt, token string) error {
	if a.State != domain.StateAwaitingVerification {
		return domain.ErrInvalidTransition
	}
	a.Verified = true
	a.VerificationToken = token
	return s.dispatch(ctx, a)
}

// VerificationFailed records that the challenge could not be checked; the attempt keeps waiting
func (s *Sequencer) VerificationFailed(a *domain.Attempt, err error) error {
	if a.State != domain.StateAwaitingVerification {
		return domain.ErrInvalidTransition
	}
	key := "recaptcha.unavailable"
	if errors.Is(err, domain.ErrVerificationRejected) {
		key = "recaptcha.rejected"
	}
	s.fail(a, domain.Failure{Kind: domain.FailureVerificationUnavailable, Detail: err.Error(), MessageKey: key})
	return nil
}

// CancelVerification handles the verification modal being closed
func (s *Sequencer) CancelVerification(a *domain.Attempt) error {
	if a.State != domain.StateAwaitingVerification {
		return domain.ErrInvalidTransition
	}
	s.transition(a, domain.StateIdle)
	return nil
}

func (s *Sequencer) dispatch(ctx context.Context, a *domain.Attempt) error {
	s.transition(a, domain.StateSubmitting)
	if s.checkpoint != nil {
		if err := s.checkpoint(ctx, a); err != nil {
			// nothing was sent; leave the attempt retryable
			de := &domain.DispatchError{Reason: "submission could not be started", Err: fmt.Errorf("checkpoint attempt: %w", err)}
			s.failDispatch(a, domain.Failure{Kind: domain.FailureDispatch, Detail: err.Error(), MessageKey: "messages.error"})
			return de
		}
	}

	// once started, a dispatch runs to completion even if the visitor goes away
	dctx := context.WithoutCancel(ctx)
	if s.cfg.DispatchTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(dctx, s.cfg.DispatchTimeout)
		defer cancel()
	}

	now := s.cfg.Now()
	params := email.BuildTemplateParams(a.Input, now, a.VerificationToken)

	if err := s.dispatcher.Dispatch(dctx, params); err != nil {
		var de *domain.DispatchError
		if !errors.As(err, &de) {
			de = &domain.DispatchError{Reason: err.Error(), Err: err}
		}
		key := "messages.errorDetails"
		if errors.Is(de, domain.ErrDispatchUnconfigured) {
			key = "messages.unavailable"
		}
		s.failDispatch(a, domain.Failure{Kind: domain.FailureDispatch, Detail: de.Reason, MessageKey: key})
		return de
	}

	a.Input = domain.Inquiry{}
	s.resetVerification(a)
	s.transition(a, domain.StateSucceeded)

	if s.markers != nil && a.ClientID != "" {
		if err := s.markers.Mark(ctx, a.ClientID, now); err != nil {
			// the marker is a hint; a lost one only means the form is not auto-cleared
			return &MarkerError{Err: err}
		}
	}
	return nil
}

func (s *Sequencer) failDispatch(a *domain.Attempt, f domain.Failure) {
	if s.cfg.RetryPolicy != domain.KeepVerificationAfterFailure {
		s.resetVerification(a)
	}
	s.transition(a, domain.StateFailed)
	s.fail(a, f)
}

func (s *Sequencer) resetVerification(a *domain.Attempt) {
	a.Verified = false
	a.VerificationToken = ""
}

func (s *Sequencer) transition(a *domain.Attempt, to domain.SubmissionState) {
	from := a.State
	a.State = to
	if to == domain.StateIdle || to == domain.StateSubmitting {
		a.LastFailure = nil
	}
	a.UpdatedAt = s.cfg.Now()
	s.observer.OnTransition(a, from, to)
}

func (s *Sequencer) fail(a *domain.Attempt, f domain.Failure) {
	a.LastFailure = &f
	a.UpdatedAt = s.cfg.Now()
	s.observer.OnFailure(a, f)
}

// MarkerError reports that the dispatch succeeded but the marker could not be recorded
type MarkerError struct {
	Err error
}

func (e *MarkerError) Error() string {
	return "record submission marker: " + e.Err.Error()
}

func (e *MarkerError) Unwrap() error {
	return e.Err
}

// Control returns the submit button's label key and enabled flag for a state
func Control(state domain.SubmissionState) (labelKey string, enabled bool) {
	switch state {
	case domain.StateAwaitingVerification:
		return "form.completeVerification", false
	case domain.StateSubmitting:
		return "form.submitting", false
	default:
		return "form.submit", true
	}
}
