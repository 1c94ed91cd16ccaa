package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"inquiry-backend/internal/domain"
	"inquiry-backend/pkg/validation"

	"github.com/google/uuid"
)

// InquiryDeps wires the inquiry usecase
type InquiryDeps struct {
	Dispatcher domain.Dispatcher
	Verifier   domain.Verifier // nil when verification is disabled
	Attempts   domain.AttemptStore
	Markers    domain.MarkerStore
	Archive    domain.InquiryRepository // nil disables archiving
	Observer   domain.Observer
	Locale     validation.Translator
	Logger     *slog.Logger
	Config     SequencerConfig
}

type inquiryUsecase struct {
	seq      *Sequencer
	attempts domain.AttemptStore
	markers  domain.MarkerStore
	verifier domain.Verifier
	archive  domain.InquiryRepository
	locale   validation.Translator
	log      *slog.Logger
	now      func() time.Time
}

// NewInquiryUsecase creates the contact form usecase
func NewInquiryUsecase(deps InquiryDeps) domain.InquiryUsecase {
	if deps.Config.Now == nil {
		deps.Config.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Verifier == nil {
		deps.Config.VerificationRequired = false
	}

	uc := &inquiryUsecase{
		attempts: deps.Attempts,
		markers:  deps.Markers,
		verifier: deps.Verifier,
		archive:  deps.Archive,
		locale:   deps.Locale,
		log:      deps.Logger,
		now:      deps.Config.Now,
	}
	uc.seq = NewSequencer(deps.Dispatcher, deps.Markers, deps.Observer, deps.Attempts.Save, deps.Config)
	return uc
}

func (uc *inquiryUsecase) VerificationRequired() bool {
	return uc.seq.VerificationRequired()
}

// Start opens a new form instance and submits it
func (uc *inquiryUsecase) Start(ctx context.Context, clientID, lang string, input domain.Inquiry) (*domain.AttemptView, error) {
	now := uc.now()
	a := &domain.Attempt{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Lang:      lang,
		State:     domain.StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	unlock, err := uc.attempts.Lock(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = uc.seq.Submit(ctx, a, input)
	return uc.finish(ctx, a, input.Trimmed(), err)
}

// Resubmit submits an existing form instance again
func (uc *inquiryUsecase) Resubmit(ctx context.Context, attemptID string, input domain.Inquiry) (*domain.AttemptView, error) {
	a, unlock, err := uc.acquire(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = uc.seq.Submit(ctx, a, input)
	return uc.finish(ctx, a, input.Trimmed(), err)
}

// CompleteVerification checks the challenge token and, when accepted, dispatches
func (uc *inquiryUsecase) CompleteVerification(ctx context.Context, attemptID, token, remoteIP string) (*domain.AttemptView, error) {
	a, unlock, err := uc.acquire(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if a.State != domain.StateAwaitingVerification {
		return uc.view(a), domain.ErrInvalidTransition
	}

	if verr := uc.verifier.Verify(ctx, token, remoteIP); verr != nil {
		_ = uc.seq.VerificationFailed(a, verr)
		if err := uc.attempts.Save(ctx, a); err != nil {
			return nil, err
		}
		return uc.view(a), verr
	}

	pending := a.Input
	err = uc.seq.Verified(ctx, a, token)
	return uc.finish(ctx, a, pending, err)
}

// CancelVerification returns an attempt waiting on the challenge to idle
func (uc *inquiryUsecase) CancelVerification(ctx context.Context, attemptID string) (*domain.AttemptView, error) {
	a, unlock, err := uc.acquire(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := uc.seq.CancelVerification(a); err != nil {
		return uc.view(a), err
	}
	if err := uc.attempts.Save(ctx, a); err != nil {
		return nil, err
	}
	return uc.view(a), nil
}

// Get returns the current snapshot of an attempt
func (uc *inquiryUsecase) Get(ctx context.Context, attemptID string) (*domain.AttemptView, error) {
	a, err := uc.attempts.Load(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return uc.view(a), nil
}

// ConsumeMarker reports whether the client just submitted, clearing the marker
func (uc *inquiryUsecase) ConsumeMarker(ctx context.Context, clientID string) (bool, error) {
	if clientID == "" {
		return false, nil
	}
	m, err := uc.markers.Check(ctx, clientID)
	if err != nil {
		return false, err
	}
	if !m.Submitted {
		return false, nil
	}
	if err := uc.markers.Clear(ctx, clientID); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *inquiryUsecase) acquire(ctx context.Context, attemptID string) (*domain.Attempt, func(), error) {
	unlock, err := uc.attempts.Lock(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	a, err := uc.attempts.Load(ctx, attemptID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return a, unlock, nil
}

// finish persists the attempt after a sequencer call and archives a successful dispatch
func (uc *inquiryUsecase) finish(ctx context.Context, a *domain.Attempt, dispatched domain.Inquiry, err error) (*domain.AttemptView, error) {
	var markerErr *MarkerError
	if errors.As(err, &markerErr) {
		uc.log.Warn("failed to record submission marker", "attempt_id", a.ID, "error", markerErr.Err)
		err = nil
	}
	if errors.Is(err, domain.ErrDispatchInFlight) || errors.Is(err, domain.ErrInvalidTransition) {
		return uc.view(a), err
	}

	if serr := uc.attempts.Save(context.WithoutCancel(ctx), a); serr != nil {
		return nil, fmt.Errorf("save attempt: %w", serr)
	}

	if err == nil && a.State == domain.StateSucceeded {
		uc.archiveInquiry(ctx, a, dispatched)
	}
	return uc.view(a), err
}

func (uc *inquiryUsecase) archiveInquiry(ctx context.Context, a *domain.Attempt, in domain.Inquiry) {
	if uc.archive == nil {
		return
	}
	rec := &domain.ArchivedInquiry{
		AttemptID:    a.ID,
		Lang:         a.Lang,
		Inquiry:      in,
		DispatchedAt: a.UpdatedAt,
	}
	if err := uc.archive.Create(context.WithoutCancel(ctx), rec); err != nil {
		uc.log.Error("failed to archive inquiry", "attempt_id", a.ID, "error", err)
	}
}

func (uc *inquiryUsecase) view(a *domain.Attempt) *domain.AttemptView {
	labelKey, enabled := Control(a.State)
	v := &domain.AttemptView{
		ID:          a.ID,
		State:       a.State,
		Lang:        a.Lang,
		Input:       a.Input,
		Control:     domain.SubmitControl{Label: uc.locale.T(labelKey, a.Lang), Enabled: enabled},
		Failure:     a.LastFailure,
		NeedsVerify: a.State == domain.StateAwaitingVerification,
	}
	switch {
	case a.LastFailure != nil:
		v.Message = uc.locale.Format(a.LastFailure.MessageKey, a.Lang, map[string]string{"error": a.LastFailure.Detail})
	case a.State == domain.StateSucceeded:
		v.Message = uc.locale.T("messages.success", a.Lang)
	}
	return v
}
