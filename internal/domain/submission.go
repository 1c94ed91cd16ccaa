package domain

import (
	"context"
	"time"
)

// SubmissionState is the position of one form instance in the submit flow
type SubmissionState string

const (
	StateIdle                 SubmissionState = "idle"
	StateAwaitingVerification SubmissionState = "awaiting_verification"
	StateSubmitting           SubmissionState = "submitting"
	StateSucceeded            SubmissionState = "succeeded"
	StateFailed               SubmissionState = "failed"
)

// RetryPolicy decides what happens to a completed verification after a failed dispatch
type RetryPolicy string

const (
	// ReverifyAfterFailure forces a new challenge before the next attempt
	ReverifyAfterFailure RetryPolicy = "reverify"
	// KeepVerificationAfterFailure lets the immediate retry reuse the completed challenge
	KeepVerificationAfterFailure RetryPolicy = "keep"
)

// FailureKind classifies a failure surfaced to the presentation layer
type FailureKind string

const (
	FailureMissingField            FailureKind = "missing_field"
	FailureInvalidFormat           FailureKind = "invalid_format"
	FailureDispatch                FailureKind = "dispatch_failure"
	FailureVerificationUnavailable FailureKind = "verification_unavailable"
)

// Failure is the structured value handed to observers when an attempt fails
type Failure struct {
	Kind   FailureKind `json:"kind"`
	Field  string      `json:"field,omitempty"`
	Detail string      `json:"detail,omitempty"`
	// MessageKey is the locale key the presentation layer should render
	MessageKey string `json:"message_key"`
}

// Attempt is the server-side record of one form instance
type Attempt struct {
	ID                string          `json:"id"`
	ClientID          string          `json:"client_id"`
	Lang              string          `json:"lang"`
	State             SubmissionState `json:"state"`
	Input             Inquiry         `json:"input"`
	Verified          bool            `json:"verified"`
	VerificationToken string          `json:"verification_token,omitempty"`
	LastFailure       *Failure        `json:"last_failure,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// SubmitControl is the state of the submit button for an attempt
type SubmitControl struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// AttemptView is what the API returns for an attempt
type AttemptView struct {
	ID          string          `json:"id"`
	State       SubmissionState `json:"state"`
	Lang        string          `json:"lang"`
	Input       Inquiry         `json:"input"`
	Control     SubmitControl   `json:"submit_control"`
	Failure     *Failure        `json:"failure,omitempty"`
	Message     string          `json:"message,omitempty"`
	NeedsVerify bool            `json:"needs_verification"`
}

// Marker is the short-lived "just submitted" hint kept per client
type Marker struct {
	Submitted bool      `json:"submitted"`
	At        time.Time `json:"at"`
}

// TemplateParams is the payload handed to the email provider
type TemplateParams map[string]string

// Dispatcher hands a completed inquiry to the email delivery service
type Dispatcher interface {
	Dispatch(ctx context.Context, params TemplateParams) error
	IsConfigured() bool
}

// Verifier checks a bot-verification token
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// MarkerStore persists the per-client "just submitted" marker
type MarkerStore interface {
	Mark(ctx context.Context, clientID string, at time.Time) error
	Check(ctx context.Context, clientID string) (Marker, error)
	Clear(ctx context.Context, clientID string) error
}

// AttemptStore persists attempts between requests
type AttemptStore interface {
	Load(ctx context.Context, id string) (*Attempt, error)
	Save(ctx context.Context, a *Attempt) error
	Delete(ctx context.Context, id string) error
	// Lock takes the single-writer lock of an attempt; ErrDispatchInFlight when already held
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

// Observer receives every state change and failure of the sequencer
type Observer interface {
	OnTransition(a *Attempt, from, to SubmissionState)
	OnFailure(a *Attempt, f Failure)
}

// InquiryUsecase drives the contact form submission flow
type InquiryUsecase interface {
	Start(ctx context.Context, clientID, lang string, input Inquiry) (*AttemptView, error)
	Resubmit(ctx context.Context, attemptID string, input Inquiry) (*AttemptView, error)
	CompleteVerification(ctx context.Context, attemptID, token, remoteIP string) (*AttemptView, error)
	CancelVerification(ctx context.Context, attemptID string) (*AttemptView, error)
	Get(ctx context.Context, attemptID string) (*AttemptView, error)
	ConsumeMarker(ctx context.Context, clientID string) (bool, error)
	VerificationRequired() bool
}
