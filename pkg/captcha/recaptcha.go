// Package captcha verifies reCAPTCHA v2 tokens against Google's siteverify API.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inquiry-backend/internal/domain"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultEndpoint is Google's token verification endpoint
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

const (
	retryMax       = 2
	retryWaitMin   = 200 * time.Millisecond
	retryWaitMax   = time.Second
	requestTimeout = 5 * time.Second
)

// MaxVerifyDuration is the longest a single Verify call can take, retries included
const MaxVerifyDuration = (retryMax+1)*requestTimeout + retryMax*retryWaitMax

// siteVerifyResponse is the JSON body returned by siteverify
type siteVerifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// RecaptchaVerifier implements domain.Verifier
type RecaptchaVerifier struct {
	endpoint string
	secret   string
	client   *retryablehttp.Client
}

// NewRecaptchaVerifier builds a verifier. Transport errors and 5xx responses are
// retried a couple of times; a definite answer from Google is not.
func NewRecaptchaVerifier(secret, endpoint string, logger *slog.Logger) *RecaptchaVerifier {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.HTTPClient.Timeout = requestTimeout
	client.Logger = nil
	if logger != nil {
		client.Logger = logger
	}
	return &RecaptchaVerifier{endpoint: endpoint, secret: secret, client: client}
}

// Verify returns nil when Google accepts the token, ErrVerificationRejected when it
// does not, and ErrVerificationUnavailable when Google could not be asked.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: empty token", domain.ErrVerificationRejected)
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrVerificationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrVerificationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: siteverify returned %d", domain.ErrVerificationUnavailable, resp.StatusCode)
	}

	var body siteVerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: decode siteverify response: %v", domain.ErrVerificationUnavailable, err)
	}

	if !body.Success {
		return fmt.Errorf("%w: %s", domain.ErrVerificationRejected, strings.Join(body.ErrorCodes, ","))
	}
	return nil
}
