package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kendall-kelly/laundry-api/logger"
	"github.com/rs/zerolog"
)

// OrderSubmitter hands confirmed orders to the order backend
type OrderSubmitter interface {
	Submit(ctx context.Context, sub OrderSubmission) (*SubmissionReceipt, error)
}

// SubmissionReceipt is the backend's acknowledgement of an order
type SubmissionReceipt struct {
	SubmissionID string `json:"submissionId"`
	OrderID      string `json:"orderId,omitempty"`
	Status       string `json:"status,omitempty"`
	Attempts     int    `json:"attempts"`
}

// SubmissionError is a non-2xx answer from the order backend
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order backend returned %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the backend may accept the same submission later
func (e *SubmissionError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// HTTPOrderSubmitter POSTs orders as JSON, retrying transient failures with
// exponential backoff. Every attempt carries the same Idempotency-Key.
type HTTPOrderSubmitter struct {
	endpoint   string
	client     *http.Client
	maxRetries int
	newBackOff func() backoff.BackOff
}

var orderSubmitterInstance OrderSubmitter

// NewHTTPOrderSubmitter creates a submitter for the given endpoint
func NewHTTPOrderSubmitter(endpoint string, timeout time.Duration, maxRetries int) *HTTPOrderSubmitter {
	return &HTTPOrderSubmitter{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
}

// InitOrderSubmitter initializes the package-level submitter
func InitOrderSubmitter(endpoint string, timeout time.Duration, maxRetries int) OrderSubmitter {
	orderSubmitterInstance = NewHTTPOrderSubmitter(endpoint, timeout, maxRetries)
	return orderSubmitterInstance
}

// GetOrderSubmitter returns the initialized submitter, or nil when orders cannot be submitted
func GetOrderSubmitter() OrderSubmitter {
	return orderSubmitterInstance
}

// SetOrderSubmitter sets the submitter instance (primarily for testing)
func SetOrderSubmitter(submitter OrderSubmitter) {
	orderSubmitterInstance = submitter
}

// Submit implements OrderSubmitter
func (s *HTTPOrderSubmitter) Submit(ctx context.Context, sub OrderSubmission) (*SubmissionReceipt, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order: %w", err)
	}

	log := logger.Get()
	ctx = log.WithField(ctx, "submission_id", sub.SubmissionID)

	var receipt *SubmissionReceipt
	attempts := 0
	operation := func() error {
		attempts++
		r, err := s.post(ctx, sub.SubmissionID, body)
		if err != nil {
			var subErr *SubmissionError
			if errors.As(err, &subErr) && !subErr.Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		receipt = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Event(ctx, zerolog.WarnLevel).Err(err).Dur("retry_in", wait).Int("attempt", attempts).Msg("order submission failed, retrying")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), uint64(s.maxRetries)), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, fmt.Errorf("order submission failed after %d attempt(s): %w", attempts, err)
	}

	receipt.SubmissionID = sub.SubmissionID
	receipt.Attempts = attempts
	return receipt, nil
}

func (s *HTTPOrderSubmitter) post(ctx context.Context, idempotencyKey string, body []byte) (*SubmissionReceipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build order request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach order backend: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read order backend response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SubmissionError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(payload))}
	}

	receipt := &SubmissionReceipt{}
	if len(bytes.TrimSpace(payload)) > 0 {
		if err := json.Unmarshal(payload, receipt); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to decode order backend response: %w", err))
		}
	}
	return receipt, nil
}
