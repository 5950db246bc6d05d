package services

import (
	"context"
	"fmt"
	"sync"
)

// MockOrderSubmitter records submissions instead of sending them
type MockOrderSubmitter struct {
	submissions []OrderSubmission
	failWith    error
	mu          sync.RWMutex
}

// NewMockOrderSubmitter creates a new mock order submitter
func NewMockOrderSubmitter() *MockOrderSubmitter {
	return &MockOrderSubmitter{}
}

// SetAsMockForTesting sets this mock as the global order submitter for testing
func (m *MockOrderSubmitter) SetAsMockForTesting() {
	SetOrderSubmitter(m)
}

// Submit records the submission and returns a canned receipt
func (m *MockOrderSubmitter) Submit(ctx context.Context, sub OrderSubmission) (*SubmissionReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return nil, m.failWith
	}
	m.submissions = append(m.submissions, sub)
	return &SubmissionReceipt{
		SubmissionID: sub.SubmissionID,
		OrderID:      fmt.Sprintf("mock-order-%d", len(m.submissions)),
		Status:       "received",
		Attempts:     1,
	}, nil
}

// FailWith makes subsequent submissions return err
func (m *MockOrderSubmitter) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Submissions returns a copy of everything submitted so far
func (m *MockOrderSubmitter) Submissions() []OrderSubmission {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]OrderSubmission, len(m.submissions))
	copy(out, m.submissions)
	return out
}

// Clear removes all recorded submissions and failures
func (m *MockOrderSubmitter) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions = nil
	m.failWith = nil
}
