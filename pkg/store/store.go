// Package store provides in-memory storage for evaluation history.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lemonberrylabs/arith/pkg/types"
)

// DefaultCapacity is the number of evaluations kept when New is given a
// non-positive capacity.
const DefaultCapacity = 1000

// EvaluationState represents the outcome of an evaluation.
type EvaluationState string

const (
	EvaluationSucceeded EvaluationState = "SUCCEEDED"
	EvaluationFailed    EvaluationState = "FAILED"
)

// Evaluation is a recorded evaluation of one expression.
type Evaluation struct {
	ID         string           `json:"id"`
	Expression string           `json:"expression"`
	Source     string           `json:"source"` // surface that submitted it: http, batch, grpc, web
	State      EvaluationState  `json:"state"`
	Result     float64          `json:"result"`
	Error      *EvaluationError `json:"error,omitempty"`
	CreateTime time.Time        `json:"createTime"`
}

// EvaluationError describes why a failed evaluation failed.
type EvaluationError struct {
	Message  string `json:"message"`
	Kind     string `json:"kind,omitempty"`
	Position int    `json:"position"`
}

// Store is a thread-safe, bounded, in-memory evaluation history. When full,
// the oldest evaluation is evicted.
type Store struct {
	mu          sync.RWMutex
	evaluations map[string]*Evaluation
	order       []string // oldest first
	capacity    int
}

// New creates a new empty store holding at most capacity evaluations.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		evaluations: make(map[string]*Evaluation),
		capacity:    capacity,
	}
}

// Record stores the outcome of evaluating expression. A nil err records a
// success with result.
func (s *Store) Record(source, expression string, result float64, err error) *Evaluation {
	ev := &Evaluation{
		ID:         uuid.NewString(),
		Expression: expression,
		Source:     source,
		State:      EvaluationSucceeded,
		Result:     result,
		CreateTime: time.Now(),
	}
	if err != nil {
		ev.State = EvaluationFailed
		ev.Result = 0
		ev.Error = errorPayload(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.evaluations, oldest)
	}
	s.evaluations[ev.ID] = ev
	s.order = append(s.order, ev.ID)
	return ev
}

// Get retrieves an evaluation by ID.
func (s *Store) Get(id string) (*Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.evaluations[id]
	if !ok {
		return nil, fmt.Errorf("evaluation '%s' not found", id)
	}
	return ev, nil
}

// List returns up to limit evaluations, newest first. A non-positive limit
// returns all of them.
func (s *Store) List(limit int) []*Evaluation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]*Evaluation, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, s.evaluations[s.order[i]])
	}
	return result
}

// Counts returns the number of stored successful and failed evaluations.
func (s *Store) Counts() (succeeded, failed int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ev := range s.evaluations {
		if ev.State == EvaluationSucceeded {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Len returns the number of stored evaluations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Clear removes all evaluations.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evaluations = make(map[string]*Evaluation)
	s.order = nil
}

func errorPayload(err error) *EvaluationError {
	payload := &EvaluationError{Message: err.Error(), Position: types.NoPosition}
	var ee *types.EvaluationError
	if errors.As(err, &ee) {
		payload.Kind = ee.Kind()
		payload.Position = ee.Position()
	}
	return payload
}
