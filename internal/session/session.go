// Package session drives a single upload session: one live media file, one
// priced operation at a time against the remote engine, one result.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/walnut-media/backend/internal/engine"
	"github.com/walnut-media/backend/internal/media"
	"github.com/walnut-media/backend/internal/pricing"
	"github.com/walnut-media/backend/internal/scratch"
	"github.com/walnut-media/backend/internal/token"
)

// State is the orchestrator state of the session.
type State string

const (
	StateIdle     State = "idle"
	StateReady    State = "ready"
	StateInFlight State = "in_flight"
	StateSettled  State = "settled"
)

// Precondition errors. Each leaves the session in its current state so the
// user can fix the condition and retry.
var (
	ErrNoFile          = errors.New("no media file selected")
	ErrNoResult        = errors.New("no rendered video available")
	ErrUnknownDuration = errors.New("media duration is unknown: cannot price the operation")
	ErrUnknownKind     = errors.New("unknown operation kind")
	ErrProcessing      = errors.New("an operation is already in progress")
)

// Request describes one triggered operation.
type Request struct {
	Kind    pricing.Kind    `json:"kind"`
	Options pricing.Options `json:"options"`
}

// Engine is the processing collaborator the session submits files to.
type Engine interface {
	Transcribe(ctx context.Context, filePath, fileName string) (*engine.TranscriptResult, error)
	RenderSubtitles(ctx context.Context, filePath, fileName string) (io.ReadCloser, error)
}

// Config carries the session's collaborators.
type Config struct {
	Files         *media.Store
	Scratch       *scratch.Store
	Ledger        *token.Ledger
	Engine        Engine
	EngineTimeout time.Duration
	Events        *EventBus
}

// Session is the upload/process orchestrator. All state transitions happen
// under one lock; the only operation performed outside it is the engine
// call, which the single-flight guard protects.
type Session struct {
	mu      sync.Mutex
	state   State
	file    *media.File
	outcome *Outcome

	files   *media.Store
	scratch *scratch.Store
	ledger  *token.Ledger
	engine  Engine
	timeout time.Duration
	events  *EventBus
}

// New creates an idle session.
func New(cfg Config) *Session {
	timeout := cfg.EngineTimeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	events := cfg.Events
	if events == nil {
		events = NewEventBus(0)
	}
	return &Session{
		state:   StateIdle,
		files:   cfg.Files,
		scratch: cfg.Scratch,
		ledger:  cfg.Ledger,
		engine:  cfg.Engine,
		timeout: timeout,
		events:  events,
	}
}

// Snapshot is a consistent view of the session for the UI.
type Snapshot struct {
	State   State       `json:"state"`
	File    *media.File `json:"file,omitempty"`
	Balance int         `json:"balance"`
	Outcome *Outcome    `json:"outcome,omitempty"`
}

// Snapshot returns the current state, file, outcome and balance. The
// balance is read under the session lock, so a settling debit and its
// outcome always appear together.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:   s.state,
		File:    s.file,
		Balance: s.ledger.Balance(),
		Outcome: s.outcome,
	}
}

// Outcome returns the outcome of the last settled operation, or nil.
func (s *Session) Outcome() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// AcceptFile validates and stores a candidate file. On success the new
// file replaces the previous one and any prior outcome is cleared; on
// rejection the held file and outcome are untouched. Both upload gestures
// (picker and drag-drop) funnel through here, so validation cannot be
// bypassed.
func (s *Session) AcceptFile(name, declaredType string, r io.Reader, durationSeconds int) (*media.File, error) {
	// Validation and storage happen before the swap: a rejected candidate
	// never disturbs the session.
	f, err := s.files.Save(name, declaredType, r, durationSeconds)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state == StateInFlight {
		s.mu.Unlock()
		s.files.Remove(f)
		return nil, ErrProcessing
	}
	s.dropFileLocked()
	s.dropOutcomeLocked()
	s.file = f
	s.state = StateReady
	s.mu.Unlock()

	s.events.Publish(Event{Type: EventTypeState, State: StateReady, Message: f.Name})
	log.Printf("[session] accepted %s (%s, %d bytes, %ds)", f.Name, f.Kind, f.Size, f.DurationSeconds)
	return f, nil
}

// Clear discards the held file and outcome, returning the session to idle.
func (s *Session) Clear() error {
	s.mu.Lock()
	if s.state == StateInFlight {
		s.mu.Unlock()
		return ErrProcessing
	}
	s.dropFileLocked()
	s.dropOutcomeLocked()
	s.state = StateIdle
	s.mu.Unlock()

	s.events.Publish(Event{Type: EventTypeState, State: StateIdle})
	return nil
}

// Trigger runs one operation end to end: price, afford, send, settle.
// Precondition failures (no file, unknown duration, unknown kind,
// insufficient balance) return synchronously without touching the ledger
// or contacting the engine. A second trigger while one is in flight is
// rejected with ErrProcessing. The returned outcome is also retained as
// the session result; engine failures settle the session rather than
// erroring here.
func (s *Session) Trigger(ctx context.Context, req Request) (*Outcome, error) {
	s.mu.Lock()
	if s.state == StateInFlight {
		s.mu.Unlock()
		return nil, ErrProcessing
	}
	if s.file == nil {
		s.mu.Unlock()
		return nil, ErrNoFile
	}
	if !req.Kind.Valid() {
		s.mu.Unlock()
		return nil, ErrUnknownKind
	}
	if s.file.DurationSeconds <= 0 {
		s.mu.Unlock()
		return nil, ErrUnknownDuration
	}

	cost := pricing.Price(req.Kind, s.file.DurationSeconds, req.Options)
	if !s.ledger.CanAfford(cost) {
		s.mu.Unlock()
		return nil, token.ErrInsufficientBalance
	}

	// Commit to the flight: a fresh operation supersedes the prior result.
	opID := uuid.New().String()
	file := s.file
	s.dropOutcomeLocked()
	s.state = StateInFlight
	s.mu.Unlock()

	s.events.Publish(Event{Type: EventTypeState, State: StateInFlight, OperationID: opID, Message: string(req.Kind)})
	log.Printf("[session] op %s: %s of %s (%d tokens)", opID, req.Kind, file.Name, cost)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcome := s.run(ctx, opID, req, file, cost)

	s.mu.Lock()
	if outcome.Succeeded() {
		// Debit only after the response is confirmed successful. The
		// affordability check above holds because nothing else debits
		// this ledger while the flight is exclusive, and credits only
		// grow the balance.
		if err := s.ledger.Debit(cost, fmt.Sprintf("%s: %s", req.Kind, file.Name)); err != nil {
			if outcome.VideoRef != "" {
				s.scratch.Release(outcome.VideoRef)
			}
			outcome = &Outcome{
				OperationID: opID,
				Kind:        req.Kind,
				Cost:        cost,
				Error:       err.Error(),
				SettledAt:   time.Now(),
			}
		}
	}
	s.outcome = outcome
	s.state = StateSettled
	s.mu.Unlock()

	s.events.Publish(Event{Type: EventTypeSettled, State: StateSettled, OperationID: opID, Message: outcome.Error})
	if outcome.Succeeded() {
		log.Printf("[session] op %s settled: success, balance %d", opID, s.ledger.Balance())
	} else {
		log.Printf("[session] op %s settled: %s", opID, outcome.Error)
	}
	return outcome, nil
}

// run performs the engine call for one operation and builds the outcome.
// The ledger is never touched here.
func (s *Session) run(ctx context.Context, opID string, req Request, file *media.File, cost int) *Outcome {
	outcome := &Outcome{
		OperationID: opID,
		Kind:        req.Kind,
		Cost:        cost,
	}

	switch req.Kind {
	case pricing.KindTranscript:
		result, err := s.engine.Transcribe(ctx, file.Path, file.Name)
		if err != nil {
			outcome.Error = err.Error()
		} else {
			outcome.Transcript = buildTranscript(result)
		}

	case pricing.KindSubtitledVideo:
		body, err := s.engine.RenderSubtitles(ctx, file.Path, file.Name)
		if err != nil {
			outcome.Error = err.Error()
			break
		}
		ref, err := s.scratch.Put(body)
		body.Close()
		if err != nil {
			outcome.Error = fmt.Sprintf("store rendered video: %v", err)
		} else {
			outcome.VideoRef = ref
		}
	}

	outcome.SettledAt = time.Now()
	return outcome
}

// OpenVideo opens the rendered video of the current successful outcome.
func (s *Session) OpenVideo() (io.ReadCloser, error) {
	s.mu.Lock()
	outcome := s.outcome
	s.mu.Unlock()

	if outcome == nil || outcome.VideoRef == "" {
		return nil, ErrNoResult
	}
	return s.scratch.Open(outcome.VideoRef)
}

// dropFileLocked removes the held upload from disk. Caller holds the lock.
func (s *Session) dropFileLocked() {
	if s.file == nil {
		return
	}
	if err := s.files.Remove(s.file); err != nil {
		log.Printf("[session] drop upload: %v", err)
	}
	s.file = nil
}

// dropOutcomeLocked clears the outcome and releases its scratch resource.
// Caller holds the lock.
func (s *Session) dropOutcomeLocked() {
	if s.outcome == nil {
		return
	}
	if s.outcome.VideoRef != "" {
		if err := s.scratch.Release(s.outcome.VideoRef); err != nil {
			log.Printf("[session] release video ref: %v", err)
		}
	}
	s.outcome = nil
}
