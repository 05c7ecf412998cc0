package classifier

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"grievancedesk/internal/domain"
	"grievancedesk/internal/registry"
)

// State of a classification session.
type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateInFlight   State = "in_flight"
	StateResolved   State = "resolved"
)

const (
	// MinTextLength is the minimum trimmed length before classification
	// is attempted. Shorter text is a normal precondition, not an error,
	// and never reaches the remote service.
	MinTextLength = 20

	// DefaultDebounce is how long the text must stay unchanged before a
	// remote classification fires.
	DefaultDebounce = 1500 * time.Millisecond

	// DefaultCallTimeout bounds a single remote classification call.
	DefaultCallTimeout = 30 * time.Second
)

// SessionOptions tune a Session. Zero values pick the defaults above.
type SessionOptions struct {
	Debounce    time.Duration
	CallTimeout time.Duration
	// OnResult, if set, is invoked after every resolution. Called
	// without the session lock held.
	OnResult func(domain.ClassificationResult)
}

// Session runs the validate-and-classify state machine for one
// composition stream: debounced remote classification with a keyword
// fallback, memoization of the last analyzed text, and stale-response
// discard. One Session per active grievance draft.
type Session struct {
	service  Service
	debounce time.Duration
	timeout  time.Duration
	onResult func(domain.ClassificationResult)

	group singleflight.Group

	mu           sync.Mutex
	state        State
	tooShort     bool
	currentText  string // normalized text of the latest edit
	lastAnalyzed string // normalized text most recently sent for analysis
	pendingRaw   string // raw text waiting behind the debounce timer
	result       *domain.ClassificationResult
	timer        *time.Timer
	closed       bool
}

func NewSession(service Service, opts SessionOptions) *Session {
	s := &Session{
		service:  service,
		debounce: opts.Debounce,
		timeout:  opts.CallTimeout,
		onResult: opts.OnResult,
		state:    StateIdle,
	}
	if s.debounce <= 0 {
		s.debounce = DefaultDebounce
	}
	if s.timeout <= 0 {
		s.timeout = DefaultCallTimeout
	}
	return s
}

func normalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// SetText feeds the current draft text into the session. Text below
// MinTextLength resets to Idle and clears any previous result; text
// matching the last analyzed input is ignored; anything else restarts
// the debounce timer.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	normalized := normalizeText(text)
	s.currentText = normalized

	if len([]rune(strings.TrimSpace(text))) < MinTextLength {
		s.stopTimerLocked()
		s.state = StateIdle
		s.tooShort = strings.TrimSpace(text) != ""
		s.result = nil
		s.lastAnalyzed = ""
		return
	}
	s.tooShort = false

	if normalized == s.lastAnalyzed {
		return
	}

	// Pure debounce: every qualifying edit restarts the full delay.
	s.stopTimerLocked()
	s.pendingRaw = text
	s.state = StateDebouncing
	s.timer = time.AfterFunc(s.debounce, func() {
		s.analyze(s.pendingText())
	})
}

func (s *Session) pendingText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingRaw
}

// Flush fires a pending debounced classification immediately and waits
// for it to resolve. A no-op when nothing is pending.
func (s *Session) Flush() {
	s.mu.Lock()
	if s.state != StateDebouncing || s.closed {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	text := s.pendingRaw
	s.mu.Unlock()

	s.analyze(text)
}

// analyze performs one classification attempt for text. It records the
// normalized input before calling out so that an identical re-submission
// while the call is outstanding is suppressed, and discards the response
// if the live text has moved on by the time it arrives.
func (s *Session) analyze(text string) {
	normalized := normalizeText(text)

	s.mu.Lock()
	if s.closed || normalized == "" {
		s.mu.Unlock()
		return
	}
	s.state = StateInFlight
	s.lastAnalyzed = normalized
	s.mu.Unlock()

	// Collapse concurrent identical submissions onto one remote call.
	v, err, _ := s.group.Do(normalized, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return s.service.Classify(ctx, text)
	})

	var remote RemoteResult
	if err == nil {
		remote = v.(RemoteResult)
	}
	result := s.resolve(text, remote, err)

	s.mu.Lock()
	if s.closed || s.currentText != normalized {
		// Stale response: the draft changed (or was abandoned) while the
		// call was outstanding.
		s.mu.Unlock()
		return
	}
	s.state = StateResolved
	s.result = &result
	cb := s.onResult
	s.mu.Unlock()

	if cb != nil {
		cb(result)
	}
}

// resolve turns a remote outcome (or failure) into the final
// classification result, applying the keyword fallback chain.
func (s *Session) resolve(text string, remote RemoteResult, err error) domain.ClassificationResult {
	if err != nil {
		log.Printf("classifier remote failed, using keyword fallback: %v", err)
		return s.fallback(text, "")
	}

	if !remote.IsValid {
		return domain.ClassificationResult{
			IsValid:           false,
			Reason:            remote.Reason,
			ValidationMessage: remote.ValidationMessage,
		}
	}

	dept, ok := registry.MatchName(remote.Department)
	if !ok {
		log.Printf("classifier department %q not in registry, using keyword fallback", remote.Department)
		return s.fallback(text, remote.ValidationMessage)
	}
	confidence, ok := domain.ParseConfidence(remote.Confidence)
	if !ok || confidence == domain.ConfidenceManual {
		log.Printf("classifier malformed confidence %q, using keyword fallback", remote.Confidence)
		return s.fallback(text, "")
	}

	return domain.ClassificationResult{
		IsValid:      true,
		DepartmentID: dept.ID,
		Reason:       remote.Reason,
		Confidence:   confidence,
	}
}

func (s *Session) fallback(text, validationMessage string) domain.ClassificationResult {
	if m, ok := ClassifyKeywords(text); ok {
		return keywordResult(m)
	}
	return domain.ClassificationResult{
		IsValid:           false,
		Reason:            "No department could be determined; please select one manually",
		ValidationMessage: validationMessage,
	}
}

// SelectManual records an operator-chosen department. Manual selection
// is a re-classification, not a validation bypass: it is only legal
// once a previous resolution confirmed the text is a legitimate
// grievance.
func (s *Session) SelectManual(departmentID string) (domain.ClassificationResult, error) {
	dept, ok := registry.ByID(departmentID)
	if !ok {
		return domain.ClassificationResult{}, ErrInvalidDepartment
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || !s.result.IsValid {
		return domain.ClassificationResult{}, ErrManualNotAllowed
	}
	result := domain.ClassificationResult{
		IsValid:      true,
		DepartmentID: dept.ID,
		Reason:       "Manually selected by user",
		Confidence:   domain.ConfidenceManual,
	}
	s.result = &result
	s.state = StateResolved
	return result, nil
}

// Result returns the latest classification, if any.
func (s *Session) Result() (domain.ClassificationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.ClassificationResult{}, false
	}
	return *s.result, true
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TooShort reports whether the latest non-empty text was below the
// classification threshold.
func (s *Session) TooShort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooShort
}

// Close cancels any pending debounce and detaches the session. An
// in-flight remote call is allowed to finish; its response is dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.closed = true
	s.state = StateIdle
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
