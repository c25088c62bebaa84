// Package tour drives a photographed landmark through the staged pipeline
// that identifies it, researches its history, and synthesizes narration.
package tour

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"snaptour/pkg/ledger"
	"snaptour/pkg/llm"
	"snaptour/pkg/model"
)

// Pipeline stages. A tour step is either idle, advancing through the three
// working stages in order, done, or parked in the error stage with the stage
// it failed at recorded for retry.
const (
	StageIdle             = "idle"
	StageIdentifying      = "identifying"
	StageFetchingHistory  = "fetching_history"
	StageGeneratingSpeech = "generating_speech"
	StageDone             = "done"
	StageError            = "error"
)

// Capabilities is the slice of the AI client the pipeline needs.
type Capabilities interface {
	Identify(ctx context.Context, image []byte, mime string) (*model.LandmarkInfo, error)
	Narrate(ctx context.Context, landmarkName, audienceLevel string) (string, []model.GroundingSource, error)
	Speak(ctx context.Context, text string) (string, error)
}

// Status is a snapshot of the machine, safe to serialize for clients.
type Status struct {
	Stage        string                  `json:"stage"`
	FailedStage  string                  `json:"failed_stage,omitempty"`
	ErrorKind    llm.Kind                `json:"error_kind,omitempty"`
	ErrorMessage string                  `json:"error_message,omitempty"`
	Retryable    bool                    `json:"retryable"`
	Attempt      int                     `json:"attempt"`
	Landmark     *model.LandmarkInfo     `json:"landmark,omitempty"`
	History      string                  `json:"history,omitempty"`
	Sources      []model.GroundingSource `json:"sources,omitempty"`
	Audio        string                  `json:"audio,omitempty"`
}

// Machine runs one tour step at a time. A new submission supersedes any
// in-flight work; results from a superseded attempt are discarded when they
// arrive.
type Machine struct {
	mu   sync.Mutex
	caps Capabilities
	led  *ledger.Ledger

	stage        string
	failedStage  string
	errKind      llm.Kind
	errMessage   string
	attempt      int
	attemptTag   string
	audience     string
	image        *model.Image
	landmark     *model.LandmarkInfo
	history      string
	sources      []model.GroundingSource
	audio        string
	promoted     bool
	onTransition func(Status)
	onBadKey     func()
}

// Option configures a Machine.
type Option func(*Machine)

// WithTransitionHook installs a callback fired after every stage transition.
// The callback runs outside the machine's lock.
func WithTransitionHook(fn func(Status)) Option {
	return func(m *Machine) { m.onTransition = fn }
}

// WithCredentialHook installs a callback fired when a capability call fails
// with an invalid credential, so the owner can clear the stored key.
func WithCredentialHook(fn func()) Option {
	return func(m *Machine) { m.onBadKey = fn }
}

// New creates a Machine in the idle stage.
func New(caps Capabilities, led *ledger.Ledger, opts ...Option) *Machine {
	m := &Machine{
		caps:  caps,
		led:   led,
		stage: StageIdle,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// SubmitImage starts a new tour step from a captured photograph. Validation
// failures are returned immediately and leave the current step untouched; the
// pipeline itself runs asynchronously. The machine takes ownership of data.
func (m *Machine) SubmitImage(data []byte, mime, audienceLevel string) error {
	if len(data) == 0 {
		return errors.New("empty image payload")
	}
	if mime == "" {
		return errors.New("missing image MIME type")
	}

	m.mu.Lock()
	m.releaseImageLocked()
	m.attempt++
	attempt := m.attempt
	m.attemptTag = uuid.NewString()
	m.audience = audienceLevel
	m.image = &model.Image{Data: data, MIME: mime}
	m.landmark = nil
	m.history = ""
	m.sources = nil
	m.audio = ""
	m.failedStage = ""
	m.errKind = ""
	m.errMessage = ""
	m.promoted = false
	tag := m.attemptTag
	m.mu.Unlock()

	slog.Info("Tour: new submission", "attempt", attempt, "tag", tag, "mime", mime, "bytes", len(data), "audience", audienceLevel)
	go m.run(attempt, StageIdentifying)
	return nil
}

// Retry re-enters the pipeline at the stage that failed, reusing every output
// produced before the failure. It is only valid in the error stage, and only
// for transient failures; everything else needs a reset or operator action.
func (m *Machine) Retry() error {
	m.mu.Lock()
	if m.stage != StageError {
		m.mu.Unlock()
		return fmt.Errorf("nothing to retry in stage %q", m.stage)
	}
	if !m.errKind.Retryable() {
		kind := m.errKind
		m.mu.Unlock()
		switch kind {
		case llm.KindInvalidCredential:
			return errors.New("retry blocked: set a valid API key first")
		case llm.KindQuotaExhausted:
			return errors.New("retry blocked: API quota exhausted")
		case llm.KindNotALandmark:
			return errors.New("retry blocked: no landmark recognized, start over with a new photo")
		default:
			return errors.New("retry blocked: start over with a new photo")
		}
	}
	m.attempt++
	attempt := m.attempt
	from := m.failedStage
	m.errKind = ""
	m.errMessage = ""
	m.mu.Unlock()

	slog.Info("Tour: retrying", "attempt", attempt, "stage", from)
	go m.run(attempt, from)
	return nil
}

// Reset abandons the current step and returns to idle. The recorded tour
// ledger is not touched.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.attempt++
	m.releaseImageLocked()
	m.stage = StageIdle
	m.failedStage = ""
	m.errKind = ""
	m.errMessage = ""
	m.landmark = nil
	m.history = ""
	m.sources = nil
	m.audio = ""
	m.promoted = false
	status := m.statusLocked()
	m.mu.Unlock()

	slog.Info("Tour: reset")
	m.notify(status)
}

// SelectStop replays a previously recorded stop from the ledger without any
// capability calls. The current in-flight step, if any, is superseded.
func (m *Machine) SelectStop(i int) error {
	stop, err := m.led.SelectByIndex(i)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.attempt++
	m.releaseImageLocked()
	lm := stop.Landmark
	m.landmark = &lm
	m.history = stop.History
	m.sources = stop.Sources
	m.audio = stop.Audio
	m.image = stop.Image
	m.promoted = true
	m.failedStage = ""
	m.errKind = ""
	m.errMessage = ""
	m.stage = StageDone
	status := m.statusLocked()
	m.mu.Unlock()

	slog.Info("Tour: replaying recorded stop", "index", i, "landmark", lm.Name)
	m.notify(status)
	return nil
}

// Status returns a snapshot of the machine.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// CurrentLandmark returns the identified landmark and its history, or nil if
// no step has reached identification.
func (m *Machine) CurrentLandmark() (*model.LandmarkInfo, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.landmark, m.history
}

// CurrentImage returns the photograph of the current step, or nil.
func (m *Machine) CurrentImage() *model.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.image
}

// run advances the pipeline from the given stage. Every mutation checks the
// attempt counter first; a mismatch means this attempt was superseded and its
// results are discarded.
func (m *Machine) run(attempt int, from string) {
	ctx := context.Background()

	stage := from
	for {
		if !m.enterStage(attempt, stage) {
			slog.Debug("Tour: attempt superseded, discarding", "attempt", attempt, "stage", stage)
			return
		}

		var next string
		var err error
		switch stage {
		case StageIdentifying:
			err = m.identify(ctx, attempt)
			next = StageFetchingHistory
		case StageFetchingHistory:
			err = m.narrate(ctx, attempt)
			next = StageGeneratingSpeech
		case StageGeneratingSpeech:
			err = m.speak(ctx, attempt)
			next = StageDone
		default:
			slog.Error("Tour: cannot run from stage", "stage", stage)
			return
		}

		if err != nil {
			m.fail(attempt, stage, err)
			return
		}
		if next == StageDone {
			m.complete(attempt)
			return
		}
		stage = next
	}
}

func (m *Machine) identify(ctx context.Context, attempt int) error {
	m.mu.Lock()
	if m.attempt != attempt || m.image == nil {
		m.mu.Unlock()
		return errSuperseded
	}
	data, mime := m.image.Data, m.image.MIME
	m.mu.Unlock()

	lm, err := m.caps.Identify(ctx, data, mime)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt != attempt {
		return errSuperseded
	}
	m.landmark = lm
	slog.Info("Tour: landmark identified", "attempt", attempt, "name", lm.Name, "city", lm.City, "country", lm.Country)
	return nil
}

func (m *Machine) narrate(ctx context.Context, attempt int) error {
	m.mu.Lock()
	if m.attempt != attempt || m.landmark == nil {
		m.mu.Unlock()
		return errSuperseded
	}
	name, audience := m.landmark.Name, m.audience
	m.mu.Unlock()

	history, sources, err := m.caps.Narrate(ctx, name, audience)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt != attempt {
		return errSuperseded
	}
	m.history = history
	m.sources = sources
	slog.Info("Tour: history fetched", "attempt", attempt, "chars", len(history), "sources", len(sources))
	return nil
}

func (m *Machine) speak(ctx context.Context, attempt int) error {
	m.mu.Lock()
	if m.attempt != attempt || m.history == "" {
		m.mu.Unlock()
		return errSuperseded
	}
	text := m.history
	m.mu.Unlock()

	audio, err := m.caps.Speak(ctx, text)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt != attempt {
		return errSuperseded
	}
	m.audio = audio
	return nil
}

// complete moves to done and records the finished stop. Recording happens at
// most once per landmark; a duplicate landmark leaves the ledger untouched.
func (m *Machine) complete(attempt int) {
	m.mu.Lock()
	if m.attempt != attempt {
		m.mu.Unlock()
		return
	}
	stop := &model.TourStop{
		Landmark:  *m.landmark,
		Image:     m.image,
		History:   m.history,
		Sources:   m.sources,
		Audio:     m.audio,
		CreatedAt: time.Now(),
	}
	m.promoted = m.led.Append(stop)
	m.stage = StageDone
	status := m.statusLocked()
	recorded := m.promoted
	m.mu.Unlock()

	slog.Info("Tour: step complete", "attempt", attempt, "landmark", stop.Landmark.Name, "recorded", recorded)
	m.notify(status)
}

func (m *Machine) fail(attempt int, stage string, err error) {
	if errors.Is(err, errSuperseded) {
		return
	}

	kind := llm.KindTransient
	if capErr, ok := llm.AsCapabilityError(err); ok {
		kind = capErr.Kind
	}

	m.mu.Lock()
	if m.attempt != attempt {
		m.mu.Unlock()
		return
	}
	m.stage = StageError
	m.failedStage = stage
	m.errKind = kind
	m.errMessage = err.Error()
	if !kind.Retryable() {
		// Terminal failure: the photograph is no longer needed.
		m.releaseImageLocked()
	}
	status := m.statusLocked()
	m.mu.Unlock()

	slog.Warn("Tour: stage failed", "attempt", attempt, "stage", stage, "kind", kind, "error", err)
	if kind == llm.KindInvalidCredential && m.onBadKey != nil {
		m.onBadKey()
	}
	m.notify(status)
}

// enterStage transitions into a working stage, returning false if the attempt
// was superseded.
func (m *Machine) enterStage(attempt int, stage string) bool {
	m.mu.Lock()
	if m.attempt != attempt {
		m.mu.Unlock()
		return false
	}
	m.stage = stage
	status := m.statusLocked()
	m.mu.Unlock()

	m.notify(status)
	return true
}

func (m *Machine) statusLocked() Status {
	return Status{
		Stage:        m.stage,
		FailedStage:  m.failedStage,
		ErrorKind:    m.errKind,
		ErrorMessage: m.errMessage,
		Retryable:    m.stage == StageError && m.errKind.Retryable(),
		Attempt:      m.attempt,
		Landmark:     m.landmark,
		History:      m.history,
		Sources:      m.sources,
		Audio:        m.audio,
	}
}

// releaseImageLocked frees the current photograph unless ownership already
// moved to the ledger.
func (m *Machine) releaseImageLocked() {
	if m.image != nil && !m.promoted {
		m.image.Release()
	}
	m.image = nil
}

func (m *Machine) notify(s Status) {
	if m.onTransition != nil {
		m.onTransition(s)
	}
}

var errSuperseded = errors.New("attempt superseded")
