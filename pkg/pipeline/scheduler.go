// Package pipeline runs overlay stages over a base raster, one run at a
// time, reporting each intermediate raster as it is produced.
package pipeline

import (
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sudorandom/quake-stencil/pkg/stencil"
)

// StageRenderer applies a single stage. *stencil.Renderer satisfies it.
type StageRenderer interface {
	Apply(stage stencil.Stage, img image.Image, f stencil.Features) *image.RGBA
}

// StageCallback receives the raster after a stage together with the stage
// and how long it took. All three are nil when a run had nothing to do.
type StageCallback func(img *image.RGBA, stage *stencil.Stage, elapsed *time.Duration)

// CompleteCallback receives the total run time and the final raster. The
// raster is nil when the run did nothing, failed, or was superseded.
type CompleteCallback func(total time.Duration, final *image.RGBA)

type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	}
	return "idle"
}

type Scheduler struct {
	renderer StageRenderer
	cache    Cache

	// runMu serializes runs. It is held for the whole run, including every
	// callback and the write of the last-completed slot.
	runMu sync.Mutex
	seq   atomic.Uint64

	slotMu   sync.Mutex
	category string
	last     *image.RGBA
	lastSeq  uint64
	// runs with a sequence at or below floor were submitted before the
	// last Switch and never commit.
	floor uint64

	stateMu sync.Mutex
	state   State
	current stencil.Stage
}

type Option func(*Scheduler)

// WithCache persists every committed raster to cache under category.
func WithCache(cache Cache, category string) Option {
	return func(s *Scheduler) {
		s.cache = cache
		s.category = category
	}
}

// New builds a scheduler. renderer is used by runs whose Job does not name
// one and may be nil when every Job does.
func New(renderer StageRenderer, opts ...Option) *Scheduler {
	s := &Scheduler{renderer: renderer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Job is everything a single run reads. Renderer is captured when the job
// is built, so later changes to the caller's options do not reach a run
// already submitted.
type Job struct {
	Base       image.Image
	Features   stencil.Features
	Stages     []stencil.Stage
	Renderer   StageRenderer
	OnStage    StageCallback
	OnComplete CompleteCallback
}

// Run executes the requested stages over base and blocks until the run has
// finished, waiting first for any run already in flight. Stages always run
// in canonical order whatever order they are requested in. The final
// raster is returned as well as passed to onComplete.
func (s *Scheduler) Run(base image.Image, features stencil.Features, stages []stencil.Stage, onStage StageCallback, onComplete CompleteCallback) *image.RGBA {
	return s.RunJob(Job{Base: base, Features: features, Stages: stages, OnStage: onStage, OnComplete: onComplete})
}

func (s *Scheduler) RunJob(job Job) *image.RGBA {
	return s.run(s.seq.Add(1), job)
}

// Submit starts a run on a background goroutine and returns a channel that
// is closed once the run's completion callback has returned. The run's
// place in the submission order is fixed when Submit is called.
func (s *Scheduler) Submit(base image.Image, features stencil.Features, stages []stencil.Stage, onStage StageCallback, onComplete CompleteCallback) <-chan struct{} {
	return s.SubmitJob(Job{Base: base, Features: features, Stages: stages, OnStage: onStage, OnComplete: onComplete})
}

func (s *Scheduler) SubmitJob(job Job) <-chan struct{} {
	seq := s.seq.Add(1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.run(seq, job)
	}()
	return done
}

func (s *Scheduler) run(seq uint64, job Job) *image.RGBA {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	onStage, onComplete := job.OnStage, job.OnComplete
	if onStage == nil {
		onStage = func(*image.RGBA, *stencil.Stage, *time.Duration) {}
	}
	if onComplete == nil {
		onComplete = func(time.Duration, *image.RGBA) {}
	}
	renderer := job.Renderer
	if renderer == nil {
		renderer = s.renderer
	}

	order := stencil.Normalize(job.Stages)
	if len(order) == 0 && len(job.Features.Events) == 0 {
		s.setState(StateCompleted, 0)
		onStage(nil, nil, nil)
		onComplete(0, nil)
		return nil
	}

	start := time.Now()
	final, err := s.execute(seq, renderer, job.Base, job.Features, order, onStage)
	total := time.Since(start)
	if err != nil {
		log.Printf("[PIPELINE] run %d failed after %v: %v", seq, total, err)
		s.setState(StateCompleted, 0)
		onComplete(total, nil)
		return nil
	}

	if !s.commit(seq, final) {
		log.Printf("[PIPELINE] run %d superseded, discarding result", seq)
		s.setState(StateCompleted, 0)
		onComplete(total, nil)
		return nil
	}
	s.setState(StateCompleted, 0)
	onComplete(total, final)
	return final
}

// execute runs the ordered stages. A panic inside a stage aborts the run.
// Intermediate rasters of a superseded run are not reported.
func (s *Scheduler) execute(seq uint64, renderer StageRenderer, base image.Image, features stencil.Features, order []stencil.Stage, onStage StageCallback) (final *image.RGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			final, err = nil, fmt.Errorf("stage panicked: %v", r)
		}
	}()

	if renderer == nil {
		return nil, fmt.Errorf("no stage renderer")
	}
	if err := stencil.CheckDimensions(base); err != nil {
		return nil, err
	}
	current := stencil.Clone(base)
	for _, stage := range order {
		s.setState(StateRunning, stage)
		stageStart := time.Now()
		next := renderer.Apply(stage, current, features)
		if next == nil {
			return nil, fmt.Errorf("stage %v produced no raster", stage)
		}
		elapsed := time.Since(stageStart)
		current = next
		if s.Superseded(seq) {
			continue
		}
		st := stage
		onStage(current, &st, &elapsed)
	}
	return current, nil
}

// Superseded reports whether a run with sequence seq can no longer commit.
func (s *Scheduler) Superseded(seq uint64) bool {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	return s.superseded(seq)
}

func (s *Scheduler) superseded(seq uint64) bool {
	return seq <= s.floor || seq < s.lastSeq
}

// commit stores final in the last-completed slot unless a later submitted
// run has already been committed.
func (s *Scheduler) commit(seq uint64, final *image.RGBA) bool {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	if s.superseded(seq) {
		return false
	}
	s.last = final
	s.lastSeq = seq
	if s.cache != nil {
		if err := s.cache.Save(s.category, final); err != nil {
			log.Printf("[PIPELINE] failed to cache %s raster: %v", s.category, err)
		}
	}
	return true
}

// Last returns the most recently committed raster and the sequence number
// of the run that produced it.
func (s *Scheduler) Last() (*image.RGBA, uint64) {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	return s.last, s.lastSeq
}

// Restore fills an empty last-completed slot from the cache.
func (s *Scheduler) Restore() (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	s.slotMu.Lock()
	category := s.category
	s.slotMu.Unlock()
	img, err := s.cache.Load(category)
	if err != nil || img == nil {
		return false, err
	}
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	if s.last != nil || s.category != category {
		return false, nil
	}
	s.last = img
	return true, nil
}

// Switch moves the scheduler to another cache category. Every run submitted
// before the call is superseded, and the last-completed slot is replaced by
// the category's cached raster, or emptied when none is cached. A run in
// flight keeps the run lock, so nothing overlaps it.
func (s *Scheduler) Switch(category string) (bool, error) {
	var img *image.RGBA
	var err error
	if s.cache != nil {
		img, err = s.cache.Load(category)
	}
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	s.category = category
	s.floor = s.seq.Load()
	s.last = img
	return img != nil, err
}

// Category is the cache category committed rasters are stored under.
func (s *Scheduler) Category() string {
	s.slotMu.Lock()
	defer s.slotMu.Unlock()
	return s.category
}

func (s *Scheduler) setState(state State, stage stencil.Stage) {
	s.stateMu.Lock()
	s.state, s.current = state, stage
	s.stateMu.Unlock()
}

// State reports what the scheduler is doing and, while running, which
// stage.
func (s *Scheduler) State() (State, stencil.Stage) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state, s.current
}
