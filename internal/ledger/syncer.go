package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/five82/sessiondeck/internal/content"
	"github.com/five82/sessiondeck/internal/logging"
	"github.com/five82/sessiondeck/internal/metrics"
)

// Stage is the position of a sync run in its lifecycle.
type Stage int

const (
	StageIdle Stage = iota
	StageLedgerFetched
	StageDiffed
	StageUploading
	StageDone
	StageSkipped
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageLedgerFetched:
		return "ledger-fetched"
	case StageDiffed:
		return "diffed"
	case StageUploading:
		return "uploading"
	case StageDone:
		return "done"
	case StageSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Report describes one sync run.
type Report struct {
	RunID      string
	Stage      Stage
	StartedAt  time.Time
	Ledger     int // rows already in the ledger
	Candidates int // sessions of allowed events in the fetched content
	Scheduled  int
	Uploaded   int
	Failed     int
	Cancelled  int
	Pending    []string // identifiers scheduled for upload, in order
	Err        error    // ledger read failure for skipped runs
}

// Settled returns the number of scheduled uploads that reached an outcome.
func (r Report) Settled() int {
	return r.Uploaded + r.Failed + r.Cancelled
}

// Syncer mirrors freshly fetched sessions into the ledger.
type Syncer struct {
	store    Store
	sched    Scheduler
	events   []string
	stagger  time.Duration
	log      zerolog.Logger
	onReport func(Report)

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu        sync.Mutex
	cancelRun context.CancelFunc
	last      Report

	// publishMu keeps hook calls in the order reports were accepted.
	publishMu sync.Mutex
}

// Option customises a Syncer.
type Option func(*Syncer)

// WithScheduler replaces the timer-based scheduler.
func WithScheduler(s Scheduler) Option {
	return func(y *Syncer) {
		if s != nil {
			y.sched = s
		}
	}
}

// WithEvents sets the event allow-list.
func WithEvents(events []string) Option {
	return func(y *Syncer) {
		if len(events) > 0 {
			y.events = append([]string(nil), events...)
		}
	}
}

// WithStagger sets the spacing between uploads.
func WithStagger(d time.Duration) Option {
	return func(y *Syncer) { y.stagger = d }
}

// WithLogger sets the syncer logger.
func WithLogger(l zerolog.Logger) Option {
	return func(y *Syncer) { y.log = l }
}

// WithReportHook registers fn to receive report updates. Updates from a run
// superseded by a newer one are not delivered. fn is called from sync and
// upload goroutines, one call at a time.
func WithReportHook(fn func(Report)) Option {
	return func(y *Syncer) { y.onReport = fn }
}

// NewSyncer builds a Syncer writing to store.
func NewSyncer(store Store, opts ...Option) *Syncer {
	ctx, stop := context.WithCancel(context.Background())
	s := &Syncer{
		store:   store,
		sched:   timerScheduler{},
		events:  append([]string(nil), DefaultEvents...),
		stagger: DefaultStagger,
		log:     logging.WithComponent("ledger"),
		ctx:     ctx,
		stop:    stop,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trigger starts a run for contents in the background. Pending uploads of the
// previous run are cancelled; the new diff picks up whatever they missed.
func (s *Syncer) Trigger(contents content.Contents) {
	s.mu.Lock()
	if s.cancelRun != nil {
		s.cancelRun()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelRun = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(ctx, contents)
	}()
}

// Run reads the ledger, diffs it against contents and schedules the uploads.
// It returns once uploads are scheduled; they complete in the background.
// Ledger read failures skip the run and are only logged.
func (s *Syncer) Run(ctx context.Context, contents content.Contents) Report {
	report := Report{RunID: uuid.NewString(), Stage: StageIdle, StartedAt: time.Now()}
	log := s.log.With().Str(logging.FieldRunID, report.RunID).Logger()

	// Close cancels the run whatever context the caller passed.
	ctx, cancel := context.WithCancel(ctx)
	unlink := context.AfterFunc(s.ctx, cancel)
	release := func() {
		unlink()
		cancel()
	}

	existing, err := s.store.List(ctx)
	if err != nil {
		report.Stage = StageSkipped
		report.Err = err
		metrics.RecordSyncRun("skipped")
		log.Warn().Err(err).Str(logging.FieldEvent, "sync.skipped").Msg("ledger read failed; skipping sync")
		release()
		s.publish(report)
		return report
	}
	report.Stage = StageLedgerFetched
	report.Ledger = len(existing)

	candidates := Candidates(contents, s.events)
	fresh := Diff(existing, candidates)
	report.Stage = StageDiffed
	report.Candidates = len(candidates)
	metrics.RecordSyncRun("diffed")
	log.Info().
		Str(logging.FieldEvent, "sync.diffed").
		Int("ledger", report.Ledger).
		Int("candidates", report.Candidates).
		Int("new", len(fresh)).
		Msg("ledger diff computed")

	tasks := Plan(fresh, s.stagger)
	if len(tasks) == 0 {
		report.Stage = StageDone
		release()
		s.publish(report)
		return report
	}

	report.Stage = StageUploading
	report.Scheduled = len(tasks)
	report.Pending = make([]string, len(tasks))
	for i, task := range tasks {
		report.Pending[i] = task.Record.Identifier
	}
	prog := &progress{syncer: s, report: report, release: release}
	s.publish(report)

	for _, task := range tasks {
		s.schedule(ctx, log, task, prog)
	}
	return report
}

// Last returns the most recent report.
func (s *Syncer) Last() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Wait blocks until every triggered run and scheduled upload has settled.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// Close cancels pending uploads and waits for in-flight ones.
func (s *Syncer) Close() {
	s.stop()
	s.wg.Wait()
}

type upload struct {
	mu      sync.Mutex
	settled bool
	stop    func() bool
	unwatch func() bool
}

func (u *upload) settle() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.settled {
		return false
	}
	u.settled = true
	return true
}

func (s *Syncer) schedule(ctx context.Context, log zerolog.Logger, task UploadTask, prog *progress) {
	s.wg.Add(1)
	metrics.RecordUpload("scheduled")
	rec := task.Record

	u := &upload{}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stop = s.sched.AfterFunc(task.Delay, func() {
		if !u.settle() {
			return
		}
		defer s.wg.Done()
		u.unwatch()
		if err := s.store.Append(ctx, rec); err != nil {
			if ctx.Err() != nil {
				metrics.RecordUpload("cancelled")
				log.Debug().
					Str(logging.FieldEvent, "sync.upload_cancelled").
					Str(logging.FieldIdentifier, rec.Identifier).
					Msg("ledger upload cancelled")
				prog.settle(outcomeCancelled)
				return
			}
			metrics.RecordUpload("failed")
			log.Warn().Err(err).
				Str(logging.FieldEvent, "sync.upload_failed").
				Str(logging.FieldIdentifier, rec.Identifier).
				Msg("ledger upload failed")
			prog.settle(outcomeFailed)
			return
		}
		metrics.RecordUpload("succeeded")
		log.Debug().
			Str(logging.FieldEvent, "sync.uploaded").
			Str(logging.FieldIdentifier, rec.Identifier).
			Int("assets", len(rec.Assets())).
			Msg("ledger row uploaded")
		prog.settle(outcomeUploaded)
	})
	u.unwatch = context.AfterFunc(ctx, func() {
		if !u.settle() {
			return
		}
		defer s.wg.Done()
		u.stop()
		metrics.RecordUpload("cancelled")
		prog.settle(outcomeCancelled)
	})
}

type outcome int

const (
	outcomeUploaded outcome = iota
	outcomeFailed
	outcomeCancelled
)

// progress tracks upload outcomes for one run.
type progress struct {
	syncer  *Syncer
	release func()
	mu      sync.Mutex
	report  Report
}

func (p *progress) settle(o outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch o {
	case outcomeUploaded:
		p.report.Uploaded++
	case outcomeFailed:
		p.report.Failed++
	case outcomeCancelled:
		p.report.Cancelled++
	}
	if p.report.Settled() == p.report.Scheduled {
		p.report.Stage = StageDone
	}
	snapshot := p.report

	if snapshot.Stage == StageDone {
		p.release()
		p.syncer.log.Info().
			Str(logging.FieldRunID, snapshot.RunID).
			Str(logging.FieldEvent, "sync.done").
			Int("uploaded", snapshot.Uploaded).
			Int("failed", snapshot.Failed).
			Int("cancelled", snapshot.Cancelled).
			Msg("sync run finished")
	}
	p.syncer.publish(snapshot)
}

func (s *Syncer) publish(r Report) {
	r.Pending = append([]string(nil), r.Pending...)
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	// Late updates from a superseded run must not hide the newer one.
	accepted := r.RunID == s.last.RunID || !r.StartedAt.Before(s.last.StartedAt)
	if accepted {
		s.last = r
	}
	s.mu.Unlock()
	if accepted && s.onReport != nil {
		s.onReport(r)
	}
}
