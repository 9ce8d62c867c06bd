package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/fixstep/internal/config"
	"github.com/vovakirdan/fixstep/internal/core"
	"github.com/vovakirdan/fixstep/internal/input"
	"github.com/vovakirdan/fixstep/internal/loop"
	"github.com/vovakirdan/fixstep/internal/registry"
	"github.com/vovakirdan/fixstep/internal/storage"
)

// footerRows is the number of terminal rows kept for the host footer.
const footerRows = 1

// Options configures a hosted run.
type Options struct {
	TargetStep      time.Duration
	MaxFrameTime    time.Duration
	PollInterval    time.Duration
	KeyReleaseDelay time.Duration
	ScrollPolicy    input.ScrollPolicy
	CloseKeys       []string

	// Suspend enables ctrl+z. Only meaningful for a local terminal.
	Suspend bool

	Window core.WindowID
	User   string
	Seed   int64

	Logger *log.Logger
	// Store receives a RunRecord when the run ends. Nil disables recording.
	Store *storage.Store
	// Now is the clock. Nil means time.Now.
	Now func() time.Time
}

// OptionsFromConfig builds host options from the configuration.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	step, err := cfg.Loop.Step()
	if err != nil {
		return Options{}, err
	}
	policy, err := cfg.Input.Scroll()
	if err != nil {
		return Options{}, err
	}

	return Options{
		TargetStep:      step,
		MaxFrameTime:    cfg.Loop.MaxFrameTime,
		PollInterval:    cfg.Loop.PollInterval,
		KeyReleaseDelay: cfg.Input.KeyReleaseDelay,
		ScrollPolicy:    policy,
		CloseKeys:       cfg.Input.CloseKeys,
	}, nil
}

// RunReport summarizes a finished run.
type RunReport struct {
	AppID      string
	User       string
	Reason     string // One of the storage.Reason* constants
	Err        error  // Application error when Reason is storage.ReasonFailed
	Stats      loop.Stats
	TargetStep time.Duration
	Duration   time.Duration
}

// Record converts the report to a storage record.
func (r RunReport) Record() storage.RunRecord {
	rec := storage.RunRecord{
		AppID:        r.AppID,
		User:         r.User,
		Ticks:        int64(r.Stats.Ticks),
		Updates:      int64(r.Stats.Updates),
		Renders:      int64(r.Stats.Renders),
		ClampedTicks: int64(r.Stats.ClampedTicks),
		TargetStep:   r.TargetStep,
		Duration:     r.Duration,
		Reason:       r.Reason,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}

// runState records how a run ended, exactly once. It is shared by every copy
// of the Model and by the SSH session that owns it.
type runState struct {
	mu       sync.Mutex
	done     bool
	report   RunReport
	started  time.Time
	launcher *launcher
	store    *storage.Store
	logger   *log.Logger
}

// finish records the end of the run. Later calls are ignored.
func (r *runState) finish(reason string, err error, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return
	}
	r.done = true

	r.report.Reason = reason
	r.report.Err = err
	r.report.Duration = now.Sub(r.started)
	if d := r.launcher.Driver(); d != nil {
		r.report.Stats = d.Stats()
		r.report.TargetStep = d.TargetStep()
	}

	r.logger.Info("run finished",
		"app", r.report.AppID,
		"reason", reason,
		"updates", r.report.Stats.Updates,
		"renders", r.report.Stats.Renders,
		"duration", r.report.Duration.Round(time.Millisecond),
	)

	if r.store == nil {
		return
	}
	if _, saveErr := r.store.SaveRun(r.report.Record()); saveErr != nil {
		r.logger.Warn("could not save run", "error", saveErr)
	}
}

// Report returns the recorded report and whether the run has ended.
func (r *runState) Report() (RunReport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report, r.done
}

// Model is the Bubble Tea model hosting one app.
type Model struct {
	app      registry.App
	opts     Options
	launcher *launcher
	events   *translator
	keys     KeyMap
	help     help.Model
	run      *runState
	quitting bool
}

// NewModel creates a Bubble Tea model for app. The app is initialized when
// the first window size arrives.
func NewModel(app registry.App, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Seed == 0 {
		opts.Seed = opts.Now().UnixNano()
	}

	l := newLauncher(app, launchConfig{
		TargetStep:   opts.TargetStep,
		MaxFrameTime: opts.MaxFrameTime,
		ScrollPolicy: opts.ScrollPolicy,
		Window:       opts.Window,
		User:         opts.User,
		Seed:         opts.Seed,
		Logger:       opts.Logger,
	})
	keys := NewKeyMap(opts.CloseKeys, opts.Suspend)

	return Model{
		app:      app,
		opts:     opts,
		launcher: l,
		events:   newTranslator(opts.Window, opts.KeyReleaseDelay, footerRows, keys),
		keys:     keys,
		help:     help.New(),
		run: &runState{
			report:   RunReport{AppID: app.ID(), User: opts.User, TargetStep: opts.TargetStep},
			started:  opts.Now(),
			launcher: l,
			store:    opts.Store,
			logger:   opts.Logger,
		},
	}
}

// Init starts the idle tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.opts.PollInterval)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	now := m.opts.Now()

	switch msg := msg.(type) {
	case TickMsg:
		return m.handleTick(now)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		if m.launcher.Driver() == nil {
			w, h := m.events.surface(msg)
			if _, err := m.launcher.Resume(w, h, now); err != nil {
				m.opts.Logger.Error("app failed to start", "app", m.app.ID(), "error", err)
				return m.finish(storage.ReasonFailed, err, now)
			}
			return m, nil
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Suspend) {
			return m.suspend(now)
		}
		if m.launcher.Driver() == nil && key.Matches(msg, m.keys.Close) {
			return m.finish(storage.ReasonClosed, nil, now)
		}

	case tea.ResumeMsg:
		if d := m.launcher.Driver(); d != nil {
			d.Resume(now)
		}
	}

	return m.deliver(m.events.Translate(msg, now), storage.ReasonClosed, now)
}

// deliver feeds events to the driver. reason is recorded if one of them
// ends the run with Exit.
func (m Model) deliver(events []core.Event, reason string, now time.Time) (tea.Model, tea.Cmd) {
	d := m.launcher.Driver()
	if d == nil {
		return m, nil
	}
	for _, ev := range events {
		sig, err := d.ProcessEvent(ev)
		switch sig {
		case loop.Exit:
			return m.finish(reason, nil, now)
		case loop.Failed:
			return m.finish(storage.ReasonFailed, err, now)
		}
	}
	return m, nil
}

// handleTick synthesizes overdue key releases, then runs one idle tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	d := m.launcher.Driver()
	if d == nil {
		return m, tickCmd(m.opts.PollInterval)
	}

	next, cmd := m.deliver(m.events.Expire(now), storage.ReasonClosed, now)
	if nm, ok := next.(Model); ok && nm.quitting {
		return nm, cmd
	}

	sig, err := d.AdvanceTick(now)
	switch sig {
	case loop.Exit:
		return m.finish(storage.ReasonExit, nil, now)
	case loop.Failed:
		return m.finish(storage.ReasonFailed, err, now)
	}
	return m, tickCmd(m.opts.PollInterval)
}

// suspend tells the app, releases held input and backgrounds the program.
func (m Model) suspend(now time.Time) (tea.Model, tea.Cmd) {
	events := append(m.events.ReleaseAll(), core.SuspendedEvent{})
	next, cmd := m.deliver(events, storage.ReasonClosed, now)
	if nm, ok := next.(Model); ok && nm.quitting {
		return nm, cmd
	}
	return m, tea.Suspend
}

func (m Model) finish(reason string, err error, now time.Time) (tea.Model, tea.Cmd) {
	m.run.finish(reason, err, now)
	m.quitting = true
	return m, tea.Quit
}

// Report returns how the run ended and whether it has.
func (m Model) Report() (RunReport, bool) {
	return m.run.Report()
}

// View renders the app's last frame and the footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	d := m.launcher.Driver()
	if d == nil {
		return fmt.Sprintf("starting %s...", m.app.Title())
	}
	return RenderScreen(m.app.Frame()) + "\n" + m.footer(d.Stats())
}

func (m Model) footer(st loop.Stats) string {
	stats := fmt.Sprintf(" %d upd  %d rnd  %d clamped  ", st.Updates, st.Renders, st.ClampedTicks)
	return footerTitleStyle.Render(m.app.Title()) + footerStatStyle.Render(stats) + m.help.View(m.keys)
}

// Run hosts app in the local terminal until it exits, fails or is closed.
// An application failure is returned as an error alongside the report.
func Run(app registry.App, opts Options) (RunReport, error) {
	opts.Suspend = true
	model := NewModel(app, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)

	_, runErr := p.Run()
	model.run.finish(storage.ReasonDisconnect, nil, model.opts.Now())
	report, _ := model.Report()

	if runErr != nil {
		return report, fmt.Errorf("tui: %w", runErr)
	}
	if report.Err != nil {
		return report, fmt.Errorf("tui: %s failed: %w", app.ID(), report.Err)
	}
	return report, nil
}
