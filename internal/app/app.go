// Package app implements the application layer for twine.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/viant/afs"
	"go.trai.ch/twine/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/core/domain"
	"go.trai.ch/twine/internal/core/ports"
	"go.trai.ch/twine/internal/engine/chain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	store        ports.RecordStore
	logger       ports.Logger
	walker       *fs.Walker
	storage      afs.Service
	watcher      ports.Watcher

	workDir    string
	configPath string
	now        func() time.Time

	once  sync.Once
	chain *chain.Chain
	err   error
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	store ports.RecordStore,
	logger ports.Logger,
	walker *fs.Walker,
	storage afs.Service,
) *App {
	return &App{
		configLoader: loader,
		store:        store,
		logger:       logger,
		walker:       walker,
		storage:      storage,
		workDir:      ".",
		now:          time.Now,
	}
}

// WithConfigPath selects the configuration file instead of discovering it.
func (a *App) WithConfigPath(path string) *App {
	a.configPath = path
	return a
}

// WithWorkDir sets the directory configuration discovery starts from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithWatcher enables Watch.
func (a *App) WithWatcher(w ports.Watcher) *App {
	a.watcher = w
	return a
}

// WithClock overrides the clock used to timestamp render records.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// anchored is implemented by record stores that live below the configuration root.
type anchored interface {
	Anchor(root string) error
}

// Chain returns the loader chain described by the configuration, building it on first use.
func (a *App) Chain() (*chain.Chain, error) {
	a.once.Do(func() {
		cfg, err := a.configLoader.Load(a.workDir, a.configPath)
		if err != nil {
			a.err = zerr.Wrap(err, "failed to load configuration")
			return
		}

		if s, ok := a.store.(anchored); ok {
			if err := s.Anchor(cfg.Root); err != nil {
				a.err = zerr.With(zerr.Wrap(err, "failed to open render index"), "root", cfg.Root)
				return
			}
		}

		c, err := BuildChain(cfg, a.walker, a.storage)
		if err != nil {
			a.err = zerr.Wrap(err, "failed to build loader chain")
			return
		}

		a.logger.Info(fmt.Sprintf("loader chain ready with %d loader(s)", len(c.Loaders())))
		a.chain = c
	})
	return a.chain, a.err
}

// Show returns the source of the named template.
func (a *App) Show(ctx context.Context, name string) (*domain.Source, error) {
	c, err := a.Chain()
	if err != nil {
		return nil, err
	}
	return c.Source(ctx, name)
}

// Key returns the cache key of the named template.
func (a *App) Key(ctx context.Context, name string) (string, error) {
	c, err := a.Chain()
	if err != nil {
		return "", err
	}
	return c.CacheKey(ctx, name)
}

// Exists reports, for each name, whether the chain has a template with that name.
func (a *App) Exists(ctx context.Context, names []string) ([]bool, error) {
	if len(names) == 0 {
		return nil, domain.ErrNoTemplatesSpecified
	}

	c, err := a.Chain()
	if err != nil {
		return nil, err
	}

	found := make([]bool, len(names))
	for i, name := range names {
		found[i] = c.Exists(ctx, name)
	}
	return found, nil
}

// lister is implemented by loaders able to enumerate their templates.
type lister interface {
	List() []string
}

// List returns the names of all templates the chain's enumerable loaders hold, sorted and deduplicated.
// Loaders that cannot enumerate their content, such as URL loaders, contribute nothing.
func (a *App) List() ([]string, error) {
	c, err := a.Chain()
	if err != nil {
		return nil, err
	}

	var names []string
	for _, l := range c.Loaders() {
		if ls, ok := l.(lister); ok {
			names = append(names, ls.List()...)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Loaders describes the chain's loaders in order.
func (a *App) Loaders() ([]string, error) {
	c, err := a.Chain()
	if err != nil {
		return nil, err
	}

	loaders := c.Loaders()
	descriptions := make([]string, len(loaders))
	for i, l := range loaders {
		if s, ok := l.(fmt.Stringer); ok {
			descriptions[i] = s.String()
			continue
		}
		descriptions[i] = fmt.Sprintf("%T", l)
	}
	return descriptions, nil
}

// CheckResult is the outcome of checking one template against the render index.
type CheckResult struct {
	Name      string
	CacheKey  string
	Freshness domain.Freshness
	// Reason explains a missing template.
	Reason string
}

// Check compares each template with its render record, then records the
// current state. With no names, every listable template is checked.
// Results are returned in the order of names.
func (a *App) Check(ctx context.Context, names []string) ([]CheckResult, error) {
	c, err := a.Chain()
	if err != nil {
		return nil, err
	}

	if len(names) == 0 {
		if names, err = a.List(); err != nil {
			return nil, err
		}
		if len(names) == 0 {
			return nil, domain.ErrNoTemplatesSpecified
		}
	}

	results := make([]CheckResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, name := range names {
		g.Go(func() error {
			res, err := a.check(gctx, c, name)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *App) check(ctx context.Context, c *chain.Chain, name string) (CheckResult, error) {
	res := CheckResult{Name: name}

	key, err := c.CacheKey(ctx, name)
	if err != nil {
		var resErr *domain.ResolutionError
		if errors.As(err, &resErr) {
			res.Freshness = domain.FreshnessMissing
			res.Reason = resErr.Error()
			return res, nil
		}
		return res, err
	}
	res.CacheKey = key

	record, err := a.store.Get(name)
	if err != nil {
		return res, zerr.With(zerr.Wrap(err, "failed to read render record"), "name", name)
	}

	switch {
	case record == nil:
		res.Freshness = domain.FreshnessNew
	case record.CacheKey != key:
		res.Freshness = domain.FreshnessStale
	default:
		fresh, err := c.IsFresh(ctx, name, record.Timestamp)
		if err != nil {
			res.Freshness = domain.FreshnessMissing
			res.Reason = err.Error()
			return res, nil
		}
		res.Freshness = domain.FreshnessStale
		if fresh {
			res.Freshness = domain.FreshnessFresh
		}
	}

	if res.Freshness == domain.FreshnessFresh {
		return res, nil
	}

	if err := a.store.Put(domain.RenderRecord{Name: name, CacheKey: key, Timestamp: a.now()}); err != nil {
		return res, zerr.With(zerr.Wrap(err, "failed to record template"), "name", name)
	}
	a.logger.Info(fmt.Sprintf("recorded %s (%s)", name, res.Freshness))
	return res, nil
}

// watchable is implemented by loaders reading from local directories.
type watchable interface {
	Dirs() []string
	Reset()
}

// Watch runs Check once, then again whenever files below the chain's template
// directories change, handing each round's results to report. It returns nil
// once ctx is cancelled.
func (a *App) Watch(ctx context.Context, names []string, report func([]CheckResult)) error {
	if a.watcher == nil {
		return zerr.New("file watching is not available")
	}

	c, err := a.Chain()
	if err != nil {
		return err
	}

	var dirs []string
	var targets []watchable
	for _, l := range c.Loaders() {
		if w, ok := l.(watchable); ok {
			targets = append(targets, w)
			dirs = append(dirs, w.Dirs()...)
		}
	}
	if len(dirs) == 0 {
		return domain.ErrNothingToWatch
	}

	round := func() error {
		for _, t := range targets {
			t.Reset()
		}
		results, err := a.Check(ctx, names)
		if err != nil && !(len(names) == 0 && errors.Is(err, domain.ErrNoTemplatesSpecified)) {
			return err
		}
		report(results)
		return nil
	}

	if err := round(); err != nil {
		return err
	}

	if err := a.watcher.Start(ctx, dirs); err != nil {
		return zerr.Wrap(err, "failed to start watcher")
	}
	defer func() { _ = a.watcher.Stop() }()
	a.logger.Info(fmt.Sprintf("watching %d template directories", len(dirs)))

	var mu sync.Mutex
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(paths []string) {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		a.logger.Info(fmt.Sprintf("%d path(s) changed", len(paths)))
		if err := round(); err != nil {
			a.logger.Error(err)
		}
	})

	for event := range a.watcher.Events() {
		debouncer.Add(event.Path)
	}
	debouncer.Flush()
	return nil
}

// TraceResult is the outcome of a traced lookup.
type TraceResult struct {
	Source *domain.Source
	// Err is the resolution failure, if any.
	Err   error
	Spans []telemetry.SpanRecord
}

// Trace resolves name through an instrumented copy of the chain and returns
// every loader call made along the way.
func (a *App) Trace(ctx context.Context, name string) (*TraceResult, error) {
	c, err := a.Chain()
	if err != nil {
		return nil, err
	}

	rec := telemetry.NewRecorder()
	tp := telemetry.NewProvider(rec)
	defer func() { _ = tp.Shutdown(context.WithoutCancel(ctx)) }()
	tracer := tp.Tracer("twine")

	traced := chain.NewChain()
	for _, l := range c.Loaders() {
		traced.AddLoader(telemetry.Wrap(l, tracer))
	}

	ctx, done := telemetry.StartOperation(ctx, tracer, "chain.source", name)
	src, err := traced.Source(ctx, name)
	done(err)

	return &TraceResult{Source: src, Err: err, Spans: rec.Spans()}, nil
}
