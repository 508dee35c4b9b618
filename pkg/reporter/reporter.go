package reporter

import (
	"context"
	"fmt"

	"viralreporter/pkg/browser"
	"viralreporter/pkg/checkpoint"
	"viralreporter/pkg/config"
	apperrors "viralreporter/pkg/errors"
	"viralreporter/pkg/logger"
	"viralreporter/pkg/models"
	"viralreporter/pkg/platform"
	"viralreporter/pkg/platform/instagram"
	"viralreporter/pkg/platform/naverblog"
	"viralreporter/pkg/ratelimit"
	"viralreporter/pkg/session"
	"viralreporter/pkg/storage"
)

// Options control how a run handles previous progress
type Options struct {
	// Resume skips tasks already completed by an interrupted run
	Resume bool

	// ForceRestart discards any existing checkpoint before starting
	ForceRestart bool
}

// serviceFactory builds the service for a platform; swappable in tests
type serviceFactory func(platform.Platform, platform.Deps) (platform.Service, error)

// Reporter runs search jobs
type Reporter struct {
	cfg      *config.Config
	log      logger.Logger
	browser  *browser.Manager
	sessions session.Store
	storage  *storage.Manager
	limiter  ratelimit.Limiter

	// services are created lazily, one per platform, and reused across
	// tasks so authenticated sessions carry over
	services   map[platform.Platform]platform.Service
	newService serviceFactory
}

// New creates a reporter from configuration
func New(cfg *config.Config) (*Reporter, error) {
	log := logger.GetLogger()

	sessions, err := session.NewStore(&cfg.Session)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewManager(cfg.Output.BaseDirectory, cfg.Output.ReportFile)
	if err != nil {
		return nil, err
	}

	r := &Reporter{
		cfg:      cfg,
		log:      log,
		sessions: sessions,
		storage:  store,
		limiter:  ratelimit.NewTokenBucket(cfg.RateLimit.SearchesPerMinute, cfg.RateLimit.BurstSize),
		browser: browser.NewManager(browser.Config{
			Headless:        cfg.Browser.Headless,
			RemoteURL:       cfg.Browser.RemoteURL,
			ViewportWidth:   cfg.Browser.ViewportWidth,
			ViewportHeight:  cfg.Browser.ViewportHeight,
			PageLoadTimeout: cfg.Browser.PageLoadTimeout,
			Logger:          log,
		}),
		services: make(map[platform.Platform]platform.Service),
	}
	r.newService = r.buildService
	return r, nil
}

// Start launches the browser
func (r *Reporter) Start(ctx context.Context) error {
	return r.browser.Start(ctx)
}

// Sessions exposes the session store for the auth subcommands
func (r *Reporter) Sessions() session.Store {
	return r.sessions
}

// Authenticate establishes a session for a single platform without running
// any searches. Used by the auth subcommands.
func (r *Reporter) Authenticate(ctx context.Context, p platform.Platform) error {
	svc, err := r.serviceFor(p)
	if err != nil {
		return err
	}
	return svc.Authenticate(ctx)
}

// Run processes every task of the job in order and writes the report.
// Task failures are recorded on the task and do not stop the run.
func (r *Reporter) Run(ctx context.Context, job *models.SearchJob, opts Options) error {
	cp, err := r.prepareCheckpoint(job, opts)
	if err != nil {
		return err
	}

	job.Start()
	r.log.InfoWithFields("Run started", map[string]interface{}{
		"job":   job.Name,
		"tasks": len(job.Tasks),
	})

	for i, task := range job.Tasks {
		if err := ctx.Err(); err != nil {
			return err
		}

		if cp.IsDone(task) {
			cp.Restore(task)
			r.log.WithFields(map[string]interface{}{
				"platform": task.Platform,
				"keyword":  task.Keyword.Text,
			}).Info("Skipping task completed in previous run")
			continue
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}

		r.runTask(ctx, i, task)

		if err := cp.RecordTask(task); err != nil {
			r.log.WithError(err).Warn("Failed to update checkpoint")
		}
	}

	job.CheckCompleted()

	reportPath, err := r.storage.WriteReport(job)
	if err != nil {
		return err
	}
	r.log.WithField("path", reportPath).Info("Report written")

	if job.Status == models.JobCompleted {
		if err := cp.Delete(); err != nil {
			r.log.WithError(err).Warn("Failed to remove checkpoint")
		}
	}

	found, notFound, failed, _ := job.Counts()
	r.log.InfoWithFields("Run finished", map[string]interface{}{
		"found":     found,
		"not_found": notFound,
		"failed":    failed,
	})
	return nil
}

// runTask executes one task against its platform service. Errors land on the
// task; a partial result (a screenshot taken before the failure) is kept.
func (r *Reporter) runTask(ctx context.Context, index int, task *models.SearchTask) {
	p, err := platform.Parse(task.Platform)
	if err != nil {
		task.MarkError(err)
		return
	}

	svc, err := r.serviceFor(p)
	if err != nil {
		task.MarkError(err)
		return
	}

	result, err := svc.Search(ctx, index, task.Keyword, task.PostsToFind)
	if err != nil {
		if result.Screenshot != nil || len(result.FoundPosts) > 0 {
			task.Result = &result
		}
		task.MarkError(err)
		r.log.WithError(err).WithFields(map[string]interface{}{
			"platform": task.Platform,
			"keyword":  task.Keyword.Text,
			"type":     string(apperrors.TypeOf(err)),
		}).Error("Task failed")
		return
	}

	task.UpdateResult(result)
}

// serviceFor returns the cached service for a platform, creating it on first
// use. An authentication failure is cached inside the service, so later
// tasks on the same platform fail fast instead of reprompting.
func (r *Reporter) serviceFor(p platform.Platform) (platform.Service, error) {
	if svc, ok := r.services[p]; ok {
		return svc, nil
	}
	svc, err := r.newService(p, r.deps())
	if err != nil {
		return nil, err
	}
	r.services[p] = svc
	return svc, nil
}

func (r *Reporter) buildService(p platform.Platform, deps platform.Deps) (platform.Service, error) {
	switch p {
	case platform.Instagram:
		return instagram.New(deps)
	case platform.NaverBlog:
		return naverblog.New(deps)
	default:
		return nil, fmt.Errorf("no service for platform %q", p)
	}
}

func (r *Reporter) deps() platform.Deps {
	return platform.Deps{
		Browser:  r.browser,
		Sessions: r.sessions,
		Storage:  r.storage,
		Config:   r.cfg,
		Logger:   r.log,
	}
}

func (r *Reporter) prepareCheckpoint(job *models.SearchJob, opts Options) (*checkpoint.Checkpoint, error) {
	dir := r.cfg.Output.BaseDirectory

	if opts.ForceRestart && checkpoint.Exists(dir, job.Name) {
		old, err := checkpoint.Load(dir, job.Name)
		if err == nil {
			if err := old.Delete(); err != nil {
				return nil, err
			}
		}
	}

	if opts.Resume && checkpoint.Exists(dir, job.Name) {
		cp, err := checkpoint.Load(dir, job.Name)
		if err != nil {
			r.log.WithError(err).Warn("Checkpoint unreadable, starting fresh")
			return checkpoint.New(dir, job.Name), nil
		}
		r.log.WithField("completed", len(cp.CompletedTasks)).Info("Resuming from checkpoint")
		return cp, nil
	}

	return checkpoint.New(dir, job.Name), nil
}

// Close shuts down the platform services and the browser
func (r *Reporter) Close() error {
	for _, svc := range r.services {
		if err := svc.Close(); err != nil {
			r.log.WithError(err).Warn("Failed to close platform service")
		}
	}
	return r.browser.Close()
}
