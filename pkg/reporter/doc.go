// Package reporter orchestrates a full verification run.
//
// The Reporter struct is the main component that:
//   - Loads the YAML task file into a search job
//   - Owns the shared browser instance all platform services use
//   - Walks the task list in order, pacing searches with a rate limiter
//   - Dispatches each task to its platform's search service
//   - Records progress in a checkpoint so interrupted runs can resume
//   - Writes the final report.json
//
// Usage:
//
//	cfg, err := config.Load("", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	job, err := reporter.LoadJob("campaign.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r, err := reporter.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	if err := r.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := r.Run(ctx, job, reporter.Options{}); err != nil {
//	    log.Fatal(err)
//	}
//
// Error Handling:
//
// A failing task never aborts the run. The error is recorded on the task,
// the report shows what happened, and the next task proceeds. Only context
// cancellation and report-write failures stop a run early.
//
// Sessions:
//
// Platform services are created once per run and cached, so a platform that
// authenticates interactively asks the user to log in at most once no matter
// how many keywords it searches.
package reporter
