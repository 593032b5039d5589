package forksync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-sync/pkg/config"
	"github.com/mattsolo1/grove-sync/pkg/exec"
	"github.com/mattsolo1/grove-sync/pkg/prompt"
)

// Options wires an Orchestrator to its collaborators. Zero values select the
// production implementation.
type Options struct {
	// Dir is where the repository is looked up. Defaults to the working directory.
	Dir string
	// Executor runs git. Defaults to exec.RealCommandExecutor.
	Executor exec.CommandExecutor
	// Confirmer asks the operator questions. Defaults to a line reader on stdin.
	Confirmer prompt.Confirmer
	// Out receives human-readable progress. Defaults to stdout.
	Out io.Writer
	// Logger receives diagnostics. Defaults to a warn-level logger on stderr.
	Logger *logrus.Logger
	// AssumeYes answers the final start confirmation. Risk prompts are
	// always asked.
	AssumeYes bool
	// RunID tags logs and the stash entry. Defaults to a random UUID.
	RunID string
	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Orchestrator runs one fork sync.
type Orchestrator struct {
	cfg    config.Config
	opts   Options
	rep    *Reporter
	log    *logrus.Entry
	runner *Runner
	stash  *StashRestorer
}

// New returns an Orchestrator for cfg.
func New(cfg config.Config, opts Options) *Orchestrator {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Executor == nil {
		opts.Executor = &exec.RealCommandExecutor{}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Confirmer == nil {
		opts.Confirmer = prompt.NewLineConfirmer(os.Stdin, opts.Out)
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetLevel(logrus.WarnLevel)
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	rep := NewReporter(opts.Out)
	log := opts.Logger.WithFields(logrus.Fields{
		"run_id":  opts.RunID,
		"project": cfg.ProjectName,
	})
	runner := NewRunner(opts.Executor, opts.Dir, rep, log)

	return &Orchestrator{
		cfg:    cfg,
		opts:   opts,
		rep:    rep,
		log:    log,
		runner: runner,
		stash:  NewStashRestorer(runner, rep, "grove-sync auto-stash "+opts.RunID),
	}
}

// Run performs the sync. The returned error is nil on success and is always
// already reported to the operator; use ExitCode to turn it into a process
// status. Stashed changes are restored before Run returns, whatever happened.
func (o *Orchestrator) Run(ctx context.Context) (summary *Summary, err error) {
	start := o.opts.Now()
	summary = &Summary{
		RunID:   o.opts.RunID,
		Project: o.cfg.ProjectName,
		Started: start,
		Total:   len(Steps(o.cfg)),
	}

	o.rep.Banner(o.cfg.ProjectName, start)
	o.log.WithField("dir", o.opts.Dir).Debug("sync started")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnexpected, r)
			o.rep.Failure("Unexpected error: %v", r)
			o.log.WithField("panic", r).Error("recovered from panic")
		}

		restored, restoreErr := o.stash.Restore(context.WithoutCancel(ctx))
		summary.Stashed = o.stash.Stashed()
		summary.Restored = restored
		if restoreErr != nil {
			o.rep.Failure("%v", restoreErr)
			err = errors.Join(err, restoreErr)
		}

		o.finish(summary, err, start)
		err = markReported(err)
	}()

	steps := []func(context.Context) error{
		o.validateRepository,
		o.verifyOrigin,
		o.checkWorkingTree,
		o.ensureUpstream,
		o.confirmStart,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return summary, err
		}
	}

	o.rep.Section("Syncing")
	return summary, NewPipeline(o.runner, o.rep, Steps(o.cfg)).Run(ctx, summary)
}

func (o *Orchestrator) finish(summary *Summary, err error, start time.Time) {
	summary.finish(err, o.opts.Now().Sub(start))

	switch summary.Status {
	case StatusAborted:
		o.rep.Info("\n%s", "Sync cancelled. Nothing was changed after the prompt.")
	case StatusInterrupted:
		o.rep.Warning("Sync interrupted.")
	}
	o.rep.Summary(summary)

	entry := o.log.WithFields(logrus.Fields{
		"status":    summary.Status.String(),
		"attempted": summary.Attempted,
		"succeeded": summary.Succeeded,
		"elapsed":   summary.Elapsed,
	})
	if err != nil {
		entry = entry.WithError(err).WithField("error_kind", Classify(err).String())
	}
	if Classify(err) == KindUnexpected {
		entry.Error("sync finished")
	} else {
		entry.Debug("sync finished")
	}
}

// confirm asks a question, turning an interrupted prompt into ErrInterrupted.
func (o *Orchestrator) confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	ok, err := o.opts.Confirmer.Confirm(ctx, question, defaultYes)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return false, ErrInterrupted
		}
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return ok, nil
}

// validateRepository checks that git is installed and that the directory is
// inside a working tree, then moves the runner to the repository root.
func (o *Orchestrator) validateRepository(ctx context.Context) error {
	o.rep.Section("Checking repository")

	if _, err := o.opts.Executor.LookPath(gitProgram); err != nil {
		o.rep.Failure("git is not installed or not on PATH")
		return fmt.Errorf("%w: %v", ErrGitNotFound, err)
	}

	result, err := o.runner.RunQuiet(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		o.rep.Failure("Could not run git: %v", err)
		return err
	}
	if !result.Success() || result.Output() == "" {
		o.rep.Failure("%s is not inside a git repository", o.opts.Dir)
		o.rep.Hints("Clone your fork, not the upstream project, and run grove-sync inside it:", []string{
			"git clone <your-fork-url>",
			"cd <your-fork-directory>",
			"grove-sync",
		})
		return fmt.Errorf("%w: %s", ErrNotRepository, o.opts.Dir)
	}

	root := result.Output()
	o.runner = o.runner.WithDir(root)
	o.stash.runner = o.runner
	o.log = o.log.WithField("repo", root)
	o.rep.Success("Repository: %s", root)
	return nil
}

// verifyOrigin resolves the origin URL and asks for confirmation when it is
// the upstream repository itself.
func (o *Orchestrator) verifyOrigin(ctx context.Context) error {
	result, err := o.runner.RunQuiet(ctx, "remote", "get-url", o.cfg.OriginRemote)
	if err != nil {
		o.rep.Failure("Could not run git: %v", err)
		return err
	}
	if !result.Success() || result.Output() == "" {
		o.rep.Failure("No %q remote is configured", o.cfg.OriginRemote)
		o.rep.Hints("This checkout does not look like a clone of your fork. Either:", []string{
			"clone your fork and run grove-sync there, or",
			fmt.Sprintf("git remote add %s <your-fork-url>", o.cfg.OriginRemote),
		})
		return fmt.Errorf("%w: %s", ErrNoOrigin, o.cfg.OriginRemote)
	}

	origin := result.Output()
	o.rep.Success("%s: %s", o.cfg.OriginRemote, origin)

	if origin != o.cfg.UpstreamURL {
		return nil
	}

	o.rep.Warning("%s points at the upstream repository itself (%s).", o.cfg.OriginRemote, origin)
	o.rep.Warning("You appear to be working in a clone of upstream, not of your fork.")
	o.rep.Warning("The final step would push to a repository you may not own.")
	ok, err := o.confirm(ctx, "Continue anyway?", false)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

// checkWorkingTree handles uncommitted changes: stash them, ask, or proceed.
func (o *Orchestrator) checkWorkingTree(ctx context.Context) error {
	o.rep.Section("Checking working tree")

	result, err := o.runner.RunQuiet(ctx, "status", "--porcelain")
	if err != nil {
		o.rep.Failure("Could not run git: %v", err)
		return err
	}
	if !result.Success() {
		o.rep.Failure("Could not read working tree status")
		o.rep.Detail("", result.ErrorOutput())
		return &StepError{Step: "status", Result: result}
	}

	changes := result.Output()
	if changes == "" {
		o.rep.Success("Working tree is clean")
		return nil
	}

	o.rep.Warning("Uncommitted changes detected:")
	o.rep.Detail("", changes)

	if o.cfg.AutoStash {
		if err := o.stash.Stash(ctx); err != nil {
			return err
		}
		if branch := o.currentBranch(ctx); branch != "" && branch != o.cfg.MainBranch {
			o.rep.Warning("Changes were stashed on %s but will be restored on %s after the sync.", branch, o.cfg.MainBranch)
			o.rep.Hints("To move them back afterwards:", []string{
				"git stash",
				"git checkout " + branch,
				"git stash pop",
			})
			return nil
		}
		o.rep.Info("Changes will be restored when the sync finishes.")
		return nil
	}

	ok, err := o.confirm(ctx, "Continue anyway? Uncommitted changes may be lost", false)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

// ensureUpstream makes sure the upstream remote exists and explains the plan.
// Existing remotes are never removed or renamed.
func (o *Orchestrator) ensureUpstream(ctx context.Context) error {
	o.rep.Section("Checking remotes")

	remotes, listing, err := o.listRemotes(ctx)
	if err != nil {
		return err
	}

	name := o.cfg.UpstreamRemote
	if _, ok := remotes[name]; !ok {
		if !o.cfg.AutoAddUpstream {
			o.rep.Failure("No %q remote is configured", name)
			o.rep.Hints("Add it and run grove-sync again:", []string{
				fmt.Sprintf("git remote add %s %s", name, o.cfg.UpstreamURL),
			})
			return fmt.Errorf("%w: %s", ErrUpstreamMissing, name)
		}

		result, err := o.runner.Run(ctx, fmt.Sprintf("Add %s remote %s", name, o.cfg.UpstreamURL),
			"remote", "add", name, o.cfg.UpstreamURL)
		if err != nil {
			return err
		}
		if !result.Success() {
			return &StepError{Step: "remote add", Result: result}
		}

		if _, listing, err = o.listRemotes(ctx); err != nil {
			return err
		}
	} else {
		o.checkUpstreamURL(ctx)
	}

	o.rep.Success("Remotes configured")
	o.rep.Detail("", listing)

	o.rep.Section("Sync plan")
	o.rep.Info("  1. fetch the latest commits from %s (%s)", name, o.cfg.UpstreamURL)
	o.rep.Info("  2. merge %s into your local %s", o.cfg.UpstreamBranch(), o.cfg.MainBranch)
	o.rep.Info("  3. push %s to %s (your fork)", o.cfg.MainBranch, o.cfg.OriginRemote)
	return nil
}

// currentBranch returns the checked-out branch, or "" when it cannot be told
// (detached HEAD, or git failed).
func (o *Orchestrator) currentBranch(ctx context.Context) string {
	result, err := o.runner.RunQuiet(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil || !result.Success() {
		return ""
	}
	if branch := result.Output(); branch != "HEAD" {
		return branch
	}
	return ""
}

// listRemotes returns the configured remote names and the raw listing.
func (o *Orchestrator) listRemotes(ctx context.Context) (map[string]struct{}, string, error) {
	result, err := o.runner.RunQuiet(ctx, "remote", "-v")
	if err != nil {
		o.rep.Failure("Could not run git: %v", err)
		return nil, "", err
	}
	if !result.Success() {
		o.rep.Failure("Could not list remotes")
		o.rep.Detail("", result.ErrorOutput())
		return nil, "", &StepError{Step: "remote -v", Result: result}
	}
	return parseRemotes(result.Output()), result.Output(), nil
}

// checkUpstreamURL warns when the upstream remote points somewhere other than
// the configured URL. It only advises.
func (o *Orchestrator) checkUpstreamURL(ctx context.Context) {
	result, err := o.runner.RunQuiet(ctx, "remote", "get-url", o.cfg.UpstreamRemote)
	if err != nil || !result.Success() {
		return
	}
	if url := result.Output(); url != o.cfg.UpstreamURL {
		o.rep.Warning("%s points at %s, not the configured %s", o.cfg.UpstreamRemote, url, o.cfg.UpstreamURL)
	}
}

// confirmStart asks the final go/no-go question. An empty answer proceeds.
func (o *Orchestrator) confirmStart(ctx context.Context) error {
	if o.opts.AssumeYes {
		o.rep.Info("\nStarting sync (--yes).")
		return nil
	}
	fmt.Fprintln(o.rep.Writer())
	ok, err := o.confirm(ctx, fmt.Sprintf("Start syncing %s now?", o.cfg.ProjectName), true)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

// parseRemotes extracts remote names from `git remote -v` output.
func parseRemotes(listing string) map[string]struct{} {
	remotes := make(map[string]struct{})
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			remotes[fields[0]] = struct{}{}
		}
	}
	return remotes
}
