package review

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/prgate/prgate/internal/checks"
	"github.com/prgate/prgate/internal/collect"
	"github.com/prgate/prgate/internal/engine"
	"github.com/prgate/prgate/internal/finding"
	"github.com/prgate/prgate/internal/fixer"
	"github.com/prgate/prgate/internal/report"
	"github.com/prgate/prgate/internal/vcs"
	"github.com/prgate/prgate/pkg/shared"
	"github.com/prgate/prgate/pkg/shared/config"
	"github.com/prgate/prgate/pkg/shared/errors"
	"github.com/prgate/prgate/pkg/shared/files"
	"github.com/prgate/prgate/pkg/shared/logger"
)

// RunOptionsReview holds the flag values of the review command.
type RunOptionsReview struct {
	Target        string
	Base          string
	Head          string
	Security      bool
	Performance   bool
	Accessibility bool
	AutoFix       bool
	JSON          bool
	SARIFPath     string
	Comment       bool
	Jobs          int
	Local         bool
}

var (
	AppConfig     *config.Config
	log           hclog.Logger
	reviewOptions RunOptionsReview

	exampleReviewUsage = `  # Review a GitHub pull request
  prgate review octocat/hello-world#42

  # Review a GitLab merge request with security checks and auto-fix
  prgate review https://gitlab.com/group/project/-/merge_requests/7 --security --auto-fix

  # Review local commits that have not been pushed yet
  prgate review . --base main --head HEAD

  # Emit the machine-readable report for CI
  prgate review octocat/hello-world#42 --json --sarif review.sarif`
)

// ReviewCmd represents the review command.
var ReviewCmd = &cobra.Command{
	Use:                   "review [flags] {CHANGE_REF | REPO_PATH}",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleReviewUsage,
	Short:                 "Review the files changed in a pull request or local range",
	Long: `Review collects the files touched by a proposed change, runs the enabled
detector categories over the changed lines, and prints a report with a
pass/fail verdict. The command exits non-zero when a blocking issue remains,
so it can gate merges in CI.`,
	RunE: runReviewCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
	log = logger.NewLogger(cfg, "review")
}

func runReviewCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	if err := validateReviewArgs(&reviewOptions, args); err != nil {
		log.Error("invalid review arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid review arguments: %w", err), 1)
	}

	runID := uuid.New().String()
	runLog := log.With("run_id", runID)

	opts := checks.Options{
		Security:      reviewOptions.Security,
		Performance:   reviewOptions.Performance,
		Accessibility: reviewOptions.Accessibility,
		AutoFix:       reviewOptions.AutoFix,
		JSON:          reviewOptions.JSON,
	}

	registry, err := checks.DefaultRegistry(AppConfig.Engine)
	if err != nil {
		return errors.NewCommandError(fmt.Errorf("assembling detector registry: %w", err), 1)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	jobs := AppConfig.Engine.Jobs
	if reviewOptions.Jobs > 0 {
		jobs = reviewOptions.Jobs
	}

	var (
		collected *collect.Result
		host      vcs.Host
		ref       vcs.Ref
		refLabel  string
	)
	if reviewOptions.Local {
		refLabel = fmt.Sprintf("%s %s..%s", reviewOptions.Target, reviewOptions.Base, reviewOptions.Head)
		collected, err = collect.CollectLocal(reviewOptions.Target, reviewOptions.Base, reviewOptions.Head,
			AppConfig.Engine.MaxFileSizeBytes, runLog)
	} else {
		ref, err = vcs.ParseRef(reviewOptions.Target)
		if err != nil {
			return errors.NewCommandError(err, 1)
		}
		refLabel = ref.String()
		host, err = vcs.New(ref, AppConfig, runLog)
		if err != nil {
			return errors.NewCommandError(err, 1)
		}
		collector := collect.New(host, AppConfig.Engine.MaxFileSizeBytes, runLog)
		collected, err = collector.Collect(ctx, ref)
	}
	if err != nil {
		runLog.Error("change collection failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("change collection failed: %w", err), 2)
	}

	eng := engine.New(registry, opts, jobs, runLog)
	rep := eng.Analyze(ctx, refLabel, collected)

	if reviewOptions.AutoFix && rep.AutoFixableCount > 0 {
		fx := fixer.New(registry, opts, jobs, runLog)
		outcomes := fx.Fix(ctx, collected.Files, rep.Findings)
		if reviewOptions.Local {
			outcomes = guardLocalFixes(reviewOptions.Target, outcomes, collected, rep.Findings, runLog)
		}
		if err := applyFixes(ctx, host, ref, outcomes, runLog); err != nil {
			runLog.Error("failed to apply fixes", "error", err)
			return errors.NewCommandError(fmt.Errorf("failed to apply fixes: %w", err), 2)
		}
		mergeFixOutcomes(rep, outcomes)
	}

	if reviewOptions.SARIFPath != "" {
		if err := writeSARIF(reviewOptions.SARIFPath, rep); err != nil {
			runLog.Error("failed to write sarif report", "error", err)
			return errors.NewCommandError(err, 2)
		}
	}

	if reviewOptions.Comment && host != nil {
		var body bytes.Buffer
		if err := report.RenderText(&body, rep); err == nil {
			if err := host.Comment(ctx, ref, "```\n"+body.String()+"```"); err != nil {
				runLog.Error("failed to post review comment", "error", err)
			}
		}
	}

	if reviewOptions.JSON {
		err = report.RenderJSON(os.Stdout, rep)
	} else {
		err = report.RenderText(os.Stdout, rep)
	}
	if err != nil {
		return errors.NewCommandError(fmt.Errorf("rendering report: %w", err), 2)
	}

	if rep.Blocking || rep.Incomplete {
		return errors.NewSilentExit(1)
	}
	return nil
}

// guardLocalFixes refuses to write over files whose working-tree content no
// longer matches the reviewed revision. Uncommitted edits stay intact and the
// file's fixable findings are reported as outstanding instead.
func guardLocalFixes(target string, outcomes []fixer.Outcome, collected *collect.Result, findings []finding.Finding, log hclog.Logger) []fixer.Outcome {
	reviewed := make(map[string][]byte, len(collected.Files))
	for _, f := range collected.Files {
		reviewed[f.Path] = f.Raw()
	}

	for i, o := range outcomes {
		if len(o.Applied) == 0 {
			continue
		}
		current, err := os.ReadFile(filepath.Join(target, o.File))
		if err == nil && bytes.Equal(current, reviewed[o.File]) {
			continue
		}
		log.Warn("working tree differs from the reviewed revision, leaving file untouched", "file", o.File)
		outcomes[i] = fixer.Outcome{File: o.File, Outstanding: fixableFindings(findings, o.File)}
	}
	return outcomes
}

func fixableFindings(findings []finding.Finding, path string) []finding.Finding {
	var fixable []finding.Finding
	for _, f := range findings {
		if f.File == path && f.Fixable {
			fixable = append(fixable, f)
		}
	}
	return fixable
}

// applyFixes writes rewritten files back, either into the working tree for a
// local review or through the host for a remote one.
func applyFixes(ctx context.Context, host vcs.Host, ref vcs.Ref, outcomes []fixer.Outcome, log hclog.Logger) error {
	for _, o := range outcomes {
		if len(o.Applied) == 0 {
			continue
		}
		message := fmt.Sprintf("fix: resolve %d auto-fixable review findings in %s", len(o.Applied), o.File)
		if host != nil {
			if err := host.PushFix(ctx, ref, o.File, []byte(o.Content), message); err != nil {
				return fmt.Errorf("pushing fix for %s: %w", o.File, err)
			}
		} else {
			path := filepath.Join(reviewOptions.Target, o.File)
			if err := files.WriteFilePreserveMode(path, []byte(o.Content)); err != nil {
				return fmt.Errorf("writing fix for %s: %w", o.File, err)
			}
		}
		log.Info("applied fixes", "file", o.File, "count", len(o.Applied))
	}
	return nil
}

// mergeFixOutcomes folds fix results back into the report: applied findings
// disappear, outstanding ones stay, everything else is untouched.
func mergeFixOutcomes(rep *report.Report, outcomes []fixer.Outcome) {
	fixedFiles := make(map[string][]finding.Finding, len(outcomes))
	for _, o := range outcomes {
		fixedFiles[o.File] = o.Outstanding
	}

	var remaining []finding.Finding
	for _, f := range rep.Findings {
		if _, ok := fixedFiles[f.File]; ok && f.Fixable {
			continue
		}
		remaining = append(remaining, f)
	}
	for _, outstanding := range fixedFiles {
		remaining = append(remaining, outstanding...)
	}

	sort.Slice(remaining, func(i, j int) bool { return remaining[i].Less(remaining[j]) })
	rep.Findings = remaining
	rep.Recompute()
}

func writeSARIF(path string, rep *report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating sarif report file: %w", err)
	}
	defer f.Close()
	if err := report.RenderSARIF(f, rep); err != nil {
		return fmt.Errorf("writing sarif report: %w", err)
	}
	return nil
}

func init() {
	ReviewCmd.Flags().StringVar(&reviewOptions.Base, "base", "", "Base revision for a local review (e.g., main).")
	ReviewCmd.Flags().StringVar(&reviewOptions.Head, "head", "HEAD", "Head revision for a local review.")
	ReviewCmd.Flags().BoolVar(&reviewOptions.Security, "security", false, "Enable the security detector category.")
	ReviewCmd.Flags().BoolVar(&reviewOptions.Performance, "performance", false, "Enable the performance detector category.")
	ReviewCmd.Flags().BoolVar(&reviewOptions.Accessibility, "accessibility", false, "Enable the accessibility detector category.")
	ReviewCmd.Flags().BoolVar(&reviewOptions.AutoFix, "auto-fix", false, "Apply safe automatic fixes and push them back.")
	ReviewCmd.Flags().BoolVar(&reviewOptions.JSON, "json", false, "Print the report as JSON instead of text.")
	ReviewCmd.Flags().StringVar(&reviewOptions.SARIFPath, "sarif", "", "Also write a SARIF report to the given path.")
	ReviewCmd.Flags().BoolVar(&reviewOptions.Comment, "comment", false, "Post the report as a comment on the reviewed change.")
	ReviewCmd.Flags().IntVarP(&reviewOptions.Jobs, "jobs", "j", 0, "Number of parallel analysis workers (default: number of CPUs).")
	ReviewCmd.Flags().BoolP("help", "h", false, "Show help for the review command.")
}
