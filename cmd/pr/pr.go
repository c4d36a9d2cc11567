package pr

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/prgate/prgate/internal/vcs"
	"github.com/prgate/prgate/pkg/shared/config"
	"github.com/prgate/prgate/pkg/shared/errors"
	"github.com/prgate/prgate/pkg/shared/logger"
)

// RunOptionsPR holds the flag values of the pr subcommands.
type RunOptionsPR struct {
	Title  string
	Body   string
	Branch string
	Base   string
	State  string
	Name   string
}

var (
	AppConfig *config.Config
	log       hclog.Logger
	prOptions RunOptionsPR

	examplePRUsage = `  # List open pull requests
  prgate pr list octocat/hello-world

  # Create a branch and open a pull request from it
  prgate pr branch octocat/hello-world --name fix/review-findings --base main
  prgate pr create octocat/hello-world --title "Fix review findings" --branch fix/review-findings --base main`
)

// PRCmd is the parent command for pull-request operations.
var PRCmd = &cobra.Command{
	Use:                   "pr [command]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               examplePRUsage,
	Short:                 "Create and list pull requests and branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var prListCmd = &cobra.Command{
	Use:                   "list REPO [--state STATE]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "List pull requests of a repository",
	RunE:                  runPRListCommand,
}

var prCreateCmd = &cobra.Command{
	Use:                   "create REPO --title TITLE --branch BRANCH --base BASE [--body TEXT]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Open a pull request",
	RunE:                  runPRCreateCommand,
}

var prBranchCmd = &cobra.Command{
	Use:                   "branch REPO --name NAME --base BASE",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Create a branch from a base revision",
	RunE:                  runPRBranchCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
	log = logger.NewLogger(cfg, "pr")
}

func hostFor(raw string) (vcs.Host, vcs.Ref, error) {
	ref, err := vcs.ParseRepo(raw)
	if err != nil {
		return nil, vcs.Ref{}, err
	}
	host, err := vcs.New(ref, AppConfig, log)
	if err != nil {
		return nil, vcs.Ref{}, err
	}
	return host, ref, nil
}

func runPRListCommand(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.NewCommandError(fmt.Errorf("exactly one repository reference is required"), 1)
	}

	host, ref, err := hostFor(args[0])
	if err != nil {
		return errors.NewCommandError(err, 1)
	}

	prs, err := host.ListPullRequests(cmd.Context(), ref, prOptions.State)
	if err != nil {
		log.Error("pr list failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("pr list failed: %w", err), 2)
	}

	for _, pr := range prs {
		fmt.Printf("#%d\t%s\t%s\t%s\n", pr.Number, pr.State, pr.Branch, pr.Title)
	}
	log.Info("pr list completed", "project", ref.Project(), "pull_requests", len(prs))
	return nil
}

func runPRCreateCommand(cmd *cobra.Command, args []string) error {
	if err := validatePRCreateArgs(&prOptions, args); err != nil {
		return errors.NewCommandError(fmt.Errorf("invalid pr arguments: %w", err), 1)
	}

	host, ref, err := hostFor(args[0])
	if err != nil {
		return errors.NewCommandError(err, 1)
	}

	pr, err := host.CreatePullRequest(cmd.Context(), ref, prOptions.Title, prOptions.Body,
		prOptions.Branch, prOptions.Base)
	if err != nil {
		log.Error("pr create failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("pr create failed: %w", err), 2)
	}

	fmt.Printf("created #%d: %s\n", pr.Number, pr.URL)
	return nil
}

func runPRBranchCommand(cmd *cobra.Command, args []string) error {
	if err := validatePRBranchArgs(&prOptions, args); err != nil {
		return errors.NewCommandError(fmt.Errorf("invalid pr arguments: %w", err), 1)
	}

	host, ref, err := hostFor(args[0])
	if err != nil {
		return errors.NewCommandError(err, 1)
	}

	if err := host.CreateBranch(cmd.Context(), ref, prOptions.Name, prOptions.Base); err != nil {
		log.Error("branch create failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("branch create failed: %w", err), 2)
	}

	log.Info("branch created", "project", ref.Project(), "branch", prOptions.Name, "base", prOptions.Base)
	return nil
}

func init() {
	prListCmd.Flags().StringVar(&prOptions.State, "state", "open", "Pull request state to list (open, closed, all).")

	prCreateCmd.Flags().StringVar(&prOptions.Title, "title", "", "Title of the pull request.")
	prCreateCmd.Flags().StringVar(&prOptions.Body, "body", "", "Description body of the pull request.")
	prCreateCmd.Flags().StringVar(&prOptions.Branch, "branch", "", "Source branch holding the changes.")
	prCreateCmd.Flags().StringVar(&prOptions.Base, "base", "", "Target branch to merge into.")

	prBranchCmd.Flags().StringVar(&prOptions.Name, "name", "", "Name of the branch to create.")
	prBranchCmd.Flags().StringVar(&prOptions.Base, "base", "", "Base revision to branch from.")

	PRCmd.AddCommand(prListCmd, prCreateCmd, prBranchCmd)
}
