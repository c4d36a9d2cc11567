package tracker

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/prgate/prgate/internal/tracker"
	"github.com/prgate/prgate/pkg/shared/config"
	"github.com/prgate/prgate/pkg/shared/errors"
	"github.com/prgate/prgate/pkg/shared/httpclient"
	"github.com/prgate/prgate/pkg/shared/logger"
)

// RunOptionsTracker holds the flag values of the tracker subcommands.
type RunOptionsTracker struct {
	State       string
	Limit       int
	Title       string
	Description string
	Labels      []string
	Comment     string
}

var (
	AppConfig      *config.Config
	log            hclog.Logger
	trackerOptions RunOptionsTracker

	exampleTrackerUsage = `  # List open issues for the configured team
  prgate tracker list --state "In Progress"

  # File a follow-up issue from a review
  prgate tracker create --title "Fix blocking review findings" --label review

  # Move an issue and leave a note
  prgate tracker update ISSUE-123 --state Done --comment "fixed by prgate"`
)

// TrackerCmd is the parent command for issue-tracker operations.
var TrackerCmd = &cobra.Command{
	Use:                   "tracker [command]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleTrackerUsage,
	Short:                 "Manage issue-tracker tickets linked to reviews",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var trackerListCmd = &cobra.Command{
	Use:                   "list",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "List issues for the configured team",
	RunE:                  runTrackerListCommand,
}

var trackerCreateCmd = &cobra.Command{
	Use:                   "create --title TITLE [--description TEXT] [--state STATE] [--label NAME]...",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Create an issue",
	RunE:                  runTrackerCreateCommand,
}

var trackerUpdateCmd = &cobra.Command{
	Use:                   "update ISSUE_ID [--state STATE] [--comment TEXT]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "Update an issue's workflow state or add a comment",
	RunE:                  runTrackerUpdateCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
	log = logger.NewLogger(cfg, "tracker")
}

// newClient builds the tracker client from config and environment. The
// LINEAR_API_KEY and LINEAR_TEAM_ID variables take precedence over the file.
func newClient() (*tracker.Client, error) {
	apiKey := os.Getenv("LINEAR_API_KEY")
	if apiKey == "" {
		apiKey = AppConfig.Tracker.APIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no tracker api key configured (set LINEAR_API_KEY or tracker.api_key)")
	}
	teamID := os.Getenv("LINEAR_TEAM_ID")
	if teamID == "" {
		teamID = AppConfig.Tracker.TeamID
	}
	if teamID == "" {
		return nil, fmt.Errorf("no tracker team configured (set LINEAR_TEAM_ID or tracker.team_id)")
	}
	http := httpclient.InitializeRestyClient(log, AppConfig)
	return tracker.New(http, AppConfig.Tracker.Endpoint, apiKey, teamID, log), nil
}

func runTrackerListCommand(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return errors.NewCommandError(err, 1)
	}

	issues, err := client.ListIssues(cmd.Context(), trackerOptions.State, trackerOptions.Limit)
	if err != nil {
		log.Error("tracker list failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("tracker list failed: %w", err), 2)
	}

	for _, issue := range issues {
		fmt.Printf("%s\t%s\t%s\n", issue.Identifier, issue.State, issue.Title)
	}
	log.Info("tracker list completed", "issues", len(issues))
	return nil
}

func runTrackerCreateCommand(cmd *cobra.Command, args []string) error {
	if err := validateTrackerCreateArgs(&trackerOptions); err != nil {
		return errors.NewCommandError(fmt.Errorf("invalid tracker arguments: %w", err), 1)
	}

	client, err := newClient()
	if err != nil {
		return errors.NewCommandError(err, 1)
	}

	issue, err := client.CreateIssue(cmd.Context(), trackerOptions.Title, trackerOptions.Description,
		trackerOptions.State, trackerOptions.Labels)
	if err != nil {
		log.Error("tracker create failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("tracker create failed: %w", err), 2)
	}

	fmt.Printf("created %s: %s\n", issue.Identifier, issue.URL)
	return nil
}

func runTrackerUpdateCommand(cmd *cobra.Command, args []string) error {
	if err := validateTrackerUpdateArgs(&trackerOptions, args); err != nil {
		return errors.NewCommandError(fmt.Errorf("invalid tracker arguments: %w", err), 1)
	}

	client, err := newClient()
	if err != nil {
		return errors.NewCommandError(err, 1)
	}

	issueID := args[0]
	if trackerOptions.State != "" {
		if err := client.UpdateIssueState(cmd.Context(), issueID, trackerOptions.State); err != nil {
			log.Error("tracker update failed", "error", err)
			return errors.NewCommandError(fmt.Errorf("tracker update failed: %w", err), 2)
		}
	}
	if trackerOptions.Comment != "" {
		if err := client.AddComment(cmd.Context(), issueID, trackerOptions.Comment); err != nil {
			log.Error("tracker comment failed", "error", err)
			return errors.NewCommandError(fmt.Errorf("tracker comment failed: %w", err), 2)
		}
	}

	log.Info("tracker update completed", "issue", issueID)
	return nil
}

func init() {
	trackerListCmd.Flags().StringVar(&trackerOptions.State, "state", "", "Filter issues by workflow state name.")
	trackerListCmd.Flags().IntVar(&trackerOptions.Limit, "limit", 50, "Maximum number of issues to list.")

	trackerCreateCmd.Flags().StringVar(&trackerOptions.Title, "title", "", "Title of the issue to create.")
	trackerCreateCmd.Flags().StringVar(&trackerOptions.Description, "description", "", "Markdown description of the issue.")
	trackerCreateCmd.Flags().StringVar(&trackerOptions.State, "state", "", "Workflow state name for the new issue.")
	trackerCreateCmd.Flags().StringSliceVar(&trackerOptions.Labels, "label", nil, "Label to attach; may be repeated.")

	trackerUpdateCmd.Flags().StringVar(&trackerOptions.State, "state", "", "Workflow state name to move the issue to.")
	trackerUpdateCmd.Flags().StringVar(&trackerOptions.Comment, "comment", "", "Comment to add to the issue.")

	TrackerCmd.AddCommand(trackerListCmd, trackerCreateCmd, trackerUpdateCmd)
}
