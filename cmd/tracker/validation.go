package tracker

import "fmt"

// validateTrackerCreateArgs validates the arguments of the create subcommand.
func validateTrackerCreateArgs(options *RunOptionsTracker) error {
	if options.Title == "" {
		return fmt.Errorf("the 'title' flag must be specified")
	}
	return nil
}

// validateTrackerUpdateArgs validates the arguments of the update subcommand.
func validateTrackerUpdateArgs(options *RunOptionsTracker, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one issue identifier is required")
	}
	if options.State == "" && options.Comment == "" {
		return fmt.Errorf("at least one of the 'state' or 'comment' flags must be specified")
	}
	return nil
}
