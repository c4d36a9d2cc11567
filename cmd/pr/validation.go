package pr

import "fmt"

// validatePRCreateArgs validates the arguments of the create subcommand.
func validatePRCreateArgs(options *RunOptionsPR, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one repository reference is required")
	}
	if options.Title == "" {
		return fmt.Errorf("the 'title' flag must be specified")
	}
	if options.Branch == "" {
		return fmt.Errorf("the 'branch' flag must be specified")
	}
	if options.Base == "" {
		return fmt.Errorf("the 'base' flag must be specified")
	}
	return nil
}

// validatePRBranchArgs validates the arguments of the branch subcommand.
func validatePRBranchArgs(options *RunOptionsPR, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one repository reference is required")
	}
	if options.Name == "" {
		return fmt.Errorf("the 'name' flag must be specified")
	}
	if options.Base == "" {
		return fmt.Errorf("the 'base' flag must be specified")
	}
	return nil
}
