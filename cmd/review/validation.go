package review

import (
	"fmt"
	"os"

	"github.com/prgate/prgate/pkg/shared/files"
)

// validateReviewArgs validates the arguments provided to the review command
// and decides between remote and local mode.
func validateReviewArgs(options *RunOptionsReview, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one change reference or repository path is required")
	}
	options.Target = args[0]

	expanded, err := files.ExpandPath(options.Target)
	if err == nil {
		if info, statErr := os.Stat(expanded); statErr == nil && info.IsDir() {
			options.Local = true
			options.Target = expanded
		}
	}

	if options.Local {
		if options.Base == "" {
			return fmt.Errorf("the 'base' flag must be specified for a local review")
		}
		if options.Comment {
			return fmt.Errorf("the 'comment' flag requires a remote change reference")
		}
		return nil
	}

	if options.Base != "" || options.Head != "HEAD" {
		return fmt.Errorf("the 'base' and 'head' flags apply only to local repository paths")
	}
	return nil
}
