package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prgate/prgate/cmd/pr"
	"github.com/prgate/prgate/cmd/review"
	"github.com/prgate/prgate/cmd/tracker"
	"github.com/prgate/prgate/cmd/version"
	"github.com/prgate/prgate/pkg/shared/config"
	sharederrors "github.com/prgate/prgate/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "prgate [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Prgate is an automated pull-request review gate.",
		Long: `Prgate inspects the files changed in a proposed change with a set of
	quality, security, performance and accessibility detectors, renders a
	pass/fail verdict usable by humans and automation, and can push safe
	automatic corrections back to the change branch.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(review.ReviewCmd)
	rootCmd.AddCommand(tracker.TrackerCmd)
	rootCmd.AddCommand(pr.PRCmd)
}

// signalContext returns a context cancelled on an interrupt, so a running
// review stops dispatching work and still renders its partial report.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Execute runs the root command and maps command errors onto exit codes.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	ctx, stop := signalContext()
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var cmdErr *sharederrors.CommandError
		if errors.As(err, &cmdErr) {
			if !cmdErr.Silent {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			return cmdErr.ExitCode
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config file: %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	version.Init(AppConfig)
	review.Init(AppConfig)
	tracker.Init(AppConfig)
	pr.Init(AppConfig)
}
