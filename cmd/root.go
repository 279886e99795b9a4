package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/chzchzchz/wacom-profile/internal/dispatch"
	"github.com/chzchzchz/wacom-profile/internal/hw"
	"github.com/chzchzchz/wacom-profile/internal/locate"
	"github.com/chzchzchz/wacom-profile/internal/logging"
	"github.com/chzchzchz/wacom-profile/internal/monitor"
	"github.com/chzchzchz/wacom-profile/internal/profile"
	"github.com/chzchzchz/wacom-profile/internal/runloop"
)

// Exit codes for the wacom-profile command.
const (
	// ExitCodeSuccess indicates successful execution or an operator interrupt.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeConfig indicates a missing or invalid configuration file or profile.
	ExitCodeConfig = 2
	// ExitCodeDevice indicates the tablet could not be found or went away.
	ExitCodeDevice = 3
	// ExitCodeControl indicates at least one driver setting could not be applied.
	ExitCodeControl = 4
)

const lockFileName = "wacom-profile.lock"

type rootOptions struct {
	configFile string
	profile    string
	once       bool
	debug      bool
	lockFile   string
}

// rootCmd represents the base command. Without a subcommand it watches the
// tablet and applies the profile on every mode change.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "wacom-profile",
		Short: "Apply per-mode tablet settings when the mode LED changes",
		Long: `wacom-profile watches the mode LED of a Wacom tablet and, every time the
operator switches mode, applies the xsetwacom settings configured for that
mode in the selected profile.

The configuration file is INI formatted:

  [defaults]
  device_id = 056a:0027

  [work:0]
  AbsWheelUp = 4
  AbsWheelDown = 5

Sections are named <profile>:<mode> for modes 0 to 3; each option is passed
to "xsetwacom --set <pad>" as a name and value.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config", "c", defaultConfigFile(), "Configuration file")
	cmd.Flags().StringVarP(&opts.profile, "profile", "p", profile.DefaultProfile, "Profile to execute")
	cmd.Flags().BoolVarP(&opts.once, "exit", "x", false, "Apply profile for current LED state and exit")
	cmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "Trace every external command and its output")
	cmd.Flags().StringVar(&opts.lockFile, "lock-file", defaultLockFile(), "Single instance lock file, empty to disable")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDevicesCmd())
	return cmd
}

func defaultConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wacomProfile"
	}
	return filepath.Join(home, ".wacomProfile")
}

func defaultLockFile() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, lockFileName)
}

func runWatch(ctx context.Context, stderr io.Writer, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.New(stderr, opts.debug)

	if !opts.once && opts.lockFile != "" {
		release, err := acquireLock(opts.lockFile)
		if err != nil {
			return err
		}
		defer release()
	}

	exe := hw.NewExec(hw.DefaultTools, log.Named("Exec"))
	loop := runloop.New(exe, exe, log, monitor.WithWatch(true))
	return loop.Run(ctx, runloop.Config{
		ConfigFile: opts.configFile,
		Profile:    opts.profile,
		Once:       opts.once,
	})
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command and exits the process. An interrupt or
// termination signal ends the watch loop with exit code 0.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "wacom-profile version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	interrupted := ctx.Err() != nil
	stop()

	code := getExitCode(err, interrupted)
	switch {
	case code == ExitCodeSuccess && interrupted:
		fmt.Fprintln(os.Stderr, "\nCaught interrupt. Exiting.")
	case err != nil:
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(code)
}

// getExitCode maps an error returned by a command to the process exit code.
func getExitCode(err error, interrupted bool) int {
	if err == nil {
		return ExitCodeSuccess
	}
	// A signal may also surface as a killed subprocess.
	if interrupted {
		return ExitCodeSuccess
	}

	var cfgErr *profile.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitCodeConfig
	}

	var notFound *locate.NotFoundError
	if errors.As(err, &notFound) {
		return ExitCodeDevice
	}

	var lost *monitor.DeviceLostError
	if errors.As(err, &lost) {
		return ExitCodeDevice
	}

	var ctrl *dispatch.ControlError
	if errors.As(err, &ctrl) {
		return ExitCodeControl
	}

	return ExitCodeError
}
