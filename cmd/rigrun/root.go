package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rigrun/rigrun/internal/config"
	"github.com/rigrun/rigrun/internal/session"
	"github.com/rigrun/rigrun/providers/local"
	sshenv "github.com/rigrun/rigrun/providers/ssh"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	user       string
	hostname   string
	basePath   string
	keep       bool
	compress   bool
	verbose    bool
	preprocess string
}

func newRootCmd(exitCode *int) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "rigrun [flags] <artifact> [args...]",
		Short: "Deploy a binary to a shared hardware rig and run it under the device lock",
		Long: `rigrun copies an executable to a remote device over SSH, runs it there
under the device-wide exclusive lock, and removes it afterwards. The process
exit code is the remote binary's own; 255 means the binary never ran.

Remote user and hostname default to the [remote] section of Test.toml, looked
up in the working directory and its parent. Arguments after the artifact are
passed through to the remote binary verbatim. Artifacts that look like
generated test harnesses are forced to a single worker thread.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runDeploy(cmd, opts, args[0], args[1:])
			*exitCode = code

			if err != nil {
				fmt.Fprintf(os.Stderr, "rigrun: %v\n", err)
			}

			return err
		},
	}

	flags := cmd.Flags()
	// Flags must precede the artifact; everything after it passes through.
	flags.SetInterspersed(false)

	flags.StringVar(&opts.user, "user", "", "remote user (default from Test.toml, then \"root\")")
	flags.StringVar(&opts.hostname, "hostname", "", "address of the remote device")
	flags.StringVar(&opts.basePath, "path", config.DefaultBasePath, "remote directory the artifact is copied into")
	flags.BoolVar(&opts.keep, "keep", false, "leave the artifact on the device after the run")
	flags.BoolVar(&opts.compress, "compress", false, "gzip the transfer and decompress on the device")
	flags.StringVar(&opts.preprocess, "exec", "",
		"local shell command applied to a copy of the artifact before transfer ({} is replaced with the copy's path)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every command line before it runs")

	cmd.AddCommand(newIndexCmd(exitCode))

	return cmd
}

func runDeploy(cmd *cobra.Command, opts *options, artifactPath string, extraArgs []string) (int, error) {
	logger := newLogger(opts.verbose)

	fileCfg, err := config.Load()
	if err != nil {
		return session.ExitNeverRan, err
	}

	target, err := config.Resolve(opts.user, opts.hostname, opts.basePath, fileCfg)
	if err != nil {
		return session.ExitNeverRan, err
	}

	cfgArgs, err := config.SplitExtraArgs(fileCfg.ExtraArgs)
	if err != nil {
		return session.ExitNeverRan, err
	}

	sshCfg := sshenv.NewConfig(target.Host, target.User).ApplyUserConfig()

	remote, err := sshenv.New(sshCfg)
	if err != nil {
		return session.ExitNeverRan, fmt.Errorf("connect to %s: %w", target.Host, err)
	}

	defer func() { _ = remote.Close() }()

	localEnv := local.New()

	defer func() { _ = localEnv.Close() }()

	plan := session.Plan{
		ExtraArgs:  append(cfgArgs, extraArgs...),
		Keep:       opts.keep,
		Compress:   opts.compress,
		Preprocess: opts.preprocess,
	}

	sess := session.New(remote, localEnv, target, plan, logger)

	return sess.Run(cmd.Context(), artifactPath)
}

// newLogger builds the stderr console logger. Stdout is reserved for the
// remote process's output.
func newLogger(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(output).With().Timestamp().Str("app", "rigrun").Logger().Level(level)
}
