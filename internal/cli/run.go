package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tasktracker/internal/config"
	"tasktracker/internal/userdata"
)

type Result struct {
	ExitCode int
}

// NewRootCommand builds the tasktracker command. It takes no arguments; all
// interaction happens through the session prompt on streams.
func NewRootCommand(streams IOStreams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasktracker",
		Short: "Interactive task tracker shell",
		Long: `tasktracker is an interactive shell that remembers who you are.

The user profile is stored as JSON at TASKTRACKER_DATA_PATH
(default data/user_data.json) and is replaced atomically on every update.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return invalidInvocation(err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSession(cmd, streams)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalidInvocation(err)
	})
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)
	return cmd
}

func runSession(cmd *cobra.Command, streams IOStreams) error {
	cfg, err := config.Load()
	if err != nil {
		return configError(err)
	}

	logger := NewLogger(cfg, streams.Err).With("session_id", uuid.NewString())
	store, err := userdata.NewStore(cfg.DataPath, userdata.WithLogger(logger))
	if err != nil {
		return configError(err)
	}
	logger.Debug("session starting", "data_path", cfg.DataPath)

	ctx := cmd.Context()
	sess := NewSession(store, streams, logger)
	if err := sess.Start(ctx); err != nil {
		return err
	}
	return sess.Loop(ctx)
}

// Run is a high-level CLI entrypoint suitable for black-box tests.
// It accepts the argument slice (excluding argv[0]) and returns the semantic
// exit code plus any error.
func Run(ctx context.Context, args []string, streams IOStreams) (Result, error) {
	cmd := NewRootCommand(streams)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return Result{ExitCode: ExitCode(err)}, err
}
