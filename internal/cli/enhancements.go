package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/audioctl/internal/vendor"
)

// NewEnhancementsCommand creates the enhancements command group.
func NewEnhancementsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enhancements",
		Short: "Set or read the main enhancements switch through the catalog",
		Long: `Set or read the main enhancements switch of a device using its learned
catalog rule. Writes are verified by read-back.

Exit codes:
  0 - Success
  1 - Write failure
  3 - No rule applies to the device
  4 - Written but not confirmed before the verification timeout`,
	}
	cmd.AddCommand(newApplyCommand(rootOpts, "enable", "Enable enhancements and verify", true))
	cmd.AddCommand(newApplyCommand(rootOpts, "disable", "Disable enhancements and verify", false))
	cmd.AddCommand(newStateCommand(rootOpts))
	return cmd
}

func newApplyCommand(rootOpts *RootOptions, use, short string, enable bool) *cobra.Command {
	ef := &endpointFlags{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, ef, enable, cmd)
		},
	}
	ef.register(cmd)
	return cmd
}

func runApply(opts *RootOptions, ef *endpointFlags, enable bool, cmd *cobra.Command) error {
	env, err := openEnv(opts, cmd)
	if err != nil {
		return newFormatter(opts, cmd).Fail(err, nil)
	}
	defer env.Close()
	f := env.Formatter

	ep, err := ef.resolve(cmd, env)
	if err != nil {
		return f.Fail(err, nil)
	}
	res, err := env.Service.Apply(cmd.Context(), ep, enable)
	if err != nil {
		return f.Fail(err, res)
	}
	return f.Success(res, applyText(res))
}

func newStateCommand(rootOpts *RootOptions) *cobra.Command {
	ef := &endpointFlags{}
	var fast bool
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Read the enhancements state through the catalog rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(rootOpts, cmd)
			if err != nil {
				return newFormatter(rootOpts, cmd).Fail(err, nil)
			}
			defer env.Close()
			f := env.Formatter

			ep, err := ef.resolve(cmd, env)
			if err != nil {
				return f.Fail(err, nil)
			}
			res, err := env.Service.ReadMain(ep, fast)
			if err != nil {
				return f.Fail(err, nil)
			}
			return f.Success(res, stateText("Enhancements", res))
		},
	}
	ef.register(cmd)
	cmd.Flags().BoolVar(&fast, "fast", false, "one read per hive; newest key wins on disagreement")
	return cmd
}

// NewSupportedCommand creates the supported command.
func NewSupportedCommand(rootOpts *RootOptions) *cobra.Command {
	ef := &endpointFlags{}
	cmd := &cobra.Command{
		Use:   "supported",
		Short: "Report whether the catalog has a main rule for a device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(rootOpts, cmd)
			if err != nil {
				return newFormatter(rootOpts, cmd).Fail(err, nil)
			}
			defer env.Close()
			f := env.Formatter

			ep, err := ef.resolve(cmd, env)
			if err != nil {
				return f.Fail(err, nil)
			}
			ok, err := env.Service.IsSupported(ep)
			if err != nil {
				return f.Fail(err, nil)
			}
			text := fmt.Sprintf("%s: not supported (no learned rule)", ep.Name)
			if ok {
				text = fmt.Sprintf("%s: supported", ep.Name)
			}
			return f.Success(map[string]any{"device_id": ep.ID, "supported": ok}, text)
		},
	}
	ef.register(cmd)
	return cmd
}

func applyText(res vendor.ApplyResult) string {
	return fmt.Sprintf("OK: state %s (verified by %s)", res.State, res.VerifiedBy)
}

func stateText(what string, res vendor.StateResult) string {
	s := fmt.Sprintf("%s: %s [%s]", what, res.State, res.Section)
	if q := res.Quorum; q != nil {
		s += fmt.Sprintf(" (%s: %d on, %d off of %d, threshold %.2f)", q.Source, q.True, q.False, q.Items, q.Threshold)
	}
	if res.Fast {
		s += " (fast)"
	}
	return s
}
