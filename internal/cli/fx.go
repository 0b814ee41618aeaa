package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewEffectCommand creates the fx command group.
func NewEffectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fx",
		Short: "Control learned named effects",
		Long: `Set, read, list and forget named vendor effects learned with learn-fx.

Effect names match case-insensitively. Compound effects are confirmed by a
quorum of their writes reading back the requested state.`,
	}
	cmd.AddCommand(newEffectApplyCommand(rootOpts, "enable", "Turn a named effect on and verify", true))
	cmd.AddCommand(newEffectApplyCommand(rootOpts, "disable", "Turn a named effect off and verify", false))
	cmd.AddCommand(newEffectStateCommand(rootOpts))
	cmd.AddCommand(newEffectListCommand(rootOpts))
	cmd.AddCommand(newEffectDeleteCommand(rootOpts))
	return cmd
}

func newEffectApplyCommand(rootOpts *RootOptions, use, short string, enable bool) *cobra.Command {
	ef := &endpointFlags{}
	cmd := &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
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
			res, err := env.Service.EffectApply(cmd.Context(), ep, args[0], enable)
			if err != nil {
				return f.Fail(err, res)
			}
			return f.Success(res, applyText(res))
		},
	}
	ef.register(cmd)
	return cmd
}

func newEffectStateCommand(rootOpts *RootOptions) *cobra.Command {
	ef := &endpointFlags{}
	var fast bool
	cmd := &cobra.Command{
		Use:   "state <name>",
		Short: "Read a named effect",
		Args:  cobra.ExactArgs(1),
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
			res, err := env.Service.ReadEffect(ep, args[0], fast)
			if err != nil {
				return f.Fail(err, nil)
			}
			return f.Success(res, stateText(args[0], res))
		},
	}
	ef.register(cmd)
	cmd.Flags().BoolVar(&fast, "fast", false, "read only the best-scored write once per hive")
	return cmd
}

func newEffectListCommand(rootOpts *RootOptions) *cobra.Command {
	ef := &endpointFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the effects learned for a device",
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
			names, err := env.Service.ListEffects(ep)
			if err != nil {
				return f.Fail(err, nil)
			}
			text := fmt.Sprintf("No effects learned for %s.", ep.Name)
			if len(names) > 0 {
				text = fmt.Sprintf("Effects for %s:\n  %s", ep.Name, strings.Join(names, "\n  "))
			}
			return f.Success(map[string]any{"device_id": ep.ID, "effects": names}, text)
		},
	}
	ef.register(cmd)
	return cmd
}

func newEffectDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	ef := &endpointFlags{}
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Forget a named effect for a device",
		Long: `Remove the device from every catalog section of the named effect.
The rules stay in the catalog for other devices.`,
		Args: cobra.ExactArgs(1),
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
			sections, err := env.Service.ForgetEffect(ep, args[0])
			if err != nil {
				return f.Fail(err, nil)
			}
			text := fmt.Sprintf("Removed %s from %s.", ep.Name, strings.Join(sections, ", "))
			return f.Success(map[string]any{"device_id": ep.ID, "sections": sections}, text)
		},
	}
	ef.register(cmd)
	return cmd
}
