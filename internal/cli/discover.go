package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/audioctl/internal/snapshot"
)

// NewDiscoverCommand creates the discover command.
func NewDiscoverCommand(rootOpts *RootOptions) *cobra.Command {
	ef := &endpointFlags{}
	var bundlePath string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Diff two snapshots of a device around a manual toggle",
		Long: `Capture snapshot A, wait while you change a setting, capture snapshot B,
and print what changed: added, removed and changed values, DWORD 0/1
flips, Disable_SysFx hits and the live reads before and after.

Nothing is written to the catalog.

Examples:
  audioctl discover --id "{0.0.0.00000000}.{...}"
  audioctl discover --id "{0.0.0.00000000}.{...}" --json bundle.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(rootOpts, ef, bundlePath, cmd)
		},
	}
	ef.register(cmd)
	cmd.Flags().StringVar(&bundlePath, "json", "", "also write both snapshots and the diff to this file")
	return cmd
}

func runDiscover(opts *RootOptions, ef *endpointFlags, bundlePath string, cmd *cobra.Command) error {
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
	p := newPrompter(cmd.InOrStdin(), f.GetErrWriter())
	p.say("Discovery target: %s (%s)", ep.Name, ep.Flow)
	a, err := p.capture(env.Service, ep, "A")
	if err != nil {
		return f.Fail(err, nil)
	}
	p.say("Now change the setting you are investigating.")
	b, err := p.capture(env.Service, ep, "B")
	if err != nil {
		return f.Fail(err, nil)
	}

	d := env.Service.Discover(cmd.Context(), ep, a, b)
	if bundlePath != "" {
		if err := writeBundle(bundlePath, d); err != nil {
			return f.Fail(WrapExitError(ExitCommandError, "failed to write discovery bundle", err), nil)
		}
		f.VerboseLog("Wrote discovery bundle to %s", bundlePath)
	}
	return reportDiscovery(f, d)
}

func writeBundle(path string, d snapshot.Discovery) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func reportDiscovery(f *OutputFormatter, d snapshot.Discovery) error {
	if f.Format == "json" {
		return f.Success(d, "")
	}
	var b strings.Builder
	if err := snapshot.WriteReport(&b, d); err != nil {
		return WrapExitError(ExitFailure, "failed to render report", err)
	}
	_, err := fmt.Fprint(f.Writer, b.String())
	return err
}
