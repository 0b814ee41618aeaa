package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/snapshot"
	"github.com/roach88/audioctl/internal/vendor"
)

// ConfirmPhrase must be typed before a learn run unless learning is
// pre-confirmed in config or AUDIOCTL_LEARN_CONFIRMED=1.
const ConfirmPhrase = "I UNDERSTAND"

const learnWarning = `READ CAREFULLY
This learn mode captures registry snapshots and writes a rule into:
  %s
From then on, commands for this device WILL WRITE registry values on this
machine (HKCU and, when permitted, HKLM). This lasts until the learned
section is removed from the catalog.
While learning:
- Do NOT change any other audio settings.
- Do NOT switch default devices.
- Do NOT open other audio or control apps.
- Only toggle the requested setting for THIS device, exactly when asked.
If you accept this and understand the risk, type exactly:
` + ConfirmPhrase

// prompter drives the interactive capture steps. Prompts go to out so
// JSON results on stdout stay clean.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) say(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// ask prints prompt and returns the trimmed reply line.
func (p *prompter) ask(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", NewExitError(ExitFailure, "input closed before the learn run finished")
		}
	}
	return strings.TrimSpace(line), nil
}

// capture waits for Enter, then snapshots ep.
func (p *prompter) capture(svc *vendor.Service, ep endpoint.Endpoint, label string) (snapshot.Snapshot, error) {
	if _, err := p.ask(fmt.Sprintf("When ready, press Enter to capture snapshot %s... ", label)); err != nil {
		return snapshot.Snapshot{}, err
	}
	snap := svc.Capture(ep)
	p.say("Captured %s: %d records.", label, len(snap.Records))
	return snap, nil
}

// confirmLearn shows the risk warning and requires the confirmation phrase.
func confirmLearn(p *prompter, env *Env) error {
	if env.Config.Learn.Confirmed {
		p.say("INFO: learn confirmation skipped (learn.confirmed / AUDIOCTL_LEARN_CONFIRMED=1)")
		return nil
	}
	p.say(learnWarning, env.Service.CatalogPath())
	reply, err := p.ask("> ")
	if err != nil {
		return err
	}
	if reply != ConfirmPhrase {
		return NewExitError(ExitFailure, "learn aborted by user (confirmation not provided)")
	}
	return nil
}

// NewLearnCommand creates the learn command.
func NewLearnCommand(rootOpts *RootOptions) *cobra.Command {
	ef := &endpointFlags{}

	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Learn the main enhancements switch of a device",
		Long: `Learn where the driver of one endpoint keeps its enhancements switch.

You toggle "Audio Enhancements" in the Windows sound settings when asked;
audioctl snapshots the endpoint before and after, picks the REG_DWORD that
flipped between 0 and 1, and records it in the catalog. An identical rule
already in the catalog is reused and the device added to it.

Examples:
  audioctl learn --id "{0.0.0.00000000}.{83a9be54-901e-4429-993b-c9088e3028a0}"
  audioctl learn --id "{0.0.0.00000000}.{...}" --flow recording --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLearn(rootOpts, ef, cmd)
		},
	}
	ef.register(cmd)
	return cmd
}

func runLearn(opts *RootOptions, ef *endpointFlags, cmd *cobra.Command) error {
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
	if err := confirmLearn(p, env); err != nil {
		return f.Fail(err, nil)
	}

	p.say("Learn target: %s (%s)", ep.Name, ep.Flow)
	p.say("Step 1: set 'Audio Enhancements' to ENABLED for this device.")
	a, err := p.capture(env.Service, ep, "A")
	if err != nil {
		return f.Fail(err, nil)
	}
	p.say("Step 2: set 'Audio Enhancements' to DISABLED for the same device.")
	b, err := p.capture(env.Service, ep, "B")
	if err != nil {
		return f.Fail(err, nil)
	}

	res, err := env.Service.LearnMain(cmd.Context(), ep, a, b)
	if err != nil {
		return f.Fail(err, res)
	}
	return f.Success(res, learnText(res))
}

// NewLearnEffectCommand creates the learn-fx command.
func NewLearnEffectCommand(rootOpts *RootOptions) *cobra.Command {
	ef := &endpointFlags{}
	var singlePass bool

	cmd := &cobra.Command{
		Use:   "learn-fx <name>",
		Short: "Learn the registry writes behind a named effect",
		Long: `Learn the writes that turn one named vendor effect on and off.

The effect is toggled on and off twice. The first pass primes drivers that
only create their keys on the first toggle; the second pass is the one
analyzed. Values that drift while the effect is off are discarded. When
no stable multi-value set remains, a single REG_DWORD flip is learned.

Examples:
  audioctl learn-fx "Bass Boost" --id "{0.0.0.00000000}.{...}"
  audioctl learn-fx Loudness --id "{0.0.0.00000000}.{...}" --single-pass`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLearnEffect(rootOpts, ef, args[0], singlePass, cmd)
		},
	}
	ef.register(cmd)
	cmd.Flags().BoolVar(&singlePass, "single-pass", false, "capture one on/off pair instead of two")
	return cmd
}

func runLearnEffect(opts *RootOptions, ef *endpointFlags, name string, singlePass bool, cmd *cobra.Command) error {
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
	if err := confirmLearn(p, env); err != nil {
		return f.Fail(err, nil)
	}

	p.say("Learn target: effect '%s' on %s (%s)", name, ep.Name, ep.Flow)
	steps := []struct {
		label, state string
	}{
		{"A", "ON"}, {"B", "OFF"}, {"A2", "ON"}, {"B2", "OFF"},
	}
	if singlePass {
		steps = steps[:2]
	}
	snaps := make([]snapshot.Snapshot, 0, len(steps))
	for i, s := range steps {
		p.say("Step %d: turn '%s' %s in the vendor control panel.", i+1, name, s.state)
		snap, err := p.capture(env.Service, ep, s.label)
		if err != nil {
			return f.Fail(err, nil)
		}
		snaps = append(snaps, snap)
	}

	c := vendor.Captures{A: snaps[0], B: snaps[1]}
	if len(snaps) == 4 {
		c.A2, c.B2 = &snaps[2], &snaps[3]
	}
	res, err := env.Service.LearnEffect(cmd.Context(), ep, name, c)
	if err != nil {
		return f.Fail(err, res)
	}
	return f.Success(res, learnText(res))
}

func learnText(res vendor.LearnResult) string {
	var b strings.Builder
	if res.Deduplicated {
		fmt.Fprintf(&b, "Reused identical rule [%s] in %s; device added.\n", res.Section, res.Path)
	} else {
		fmt.Fprintf(&b, "Learned rule [%s] in %s.\n", res.Section, res.Path)
	}
	switch {
	case res.MultiWrite:
		fmt.Fprintf(&b, "  effect: %s, %d writes", res.EffectName, res.WriteCount)
	case res.EffectName != "":
		fmt.Fprintf(&b, "  effect: %s, value %s (enable=%d, disable=%d)", res.EffectName, res.ValueName, res.Enable, res.Disable)
	default:
		fmt.Fprintf(&b, "  value %s (enable=%d, disable=%d)", res.ValueName, res.Enable, res.Disable)
	}
	if res.SessionID != "" {
		fmt.Fprintf(&b, "\n  session: %s", res.SessionID)
	}
	return b.String()
}
