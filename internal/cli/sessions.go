package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/audioctl/internal/endpoint"
	"github.com/roach88/audioctl/internal/snapshot"
	"github.com/roach88/audioctl/internal/store"
)

// SessionDetail is a stored session with the diff of its authoritative
// snapshot pair.
type SessionDetail struct {
	Session store.Session    `json:"session"`
	Diff    *snapshot.Result `json:"diff,omitempty"`
}

// NewSessionsCommand creates the sessions command group.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect the learning session log",
		Long: `Inspect learn, learn-fx and discover runs recorded in the session log.

The log is enabled with --session-db or session_db in the config file.`,
	}
	cmd.AddCommand(newSessionsListCommand(rootOpts))
	cmd.AddCommand(newSessionsShowCommand(rootOpts))
	return cmd
}

// openSessions opens the configured session log without touching the
// platform backend.
func openSessions(opts *RootOptions) (*store.Store, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.SessionDB == "" {
		return nil, NewExitError(ExitCommandError, "no session log configured; pass --session-db or set session_db")
	}
	st, err := store.Open(cfg.SessionDB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open session log", err)
	}
	return st, nil
}

func newSessionsListCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			st, err := openSessions(rootOpts)
			if err != nil {
				return f.Fail(err, nil)
			}
			defer st.Close()

			sessions, err := st.ListSessions(cmd.Context(), limit)
			if err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "failed to list sessions", err), nil)
			}
			if sessions == nil {
				sessions = []store.Session{}
			}
			return f.Success(sessions, sessionsTable(sessions))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of sessions")
	return cmd
}

func sessionsTable(sessions []store.Session) string {
	if len(sessions) == 0 {
		return "No sessions recorded."
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tDEVICE\tSTARTED\tOUTCOME\tSECTION")
	for _, s := range sessions {
		outcome := string(s.Outcome)
		if !s.Finished() {
			outcome = "unfinished"
		}
		device := s.CorrelationKey
		if device == "" {
			device = s.DeviceID
		}
		if s.EffectName != "" {
			device += " fx=" + s.EffectName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Kind, device, s.StartedAt.Format(time.RFC3339), outcome, s.Section)
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}

func newSessionsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one session and recompute its diff",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			st, err := openSessions(rootOpts)
			if err != nil {
				return f.Fail(err, nil)
			}
			defer st.Close()

			sess, err := st.ReadSession(cmd.Context(), args[0])
			if errors.Is(err, store.ErrSessionNotFound) {
				return f.Fail(NewExitError(ExitFailure, fmt.Sprintf("session %s not found", args[0])), nil)
			}
			if err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "failed to read session", err), nil)
			}

			detail := SessionDetail{Session: sess}
			var discovery *snapshot.Discovery
			if la, lb, ok := authoritativePair(sess.Labels); ok {
				a, err := st.ReadSnapshot(cmd.Context(), sess.ID, la)
				if err != nil {
					return f.Fail(WrapExitError(ExitCommandError, "failed to read snapshot "+la, err), nil)
				}
				b, err := st.ReadSnapshot(cmd.Context(), sess.ID, lb)
				if err != nil {
					return f.Fail(WrapExitError(ExitCommandError, "failed to read snapshot "+lb, err), nil)
				}
				ep := endpoint.Endpoint{ID: sess.DeviceID, Flow: sess.Flow}
				d := snapshot.NewDiscovery(ep, a, b, sess.StartedAt)
				discovery = &d
				detail.Diff = &d.Diff
			}
			return f.Success(detail, sessionText(sess, discovery))
		},
	}
}

// authoritativePair picks the second A/B pair when both were stored.
func authoritativePair(labels []string) (string, string, bool) {
	has := func(l string) bool { return slices.Contains(labels, l) }
	switch {
	case has(store.LabelA2) && has(store.LabelB2):
		return store.LabelA2, store.LabelB2, true
	case has(store.LabelA) && has(store.LabelB):
		return store.LabelA, store.LabelB, true
	}
	return "", "", false
}

func sessionText(s store.Session, d *snapshot.Discovery) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s (%s)\n", s.ID, s.Kind)
	fmt.Fprintf(&b, "  device:   %s (%s)\n", s.DeviceID, s.Flow)
	if s.EffectName != "" {
		fmt.Fprintf(&b, "  effect:   %s\n", s.EffectName)
	}
	fmt.Fprintf(&b, "  started:  %s\n", s.StartedAt.Format(time.RFC3339))
	if s.Finished() {
		fmt.Fprintf(&b, "  finished: %s (%s)\n", s.FinishedAt.Format(time.RFC3339), s.Outcome)
	} else {
		b.WriteString("  finished: no\n")
	}
	if s.Section != "" {
		fmt.Fprintf(&b, "  section:  %s\n", s.Section)
	}
	if s.Message != "" {
		fmt.Fprintf(&b, "  message:  %s\n", s.Message)
	}
	fmt.Fprintf(&b, "  snapshots: %s", strings.Join(s.Labels, ", "))
	if d != nil {
		b.WriteString("\n\n")
		_ = snapshot.WriteReport(&b, *d)
	}
	return strings.TrimRight(b.String(), "\n")
}
