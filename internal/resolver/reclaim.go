package resolver

import (
	"context"
	"os"
	"regexp"

	"github.com/timvw/byobu-select/internal/logging"
)

// EnvPropagationSet lists the variables pushed into a session before attach,
// so that a reattached session sees the current display, session bus and
// agent sockets rather than the ones it was started with.
var EnvPropagationSet = []string{
	"DISPLAY",
	"DBUS_SESSION_BUS_ADDRESS",
	"SESSION_MANAGER",
	"GPG_AGENT_INFO",
	"XDG_SESSION_COOKIE",
	"XDG_SESSION_PATH",
	"GNOME_KEYRING_CONTROL",
	"GNOME_KEYRING_PID",
	"SSH_ASKPASS",
	"SSH_AUTH_SOCK",
	"SSH_AGENT_PID",
	"WINDOWID",
	"UPSTART_JOB",
	"UPSTART_EVENTS",
	"UPSTART_SESSION",
	"UPSTART_INSTANCE",
}

// PropagateEnv sets every non-empty variable of EnvPropagationSet inside the
// session. Failures are logged and skipped. Returns the variables that were set.
func (r *Resolver) PropagateEnv(ctx context.Context, session string) []string {
	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var set []string
	for _, key := range EnvPropagationSet {
		value, ok := lookup(key)
		if !ok || value == "" {
			continue
		}
		if err := r.Mux.SetEnvironment(ctx, session, key, value); err != nil {
			logging.Debugf("setenv %s in %s: %v", key, session, err)
			continue
		}
		set = append(set, key)
	}
	r.Metrics.RecordEnvPropagated(ctx, len(set))
	return set
}

// ReapZombies kills the unattached "_<session>-<n>" satellites that share the
// session's group. Closing a client of a session group leaves such a
// satellite behind, and nothing ever reattaches to it.
//
// The listing is read again here; if the session or its group annotation is
// gone by now, nothing is killed. Returns the names that were killed.
func (r *Resolver) ReapZombies(ctx context.Context, session string) []string {
	ctx, span := tracer.Start(ctx, "reap_zombies")
	defer span.End()

	sessions, err := r.Mux.ListSessions(ctx)
	if err != nil {
		logging.Debugf("list sessions for reaping: %v", err)
		return nil
	}

	// Match on the group id as well as the name so a satellite of some other
	// group that happens to share the prefix is never touched.
	group := ""
	for _, s := range sessions {
		if s.Name == session && s.Group != "" {
			group = s.Group
			break
		}
	}
	if group == "" {
		return nil
	}

	satellite := regexp.MustCompile(`^_` + regexp.QuoteMeta(session) + `-\d+$`)

	var killed []string
	for _, s := range sessions {
		if s.Attached || s.Group != group || !satellite.MatchString(s.Name) {
			continue
		}
		if err := r.Mux.KillSession(ctx, s.Name); err != nil {
			logging.Warnf("kill zombie session %s: %v", s.Name, err)
			continue
		}
		logging.Infof("killed zombie session %s (group %s)", s.Name, group)
		killed = append(killed, s.Name)
	}
	r.Metrics.RecordZombiesReaped(ctx, len(killed))
	return killed
}
