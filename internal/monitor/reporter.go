// Package monitor renders every registered session (in any state) to the
// console on a fixed interval, the non-interactive counterpart to an
// administrative status command.
package monitor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"

	"github.com/DaCodeChick/rhxd/internal/broadcast"
	"github.com/DaCodeChick/rhxd/internal/session"
)

// DefaultInterval is how often the roster table is rendered when the
// caller does not specify one.
const DefaultInterval = 30 * time.Second

// Reporter periodically dumps the session registry to stdout as a
// table. Grounded on the teacher's CLI.printStatus tablewriter usage
// (internal/cli/commands.go), stripped of its interactive command
// dispatch and driven by a ticker instead.
type Reporter struct {
	registry *session.Registry
	hub      *broadcast.Hub
	interval time.Duration
}

// NewReporter creates a Reporter for registry and hub, rendering every
// interval (DefaultInterval if interval <= 0).
func NewReporter(registry *session.Registry, hub *broadcast.Hub, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{registry: registry, hub: hub, interval: interval}
}

// Run renders the roster table once immediately, then on every tick,
// until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) {
	r.render()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.render()
		}
	}
}

func (r *Reporter) render() {
	snapshot := r.registry.Snapshot()

	fmt.Println()
	fmt.Printf("Active sessions: %d  |  chat dropped: %d\n", len(snapshot), r.hub.ChatDropped())

	tw := tablewriter.NewWriter(os.Stdout)
	tw.SetHeader([]string{"User ID", "Nickname", "Icon", "Flags", "Access"})
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)

	for _, s := range snapshot {
		nickname := s.Nickname
		if nickname == "" {
			nickname = "(handshaking)"
		}
		tw.Append([]string{
			fmt.Sprintf("%d", s.UserID),
			nickname,
			fmt.Sprintf("%d", s.IconID),
			fmt.Sprintf("0x%04x", s.Flags),
			fmt.Sprintf("0x%016x", uint64(s.Access)),
		})
	}

	tw.Render()
	fmt.Println()

	log.Debug().Int("active_sessions", len(snapshot)).Msg("status table rendered")
}
