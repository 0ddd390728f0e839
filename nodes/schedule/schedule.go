// Package schedule provides a cron-driven EventProducer, grounded in the
// teacher's UTC-only cron parsing helpers (server/cron.go).
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/flowengine/flowengine/node"
	"github.com/flowengine/flowengine/port"
	"github.com/flowengine/flowengine/value"
)

// TypeID is the registry type id for Node.
const TypeID = "schedule.cron"

var standardCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// parseUTC parses a five-field, UTC-only cron expression, rejecting any
// CRON_TZ=/TZ= prefix the way the teacher's cron helper does.
func parseUTC(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("schedule: cron expression is required")
	}
	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("schedule: cron expression must be UTC-only")
	}
	sched, err := standardCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("schedule: invalid cron expression: %w", err)
	}
	return sched, nil
}

// Config configures a Node.
type Config struct {
	// Expr is a five-field, UTC-only cron expression.
	Expr string
	// Limit bounds the number of fires; zero means unbounded.
	Limit int
	// Now overrides time.Now for deterministic tests. Defaults to
	// func() time.Time { return time.Now().UTC() }.
	Now func() time.Time
	// Sleep overrides time.Sleep for deterministic tests.
	Sleep func(time.Duration)
}

// Node fires once per cron schedule tick, emitting the fire time as a
// String (RFC3339) on "fired_at".
type Node struct {
	node.Base
	node.NoExecute
	cfg      Config
	sched    cron.Schedule
	fireSeen int
}

// New builds a schedule Node. A malformed cron expression fails at
// construction rather than on the first on_start (spec's "definition
// errors abort before any node method runs" doesn't strictly cover
// factory construction, but failing fast here serves the same intent).
func New(id, name string, cfg Config) (*Node, error) {
	sched, err := parseUTC(cfg.Expr)
	if err != nil {
		return nil, err
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Node{
		Base: node.NewBase(id, name, "fires on a UTC cron schedule", node.EventProducer,
			nil,
			[]port.Port{port.New("fired_at", value.Simple(value.String))},
		),
		cfg:   cfg,
		sched: sched,
	}, nil
}

// Factory closes over cfg to produce a registry.Factory.
func Factory(cfg Config) func(id, name string) (node.Node, error) {
	return func(id, name string) (node.Node, error) {
		return New(id, name, cfg)
	}
}

func (n *Node) OnStart(ctx context.Context, in node.Values) error {
	n.fireSeen = 0
	return nil
}

func (n *Node) OnUpdate(ctx context.Context) (node.Values, bool, error) {
	if n.cfg.Limit > 0 && n.fireSeen >= n.cfg.Limit {
		return nil, false, nil
	}

	now := n.cfg.Now()
	next := n.sched.Next(now)
	wait := next.Sub(now)
	if wait > 0 {
		n.cfg.Sleep(wait)
	}

	n.fireSeen++
	return node.Values{"fired_at": value.NewString(next.Format(time.RFC3339))}, true, nil
}

func (n *Node) OnCleanup(ctx context.Context) error {
	return nil
}
