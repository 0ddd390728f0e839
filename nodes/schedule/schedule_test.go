package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectsMalformedExpression(t *testing.T) {
	_, err := New("s1", "sched", Config{Expr: "not a cron expr"})
	require.Error(t, err)
}

func TestRejectsTimezonePrefix(t *testing.T) {
	_, err := New("s1", "sched", Config{Expr: "CRON_TZ=UTC * * * * *"})
	require.Error(t, err)
}

func TestFiresUpToLimit(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cur := base
	n, err := New("s1", "sched", Config{
		Expr:  "* * * * *",
		Limit: 2,
		Now:   func() time.Time { return cur },
		Sleep: func(d time.Duration) { cur = cur.Add(d) },
	})
	require.NoError(t, err)
	require.NoError(t, n.OnStart(context.Background(), nil))

	var fires []string
	for {
		out, ok, err := n.OnUpdate(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		fires = append(fires, out["fired_at"].Str)
	}
	assert.Len(t, fires, 2)
}
