package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mdemena/lists-sharing-sub000/internal/models"
)

type fakeStats struct {
	st  *models.Stats
	err error
}

func (f fakeStats) Stats(ctx context.Context) (*models.Stats, error) {
	return f.st, f.err
}

func TestStatsCollector(t *testing.T) {
	c := NewStatsCollector(fakeStats{st: &models.Stats{
		Users:         3,
		Lists:         2,
		Items:         5,
		ClaimedItems:  2,
		PendingShares: 1,
		BoundShares:   4,
	}})

	expected := `
# HELP lists_items List items by claim state
# TYPE lists_items gauge
lists_items{state="available"} 3
lists_items{state="claimed"} 2
# HELP lists_shares List shares by binding state
# TYPE lists_shares gauge
lists_shares{state="bound"} 4
lists_shares{state="pending"} 1
# HELP lists_users Registered users
# TYPE lists_users gauge
lists_users 3
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "lists_items", "lists_shares", "lists_users"); err != nil {
		t.Error(err)
	}
}

func TestStatsCollector_ErrorEmitsNothing(t *testing.T) {
	c := NewStatsCollector(fakeStats{err: errors.New("db down")})
	if n := testutil.CollectAndCount(c); n != 0 {
		t.Errorf("collected %d metrics, want 0", n)
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(claimsTotal.WithLabelValues("claim", "ok"))
	RecordClaim("claim", "ok")
	if got := testutil.ToFloat64(claimsTotal.WithLabelValues("claim", "ok")); got != before+1 {
		t.Errorf("claims_total = %v, want %v", got, before+1)
	}

	beforeShares := testutil.ToFloat64(sharesCreatedTotal)
	RecordInvitation("sent", 3)
	if got := testutil.ToFloat64(sharesCreatedTotal); got != beforeShares+3 {
		t.Errorf("shares_created_total = %v, want %v", got, beforeShares+3)
	}
}

func TestInit_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg, fakeStats{st: &models.Stats{}})
	Init(reg, fakeStats{st: &models.Stats{}})

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) == 0 {
		t.Error("expected registered metrics")
	}
}
