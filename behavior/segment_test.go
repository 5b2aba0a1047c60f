package behavior

import (
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
)

func profileWithHistory(t *testing.T, kinds []core.InteractionKind, at time.Time) *core.BehaviorProfile {
	t.Helper()
	p := core.NewBehaviorProfile("u1")
	for i, k := range kinds {
		p.History.Push(core.Interaction{
			Kind:      k,
			TargetID:  "p1",
			Timestamp: at.Add(time.Duration(i) * time.Second),
		})
	}
	return p
}

func repeat(k core.InteractionKind, n int) []core.InteractionKind {
	out := make([]core.InteractionKind, n)
	for i := range out {
		out[i] = k
	}
	return out
}

func TestClassifyEngagement(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -1)
	old := now.AddDate(0, 0, -90)

	tests := []struct {
		name    string
		profile *core.BehaviorProfile
		want    core.EngagementLevel
	}{
		{"nil profile", nil, core.EngagementLow},
		{"empty history", core.NewBehaviorProfile("u1"), core.EngagementLow},
		{
			"few old views is low",
			profileWithHistory(t, repeat(core.KindView, 10), old),
			core.EngagementLow,
		},
		{
			"total weight over medium threshold",
			profileWithHistory(t, repeat(core.KindPurchase, 11), old), // 110 > 100
			core.EngagementMedium,
		},
		{
			"recent count over medium threshold",
			profileWithHistory(t, repeat(core.KindView, 21), recent), // 21 > 20
			core.EngagementMedium,
		},
		{
			"total weight over high threshold",
			profileWithHistory(t, repeat(core.KindPurchase, 51), old), // 510 > 500
			core.EngagementHigh,
		},
		{
			"recent count over high threshold",
			profileWithHistory(t, repeat(core.KindView, 101), recent), // 101 > 100
			core.EngagementHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyEngagement(tt.profile, now); got != tt.want {
				t.Errorf("ClassifyEngagement() = %q, want %q", got, tt.want)
			}
		})
	}
}

// 追加正权重交互不应降低参与度分级。
func TestClassifyEngagement_Monotonic(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	p := profileWithHistory(t, repeat(core.KindPurchase, 11), now.AddDate(0, 0, -90))

	order := map[core.EngagementLevel]int{
		core.EngagementLow:    0,
		core.EngagementMedium: 1,
		core.EngagementHigh:   2,
	}

	prev := ClassifyEngagement(p, now)
	for i := 0; i < 200; i++ {
		p.History.Push(core.Interaction{
			Kind:      core.KindLike,
			TargetID:  "p1",
			Timestamp: now.AddDate(0, 0, -1),
		})
		cur := ClassifyEngagement(p, now)
		if order[cur] < order[prev] {
			t.Fatalf("engagement dropped from %q to %q after adding interaction", prev, cur)
		}
		prev = cur
	}
}

func TestClassifySegment(t *testing.T) {
	withStats := func(purchases, total int64) *core.BehaviorProfile {
		p := core.NewBehaviorProfile("u1")
		p.Patterns.PurchaseCount = purchases
		p.Analytics.TotalInteractions = total
		return p
	}

	tests := []struct {
		name    string
		profile *core.BehaviorProfile
		ageDays int
		want    core.UserSegment
	}{
		{"young account is new regardless of activity", withStats(100, 5000), 3, core.SegmentNew},
		{"nil profile old account", nil, 30, core.SegmentCasual},
		{"no activity", withStats(0, 0), 30, core.SegmentCasual},
		{"some activity is regular", withStats(0, 51), 30, core.SegmentRegular},
		{"purchases push to power", withStats(6, 51), 30, core.SegmentPower},
		{"volume alone pushes to power", withStats(0, 201), 30, core.SegmentPower},
		{"heavy purchases push to vip", withStats(21, 51), 30, core.SegmentVIP},
		{"volume alone pushes to vip", withStats(0, 1001), 30, core.SegmentVIP},
		{"boundary: exactly 7 days is not new", withStats(0, 0), 7, core.SegmentCasual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySegment(tt.profile, tt.ageDays); got != tt.want {
				t.Errorf("ClassifySegment() = %q, want %q", got, tt.want)
			}
		})
	}
}
