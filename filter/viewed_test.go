package filter

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
)

func profileWithViews(ids ...string) *core.BehaviorProfile {
	p := core.NewBehaviorProfile("u1")
	for _, id := range ids {
		p.History.Push(core.Interaction{
			Kind:       core.KindView,
			TargetID:   id,
			TargetType: core.TargetProduct,
			Timestamp:  time.Unix(1700000000, 0),
		})
	}
	return p
}

func TestViewedFilter(t *testing.T) {
	f := &ViewedFilter{}
	profile := profileWithViews("seen")

	tests := []struct {
		name string
		rctx *core.RecommendContext
		item string
		want bool
	}{
		{
			"viewed item dropped when excludeViewed on",
			&core.RecommendContext{Profile: profile, Options: core.RecommendOptions{ExcludeViewed: true}},
			"seen",
			true,
		},
		{
			"unseen item kept",
			&core.RecommendContext{Profile: profile, Options: core.RecommendOptions{ExcludeViewed: true}},
			"fresh",
			false,
		},
		{
			"excludeViewed off keeps viewed item",
			&core.RecommendContext{Profile: profile},
			"seen",
			false,
		},
		{
			"nil profile keeps everything",
			&core.RecommendContext{Options: core.RecommendOptions{ExcludeViewed: true}},
			"seen",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ShouldFilter(context.Background(), tt.rctx, core.NewItem(tt.item))
			if err != nil {
				t.Fatalf("ShouldFilter() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldFilter(%s) = %v, want %v", tt.item, got, tt.want)
			}
		})
	}
}

// 购买过但没浏览过的商品不算已浏览。
func TestViewedFilter_OnlyViewKindCounts(t *testing.T) {
	p := core.NewBehaviorProfile("u1")
	p.History.Push(core.Interaction{
		Kind:       core.KindPurchase,
		TargetID:   "bought",
		TargetType: core.TargetProduct,
		Timestamp:  time.Unix(1700000000, 0),
	})

	f := &ViewedFilter{}
	rctx := &core.RecommendContext{Profile: p, Options: core.RecommendOptions{ExcludeViewed: true}}
	got, err := f.ShouldFilter(context.Background(), rctx, core.NewItem("bought"))
	if err != nil {
		t.Fatalf("ShouldFilter() error = %v", err)
	}
	if got {
		t.Error("purchase without view should not mark item as viewed")
	}
}

func TestSuppressedFilter(t *testing.T) {
	f := NewSuppressedFilter([]string{"banned1", "banned2"})
	rctx := &core.RecommendContext{UserID: "u1"}

	for _, id := range []string{"banned1", "banned2"} {
		if got, _ := f.ShouldFilter(context.Background(), rctx, core.NewItem(id)); !got {
			t.Errorf("ShouldFilter(%s) = false, want true", id)
		}
	}
	if got, _ := f.ShouldFilter(context.Background(), rctx, core.NewItem("ok")); got {
		t.Error("ShouldFilter(ok) = true, want false")
	}
}

func TestNode_CombinesFilters(t *testing.T) {
	node := &Node{Filters: []Filter{
		&ViewedFilter{},
		NewSuppressedFilter([]string{"banned"}),
	}}
	profile := profileWithViews("seen")
	rctx := &core.RecommendContext{Profile: profile, Options: core.RecommendOptions{ExcludeViewed: true}}

	items := []*core.Item{
		core.NewItem("seen"),
		core.NewItem("banned"),
		core.NewItem("ok"),
	}
	out, err := node.Process(context.Background(), rctx, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != "ok" {
		t.Errorf("Process() kept %v, want [ok]", out)
	}
}
