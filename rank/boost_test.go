package rank

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/shoprec/core"
)

func TestRuleBoost_BoostsMatchingItems(t *testing.T) {
	node := &RuleBoost{Rules: []core.BoostRule{
		{Expr: `item.category == "dresses"`, Factor: 2.0, Reason: "Dress season"},
	}}

	dress := signalItem("p1", 1.0, "content")
	dress.SetCatalogItem(&core.CatalogItem{ID: "p1", Category: "dresses", IsActive: true})
	shoe := signalItem("p2", 1.5, "content")
	shoe.SetCatalogItem(&core.CatalogItem{ID: "p2", Category: "shoes", IsActive: true})

	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, []*core.Item{shoe, dress})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	// p1 翻倍成 2.0，反超 p2 的 1.5
	if out[0].ID != "p1" {
		t.Fatalf("out[0] = %q, want boosted p1", out[0].ID)
	}
	if math.Abs(out[0].Score-2.0) > 1e-9 {
		t.Errorf("p1 score = %v, want 2.0", out[0].Score)
	}
	if out[0].LabelValue("boost_reason") != "Dress season" {
		t.Errorf("boost_reason = %q, want 'Dress season'", out[0].LabelValue("boost_reason"))
	}
	if out[1].LabelValue("boosted") != "" {
		t.Error("p2 should not carry boosted label")
	}
}

func TestRuleBoost_UserSegmentRule(t *testing.T) {
	node := &RuleBoost{Rules: []core.BoostRule{
		{Expr: `user.segment == "vip" && label.signal.contains("social")`, Factor: 1.5},
	}}

	profile := core.NewBehaviorProfile("u1")
	profile.Analytics.UserSegment = core.SegmentVIP
	rctx := &core.RecommendContext{UserID: "u1", Profile: profile}

	social := signalItem("p1", 1.0, "social")
	content := signalItem("p2", 1.0, "content")

	out, err := node.Process(context.Background(), rctx, []*core.Item{social, content})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	byID := map[string]*core.Item{out[0].ID: out[0], out[1].ID: out[1]}
	if math.Abs(byID["p1"].Score-1.5) > 1e-9 {
		t.Errorf("p1 score = %v, want 1.5", byID["p1"].Score)
	}
	if byID["p2"].Score != 1.0 {
		t.Errorf("p2 score = %v, want 1.0 untouched", byID["p2"].Score)
	}
}

// 编译不过的规则整条跳过，不拖垮其余规则。
func TestRuleBoost_BrokenRuleSkipped(t *testing.T) {
	node := &RuleBoost{Rules: []core.BoostRule{
		{Expr: `this is not CEL (`, Factor: 3.0},
		{Expr: `item.score > 0.5`, Factor: 2.0},
	}}

	it := signalItem("p1", 1.0, "content")
	out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, []*core.Item{it})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if math.Abs(out[0].Score-2.0) > 1e-9 {
		t.Errorf("score = %v, want 2.0 (valid rule still applies)", out[0].Score)
	}
}

func TestRuleBoost_NoRulesPassthrough(t *testing.T) {
	node := &RuleBoost{}
	items := []*core.Item{signalItem("p1", 1.0, "content")}
	out, err := node.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 || out[0].Score != 1.0 {
		t.Errorf("passthrough broken: %+v", out)
	}
}
