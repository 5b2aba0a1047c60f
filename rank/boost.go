package rank

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/dsl"
	"github.com/rushteam/shoprec/pkg/utils"
)

// RuleBoost 是 CEL 表达式驱动的调权节点：规则命中的候选分数乘以 Factor。
//
// 规则来自引擎配置，例如给 VIP 分群拉升关注商家的商品：
//
//	expr:   'user.segment == "vip" && label.followed_vendor == "true"'
//	factor: 1.5
//
// 表达式首次使用时编译并缓存；编译失败的规则整条跳过，求值失败只跳过该候选。
type RuleBoost struct {
	Rules []core.BoostRule

	compileOnce sync.Once
	programs    []*dsl.Program // 与 Rules 对齐；编译失败的位置为 nil
}

func (n *RuleBoost) Name() string        { return "rank.boost" }
func (n *RuleBoost) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *RuleBoost) compile() {
	n.programs = make([]*dsl.Program, len(n.Rules))
	for i, rule := range n.Rules {
		prg, err := dsl.Compile(rule.Expr)
		if err != nil {
			continue
		}
		n.programs[i] = prg
	}
}

func (n *RuleBoost) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Rules) == 0 || len(items) == 0 {
		return items, nil
	}
	n.compileOnce.Do(n.compile)

	changed := false
	for _, it := range items {
		if it == nil {
			continue
		}
		for i, rule := range n.Rules {
			prg := n.programs[i]
			if prg == nil || rule.Factor == 0 || rule.Factor == 1 {
				continue
			}
			ok, err := prg.Eval(it, rctx)
			if err != nil || !ok {
				continue
			}
			it.Score *= rule.Factor
			changed = true
			it.PutLabel("boosted", utils.Label{Value: rule.Expr, Source: "rank"})
			if rule.Reason != "" {
				it.SetLabel("boost_reason", utils.Label{Value: rule.Reason, Source: "rank"})
			}
		}
	}

	if changed {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Score > items[j].Score
		})
	}
	return items, nil
}
