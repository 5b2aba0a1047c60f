// Package rerank 实现排序结果上的重排与截断。
package rerank

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// TopNNode 截取前 N 个候选，放在合并与过滤之后，保证输出长度 ≤ 请求的 limit。
//
// N <= 0 时使用请求的 limit（再退到 Fallback）；
// 候选数不足时原样返回，不补位。
type TopNNode struct {
	// N 固定截断值；0 表示跟随请求的 limit
	N int

	// Fallback 请求也未指定 limit 时的缺省值
	Fallback int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if limit <= 0 && rctx != nil {
		limit = rctx.Limit(n.Fallback)
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
