// Package rank 实现信号合并、CEL 调权与推荐理由归因。
package rank

import (
	"context"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/dsl"
)

// CombineNode 把四路信号的候选合并成一个有序列表。
//
// 对每个候选累加 Σ(单路分值 × 该路权重)，按商品 ID 去重，
// 并在 signal 标签上累积所有贡献过的信号。
//
// 平局契约：累加分相同的候选保持"首次出现顺序"（上游 Fanout 按声明顺序
// 拼接，因此可复现）；不要按次要键重新排序，这是对外行为，有专门的测试。
type CombineNode struct {
	Weights core.SignalWeights
}

func (n *CombineNode) Name() string        { return "rank.combine" }
func (n *CombineNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *CombineNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	merged := make(map[string]*core.Item, len(items))
	// dominant 记录每个候选贡献最大的那一路信号，供理由归因使用
	dominant := make(map[string]float64, len(items))
	ordered := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}
		signal := it.LabelValue(recallSignalKey)
		contribution := it.Score * n.weightFor(signal)

		existing, ok := merged[it.ID]
		if !ok {
			out := core.NewItem(it.ID)
			out.Score = contribution
			// 复制而不是别名：合并节点的标注不能写回上游候选
			for k, v := range it.Meta {
				out.Meta[k] = v
			}
			for k, v := range it.Labels {
				out.PutLabel(k, v)
			}
			out.Meta["dominant_signal"] = signal
			merged[it.ID] = out
			dominant[it.ID] = contribution
			ordered = append(ordered, out)
			continue
		}

		existing.Score += contribution
		for k, v := range it.Labels {
			existing.PutLabel(k, v)
		}
		// 补齐缺失的元信息（例如先出现的那一路没挂目录条目）
		for k, v := range it.Meta {
			if _, ok := existing.Meta[k]; !ok {
				existing.Meta[k] = v
			}
		}
		if contribution > dominant[it.ID] {
			dominant[it.ID] = contribution
			existing.Meta["dominant_signal"] = signal
		}
	}

	// 稳定排序：同分保持首次出现顺序
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})
	return ordered, nil
}

const recallSignalKey = "signal"

// weightFor 返回某路信号的合并权重；merge 过的多值标签取第一段。
func (n *CombineNode) weightFor(signal string) float64 {
	switch {
	case dsl.HasSignal(signal, string(core.AlgoCollaborative)):
		return n.Weights.Collaborative
	case dsl.HasSignal(signal, string(core.AlgoContent)):
		return n.Weights.Content
	case dsl.HasSignal(signal, string(core.AlgoSocial)):
		return n.Weights.Social
	case dsl.HasSignal(signal, string(core.AlgoTrending)):
		return n.Weights.Trending
	}
	return 0
}
