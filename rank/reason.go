package rank

import (
	"context"
	"fmt"
	"strings"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// 各路信号的通用理由文案。
var genericReasons = map[string]string{
	string(core.AlgoTrending):      "Trending now",
	string(core.AlgoCollaborative): "People like you also liked this",
	string(core.AlgoContent):       "Recommended for you",
	string(core.AlgoSocial):        "Popular among people you follow",
}

// ReasonNode 为每个存活的候选附加一条可读推荐理由，按优先级归因：
//
//  1. 来自关注商家            → "From {vendor} (following)"
//  2. 类目偏好分超过阈值      → "You like {category} items"
//  3. 品牌偏好分超过阈值      → "You like {brand} products"
//  4. 贡献最大的信号的通用文案 → "Trending now" 等
//
// 请求未开 includeReasons 时原样透传。
type ReasonNode struct {
	// CategoryThreshold / BrandThreshold 是第 2 / 3 条规则的偏好分阈值
	CategoryThreshold float64
	BrandThreshold    float64
}

func (n *ReasonNode) Name() string        { return "rank.reason" }
func (n *ReasonNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *ReasonNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || !rctx.Options.IncludeReasons || len(items) == 0 {
		return items, nil
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.SetLabel("reason", utils.Label{Value: n.reasonFor(rctx, it), Source: "postprocess"})
	}
	return items, nil
}

func (n *ReasonNode) reasonFor(rctx *core.RecommendContext, it *core.Item) string {
	ci := it.CatalogItem()

	// 1. 关注商家
	if it.LabelValue("followed_vendor") != "" && ci != nil {
		vendor := ci.VendorName
		if vendor == "" {
			vendor = ci.VendorID
		}
		return fmt.Sprintf("From %s (following)", vendor)
	}

	// 2 / 3. 类目、品牌偏好
	if rctx.Profile != nil && rctx.Profile.Preferences != nil && ci != nil {
		prefs := rctx.Profile.Preferences
		if ci.Category != "" && prefs.Categories.Score(ci.Category) > n.CategoryThreshold {
			return fmt.Sprintf("You like %s items", ci.Category)
		}
		if ci.Brand != "" && prefs.Brands.Score(ci.Brand) > n.BrandThreshold {
			return fmt.Sprintf("You like %s products", ci.Brand)
		}
	}

	// 4. 贡献最大信号的通用文案。
	// 没经过合并节点的候选（纯热门路径）不带 dominant_signal，
	// 此时回落到 signal 标签（取首段，单路候选只有一段）。
	dom, _ := it.Meta["dominant_signal"].(string)
	if dom == "" {
		dom = it.LabelValue(recallSignalKey)
		if i := strings.IndexByte(dom, '|'); i >= 0 {
			dom = dom[:i]
		}
	}
	if reason, ok := genericReasons[dom]; ok {
		return reason
	}
	return genericReasons[string(core.AlgoContent)]
}
