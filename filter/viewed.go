package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// ViewedFilter 在请求带 excludeViewed 时剔除用户浏览过的商品。
// 即便某个商品在每一路信号中都拿到最高分，只要用户看过它就不会出现在结果里。
// 已浏览集合由 RecommendContext 从档案快照懒计算，一次请求内只算一遍。
type ViewedFilter struct{}

func (f *ViewedFilter) Name() string {
	return "filter.viewed"
}

func (f *ViewedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.Profile == nil {
		return false, nil
	}
	if !rctx.Options.ExcludeViewed {
		return false, nil
	}
	_, viewed := rctx.ViewedProducts()[item.ID]
	return viewed, nil
}
