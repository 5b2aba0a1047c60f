// Package filter 实现候选过滤：已浏览商品剔除与运营压制名单。
package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// Filter 是单个过滤器：判断某个候选是否应被剔除。
type Filter interface {
	Name() string
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
