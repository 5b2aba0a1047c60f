package filter

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// SuppressedFilter 剔除全局压制名单中的商品（运营干预，例如下架整改中的条目）。
type SuppressedFilter struct {
	// ItemIDs 是压制的商品 ID 列表，来自引擎配置
	ItemIDs []string

	set map[string]struct{}
}

// NewSuppressedFilter 创建压制过滤器。
func NewSuppressedFilter(itemIDs []string) *SuppressedFilter {
	set := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		set[id] = struct{}{}
	}
	return &SuppressedFilter{ItemIDs: itemIDs, set: set}
}

func (f *SuppressedFilter) Name() string {
	return "filter.suppressed"
}

func (f *SuppressedFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	if f.set == nil {
		for _, id := range f.ItemIDs {
			if item.ID == id {
				return true, nil
			}
		}
		return false, nil
	}
	_, ok := f.set[item.ID]
	return ok, nil
}
