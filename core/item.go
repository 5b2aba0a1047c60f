package core

import "github.com/rushteam/shoprec/pkg/utils"

// Item 是推荐链路中的统一承载结构：候选 ID、分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID     string
	Score  float64
	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Score:  0,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// LabelValue 读取 Label 的值；不存在时返回空串。
func (it *Item) LabelValue(key string) string {
	if it.Labels == nil {
		return ""
	}
	return it.Labels[key].Value
}

// SetLabel 覆盖写入 Label（不走 Merge 规则）。
func (it *Item) SetLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	it.Labels[key] = lbl
}

// SetCatalogItem 把目录条目挂到 Meta 上，供下游节点（理由、去重）使用。
func (it *Item) SetCatalogItem(ci *CatalogItem) {
	if it.Meta == nil {
		it.Meta = make(map[string]any)
	}
	it.Meta["item"] = ci
}

// CatalogItem 取回挂在 Meta 上的目录条目；没有时返回 nil。
func (it *Item) CatalogItem() *CatalogItem {
	if it.Meta == nil {
		return nil
	}
	ci, _ := it.Meta["item"].(*CatalogItem)
	return ci
}
