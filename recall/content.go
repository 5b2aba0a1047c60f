package recall

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

// 内容信号的组合打分权重。
const (
	contentCategoryWeight = 0.4
	contentBrandWeight    = 0.3
	contentRatingWeight   = 0.2
	contentViewsWeight    = 0.1
)

// ContentSource 是基于内容的信号源。
//
// 用请求用户自己的偏好聚合（类目/品牌/价格带亲和度）加上商品的评分与热度，
// 给用户没看过的商品打分：
//
//	score = 0.4×类目偏好分 + 0.3×品牌偏好分 + 0.2×评分均值 + 0.1×ln(浏览数+1)
//
// 查询限定在用户 Top3 类目、（如有）Top5 品牌与最高分价格带内；
// 用户没有任何类目偏好时不加限定，打分退化为纯评分/热度。
type ContentSource struct {
	Catalog core.CatalogStore

	// Multiplier 超采倍数：返回 limit×Multiplier 个候选，默认 2
	Multiplier int
}

func (s *ContentSource) Name() string { return "recall.content" }

func (s *ContentSource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Profile == nil || s.Catalog == nil {
		return nil, nil
	}
	prefs := rctx.Profile.Preferences
	if prefs == nil {
		return nil, nil
	}

	multiplier := s.Multiplier
	if multiplier <= 0 {
		multiplier = 2
	}
	topN := rctx.Limit(defaultSourceLimit) * multiplier

	q := core.CatalogQuery{
		OnlyActive: true,
		SortBy:     core.SortByRating,
		Limit:      topN * 3, // 先超采，打分后再截断
	}
	topCats := prefs.Categories.Top(3)
	if rctx.Options.Category != "" {
		// 请求限定了类目时以请求为准
		q.Categories = []string{rctx.Options.Category}
	} else if len(topCats) > 0 {
		q.Categories = topCats
	}
	if len(q.Categories) > 0 {
		if brands := prefs.Brands.Top(5); len(brands) > 0 {
			q.Brands = brands
		}
		if band := prefs.PriceBands.Best(); band != nil {
			if min, max, ok := core.PriceBandRange(band.Name); ok {
				q.PriceMin, q.PriceMax = min, max
			}
		}
	}

	candidates, err := s.Catalog.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	viewed := rctx.ViewedProducts()
	out := make([]*core.Item, 0, len(candidates))
	for _, ci := range candidates {
		if ci == nil || !ci.IsActive {
			continue
		}
		// 只给用户没看过的商品打分
		if _, ok := viewed[ci.ID]; ok {
			continue
		}

		score := contentCategoryWeight*prefs.Categories.Score(ci.Category) +
			contentBrandWeight*prefs.Brands.Score(ci.Brand) +
			contentRatingWeight*ci.Rating.Average +
			contentViewsWeight*math.Log(float64(ci.Analytics.Views)+1)

		it := core.NewItem(ci.ID)
		it.Score = score
		it.SetCatalogItem(ci)
		it.PutLabel(LabelSignal, utils.Label{Value: SignalContent, Source: "recall"})
		out = append(out, it)
	}

	// 稳定排序：同分保持目录查询的出现顺序
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}
