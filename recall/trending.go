package recall

import (
	"context"
	"sort"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/pkg/utils"
)

// 热门分公式的权重：购买 > 点赞 > 浏览，评分做轻微拉升。
const (
	trendingViewsWeight     = 0.1
	trendingLikesWeight     = 0.3
	trendingPurchasesWeight = 0.6
	trendingRatingWeight    = 0.2
)

// TrendingSource 是热门信号源：只用目录级的参与度计数器打分，
// 与任何单个用户无关。匿名用户与全新用户的默认结果就是它。
//
//	score = 0.1×views + 0.3×likes + 0.6×purchases + 0.2×ratingAverage
//
// TrendingSource 同时实现 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type TrendingSource struct {
	Catalog core.CatalogStore

	// Limit 缺省结果数，请求未指定 limit 时生效，默认 20
	Limit int
}

func (s *TrendingSource) Name() string        { return "recall.trending" }
func (s *TrendingSource) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (s *TrendingSource) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return s.Recall(ctx, rctx)
}

// TrendingScore 计算单个商品的热门分。
func TrendingScore(ci *core.CatalogItem) float64 {
	return trendingViewsWeight*float64(ci.Analytics.Views) +
		trendingLikesWeight*float64(ci.Analytics.Likes) +
		trendingPurchasesWeight*float64(ci.Analytics.Purchases) +
		trendingRatingWeight*ci.Rating.Average
}

// Recall 实现 Source 接口。
func (s *TrendingSource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if s.Catalog == nil {
		return nil, nil
	}

	limit := s.Limit
	if limit <= 0 {
		limit = 20
	}
	category := ""
	if rctx != nil {
		limit = rctx.Limit(limit)
		category = rctx.Options.Category
	}

	q := core.CatalogQuery{
		OnlyActive: true,
		SortBy:     core.SortByPurchases,
		Limit:      limit * 10, // 先按购买数超采，再按热门分重排
	}
	if category != "" {
		q.Categories = []string{category}
	}
	candidates, err := s.Catalog.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(candidates))
	for _, ci := range candidates {
		if ci == nil || !ci.IsActive {
			continue
		}
		it := core.NewItem(ci.ID)
		it.Score = TrendingScore(ci)
		it.SetCatalogItem(ci)
		it.PutLabel(LabelSignal, utils.Label{Value: SignalTrending, Source: "recall"})
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
