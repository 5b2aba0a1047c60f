package recall

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

// CollaborativeSource 是协同过滤信号源（User-based CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的商品"
//
// 算法流程：
//  1. 取邻居集（档案上的缓存新鲜则直接用，否则现算、不回写）
//  2. 扫描每个邻居的高价值交互（like / purchase / cart_add / wishlist_add）
//  3. 按商品累加 Σ(交互权重 × 邻居相似度)
//  4. 取 Top limit×N，从目录取回 isActive 的条目
//
// 邻居集为空时返回空结果而不是错误，调用方把它当作"协同信号不可用"，
// 由其余信号兜底。
type CollaborativeSource struct {
	Similarity *SimilarityEngine
	Behavior   core.BehaviorStore
	Catalog    core.CatalogStore

	// NeighborLimit 邻居数上限，默认 10
	NeighborLimit int

	// Multiplier 超采倍数：返回 limit×Multiplier 个候选，默认 2
	Multiplier int

	// CacheTTL 档案上相似用户缓存的有效期，默认 1h
	CacheTTL time.Duration
}

func (s *CollaborativeSource) Name() string { return "recall.collaborative" }

func (s *CollaborativeSource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.Profile == nil || s.Catalog == nil {
		return nil, nil
	}
	profile := rctx.Profile

	neighbors, err := s.neighbors(ctx, rctx)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	// 按商品累加加权分；order 记录首次出现顺序，保证确定性
	myTargets := profile.ProductTargets()
	scores := make(map[string]float64)
	order := make([]string, 0, 64)

	for _, nb := range neighbors {
		np, err := s.Behavior.GetProfile(ctx, nb.UserID)
		if err != nil || np == nil {
			continue
		}
		sim := nb.Similarity
		np.History.Each(func(in core.Interaction) bool {
			if in.TargetType != core.TargetProduct || !in.Kind.HighValue() {
				return true
			}
			// 跳过请求用户自己交互过的商品
			if _, ok := myTargets[in.TargetID]; ok {
				return true
			}
			if _, ok := scores[in.TargetID]; !ok {
				order = append(order, in.TargetID)
			}
			scores[in.TargetID] += in.Kind.Weight() * sim
			return true
		})
	}
	if len(order) == 0 {
		return nil, nil
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	multiplier := s.Multiplier
	if multiplier <= 0 {
		multiplier = 2
	}
	topN := rctx.Limit(defaultSourceLimit) * multiplier
	if len(order) > topN {
		order = order[:topN]
	}

	items, err := s.Catalog.GetItems(ctx, order)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*core.CatalogItem, len(items))
	for _, ci := range items {
		byID[ci.ID] = ci
	}

	out := make([]*core.Item, 0, len(order))
	for _, id := range order {
		ci, ok := byID[id]
		if !ok || !ci.IsActive {
			continue
		}
		it := core.NewItem(id)
		it.Score = scores[id]
		it.SetCatalogItem(ci)
		it.PutLabel(LabelSignal, utils.Label{Value: SignalCollaborative, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

// neighbors 先看档案上的缓存是否新鲜；过期则现算，但不回写
// （推荐读路径对档案只读，缓存刷新由 Recorder 的写路径负责）。
func (s *CollaborativeSource) neighbors(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]core.SimilarUser, error) {
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	cached := rctx.Profile.SimilarUsers
	if len(cached) > 0 && time.Since(cached[0].CalculatedAt) <= ttl {
		return cached, nil
	}
	if s.Similarity == nil {
		return cached, nil
	}

	limit := s.NeighborLimit
	if limit <= 0 {
		limit = 10
	}
	return s.Similarity.FindSimilarUsers(ctx, rctx.UserID, rctx.Profile, limit)
}
