package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

// 社交信号的固定基础分：关注图只提供"来自谁"的信息，不提供强度，
// 分值差异交给合并权重与调权规则处理。
const (
	socialVendorScore = 1.0
	socialLikedScore  = 0.8
)

// SocialSource 是社交关系信号源。
//
// 从关注图取：
//   - (a) 关注商家的最新在售商品
//   - (b) 关注用户点赞过的商品
//
// 按商品去重后合并，至多 limit 个。用户谁都没关注时返回空，不视为错误。
type SocialSource struct {
	Social  core.SocialGraphStore
	Catalog core.CatalogStore
}

func (s *SocialSource) Name() string { return "recall.social" }

func (s *SocialSource) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.UserID == "" || s.Social == nil || s.Catalog == nil {
		return nil, nil
	}

	vendors, err := s.Social.FollowedVendors(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}
	users, err := s.Social.FollowedUsers(ctx, rctx.UserID)
	if err != nil {
		return nil, err
	}
	if len(vendors) == 0 && len(users) == 0 {
		return nil, nil
	}

	limit := rctx.Limit(defaultSourceLimit)
	seen := make(map[string]struct{}, limit*2)
	out := make([]*core.Item, 0, limit)

	// (a) 关注商家的最新在售商品
	if len(vendors) > 0 {
		items, err := s.Catalog.Query(ctx, core.CatalogQuery{
			VendorIDs:  vendors,
			OnlyActive: true,
			SortBy:     core.SortByNewest,
			Limit:      limit,
		})
		if err == nil {
			for _, ci := range items {
				if _, ok := seen[ci.ID]; ok {
					continue
				}
				seen[ci.ID] = struct{}{}
				it := core.NewItem(ci.ID)
				it.Score = socialVendorScore
				it.SetCatalogItem(ci)
				it.PutLabel(LabelSignal, utils.Label{Value: SignalSocial, Source: "recall"})
				it.PutLabel("followed_vendor", utils.Label{Value: "true", Source: "recall"})
				out = append(out, it)
			}
		}
	}

	// (b) 关注用户点赞过的商品
	if len(users) > 0 && len(out) < limit {
		likedIDs, err := s.Social.LikedItems(ctx, users, limit)
		if err == nil && len(likedIDs) > 0 {
			items, err := s.Catalog.GetItems(ctx, likedIDs)
			if err == nil {
				for _, ci := range items {
					if !ci.IsActive {
						continue
					}
					if _, ok := seen[ci.ID]; ok {
						continue
					}
					seen[ci.ID] = struct{}{}
					it := core.NewItem(ci.ID)
					it.Score = socialLikedScore
					it.SetCatalogItem(ci)
					it.PutLabel(LabelSignal, utils.Label{Value: SignalSocial, Source: "recall"})
					it.PutLabel("liked_by_followed", utils.Label{Value: "true", Source: "recall"})
					out = append(out, it)
				}
			}
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
