package core

import "github.com/rushteam/shoprec/pkg/utils"

// RecommendContext 承载单次推荐请求的用户与选项信息，贯穿整个 Pipeline 透传。
// 推荐读路径对 Profile 只读；并发的多次请求可共享同一份档案快照。
type RecommendContext struct {
	UserID string

	// Profile 是请求用户的行为档案快照；匿名或新用户为 nil。
	Profile *BehaviorProfile

	// Options 是请求级选项（limit / category / excludeViewed / includeReasons）。
	Options RecommendOptions

	// Labels 是请求级标签，可驱动 Pipeline 行为（例如分群驱动的加权规则）。
	Labels map[string]utils.Label

	viewed map[string]struct{} // 懒计算的已浏览集合
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// Limit 返回请求的结果数上限；未设置时使用 fallback。
func (rctx *RecommendContext) Limit(fallback int) int {
	if rctx.Options.Limit > 0 {
		return rctx.Options.Limit
	}
	if fallback > 0 {
		return fallback
	}
	return 20
}

// ViewedProducts 返回用户浏览过的商品集合，首次调用时从档案计算。
// Pipeline 内节点串行执行，无需加锁。
func (rctx *RecommendContext) ViewedProducts() map[string]struct{} {
	if rctx.viewed == nil {
		if rctx.Profile != nil {
			rctx.viewed = rctx.Profile.ViewedProducts()
		} else {
			rctx.viewed = make(map[string]struct{})
		}
	}
	return rctx.viewed
}
