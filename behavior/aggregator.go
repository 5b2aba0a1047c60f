// Package behavior 实现行为侧的写路径：交互记录、偏好聚合与行为分群。
package behavior

import (
	"github.com/rushteam/shoprec/core"
)

// ApplyInteraction 把单条交互的权重摊到档案的各个偏好维度上，
// 并同步更新行为模式统计与社交行为分。
//
// 聚合是累计式的：不做时间衰减，老交互与新交互权重等同（长期口味假设）。
func ApplyInteraction(p *core.BehaviorProfile, in core.Interaction) {
	if p.Preferences == nil {
		p.Preferences = core.NewPreferenceVector()
	}

	w := in.Kind.Weight()
	at := in.Timestamp

	if in.Metadata.Category != "" {
		p.Preferences.Categories.Bump(in.Metadata.Category, w, at)
	}
	if in.Metadata.Brand != "" {
		p.Preferences.Brands.Bump(in.Metadata.Brand, w, at)
	}
	if in.Metadata.Price > 0 {
		p.Preferences.PriceBands.Bump(core.PriceBand(in.Metadata.Price), w, at)
	}
	if in.Metadata.Color != "" {
		p.Preferences.Colors.Bump(in.Metadata.Color, w, at)
	}
	if in.Metadata.Size != "" {
		p.Preferences.Sizes.Bump(in.Metadata.Size, w, at)
	}

	applyPatterns(p, in)
	applySocial(p, in, w)
}

// applyPatterns 更新活跃时段直方图、会话时长运行平均与购买统计。
func applyPatterns(p *core.BehaviorProfile, in core.Interaction) {
	if p.Patterns.ActiveHours == nil {
		p.Patterns.ActiveHours = make(map[int]int64)
	}
	if p.Patterns.ActiveDays == nil {
		p.Patterns.ActiveDays = make(map[int]int64)
	}
	p.Patterns.ActiveHours[in.Timestamp.Hour()]++
	p.Patterns.ActiveDays[int(in.Timestamp.Weekday())]++

	if in.Metadata.Duration > 0 {
		// 运行平均：avg' = avg + (x - avg) / n
		p.Patterns.SessionCount++
		n := float64(p.Patterns.SessionCount)
		p.Patterns.AvgSessionSeconds += (float64(in.Metadata.Duration) - p.Patterns.AvgSessionSeconds) / n
	}

	if in.Kind == core.KindPurchase {
		p.Patterns.PurchaseCount++
		p.Patterns.LastPurchaseAt = in.Timestamp
	}
}

// applySocial 更新对关注商家/用户的累计互动分。
func applySocial(p *core.BehaviorProfile, in core.Interaction, w float64) {
	switch in.Kind {
	case core.KindFollowVendor:
		if p.Social.VendorScores == nil {
			p.Social.VendorScores = make(map[string]float64)
		}
		p.Social.VendorScores[in.TargetID] += w
	case core.KindFollowUser:
		if p.Social.UserScores == nil {
			p.Social.UserScores = make(map[string]float64)
		}
		p.Social.UserScores[in.TargetID] += w
	}
}
