package behavior

import (
	"time"

	"github.com/rushteam/shoprec/core"
)

// 分群阈值。
const (
	engagementHighWeight  = 500
	engagementHighRecent  = 100
	engagementMedWeight   = 100
	engagementMedRecent   = 20
	recentWindowDays      = 30
	segmentNewAgeDays     = 7
	segmentVIPPurchases   = 20
	segmentVIPTotal       = 1000
	segmentPowerPurchases = 5
	segmentPowerTotal     = 200
	segmentRegularTotal   = 50
)

// ClassifyEngagement 从档案快照推导参与度分级。
// 纯函数：对保留的全部历史求权重和，并统计最近 30 天的交互条数。
// 单调性：追加任意正权重交互不会降低分级。
func ClassifyEngagement(p *core.BehaviorProfile, now time.Time) core.EngagementLevel {
	if p == nil || p.History == nil {
		return core.EngagementLow
	}

	cutoff := now.AddDate(0, 0, -recentWindowDays)
	var totalWeight float64
	var recentCount int
	p.History.Each(func(in core.Interaction) bool {
		totalWeight += in.Kind.Weight()
		if in.Timestamp.After(cutoff) {
			recentCount++
		}
		return true
	})

	switch {
	case totalWeight > engagementHighWeight || recentCount > engagementHighRecent:
		return core.EngagementHigh
	case totalWeight > engagementMedWeight || recentCount > engagementMedRecent:
		return core.EngagementMedium
	default:
		return core.EngagementLow
	}
}

// ClassifySegment 从档案快照与账号年龄推导生命周期分群。纯函数。
func ClassifySegment(p *core.BehaviorProfile, accountAgeDays int) core.UserSegment {
	if accountAgeDays < segmentNewAgeDays {
		return core.SegmentNew
	}
	if p == nil {
		return core.SegmentCasual
	}

	purchases := p.Patterns.PurchaseCount
	total := p.Analytics.TotalInteractions

	switch {
	case purchases > segmentVIPPurchases || total > segmentVIPTotal:
		return core.SegmentVIP
	case purchases > segmentPowerPurchases || total > segmentPowerTotal:
		return core.SegmentPower
	case total > segmentRegularTotal:
		return core.SegmentRegular
	default:
		return core.SegmentCasual
	}
}
