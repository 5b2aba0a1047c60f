package core

import (
	"encoding/json"
	"sort"
	"time"
)

// PreferenceEntry 是某个偏好维度（类目/品牌/价格带/颜色/尺码）的累计状态。
type PreferenceEntry struct {
	Name              string    `json:"name"`
	Score             float64   `json:"score"`
	InteractionCount  int64     `json:"interaction_count"`
	LastInteractionAt time.Time `json:"last_interaction_at"`
}

// PreferenceSet 是一组命名偏好条目，例如全部类目偏好。
type PreferenceSet map[string]*PreferenceEntry

// Bump 累加一次交互权重；条目不存在时创建。
// 分值单调不减（无衰减），见设计说明。
func (s PreferenceSet) Bump(name string, weight float64, at time.Time) {
	entry, ok := s[name]
	if !ok {
		entry = &PreferenceEntry{Name: name}
		s[name] = entry
	}
	entry.Score += weight
	entry.InteractionCount++
	entry.LastInteractionAt = at
}

// Score 返回某个维度的累计分值，缺失为 0。
func (s PreferenceSet) Score(name string) float64 {
	if entry, ok := s[name]; ok {
		return entry.Score
	}
	return 0
}

// Vector 转换为稀疏向量（用于相似度计算）。
func (s PreferenceSet) Vector() Vector {
	v := make(Vector, len(s))
	for name, entry := range s {
		v[name] = entry.Score
	}
	return v
}

// Top 返回分值最高的 k 个维度名（降序，同分按名称升序）。
func (s PreferenceSet) Top(k int) []string {
	return s.Vector().TopK(k)
}

// Best 返回分值最高的条目；集合为空时返回 nil。
func (s PreferenceSet) Best() *PreferenceEntry {
	var best *PreferenceEntry
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names) // 确定性遍历
	for _, name := range names {
		entry := s[name]
		if best == nil || entry.Score > best.Score {
			best = entry
		}
	}
	return best
}

// PreferenceVector 是从交互历史推导出的命名偏好集合。
type PreferenceVector struct {
	Categories PreferenceSet `json:"categories"`
	Brands     PreferenceSet `json:"brands"`
	PriceBands PreferenceSet `json:"price_bands"`
	Colors     PreferenceSet `json:"colors"`
	Sizes      PreferenceSet `json:"sizes"`
}

// NewPreferenceVector 创建空偏好集合。
func NewPreferenceVector() *PreferenceVector {
	return &PreferenceVector{
		Categories: make(PreferenceSet),
		Brands:     make(PreferenceSet),
		PriceBands: make(PreferenceSet),
		Colors:     make(PreferenceSet),
		Sizes:      make(PreferenceSet),
	}
}

// Patterns 是行为模式统计：活跃时段直方图、会话时长、购买频率。
type Patterns struct {
	ActiveHours       map[int]int64 `json:"active_hours"` // 小时 (0-23) → 次数
	ActiveDays        map[int]int64 `json:"active_days"`  // 星期 (0=周日) → 次数
	SessionCount      int64         `json:"session_count"`
	AvgSessionSeconds float64       `json:"avg_session_seconds"` // 运行平均
	PurchaseCount     int64         `json:"purchase_count"`
	LastPurchaseAt    time.Time     `json:"last_purchase_at"`
}

// SocialBehavior 是社交行为画像：对关注的商家/用户的累计互动分。
type SocialBehavior struct {
	VendorScores map[string]float64 `json:"vendor_scores"`
	UserScores   map[string]float64 `json:"user_scores"`
}

// RecommendationScores 是档案上缓存的四路信号权重快照。
type RecommendationScores struct {
	Collaborative float64   `json:"collaborative"`
	Content       float64   `json:"content"`
	Social        float64   `json:"social"`
	Trending      float64   `json:"trending"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SimilarUser 是相似用户缓存条目。
type SimilarUser struct {
	UserID             string    `json:"user_id"`
	Similarity         float64   `json:"similarity"` // [0, 1]
	CommonInteractions int       `json:"common_interactions"`
	CalculatedAt       time.Time `json:"calculated_at"`
}

// EngagementLevel 是参与度分级。
type EngagementLevel string

const (
	EngagementLow    EngagementLevel = "low"
	EngagementMedium EngagementLevel = "medium"
	EngagementHigh   EngagementLevel = "high"
)

// UserSegment 是生命周期分群。
type UserSegment string

const (
	SegmentNew     UserSegment = "new"
	SegmentCasual  UserSegment = "casual"
	SegmentRegular UserSegment = "regular"
	SegmentPower   UserSegment = "power"
	SegmentVIP     UserSegment = "vip"
)

// Analytics 是档案的汇总指标。
type Analytics struct {
	TotalInteractions int64           `json:"total_interactions"`
	LastActivity      time.Time       `json:"last_activity"`
	EngagementLevel   EngagementLevel `json:"engagement_level"`
	UserSegment       UserSegment     `json:"user_segment"`
}

// BehaviorProfile 是单个用户的行为档案，首次交互时惰性创建。
// 只有 Recorder（记录交互）和分群计算会修改它；推荐读路径只读。
type BehaviorProfile struct {
	UserID       string                `json:"user_id"`
	CreatedAt    time.Time             `json:"created_at"`
	History      *History              `json:"history"`
	Preferences  *PreferenceVector     `json:"preferences"`
	Patterns     Patterns              `json:"patterns"`
	Social       SocialBehavior        `json:"social"`
	Scores       RecommendationScores  `json:"scores"`
	SimilarUsers []SimilarUser         `json:"similar_users,omitempty"`
	Analytics    Analytics             `json:"analytics"`
}

// NewBehaviorProfile 创建一个新的行为档案。
func NewBehaviorProfile(userID string) *BehaviorProfile {
	return &BehaviorProfile{
		UserID:      userID,
		CreatedAt:   time.Now(),
		History:     NewHistory(DefaultHistoryCap),
		Preferences: NewPreferenceVector(),
		Patterns: Patterns{
			ActiveHours: make(map[int]int64),
			ActiveDays:  make(map[int]int64),
		},
		Social: SocialBehavior{
			VendorScores: make(map[string]float64),
			UserScores:   make(map[string]float64),
		},
	}
}

// AccountAgeDays 返回账号年龄（天），以档案创建时间近似。
func (p *BehaviorProfile) AccountAgeDays(now time.Time) int {
	if p.CreatedAt.IsZero() {
		return 0
	}
	return int(now.Sub(p.CreatedAt).Hours() / 24)
}

// ViewedProducts 返回浏览过的商品 ID 集合（excludeViewed 过滤用）。
func (p *BehaviorProfile) ViewedProducts() map[string]struct{} {
	out := make(map[string]struct{})
	p.History.Each(func(in Interaction) bool {
		if in.Kind == KindView && in.TargetType == TargetProduct {
			out[in.TargetID] = struct{}{}
		}
		return true
	})
	return out
}

// ProductTargets 返回交互过的全部商品 ID 集合（相似用户的共同交互计数用）。
func (p *BehaviorProfile) ProductTargets() map[string]struct{} {
	out := make(map[string]struct{})
	p.History.Each(func(in Interaction) bool {
		if in.TargetType == TargetProduct {
			out[in.TargetID] = struct{}{}
		}
		return true
	})
	return out
}

// Clone 深拷贝档案。内存存储用它保证"读不受写影响"。
func (p *BehaviorProfile) Clone() *BehaviorProfile {
	data, err := json.Marshal(p)
	if err != nil {
		return nil
	}
	out := NewBehaviorProfile(p.UserID)
	if err := json.Unmarshal(data, out); err != nil {
		return nil
	}
	return out
}
