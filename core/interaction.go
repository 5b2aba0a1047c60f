package core

import "time"

// InteractionKind 是交互事件类型的封闭枚举。
// 不在枚举内的类型会在记录入口处被拒绝（ErrInvalidInteractionKind）。
type InteractionKind string

const (
	KindView           InteractionKind = "view"
	KindLike           InteractionKind = "like"
	KindShare          InteractionKind = "share"
	KindPurchase       InteractionKind = "purchase"
	KindComment        InteractionKind = "comment"
	KindCartAdd        InteractionKind = "cart_add"
	KindCartRemove     InteractionKind = "cart_remove"
	KindWishlistAdd    InteractionKind = "wishlist_add"
	KindWishlistRemove InteractionKind = "wishlist_remove"
	KindFollowVendor   InteractionKind = "follow_vendor"
	KindUnfollowVendor InteractionKind = "unfollow_vendor"
	KindFollowUser     InteractionKind = "follow_user"
	KindUnfollowUser   InteractionKind = "unfollow_user"
	KindSearch         InteractionKind = "search"
	KindCategoryBrowse InteractionKind = "category_browse"
	KindFilterApply    InteractionKind = "filter_apply"
)

// TargetType 是交互目标实体的类型。
type TargetType string

const (
	TargetProduct  TargetType = "product"
	TargetPost     TargetType = "post"
	TargetStory    TargetType = "story"
	TargetUser     TargetType = "user"
	TargetVendor   TargetType = "vendor"
	TargetCategory TargetType = "category"
)

// validKinds 是封闭枚举的成员集合。
var validKinds = map[InteractionKind]struct{}{
	KindView: {}, KindLike: {}, KindShare: {}, KindPurchase: {},
	KindComment: {}, KindCartAdd: {}, KindCartRemove: {},
	KindWishlistAdd: {}, KindWishlistRemove: {},
	KindFollowVendor: {}, KindUnfollowVendor: {},
	KindFollowUser: {}, KindUnfollowUser: {},
	KindSearch: {}, KindCategoryBrowse: {}, KindFilterApply: {},
}

// interactionWeights 是固定的交互权重表，驱动偏好聚合与协同过滤。
// 移除/取关类事件权重为 0：偏好分值除显式衰减外单调不减（当前无衰减）。
var interactionWeights = map[InteractionKind]float64{
	KindView:           1,
	KindLike:           3,
	KindShare:          5,
	KindPurchase:       10,
	KindComment:        4,
	KindCartAdd:        5,
	KindCartRemove:     0,
	KindWishlistAdd:    3,
	KindWishlistRemove: 0,
	KindFollowVendor:   4,
	KindFollowUser:     2,
	KindUnfollowVendor: 0,
	KindUnfollowUser:   0,
	KindSearch:         1,
	KindCategoryBrowse: 1,
	KindFilterApply:    1,
}

// Valid 判断类型是否在封闭枚举内。
func (k InteractionKind) Valid() bool {
	_, ok := validKinds[k]
	return ok
}

// Weight 返回该交互类型的固定权重；合法但未显式配置的类型默认为 1。
func (k InteractionKind) Weight() float64 {
	if w, ok := interactionWeights[k]; ok {
		return w
	}
	return 1
}

// HighValue 判断该交互是否属于高价值行为（协同过滤扫描邻居历史时只看这些）。
func (k InteractionKind) HighValue() bool {
	switch k {
	case KindLike, KindPurchase, KindCartAdd, KindWishlistAdd:
		return true
	}
	return false
}

// Counter 返回该交互类型对应的商品侧计数器；无对应计数器时 ok 为 false。
func (k InteractionKind) Counter() (CounterKind, bool) {
	switch k {
	case KindView:
		return CounterViews, true
	case KindLike:
		return CounterLikes, true
	case KindPurchase:
		return CounterPurchases, true
	}
	return "", false
}

// Metadata 是交互事件上的可选上下文信息。
type Metadata struct {
	Category    string  `json:"category,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Color       string  `json:"color,omitempty"`
	Size        string  `json:"size,omitempty"`
	SearchQuery string  `json:"search_query,omitempty"`
	Duration    int64   `json:"duration,omitempty"` // 会话/停留时长（秒）
	Source      string  `json:"source,omitempty"`
	SessionID   string  `json:"session_id,omitempty"`
}

// Interaction 是一条不可变的交互事件，由 Recorder 在每次用户动作时创建。
// 创建后不再修改；在行为档案内按"最近优先"保存，容量封顶后淘汰最旧。
type Interaction struct {
	Kind       InteractionKind `json:"kind"`
	TargetID   string          `json:"target_id"`
	TargetType TargetType      `json:"target_type"`
	Metadata   Metadata        `json:"metadata"`
	Timestamp  time.Time       `json:"timestamp"`
}
