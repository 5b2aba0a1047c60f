package core

import "context"

// 存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 避免循环依赖：领域层不依赖基础设施层
//
// 实现：
//   - store.MemoryBehaviorStore / store.RedisBehaviorStore 等
//   - 其他文档存储（MongoDB、ES 等）也可以实现这些接口

// BehaviorStore 是行为档案存储。
//
// 并发契约：同一用户的写入必须串行化（每用户单写者），
// UpdateProfile 在存储层内以每用户锁或乐观并发保证读改写不丢更新；
// 读取可以任意并发，返回的档案是快照，不受后续写入影响。
type BehaviorStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// GetProfile 按用户 ID 读取档案；不存在时返回 ErrProfileNotFound
	GetProfile(ctx context.Context, userID string) (*BehaviorProfile, error)

	// UpdateProfile 对单个用户的档案做串行化的读改写；档案不存在时惰性创建。
	// update 返回错误时本次写入放弃并透传该错误。返回写入后的档案快照。
	UpdateProfile(ctx context.Context, userID string, update func(*BehaviorProfile) error) (*BehaviorProfile, error)

	// ActiveProfiles 返回最近活跃、交互数不少于 minInteractions 的档案，
	// 按最近活跃时间降序，至多 limit 个（相似度计算的候选池）。
	ActiveProfiles(ctx context.Context, minInteractions int64, limit int) ([]*BehaviorProfile, error)
}

// CatalogStore 是商品目录存储，对本子系统只读（计数器除外）。
type CatalogStore interface {
	// Name 返回存储后端名称
	Name() string

	// GetItem 按 ID 读取商品；不存在时返回 ErrItemNotFound
	GetItem(ctx context.Context, id string) (*CatalogItem, error)

	// GetItems 批量读取；不存在的 ID 被跳过，不报错
	GetItems(ctx context.Context, ids []string) ([]*CatalogItem, error)

	// Query 按条件查询商品，带排序与截断
	Query(ctx context.Context, q CatalogQuery) ([]*CatalogItem, error)

	// IncrCounter 原子自增商品侧计数器（increment，而不是整文档读改写）
	IncrCounter(ctx context.Context, itemID string, counter CounterKind, delta int64) error
}

// SocialGraphStore 是关注图存储。
type SocialGraphStore interface {
	// Name 返回存储后端名称
	Name() string

	// FollowedVendors 返回用户关注的商家 ID 列表
	FollowedVendors(ctx context.Context, userID string) ([]string, error)

	// FollowedUsers 返回用户关注的用户 ID 列表
	FollowedUsers(ctx context.Context, userID string) ([]string, error)

	// LikedItems 返回一组用户点赞过的商品 ID（按点赞时间从新到旧），至多 limit 个
	LikedItems(ctx context.Context, userIDs []string, limit int) ([]string, error)
}
