// Package store 包含领域存储接口的实现；接口定义在 core 包。
//
// 内存实现用于测试/开发/原型；Redis 实现面向生产。
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/shoprec/core"
)

// MemoryBehaviorStore 是内存实现的行为档案存储。
//
// 并发模型：
//   - profiles map 由 RWMutex 保护
//   - 每个用户一把串行化锁，UpdateProfile 的读改写在锁内完成（单写者）
//   - 读取返回深拷贝快照，不受后续写入影响
type MemoryBehaviorStore struct {
	mu       sync.RWMutex
	profiles map[string]*core.BehaviorProfile
	locks    map[string]*sync.Mutex
}

func NewMemoryBehaviorStore() *MemoryBehaviorStore {
	return &MemoryBehaviorStore{
		profiles: make(map[string]*core.BehaviorProfile),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *MemoryBehaviorStore) Name() string { return "memory" }

func (m *MemoryBehaviorStore) GetProfile(_ context.Context, userID string) (*core.BehaviorProfile, error) {
	m.mu.RLock()
	p, ok := m.profiles[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, core.ErrProfileNotFound
	}
	return p.Clone(), nil
}

// lockFor 返回某个用户的串行化锁，惰性创建。
func (m *MemoryBehaviorStore) lockFor(userID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}

func (m *MemoryBehaviorStore) UpdateProfile(
	_ context.Context,
	userID string,
	update func(*core.BehaviorProfile) error,
) (*core.BehaviorProfile, error) {
	lock := m.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	existing := m.profiles[userID]
	m.mu.RUnlock()

	var working *core.BehaviorProfile
	if existing != nil {
		working = existing.Clone()
	} else {
		working = core.NewBehaviorProfile(userID)
	}

	if err := update(working); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.profiles[userID] = working
	m.mu.Unlock()
	return working.Clone(), nil
}

func (m *MemoryBehaviorStore) ActiveProfiles(
	_ context.Context,
	minInteractions int64,
	limit int,
) ([]*core.BehaviorProfile, error) {
	m.mu.RLock()
	all := make([]*core.BehaviorProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		if p.Analytics.TotalInteractions >= minInteractions {
			all = append(all, p)
		}
	}
	m.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].Analytics.LastActivity.Equal(all[j].Analytics.LastActivity) {
			return all[i].Analytics.LastActivity.After(all[j].Analytics.LastActivity)
		}
		return all[i].UserID < all[j].UserID
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	out := make([]*core.BehaviorProfile, 0, len(all))
	for _, p := range all {
		out = append(out, p.Clone())
	}
	return out, nil
}

// MemoryCatalogStore 是内存实现的商品目录存储。
type MemoryCatalogStore struct {
	mu    sync.RWMutex
	items map[string]*core.CatalogItem
	order []string // 插入顺序，保证查询结果确定
}

func NewMemoryCatalogStore() *MemoryCatalogStore {
	return &MemoryCatalogStore{items: make(map[string]*core.CatalogItem)}
}

func (m *MemoryCatalogStore) Name() string { return "memory" }

// Upsert 写入/覆盖商品条目（测试与原型的数据装载入口）。
func (m *MemoryCatalogStore) Upsert(_ context.Context, item *core.CatalogItem) error {
	if item == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		m.order = append(m.order, item.ID)
	}
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *MemoryCatalogStore) GetItem(_ context.Context, id string) (*core.CatalogItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, core.ErrItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *MemoryCatalogStore) GetItems(_ context.Context, ids []string) ([]*core.CatalogItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*core.CatalogItem, 0, len(ids))
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryCatalogStore) Query(_ context.Context, q core.CatalogQuery) ([]*core.CatalogItem, error) {
	m.mu.RLock()
	matched := make([]*core.CatalogItem, 0, len(m.order))
	for _, id := range m.order {
		item := m.items[id]
		if q.Matches(item) {
			cp := *item
			matched = append(matched, &cp)
		}
	}
	m.mu.RUnlock()

	switch q.SortBy {
	case core.SortByNewest:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	case core.SortByRating:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].Rating.Average > matched[j].Rating.Average
		})
	case core.SortByViews:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].Analytics.Views > matched[j].Analytics.Views
		})
	case core.SortByPurchases:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].Analytics.Purchases > matched[j].Analytics.Purchases
		})
	}

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (m *MemoryCatalogStore) IncrCounter(
	_ context.Context,
	itemID string,
	counter core.CounterKind,
	delta int64,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemID]
	if !ok {
		return core.ErrItemNotFound
	}
	switch counter {
	case core.CounterViews:
		item.Analytics.Views += delta
	case core.CounterLikes:
		item.Analytics.Likes += delta
	case core.CounterPurchases:
		item.Analytics.Purchases += delta
	}
	return nil
}

// MemorySocialStore 是内存实现的关注图存储。
type MemorySocialStore struct {
	mu            sync.RWMutex
	followVendors map[string][]string
	followUsers   map[string][]string
	likes         map[string][]string // userID → 点赞的商品 ID（新→旧）
}

func NewMemorySocialStore() *MemorySocialStore {
	return &MemorySocialStore{
		followVendors: make(map[string][]string),
		followUsers:   make(map[string][]string),
		likes:         make(map[string][]string),
	}
}

func (m *MemorySocialStore) Name() string { return "memory" }

// FollowVendor / FollowUser / AddLike 是测试与原型的数据装载入口。

func (m *MemorySocialStore) FollowVendor(userID, vendorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followVendors[userID] = append(m.followVendors[userID], vendorID)
}

func (m *MemorySocialStore) FollowUser(userID, otherID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followUsers[userID] = append(m.followUsers[userID], otherID)
}

func (m *MemorySocialStore) AddLike(userID, itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.likes[userID] = append([]string{itemID}, m.likes[userID]...)
}

func (m *MemorySocialStore) FollowedVendors(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.followVendors[userID]...), nil
}

func (m *MemorySocialStore) FollowedUsers(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.followUsers[userID]...), nil
}

func (m *MemorySocialStore) LikedItems(_ context.Context, userIDs []string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0, limit)
	for _, uid := range userIDs {
		for _, itemID := range m.likes[uid] {
			if _, ok := seen[itemID]; ok {
				continue
			}
			seen[itemID] = struct{}{}
			out = append(out, itemID)
			if limit > 0 && len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// 确保实现了 core 的领域存储接口
var _ core.BehaviorStore = (*MemoryBehaviorStore)(nil)
var _ core.CatalogStore = (*MemoryCatalogStore)(nil)
var _ core.SocialGraphStore = (*MemorySocialStore)(nil)
