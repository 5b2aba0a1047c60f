package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/shoprec/core"
)

// Redis 实现的三个领域存储，面向生产。
//
// 布局：
//   - 行为档案：  {prefix}profile:{userID}   JSON 文档
//     活跃索引：  {prefix}profiles:active    ZSET member=userID score=最近活跃时间
//   - 商品目录：  {prefix}item:{id}          JSON 文档（静态部分）
//     计数器：    {prefix}item:counters:{id} HASH views/likes/purchases（HIncrBy 原子自增）
//     排序索引：  {prefix}catalog:{sort}     ZSET
//   - 关注图：    {prefix}follows:vendors:{userID} / follows:users:{userID} SET
//     点赞：      {prefix}likes:{userID}     ZSET member=itemID score=点赞时间

const updateMaxRetries = 5

// RedisBehaviorStore 是 Redis 实现的行为档案存储。
// UpdateProfile 用 WATCH 乐观并发实现每用户串行化写入：
// 同一用户的并发写彼此冲突时重试而不是丢更新。
type RedisBehaviorStore struct {
	client *redis.Client
	prefix string
}

func NewRedisBehaviorStore(client *redis.Client, prefix string) *RedisBehaviorStore {
	return &RedisBehaviorStore{client: client, prefix: prefix}
}

func (s *RedisBehaviorStore) Name() string { return "redis" }

func (s *RedisBehaviorStore) profileKey(userID string) string {
	return s.prefix + "profile:" + userID
}

func (s *RedisBehaviorStore) activeKey() string {
	return s.prefix + "profiles:active"
}

func (s *RedisBehaviorStore) GetProfile(ctx context.Context, userID string) (*core.BehaviorProfile, error) {
	data, err := s.client.Get(ctx, s.profileKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, core.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	p := &core.BehaviorProfile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *RedisBehaviorStore) UpdateProfile(
	ctx context.Context,
	userID string,
	update func(*core.BehaviorProfile) error,
) (*core.BehaviorProfile, error) {
	key := s.profileKey(userID)
	var result *core.BehaviorProfile

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		var p *core.BehaviorProfile
		switch {
		case err == redis.Nil:
			p = core.NewBehaviorProfile(userID)
		case err != nil:
			return err
		default:
			p = &core.BehaviorProfile{}
			if err := json.Unmarshal(data, p); err != nil {
				return err
			}
		}

		if err := update(p); err != nil {
			return err
		}

		buf, err := json.Marshal(p)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, buf, 0)
			pipe.ZAdd(ctx, s.activeKey(), redis.Z{
				Score:  float64(p.Analytics.LastActivity.Unix()),
				Member: userID,
			})
			return nil
		})
		if err != nil {
			return err
		}
		result = p
		return nil
	}

	for i := 0; i < updateMaxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if err == redis.TxFailedErr {
			continue // 写冲突，重试
		}
		return nil, err
	}
	return nil, core.ErrStoreUnavailable
}

func (s *RedisBehaviorStore) ActiveProfiles(
	ctx context.Context,
	minInteractions int64,
	limit int,
) ([]*core.BehaviorProfile, error) {
	if limit <= 0 {
		limit = 200
	}
	// 交互数门槛在取回后过滤，先按活跃度超采
	userIDs, err := s.client.ZRevRange(ctx, s.activeKey(), 0, int64(limit*2-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	keys := make([]string, len(userIDs))
	for i, uid := range userIDs {
		keys[i] = s.profileKey(uid)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*core.BehaviorProfile, 0, limit)
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		p := &core.BehaviorProfile{}
		if err := json.Unmarshal([]byte(raw), p); err != nil {
			continue
		}
		if p.Analytics.TotalInteractions < minInteractions {
			continue
		}
		out = append(out, p)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// RedisCatalogStore 是 Redis 实现的商品目录存储。
// 计数器与静态文档分离：HIncrBy 原子自增计数器，不做整文档读改写。
type RedisCatalogStore struct {
	client *redis.Client
	prefix string
}

func NewRedisCatalogStore(client *redis.Client, prefix string) *RedisCatalogStore {
	return &RedisCatalogStore{client: client, prefix: prefix}
}

func (s *RedisCatalogStore) Name() string { return "redis" }

func (s *RedisCatalogStore) itemKey(id string) string     { return s.prefix + "item:" + id }
func (s *RedisCatalogStore) countersKey(id string) string { return s.prefix + "item:counters:" + id }

func (s *RedisCatalogStore) indexKey(sortBy core.SortBy) string {
	return s.prefix + "catalog:" + string(sortBy)
}

// Upsert 写入商品文档并维护排序索引（目录装载入口）。
func (s *RedisCatalogStore) Upsert(ctx context.Context, item *core.CatalogItem) error {
	if item == nil {
		return nil
	}
	buf, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.itemKey(item.ID), buf, 0)
		pipe.HSet(ctx, s.countersKey(item.ID),
			string(core.CounterViews), item.Analytics.Views,
			string(core.CounterLikes), item.Analytics.Likes,
			string(core.CounterPurchases), item.Analytics.Purchases,
		)
		pipe.ZAdd(ctx, s.indexKey(core.SortByNewest), redis.Z{Score: float64(item.CreatedAt.Unix()), Member: item.ID})
		pipe.ZAdd(ctx, s.indexKey(core.SortByRating), redis.Z{Score: item.Rating.Average, Member: item.ID})
		pipe.ZAdd(ctx, s.indexKey(core.SortByViews), redis.Z{Score: float64(item.Analytics.Views), Member: item.ID})
		pipe.ZAdd(ctx, s.indexKey(core.SortByPurchases), redis.Z{Score: float64(item.Analytics.Purchases), Member: item.ID})
		return nil
	})
	return err
}

func (s *RedisCatalogStore) GetItem(ctx context.Context, id string) (*core.CatalogItem, error) {
	data, err := s.client.Get(ctx, s.itemKey(id)).Bytes()
	if err == redis.Nil {
		return nil, core.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	item := &core.CatalogItem{}
	if err := json.Unmarshal(data, item); err != nil {
		return nil, err
	}
	if err := s.mergeCounters(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// mergeCounters 用计数器哈希覆盖文档里可能过期的计数值。
func (s *RedisCatalogStore) mergeCounters(ctx context.Context, item *core.CatalogItem) error {
	counters, err := s.client.HGetAll(ctx, s.countersKey(item.ID)).Result()
	if err != nil {
		return err
	}
	for field, raw := range counters {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		switch core.CounterKind(field) {
		case core.CounterViews:
			item.Analytics.Views = n
		case core.CounterLikes:
			item.Analytics.Likes = n
		case core.CounterPurchases:
			item.Analytics.Purchases = n
		}
	}
	return nil
}

func (s *RedisCatalogStore) GetItems(ctx context.Context, ids []string) ([]*core.CatalogItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.itemKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*core.CatalogItem, 0, len(ids))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		item := &core.CatalogItem{}
		if err := json.Unmarshal([]byte(raw), item); err != nil {
			continue
		}
		if err := s.mergeCounters(ctx, item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *RedisCatalogStore) Query(ctx context.Context, q core.CatalogQuery) ([]*core.CatalogItem, error) {
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = core.SortByNewest
	}

	// 先按排序索引超采，再在进程内过滤；目录规模可控时足够
	stop := int64(-1)
	if q.Limit > 0 {
		stop = int64(q.Limit*4 - 1)
	}
	ids, err := s.client.ZRevRange(ctx, s.indexKey(sortBy), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	items, err := s.GetItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*core.CatalogItem, 0, len(items))
	for _, item := range items {
		if !q.Matches(item) {
			continue
		}
		out = append(out, item)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

func (s *RedisCatalogStore) IncrCounter(
	ctx context.Context,
	itemID string,
	counter core.CounterKind,
	delta int64,
) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, s.countersKey(itemID), string(counter), delta)
		switch counter {
		case core.CounterViews:
			pipe.ZIncrBy(ctx, s.indexKey(core.SortByViews), float64(delta), itemID)
		case core.CounterPurchases:
			pipe.ZIncrBy(ctx, s.indexKey(core.SortByPurchases), float64(delta), itemID)
		}
		return nil
	})
	return err
}

// RedisSocialStore 是 Redis 实现的关注图存储。
type RedisSocialStore struct {
	client *redis.Client
	prefix string
}

func NewRedisSocialStore(client *redis.Client, prefix string) *RedisSocialStore {
	return &RedisSocialStore{client: client, prefix: prefix}
}

func (s *RedisSocialStore) Name() string { return "redis" }

func (s *RedisSocialStore) vendorsKey(userID string) string {
	return s.prefix + "follows:vendors:" + userID
}

func (s *RedisSocialStore) usersKey(userID string) string {
	return s.prefix + "follows:users:" + userID
}

func (s *RedisSocialStore) likesKey(userID string) string {
	return s.prefix + "likes:" + userID
}

// FollowVendor / FollowUser / AddLike 维护关注图（装载入口）。

func (s *RedisSocialStore) FollowVendor(ctx context.Context, userID, vendorID string) error {
	return s.client.SAdd(ctx, s.vendorsKey(userID), vendorID).Err()
}

func (s *RedisSocialStore) FollowUser(ctx context.Context, userID, otherID string) error {
	return s.client.SAdd(ctx, s.usersKey(userID), otherID).Err()
}

func (s *RedisSocialStore) AddLike(ctx context.Context, userID, itemID string, at time.Time) error {
	return s.client.ZAdd(ctx, s.likesKey(userID), redis.Z{
		Score:  float64(at.Unix()),
		Member: itemID,
	}).Err()
}

func (s *RedisSocialStore) FollowedVendors(ctx context.Context, userID string) ([]string, error) {
	return s.client.SMembers(ctx, s.vendorsKey(userID)).Result()
}

func (s *RedisSocialStore) FollowedUsers(ctx context.Context, userID string) ([]string, error) {
	return s.client.SMembers(ctx, s.usersKey(userID)).Result()
}

func (s *RedisSocialStore) LikedItems(ctx context.Context, userIDs []string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	seen := make(map[string]struct{})
	out := make([]string, 0, limit)
	for _, uid := range userIDs {
		ids, err := s.client.ZRevRange(ctx, s.likesKey(uid), 0, int64(limit-1)).Result()
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
			if len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// 确保实现了 core 的领域存储接口
var _ core.BehaviorStore = (*RedisBehaviorStore)(nil)
var _ core.CatalogStore = (*RedisCatalogStore)(nil)
var _ core.SocialGraphStore = (*RedisSocialStore)(nil)
