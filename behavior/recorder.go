package behavior

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/shoprec/core"
)

// SimilarUserFinder 是相似用户计算的接口（recall.SimilarityEngine 实现）。
// 定义在消费方，避免 behavior 依赖召回实现。
type SimilarUserFinder interface {
	FindSimilarUsers(ctx context.Context, userID string, profile *core.BehaviorProfile, limit int) ([]core.SimilarUser, error)
}

// Recorder 是交互记录器：校验事件类型、追加到有界历史、
// 同步调用偏好聚合与分群计算，并把档案持久化。
//
// 档案写入走 BehaviorStore.UpdateProfile 的每用户串行化读改写；
// 记录失败直接向调用方透传（吞掉即数据丢失）。
type Recorder struct {
	Behavior core.BehaviorStore
	Catalog  core.CatalogStore

	// Similarity 非空时，每记录 Config.SimilarUsersRefreshEvery 条交互
	// 同步刷新一次档案上的相似用户缓存。
	Similarity SimilarUserFinder

	Config core.EngineConfig
	Logger *zap.Logger
}

func (r *Recorder) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop()
}

// Record 记录一条交互。
// 非法的事件类型返回 ErrInvalidInteractionKind；档案写入失败原样透传。
func (r *Recorder) Record(ctx context.Context, userID string, in core.Interaction) error {
	if userID == "" {
		return core.NewDomainError(core.ModuleBehavior, core.ErrorCodeInvalidInput, "behavior: empty user id")
	}
	if !in.Kind.Valid() {
		return core.ErrInvalidInteractionKind
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}

	profile, err := r.Behavior.UpdateProfile(ctx, userID, func(p *core.BehaviorProfile) error {
		p.History.Push(in)
		ApplyInteraction(p, in)

		p.Analytics.TotalInteractions++
		p.Analytics.LastActivity = in.Timestamp
		p.Analytics.EngagementLevel = ClassifyEngagement(p, in.Timestamp)
		p.Analytics.UserSegment = ClassifySegment(p, p.AccountAgeDays(in.Timestamp))

		p.Scores = core.RecommendationScores{
			Collaborative: r.Config.Weights.Collaborative,
			Content:       r.Config.Weights.Content,
			Social:        r.Config.Weights.Social,
			Trending:      r.Config.Weights.Trending,
			UpdatedAt:     in.Timestamp,
		}
		return nil
	})
	if err != nil {
		r.logger().Error("record interaction failed",
			zap.String("user_id", userID),
			zap.String("kind", string(in.Kind)),
			zap.Error(err))
		return err
	}

	r.bumpItemCounter(ctx, in)
	r.maybeRefreshSimilarUsers(ctx, userID, profile)
	return nil
}

// bumpItemCounter 在商品目标上原子自增浏览/点赞/购买计数。
// 档案写入已成功，这里的失败只记录日志，由目录侧离线对账兜底。
func (r *Recorder) bumpItemCounter(ctx context.Context, in core.Interaction) {
	if r.Catalog == nil || in.TargetType != core.TargetProduct {
		return
	}
	counter, ok := in.Kind.Counter()
	if !ok {
		return
	}
	if err := r.Catalog.IncrCounter(ctx, in.TargetID, counter, 1); err != nil {
		r.logger().Error("increment catalog counter failed",
			zap.String("item_id", in.TargetID),
			zap.String("counter", string(counter)),
			zap.Error(err))
	}
}

// maybeRefreshSimilarUsers 按交互数周期同步刷新相似用户缓存。
// 缓存写回仍走 Recorder 的写路径，档案的单写者语义不变。
func (r *Recorder) maybeRefreshSimilarUsers(ctx context.Context, userID string, profile *core.BehaviorProfile) {
	if r.Similarity == nil || profile == nil {
		return
	}
	every := r.Config.SimilarUsersRefreshEvery
	if every <= 0 {
		every = 25
	}
	if profile.Analytics.TotalInteractions%every != 0 {
		return
	}

	limit := r.Config.NeighborLimit
	if limit <= 0 {
		limit = 10
	}
	neighbors, err := r.Similarity.FindSimilarUsers(ctx, userID, profile, limit)
	if err != nil {
		r.logger().Warn("refresh similar users failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}
	if _, err := r.Behavior.UpdateProfile(ctx, userID, func(p *core.BehaviorProfile) error {
		p.SimilarUsers = neighbors
		return nil
	}); err != nil {
		r.logger().Warn("persist similar users failed",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
