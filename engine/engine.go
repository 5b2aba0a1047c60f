// Package engine 是 shoprec 的对外门面：组装四路信号源与 Pipeline，
// 暴露记录交互 / 个性化推荐 / 热门推荐三个入口。
package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/rushteam/shoprec/behavior"
	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/filter"
	"github.com/rushteam/shoprec/pipeline"
	"github.com/rushteam/shoprec/rank"
	"github.com/rushteam/shoprec/recall"
	"github.com/rushteam/shoprec/rerank"
)

// Stores 是引擎依赖的三个领域存储。
type Stores struct {
	Behavior core.BehaviorStore
	Catalog  core.CatalogStore
	Social   core.SocialGraphStore
}

// Engine 是无状态的推荐服务对象：所有用户状态都在 BehaviorStore 里，
// 配置在构造时显式注入且之后不可变。多 goroutine 并发调用安全。
type Engine struct {
	stores Stores
	cfg    core.EngineConfig
	logger *zap.Logger

	recorder *behavior.Recorder
	pipe     *pipeline.Pipeline
	trending *recall.TrendingSource
	reason   *rank.ReasonNode
}

// New 构造引擎。cfg 的零值字段回落到 DefaultEngineConfig。
func New(stores Stores, cfg core.EngineConfig, logger *zap.Logger) *Engine {
	cfg = withDefaults(cfg)
	if logger == nil {
		logger = zap.NewNop()
	}

	similarity := &recall.SimilarityEngine{
		Store:           stores.Behavior,
		CandidatePool:   cfg.CandidatePool,
		MinInteractions: cfg.MinCandidateInteractions,
		Floor:           cfg.SimilarityFloor,
	}

	trending := &recall.TrendingSource{
		Catalog: stores.Catalog,
		Limit:   cfg.DefaultLimit,
	}

	// 信号源的声明顺序决定合并时的"首次出现顺序"，
	// 同分项的平局顺序依赖它，不要改动。
	sources := []recall.Source{
		&recall.CollaborativeSource{
			Similarity:    similarity,
			Behavior:      stores.Behavior,
			Catalog:       stores.Catalog,
			NeighborLimit: cfg.NeighborLimit,
			Multiplier:    cfg.CandidateMultiplier,
			CacheTTL:      cfg.SimilarUsersTTL,
		},
		&recall.ContentSource{
			Catalog:    stores.Catalog,
			Multiplier: cfg.CandidateMultiplier,
		},
		&recall.SocialSource{
			Social:  stores.Social,
			Catalog: stores.Catalog,
		},
		trending,
	}

	reason := &rank.ReasonNode{
		CategoryThreshold: cfg.CategoryReasonThreshold,
		BrandThreshold:    cfg.BrandReasonThreshold,
	}

	pipe := &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Fanout{Sources: sources, Timeout: cfg.SourceTimeout},
			&rank.CombineNode{Weights: cfg.Weights},
			&filter.Node{Filters: []filter.Filter{
				&filter.ViewedFilter{},
				filter.NewSuppressedFilter(cfg.SuppressedItems),
			}},
			&rank.RuleBoost{Rules: cfg.BoostRules},
			&rerank.TopNNode{Fallback: cfg.DefaultLimit},
			reason,
		},
	}

	recorder := &behavior.Recorder{
		Behavior:   stores.Behavior,
		Catalog:    stores.Catalog,
		Similarity: similarity,
		Config:     cfg,
		Logger:     logger,
	}

	return &Engine{
		stores:   stores,
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		pipe:     pipe,
		trending: trending,
		reason:   reason,
	}
}

// RecordInteraction 记录一条用户交互并同步更新行为档案。
// 非法的事件类型返回 ErrInvalidInteractionKind。
func (e *Engine) RecordInteraction(ctx context.Context, userID string, in core.Interaction) error {
	return e.recorder.Record(ctx, userID, in)
}

// GetPersonalizedRecommendations 返回个性化推荐。
//
// 降级路径：
//   - 匿名用户（userID 为空）与没有档案的新用户 → 纯热门
//   - 所有信号源都失败 → 纯热门
//   - 热门也失败 → ErrStoreUnavailable
func (e *Engine) GetPersonalizedRecommendations(
	ctx context.Context,
	userID string,
	opts core.RecommendOptions,
) ([]core.ScoredRecommendation, error) {
	if userID == "" {
		return e.GetTrendingProducts(ctx, opts)
	}

	profile, err := e.stores.Behavior.GetProfile(ctx, userID)
	if err != nil {
		if core.IsProfileNotFound(err) {
			return e.GetTrendingProducts(ctx, opts)
		}
		// 档案读取失败不终止请求：社交与热门信号不依赖档案
		e.logger.Warn("get profile failed, serving without profile",
			zap.String("user_id", userID), zap.Error(err))
		profile = nil
	}

	rctx := &core.RecommendContext{
		UserID:  userID,
		Profile: profile,
		Options: opts,
	}

	items, err := e.pipe.Run(ctx, rctx, nil)
	if err != nil {
		if core.IsUnavailable(err) {
			e.logger.Warn("all signal sources failed, falling back to trending",
				zap.String("user_id", userID), zap.Error(err))
			return e.GetTrendingProducts(ctx, opts)
		}
		return nil, err
	}
	if len(items) == 0 {
		return e.GetTrendingProducts(ctx, opts)
	}

	return e.toRecommendations(ctx, items)
}

// GetTrendingProducts 返回纯热门推荐，不依赖用户档案。
func (e *Engine) GetTrendingProducts(
	ctx context.Context,
	opts core.RecommendOptions,
) ([]core.ScoredRecommendation, error) {
	rctx := &core.RecommendContext{Options: opts}

	items, err := e.trending.Recall(ctx, rctx)
	if err != nil {
		e.logger.Error("trending recall failed", zap.Error(err))
		return nil, core.ErrStoreUnavailable
	}
	if opts.IncludeReasons {
		if items, err = e.reason.Process(ctx, rctx, items); err != nil {
			return nil, err
		}
	}
	return e.toRecommendations(ctx, items)
}

// toRecommendations 把 Pipeline 的 Item 物化为对外的推荐记录：
// 补齐缺失的目录条目，拆开信号标签作为算法归因。
func (e *Engine) toRecommendations(
	ctx context.Context,
	items []*core.Item,
) ([]core.ScoredRecommendation, error) {
	missing := make([]string, 0)
	for _, it := range items {
		if it != nil && it.CatalogItem() == nil {
			missing = append(missing, it.ID)
		}
	}
	hydrated := make(map[string]*core.CatalogItem, len(missing))
	if len(missing) > 0 {
		fetched, err := e.stores.Catalog.GetItems(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, ci := range fetched {
			hydrated[ci.ID] = ci
		}
	}

	out := make([]core.ScoredRecommendation, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		ci := it.CatalogItem()
		if ci == nil {
			ci = hydrated[it.ID]
		}
		if ci == nil || !ci.IsActive {
			continue
		}
		out = append(out, core.ScoredRecommendation{
			Item:       ci,
			Score:      it.Score,
			Algorithms: algorithmTags(it.LabelValue(recall.LabelSignal)),
			Reason:     it.LabelValue("reason"),
		})
	}
	return out, nil
}

func algorithmTags(signal string) []core.AlgorithmTag {
	if signal == "" {
		return nil
	}
	parts := strings.Split(signal, "|")
	tags := make([]core.AlgorithmTag, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tags = append(tags, core.AlgorithmTag(p))
		}
	}
	return tags
}

func withDefaults(cfg core.EngineConfig) core.EngineConfig {
	def := core.DefaultEngineConfig()
	if cfg.Weights == (core.SignalWeights{}) {
		cfg.Weights = def.Weights
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = def.DefaultLimit
	}
	if cfg.CandidateMultiplier <= 0 {
		cfg.CandidateMultiplier = def.CandidateMultiplier
	}
	if cfg.NeighborLimit <= 0 {
		cfg.NeighborLimit = def.NeighborLimit
	}
	if cfg.CandidatePool <= 0 {
		cfg.CandidatePool = def.CandidatePool
	}
	if cfg.MinCandidateInteractions <= 0 {
		cfg.MinCandidateInteractions = def.MinCandidateInteractions
	}
	if cfg.SimilarityFloor <= 0 {
		cfg.SimilarityFloor = def.SimilarityFloor
	}
	if cfg.SimilarUsersTTL <= 0 {
		cfg.SimilarUsersTTL = def.SimilarUsersTTL
	}
	if cfg.SimilarUsersRefreshEvery <= 0 {
		cfg.SimilarUsersRefreshEvery = def.SimilarUsersRefreshEvery
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = def.SourceTimeout
	}
	if cfg.CategoryReasonThreshold <= 0 {
		cfg.CategoryReasonThreshold = def.CategoryReasonThreshold
	}
	if cfg.BrandReasonThreshold <= 0 {
		cfg.BrandReasonThreshold = def.BrandReasonThreshold
	}
	return cfg
}
