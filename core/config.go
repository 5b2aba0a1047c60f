package core

import "time"

// SignalWeights 是信号合并的固定权重。
type SignalWeights struct {
	Collaborative float64 `yaml:"collaborative"`
	Content       float64 `yaml:"content"`
	Social        float64 `yaml:"social"`
	Trending      float64 `yaml:"trending"`
}

// BoostRule 是一条 CEL 表达式驱动的调权规则：
// 表达式对候选项求值为 true 时，分数乘以 Factor。
type BoostRule struct {
	Expr   string  `yaml:"expr"`
	Factor float64 `yaml:"factor"`
	Reason string  `yaml:"reason,omitempty"`
}

// EngineConfig 是引擎的不可变配置。
// 引擎以无状态服务对象 + 显式注入配置的方式构造，而不是持有可变权重表的全局单例。
type EngineConfig struct {
	// Weights 是四路信号的合并权重
	Weights SignalWeights `yaml:"weights"`

	// DefaultLimit 是请求未指定时的结果数上限
	DefaultLimit int `yaml:"default_limit"`

	// CandidateMultiplier 是单路信号的超采倍数（每路返回 limit×N 个候选）
	CandidateMultiplier int `yaml:"candidate_multiplier"`

	// NeighborLimit 是相似用户数上限
	NeighborLimit int `yaml:"neighbor_limit"`

	// CandidatePool 是相似度计算的候选档案池大小（最近活跃的 N 个）
	CandidatePool int `yaml:"candidate_pool"`

	// MinCandidateInteractions 是进入候选池所需的最少交互数
	MinCandidateInteractions int64 `yaml:"min_candidate_interactions"`

	// SimilarityFloor 是相似度下限，低于它的候选被丢弃。
	// 取值 (0,1]；<= 0 视为未设置，回落到默认的 0.1
	SimilarityFloor float64 `yaml:"similarity_floor"`

	// SimilarUsersTTL 是档案上相似用户缓存的有效期
	SimilarUsersTTL time.Duration `yaml:"similar_users_ttl"`

	// SimilarUsersRefreshEvery 表示每记录 N 条交互同步刷新一次相似用户缓存
	SimilarUsersRefreshEvery int64 `yaml:"similar_users_refresh_every"`

	// SourceTimeout 是单路信号的超时时间；超时降级为空结果
	SourceTimeout time.Duration `yaml:"source_timeout"`

	// CategoryReasonThreshold / BrandReasonThreshold 是理由归因的偏好分阈值
	CategoryReasonThreshold float64 `yaml:"category_reason_threshold"`
	BrandReasonThreshold    float64 `yaml:"brand_reason_threshold"`

	// SuppressedItems 是全局压制的商品 ID（运营干预）
	SuppressedItems []string `yaml:"suppressed_items"`

	// BoostRules 是 CEL 调权规则
	BoostRules []BoostRule `yaml:"boost_rules"`
}

// DefaultEngineConfig 返回默认配置。
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights: SignalWeights{
			Collaborative: 0.3,
			Content:       0.4,
			Social:        0.2,
			Trending:      0.1,
		},
		DefaultLimit:             20,
		CandidateMultiplier:      2,
		NeighborLimit:            10,
		CandidatePool:            200,
		MinCandidateInteractions: 10,
		SimilarityFloor:          0.1,
		SimilarUsersTTL:          time.Hour,
		SimilarUsersRefreshEvery: 25,
		SourceTimeout:            2 * time.Second,
		CategoryReasonThreshold:  10,
		BrandReasonThreshold:     10,
	}
}
