package core

// AlgorithmTag 标识四路独立信号之一。
type AlgorithmTag string

const (
	AlgoCollaborative AlgorithmTag = "collaborative"
	AlgoContent       AlgorithmTag = "content"
	AlgoSocial        AlgorithmTag = "social"
	AlgoTrending      AlgorithmTag = "trending"
)

// ScoredRecommendation 是单次请求的临时输出记录，不做持久化。
// Item 一定指向 IsActive 为 true 的目录条目。
type ScoredRecommendation struct {
	Item       *CatalogItem   `json:"item"`
	Score      float64        `json:"score"`
	Algorithms []AlgorithmTag `json:"algorithms"`
	Reason     string         `json:"reason,omitempty"`
}

// RecommendOptions 是推荐请求的选项。
type RecommendOptions struct {
	Limit          int    // <= 0 时使用引擎默认值
	Category       string // 非空时限定类目
	ExcludeViewed  bool   // 过滤用户浏览过的商品
	IncludeReasons bool   // 为结果附加可读推荐理由
}
