// Package recall 实现四路独立信号源（协同过滤 / 内容 / 社交 / 热门）
// 与相似用户计算，以及把它们并发扇出的 Fanout 节点。
package recall

import (
	"context"

	"github.com/rushteam/shoprec/core"
)

// Source 表示一个可复用的信号源（协同/内容/社交/热门）。
// 可以把它理解为"可并发 fan-out 的策略单元"：
// 四路信号之间没有数据依赖，天然适合并发执行后汇合。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// defaultSourceLimit 是请求未指定 limit 时各信号源的缺省结果规模基数。
const defaultSourceLimit = 20

// 信号标签 key 与各路信号的取值。
const (
	LabelSignal = "signal"

	SignalCollaborative = string(core.AlgoCollaborative)
	SignalContent       = string(core.AlgoContent)
	SignalSocial        = string(core.AlgoSocial)
	SignalTrending      = string(core.AlgoTrending)
)
