// Package shoprec 是一个电商个性化推荐引擎。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Rank → Filter → ReRank → PostProcess）
// - 四路信号: 协同过滤 / 内容 / 社交 / 热门 并发召回后按固定权重合并
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 无状态引擎: 用户状态都在 BehaviorStore，配置构造时注入且不可变
package shoprec

import (
	"github.com/rushteam/shoprec/engine"
	"github.com/rushteam/shoprec/pipeline"
)

// 轻量 facade：便于用户直接 import "shoprec" 使用核心抽象。
type Engine = engine.Engine
type Stores = engine.Stores
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
