package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/shoprec/core"
)

// 文件配置叠加在 core.DefaultEngineConfig 之上：
// 未出现的字段保留默认值，出现的字段覆盖。
// 时长字段写 Go duration 字符串（"2s"、"1h"）。
type fileConfig struct {
	Weights *struct {
		Collaborative *float64 `yaml:"collaborative"`
		Content       *float64 `yaml:"content"`
		Social        *float64 `yaml:"social"`
		Trending      *float64 `yaml:"trending"`
	} `yaml:"weights"`

	DefaultLimit             *int     `yaml:"default_limit"`
	CandidateMultiplier      *int     `yaml:"candidate_multiplier"`
	NeighborLimit            *int     `yaml:"neighbor_limit"`
	CandidatePool            *int     `yaml:"candidate_pool"`
	MinCandidateInteractions *int64   `yaml:"min_candidate_interactions"`
	SimilarityFloor          *float64 `yaml:"similarity_floor"`
	SimilarUsersTTL          *string  `yaml:"similar_users_ttl"`
	SimilarUsersRefreshEvery *int64   `yaml:"similar_users_refresh_every"`
	SourceTimeout            *string  `yaml:"source_timeout"`
	CategoryReasonThreshold  *float64 `yaml:"category_reason_threshold"`
	BrandReasonThreshold     *float64 `yaml:"brand_reason_threshold"`

	SuppressedItems []string         `yaml:"suppressed_items"`
	BoostRules      []core.BoostRule `yaml:"boost_rules"`
}

// Load 从 YAML 文件加载引擎配置。
func Load(path string) (core.EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.EngineConfig{}, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 配置内容，叠加默认值并校验。
func Parse(data []byte) (core.EngineConfig, error) {
	cfg := core.DefaultEngineConfig()

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return core.EngineConfig{}, fmt.Errorf("parse yaml: %w", err)
	}

	if fc.Weights != nil {
		setFloat(&cfg.Weights.Collaborative, fc.Weights.Collaborative)
		setFloat(&cfg.Weights.Content, fc.Weights.Content)
		setFloat(&cfg.Weights.Social, fc.Weights.Social)
		setFloat(&cfg.Weights.Trending, fc.Weights.Trending)
	}
	setInt(&cfg.DefaultLimit, fc.DefaultLimit)
	setInt(&cfg.CandidateMultiplier, fc.CandidateMultiplier)
	setInt(&cfg.NeighborLimit, fc.NeighborLimit)
	setInt(&cfg.CandidatePool, fc.CandidatePool)
	setInt64(&cfg.MinCandidateInteractions, fc.MinCandidateInteractions)
	setFloat(&cfg.SimilarityFloor, fc.SimilarityFloor)
	setInt64(&cfg.SimilarUsersRefreshEvery, fc.SimilarUsersRefreshEvery)
	setFloat(&cfg.CategoryReasonThreshold, fc.CategoryReasonThreshold)
	setFloat(&cfg.BrandReasonThreshold, fc.BrandReasonThreshold)

	if err := setDuration(&cfg.SimilarUsersTTL, fc.SimilarUsersTTL, "similar_users_ttl"); err != nil {
		return core.EngineConfig{}, err
	}
	if err := setDuration(&cfg.SourceTimeout, fc.SourceTimeout, "source_timeout"); err != nil {
		return core.EngineConfig{}, err
	}

	if fc.SuppressedItems != nil {
		cfg.SuppressedItems = fc.SuppressedItems
	}
	if fc.BoostRules != nil {
		cfg.BoostRules = fc.BoostRules
	}

	if err := Validate(cfg); err != nil {
		return core.EngineConfig{}, err
	}
	return cfg, nil
}

// Validate 校验配置的合法性。
func Validate(cfg core.EngineConfig) error {
	if cfg.Weights.Collaborative < 0 || cfg.Weights.Content < 0 ||
		cfg.Weights.Social < 0 || cfg.Weights.Trending < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	sum := cfg.Weights.Collaborative + cfg.Weights.Content + cfg.Weights.Social + cfg.Weights.Trending
	if sum <= 0 {
		return fmt.Errorf("weights must not all be zero")
	}
	if cfg.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", cfg.DefaultLimit)
	}
	if cfg.CandidateMultiplier <= 0 {
		return fmt.Errorf("candidate_multiplier must be positive, got %d", cfg.CandidateMultiplier)
	}
	// 引擎把 0 当作"未设置"回落到默认值，所以 0 在这里显式报错，
	// 而不是在运行时被悄悄改成 0.1
	if cfg.SimilarityFloor <= 0 || cfg.SimilarityFloor > 1 {
		return fmt.Errorf("similarity_floor must be in (0,1], got %v", cfg.SimilarityFloor)
	}
	for i, r := range cfg.BoostRules {
		if r.Expr == "" {
			return fmt.Errorf("boost_rules[%d]: expr is empty", i)
		}
		if r.Factor <= 0 {
			return fmt.Errorf("boost_rules[%d]: factor must be positive, got %v", i, r.Factor)
		}
	}
	return nil
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setInt64(dst *int64, src *int64) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string, field string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("parse %s: %w", field, err)
	}
	*dst = d
	return nil
}
