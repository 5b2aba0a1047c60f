package recall

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/store"
)

// seedProfile 往内存行为存储里写一个档案，用 mutate 设置偏好/历史等字段。
func seedProfile(
	t *testing.T,
	s *store.MemoryBehaviorStore,
	userID string,
	mutate func(*core.BehaviorProfile),
) *core.BehaviorProfile {
	t.Helper()
	p, err := s.UpdateProfile(context.Background(), userID, func(p *core.BehaviorProfile) error {
		mutate(p)
		return nil
	})
	if err != nil {
		t.Fatalf("seed profile %s: %v", userID, err)
	}
	return p
}

func bumpCategory(p *core.BehaviorProfile, category string, score float64) {
	p.Preferences.Categories.Bump(category, score, time.Unix(1700000000, 0))
}

func pushProductInteraction(p *core.BehaviorProfile, kind core.InteractionKind, targetID string, at time.Time) {
	p.History.Push(core.Interaction{
		Kind:       kind,
		TargetID:   targetID,
		TargetType: core.TargetProduct,
		Timestamp:  at,
	})
}

func activeItem(id, category string, price float64) *core.CatalogItem {
	return &core.CatalogItem{
		ID:        id,
		Category:  category,
		Price:     price,
		IsActive:  true,
		CreatedAt: time.Unix(1700000000, 0),
	}
}

func itemIDs(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
