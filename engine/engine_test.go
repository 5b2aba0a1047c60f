package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.MemoryBehaviorStore, *store.MemoryCatalogStore, *store.MemorySocialStore) {
	t.Helper()
	behaviorStore := store.NewMemoryBehaviorStore()
	catalogStore := store.NewMemoryCatalogStore()
	socialStore := store.NewMemorySocialStore()
	e := New(Stores{
		Behavior: behaviorStore,
		Catalog:  catalogStore,
		Social:   socialStore,
	}, core.DefaultEngineConfig(), nil)
	return e, behaviorStore, catalogStore, socialStore
}

func seedCatalog(t *testing.T, catalogStore *store.MemoryCatalogStore) {
	t.Helper()
	ctx := context.Background()
	items := []*core.CatalogItem{
		{ID: "hot1", Category: "dresses", Price: 50, IsActive: true,
			Analytics: core.ItemAnalytics{Views: 500, Likes: 50, Purchases: 40},
			Rating:    core.Rating{Average: 4.5}},
		{ID: "hot2", Category: "shoes", Price: 80, IsActive: true,
			Analytics: core.ItemAnalytics{Views: 300, Likes: 30, Purchases: 20},
			Rating:    core.Rating{Average: 4.0}},
		{ID: "niche", Category: "dresses", Price: 45, IsActive: true,
			Rating: core.Rating{Average: 3.5}},
		{ID: "dead", Category: "dresses", Price: 45, IsActive: false,
			Analytics: core.ItemAnalytics{Purchases: 1000}},
	}
	for _, it := range items {
		it.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		if err := catalogStore.Upsert(ctx, it); err != nil {
			t.Fatalf("seed catalog: %v", err)
		}
	}
}

func ids(recs []core.ScoredRecommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Item.ID
	}
	return out
}

func TestEngine_AnonymousEqualsTrending(t *testing.T) {
	e, _, catalogStore, _ := newTestEngine(t)
	seedCatalog(t, catalogStore)
	ctx := context.Background()
	opts := core.RecommendOptions{Limit: 10}

	anon, err := e.GetPersonalizedRecommendations(ctx, "", opts)
	if err != nil {
		t.Fatalf("anonymous request error = %v", err)
	}
	trending, err := e.GetTrendingProducts(ctx, opts)
	if err != nil {
		t.Fatalf("GetTrendingProducts() error = %v", err)
	}

	aIDs, tIDs := ids(anon), ids(trending)
	if len(aIDs) != len(tIDs) {
		t.Fatalf("anonymous %v vs trending %v", aIDs, tIDs)
	}
	for i := range aIDs {
		if aIDs[i] != tIDs[i] {
			t.Errorf("position %d: anonymous %q vs trending %q", i, aIDs[i], tIDs[i])
		}
	}
}

func TestEngine_TrendingReasonAttribution(t *testing.T) {
	e, _, catalogStore, _ := newTestEngine(t)
	seedCatalog(t, catalogStore)
	ctx := context.Background()

	recs, err := e.GetTrendingProducts(ctx, core.RecommendOptions{Limit: 5, IncludeReasons: true})
	if err != nil {
		t.Fatalf("GetTrendingProducts() error = %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected trending results")
	}
	// 热门路径不经过合并节点，归因仍要落到热门信号的通用文案
	for _, r := range recs {
		if r.Reason != "Trending now" {
			t.Errorf("item %q reason = %q, want %q", r.Item.ID, r.Reason, "Trending now")
		}
	}
}

func TestEngine_UnknownUserFallsBackToTrending(t *testing.T) {
	e, _, catalogStore, _ := newTestEngine(t)
	seedCatalog(t, catalogStore)
	ctx := context.Background()

	recs, err := e.GetPersonalizedRecommendations(ctx, "stranger", core.RecommendOptions{Limit: 10})
	if err != nil {
		t.Fatalf("GetPersonalizedRecommendations() error = %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected trending results for a user without a profile")
	}
	got := ids(recs)
	if got[0] != "hot1" {
		t.Errorf("top result = %q, want hot1 (hottest item)", got[0])
	}
	for _, id := range got {
		if id == "dead" {
			t.Error("inactive item must never be recommended")
		}
	}
}

func TestEngine_PersonalizedPath(t *testing.T) {
	e, _, catalogStore, socialStore := newTestEngine(t)
	seedCatalog(t, catalogStore)
	ctx := context.Background()

	// 建立口味：u1 反复浏览/购买 dresses
	for i := 0; i < 5; i++ {
		err := e.RecordInteraction(ctx, "u1", core.Interaction{
			Kind:       core.KindPurchase,
			TargetID:   "hot1",
			TargetType: core.TargetProduct,
			Metadata:   core.Metadata{Category: "dresses", Price: 50},
			Timestamp:  time.Now(),
		})
		if err != nil {
			t.Fatalf("RecordInteraction() error = %v", err)
		}
	}
	socialStore.FollowVendor("u1", "v1")

	recs, err := e.GetPersonalizedRecommendations(ctx, "u1", core.RecommendOptions{
		Limit:          5,
		IncludeReasons: true,
	})
	if err != nil {
		t.Fatalf("GetPersonalizedRecommendations() error = %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected results")
	}
	if len(recs) > 5 {
		t.Errorf("got %d results, want <= 5", len(recs))
	}

	seen := make(map[string]struct{})
	for i, r := range recs {
		if _, dup := seen[r.Item.ID]; dup {
			t.Errorf("duplicate item %q in results", r.Item.ID)
		}
		seen[r.Item.ID] = struct{}{}

		if !r.Item.IsActive {
			t.Errorf("inactive item %q recommended", r.Item.ID)
		}
		if len(r.Algorithms) == 0 {
			t.Errorf("item %q has no algorithm attribution", r.Item.ID)
		}
		if r.Reason == "" {
			t.Errorf("item %q has no reason despite includeReasons", r.Item.ID)
		}
		if i > 0 && recs[i-1].Score < r.Score {
			t.Errorf("scores not descending at %d: %v < %v", i, recs[i-1].Score, r.Score)
		}
	}
}

func TestEngine_ExcludeViewed(t *testing.T) {
	e, _, catalogStore, _ := newTestEngine(t)
	seedCatalog(t, catalogStore)
	ctx := context.Background()

	// hot1 是每路信号的最高分候选，但用户看过它
	err := e.RecordInteraction(ctx, "u1", core.Interaction{
		Kind:       core.KindView,
		TargetID:   "hot1",
		TargetType: core.TargetProduct,
		Metadata:   core.Metadata{Category: "dresses", Price: 50},
		Timestamp:  time.Now(),
	})
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}

	recs, err := e.GetPersonalizedRecommendations(ctx, "u1", core.RecommendOptions{
		Limit:         10,
		ExcludeViewed: true,
	})
	if err != nil {
		t.Fatalf("GetPersonalizedRecommendations() error = %v", err)
	}
	for _, r := range recs {
		if r.Item.ID == "hot1" {
			t.Error("viewed item hot1 must not appear with excludeViewed")
		}
	}

	// 不开 excludeViewed 时可以出现
	recs, err = e.GetPersonalizedRecommendations(ctx, "u1", core.RecommendOptions{Limit: 10})
	if err != nil {
		t.Fatalf("GetPersonalizedRecommendations() error = %v", err)
	}
	found := false
	for _, r := range recs {
		if r.Item.ID == "hot1" {
			found = true
		}
	}
	if !found {
		t.Error("hot1 should appear when excludeViewed is off")
	}
}

func TestEngine_CategoryOption(t *testing.T) {
	e, _, catalogStore, _ := newTestEngine(t)
	seedCatalog(t, catalogStore)
	ctx := context.Background()

	recs, err := e.GetPersonalizedRecommendations(ctx, "", core.RecommendOptions{
		Limit:    10,
		Category: "shoes",
	})
	if err != nil {
		t.Fatalf("GetPersonalizedRecommendations() error = %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected shoes results")
	}
	for _, r := range recs {
		if r.Item.Category != "shoes" {
			t.Errorf("item %q category = %q, want shoes", r.Item.ID, r.Item.Category)
		}
	}
}

// failingCatalog 模拟目录存储整体不可用。
type failingCatalog struct{}

func (failingCatalog) Name() string { return "failing" }
func (failingCatalog) GetItem(context.Context, string) (*core.CatalogItem, error) {
	return nil, errors.New("catalog down")
}
func (failingCatalog) GetItems(context.Context, []string) ([]*core.CatalogItem, error) {
	return nil, errors.New("catalog down")
}
func (failingCatalog) Query(context.Context, core.CatalogQuery) ([]*core.CatalogItem, error) {
	return nil, errors.New("catalog down")
}
func (failingCatalog) IncrCounter(context.Context, string, core.CounterKind, int64) error {
	return errors.New("catalog down")
}

func TestEngine_AllSourcesDownIsUnavailable(t *testing.T) {
	e := New(Stores{
		Behavior: store.NewMemoryBehaviorStore(),
		Catalog:  failingCatalog{},
		Social:   store.NewMemorySocialStore(),
	}, core.DefaultEngineConfig(), nil)

	_, err := e.GetTrendingProducts(context.Background(), core.RecommendOptions{Limit: 10})
	if !core.IsUnavailable(err) {
		t.Fatalf("GetTrendingProducts() error = %v, want store unavailable", err)
	}

	_, err = e.GetPersonalizedRecommendations(context.Background(), "u1", core.RecommendOptions{Limit: 10})
	if !core.IsUnavailable(err) {
		t.Fatalf("GetPersonalizedRecommendations() error = %v, want store unavailable", err)
	}
}

func TestEngine_RecordInteractionRejectsInvalidKind(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	err := e.RecordInteraction(context.Background(), "u1", core.Interaction{
		Kind:     "teleport",
		TargetID: "p1",
	})
	if !errors.Is(err, core.ErrInvalidInteractionKind) {
		t.Fatalf("RecordInteraction() error = %v, want ErrInvalidInteractionKind", err)
	}
}
