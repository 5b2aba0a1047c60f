package rank

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/utils"
)

func signalItem(id string, score float64, signal string) *core.Item {
	it := core.NewItem(id)
	it.Score = score
	it.PutLabel("signal", utils.Label{Value: signal, Source: "recall"})
	return it
}

func defaultWeights() core.SignalWeights {
	return core.SignalWeights{Collaborative: 0.3, Content: 0.4, Social: 0.2, Trending: 0.1}
}

func TestCombineNode_WeightsAndDedup(t *testing.T) {
	node := &CombineNode{Weights: defaultWeights()}

	items := []*core.Item{
		signalItem("p1", 10, "collaborative"), // 3.0
		signalItem("p2", 10, "content"),       // 4.0
		signalItem("p1", 5, "trending"),       // +0.5 → p1 = 3.5
	}

	out, err := node.Process(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("got %d items, want 2 (p1 deduped)", len(out))
	}
	if out[0].ID != "p2" || out[1].ID != "p1" {
		t.Fatalf("order = [%s %s], want [p2 p1]", out[0].ID, out[1].ID)
	}
	if math.Abs(out[0].Score-4.0) > 1e-9 {
		t.Errorf("p2 score = %v, want 4.0", out[0].Score)
	}
	if math.Abs(out[1].Score-3.5) > 1e-9 {
		t.Errorf("p1 score = %v, want 3.5 (both signal contributions)", out[1].Score)
	}

	// 合并后的 signal 标签带上两路来源
	sig := out[1].LabelValue("signal")
	if sig != "collaborative|trending" {
		t.Errorf("p1 signal label = %q, want merged collaborative|trending", sig)
	}
	// 贡献最大的一路作为主信号
	if dom := out[1].Meta["dominant_signal"]; dom != "collaborative" {
		t.Errorf("p1 dominant_signal = %v, want collaborative", dom)
	}
}

// 累加分相同的候选保持首次出现顺序，这是对外契约。
func TestCombineNode_StableTieBreak(t *testing.T) {
	node := &CombineNode{Weights: defaultWeights()}

	items := []*core.Item{
		signalItem("first", 10, "trending"),  // 1.0
		signalItem("second", 10, "trending"), // 1.0
		signalItem("third", 10, "trending"),  // 1.0
		signalItem("top", 10, "content"),     // 4.0
	}

	for run := 0; run < 10; run++ {
		out, err := node.Process(context.Background(), nil, items)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		want := []string{"top", "first", "second", "third"}
		for i, w := range want {
			if out[i].ID != w {
				t.Fatalf("run %d: out[%d] = %q, want %q", run, i, out[i].ID, w)
			}
		}
	}
}

func TestCombineNode_UnknownSignalContributesZero(t *testing.T) {
	node := &CombineNode{Weights: defaultWeights()}

	out, err := node.Process(context.Background(), nil, []*core.Item{
		signalItem("p1", 100, "mystery"),
		signalItem("p2", 1, "content"),
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if out[0].ID != "p2" {
		t.Errorf("out[0] = %q, want p2 (unknown signal gets zero weight)", out[0].ID)
	}
	if out[1].Score != 0 {
		t.Errorf("p1 score = %v, want 0", out[1].Score)
	}
}

func TestCombineNode_DoesNotMutateSourceItems(t *testing.T) {
	node := &CombineNode{Weights: defaultWeights()}

	src := signalItem("p1", 10, "collaborative")
	src.Meta["origin"] = "recall"

	out, err := node.Process(context.Background(), nil, []*core.Item{src})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	// 合并节点的标注写在自己的副本上，不能泄漏回上游候选
	if _, ok := src.Meta["dominant_signal"]; ok {
		t.Error("combine annotation leaked into the source item's Meta")
	}
	if out[0].Meta["origin"] != "recall" {
		t.Error("source Meta entries should be carried over to the merged item")
	}
}

func TestCombineNode_KeepsCatalogMeta(t *testing.T) {
	node := &CombineNode{Weights: defaultWeights()}

	bare := signalItem("p1", 10, "collaborative")
	withMeta := signalItem("p1", 5, "content")
	withMeta.SetCatalogItem(&core.CatalogItem{ID: "p1", Category: "dresses", IsActive: true})

	out, err := node.Process(context.Background(), nil, []*core.Item{bare, withMeta})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d items, want 1", len(out))
	}
	if out[0].CatalogItem() == nil {
		t.Error("catalog item from the later signal should be kept")
	}
}
