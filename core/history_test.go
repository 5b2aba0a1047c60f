package core

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func viewOf(id string) Interaction {
	return Interaction{
		Kind:       KindView,
		TargetID:   id,
		TargetType: TargetProduct,
		Timestamp:  time.Unix(1700000000, 0),
	}
}

func TestHistory_PushEvictsOldest(t *testing.T) {
	h := NewHistory(1000)

	for i := 0; i < 1001; i++ {
		h.Push(viewOf(fmt.Sprintf("item_%04d", i)))
	}

	if h.Len() != 1000 {
		t.Fatalf("Len() = %d, want 1000", h.Len())
	}

	recent := h.Recent()
	if recent[0].TargetID != "item_1000" {
		t.Errorf("most recent = %q, want item_1000", recent[0].TargetID)
	}
	if recent[len(recent)-1].TargetID != "item_0001" {
		t.Errorf("oldest = %q, want item_0001 (item_0000 evicted)", recent[len(recent)-1].TargetID)
	}
	for _, in := range recent {
		if in.TargetID == "item_0000" {
			t.Error("item_0000 should have been evicted")
		}
	}
}

func TestHistory_RecentOrder(t *testing.T) {
	h := NewHistory(5)
	for _, id := range []string{"a", "b", "c"} {
		h.Push(viewOf(id))
	}

	recent := h.Recent()
	want := []string{"c", "b", "a"}
	for i, w := range want {
		if recent[i].TargetID != w {
			t.Errorf("recent[%d] = %q, want %q", i, recent[i].TargetID, w)
		}
	}
}

func TestHistory_EachEarlyStop(t *testing.T) {
	h := NewHistory(5)
	for _, id := range []string{"a", "b", "c"} {
		h.Push(viewOf(id))
	}

	var seen int
	h.Each(func(Interaction) bool {
		seen++
		return seen < 2
	})
	if seen != 2 {
		t.Errorf("visited %d entries, want 2", seen)
	}
}

func TestHistory_JSONRoundTrip(t *testing.T) {
	h := NewHistory(4)
	for _, id := range []string{"a", "b", "c", "d", "e"} { // e 覆盖 a
		h.Push(viewOf(id))
	}

	data, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := NewHistory(4)
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored.Len() != h.Len() {
		t.Fatalf("Len() = %d, want %d", restored.Len(), h.Len())
	}
	got := restored.Recent()
	want := h.Recent()
	for i := range want {
		if got[i].TargetID != want[i].TargetID {
			t.Errorf("recent[%d] = %q, want %q", i, got[i].TargetID, want[i].TargetID)
		}
	}

	// 继续写入不丢容量语义
	restored.Push(viewOf("f"))
	if restored.Len() != 4 {
		t.Errorf("Len() after push = %d, want 4", restored.Len())
	}
	if restored.Recent()[0].TargetID != "f" {
		t.Errorf("most recent = %q, want f", restored.Recent()[0].TargetID)
	}
}
