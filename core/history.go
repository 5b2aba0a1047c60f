package core

import "encoding/json"

// DefaultHistoryCap 是每个用户保留的交互条数上限。
const DefaultHistoryCap = 1000

// History 是固定容量的交互历史，环形缓冲实现。
// 语义为"最近优先"：容量写满后继续写入会覆盖最旧的一条，
// 避免 push-then-trim 模式下的反复整片重分配。
type History struct {
	buf  []Interaction
	head int // 下一个写入位置
	size int
}

// NewHistory 创建一个容量为 capacity 的历史缓冲；capacity <= 0 时使用 DefaultHistoryCap。
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{buf: make([]Interaction, capacity)}
}

// Cap 返回容量。
func (h *History) Cap() int { return len(h.buf) }

// Len 返回当前保留的条数（不超过容量）。
func (h *History) Len() int { return h.size }

// Push 追加一条交互；写满后覆盖最旧的一条。
func (h *History) Push(in Interaction) {
	h.buf[h.head] = in
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Each 按"最近优先"顺序遍历；fn 返回 false 时提前终止。
func (h *History) Each(fn func(Interaction) bool) {
	for i := 0; i < h.size; i++ {
		idx := (h.head - 1 - i + len(h.buf)) % len(h.buf)
		if !fn(h.buf[idx]) {
			return
		}
	}
}

// Recent 返回"最近优先"顺序的快照。
func (h *History) Recent() []Interaction {
	out := make([]Interaction, 0, h.size)
	h.Each(func(in Interaction) bool {
		out = append(out, in)
		return true
	})
	return out
}

// MarshalJSON 以"最近优先"数组的形式序列化，便于文档存储的持久化与检索。
func (h *History) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Recent())
}

// UnmarshalJSON 从"最近优先"数组恢复；超出容量的旧数据被丢弃。
func (h *History) UnmarshalJSON(data []byte) error {
	var recent []Interaction
	if err := json.Unmarshal(data, &recent); err != nil {
		return err
	}
	capacity := DefaultHistoryCap
	if len(h.buf) > 0 {
		capacity = len(h.buf)
	}
	h.buf = make([]Interaction, capacity)
	h.head = 0
	h.size = 0
	// 从最旧往最新重放
	for i := len(recent) - 1; i >= 0; i-- {
		h.Push(recent[i])
	}
	return nil
}
