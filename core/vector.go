package core

import (
	"math"
	"sort"
)

// Vector 是稀疏偏好向量：维度名（类目名等）→ 分值。
// 相似度在两个向量键的并集空间上计算，缺失维度视为 0。
type Vector map[string]float64

// Cosine 计算与另一向量的余弦相似度，值域 [0, 1]。
// 任一方为零向量时定义为 0（而不是 NaN）。
func (v Vector) Cosine(other Vector) float64 {
	allKeys := make(map[string]struct{}, len(v)+len(other))
	for k := range v {
		allKeys[k] = struct{}{}
	}
	for k := range other {
		allKeys[k] = struct{}{}
	}

	var dot, normA, normB float64
	for k := range allKeys {
		a := v[k]
		b := other[k]
		dot += a * b
		normA += a * a
		normB += b * b
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// 浮点误差收敛到 [0, 1]
	if sim > 1 {
		return 1
	}
	if sim < 0 {
		return 0
	}
	return sim
}

// TopK 返回分值最高的 k 个维度名，按分值降序；分值相同时按名称升序，保证确定性。
func (v Vector) TopK(k int) []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if v[names[i]] != v[names[j]] {
			return v[names[i]] > v[names[j]]
		}
		return names[i] < names[j]
	})
	if k > 0 && len(names) > k {
		names = names[:k]
	}
	return names
}
