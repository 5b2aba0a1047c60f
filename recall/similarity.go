package recall

import (
	"context"
	"sort"
	"time"

	"github.com/rushteam/shoprec/core"
)

// SimilarityEngine 计算请求用户与其他用户偏好向量的两两相似度，产出邻居集。
//
// 向量空间是双方档案中出现过的类目名的并集，每个轴取该用户对该类目的累计分
// （缺失为 0）；相似度用余弦，两个零向量的余弦定义为 0 而不是 NaN。
//
// 候选池是最近活跃、交互数达到门槛的 N 个档案，扫描复杂度
// O(候选池大小 × 向量维度)，是整条链路里最贵的一步。
type SimilarityEngine struct {
	Store core.BehaviorStore

	// CandidatePool 候选档案池大小，默认 200
	CandidatePool int

	// MinInteractions 进入候选池的最少交互数，默认 10
	MinInteractions int64

	// Floor 相似度下限，低于它的候选被丢弃，默认 0.1
	Floor float64
}

// FindSimilarUsers 返回按相似度降序的至多 limit 个邻居，
// 每个邻居附带与请求用户的共同商品交互数。
func (e *SimilarityEngine) FindSimilarUsers(
	ctx context.Context,
	userID string,
	profile *core.BehaviorProfile,
	limit int,
) ([]core.SimilarUser, error) {
	if e.Store == nil || profile == nil || profile.Preferences == nil {
		return nil, nil
	}

	pool := e.CandidatePool
	if pool <= 0 {
		pool = 200
	}
	minInteractions := e.MinInteractions
	if minInteractions <= 0 {
		minInteractions = 10
	}
	floor := e.Floor
	if floor <= 0 {
		floor = 0.1
	}
	if limit <= 0 {
		limit = 10
	}

	mine := profile.Preferences.Categories.Vector()
	myTargets := profile.ProductTargets()

	candidates, err := e.Store.ActiveProfiles(ctx, minInteractions, pool)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	neighbors := make([]core.SimilarUser, 0, len(candidates))
	for _, cand := range candidates {
		if cand == nil || cand.UserID == userID || cand.Preferences == nil {
			continue
		}

		sim := mine.Cosine(cand.Preferences.Categories.Vector())
		if sim < floor {
			continue
		}

		common := 0
		for target := range cand.ProductTargets() {
			if _, ok := myTargets[target]; ok {
				common++
			}
		}

		neighbors = append(neighbors, core.SimilarUser{
			UserID:             cand.UserID,
			Similarity:         sim,
			CommonInteractions: common,
			CalculatedAt:       now,
		})
	}

	// 相似度降序；同分按用户 ID 升序，保证确定性
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})
	if len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}
