package recall

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pipeline"
)

// Fanout 是一个 Recall Node：并发执行多路信号源，并按声明顺序合并结果。
//
// 错误与超时的处理遵循"局部降级"：单路信号失败或超时只让这一路为空，
// 不中断其余信号；只有所有信号源都失败时才整体报 UNAVAILABLE，
// 由引擎兜底到纯热门。
//
// 确定性：每路结果先收进各自的槽位，Wait 之后按 Sources 的声明顺序拼接，
// 下游合并的"首次出现顺序"因此是可复现的（同分项的平局顺序是对外契约）。
type Fanout struct {
	Sources []Source

	// Timeout 是每路信号源的超时时间；0 表示不加超时
	Timeout time.Duration
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	slots := make([][]*core.Item, len(n.Sources))
	errs := make([]error, len(n.Sources))
	eg, egctx := errgroup.WithContext(ctx)

	for i, src := range n.Sources {
		i, s := i, src
		eg.Go(func() error {
			recallCtx := egctx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egctx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				// 超时或错误时该路降级为空，不中断其他信号源
				errs[i] = err
				return nil
			}
			slots[i] = items
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	total := 0
	for i := range n.Sources {
		if errs[i] != nil {
			failed++
		}
		total += len(slots[i])
	}
	if failed == len(n.Sources) {
		return nil, core.ErrStoreUnavailable
	}

	all := make([]*core.Item, 0, total)
	for _, slot := range slots {
		all = append(all, slot...)
	}
	return all, nil
}
