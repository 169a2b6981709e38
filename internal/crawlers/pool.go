package crawlers

import (
	"context"
	"io"
	"sync"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/RecoveryAshes/AideddScraper/internal/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// PoolConfig 详情页worker池配置
type PoolConfig struct {
	Workers       int
	RatePerSecond float64   // 所有worker共享的请求速率上限, <=0 表示不限
	Burst         int       // 令牌桶容量
	Progress      io.Writer // 进度条输出, nil时不显示
}

// DetailResult 单行的补充结果
type DetailResult struct {
	Index  int
	URL    string // 解析后的详情页URL, 无链接时为空
	Flags  models.ClassFlags
	Err    error
	Cached bool // 结果来自同一次运行中相同URL的抓取
}

// PoolStats 补充阶段统计
type PoolStats struct {
	Fetched int
	Failed  int
	Cached  int
}

type classifyResult struct {
	flags models.ClassFlags
	err   error
}

// DetailPool 有界worker池, 按行号回填结果
type DetailPool struct {
	enricher *DetailEnricher
	config   PoolConfig
	limiter  *rate.Limiter

	group singleflight.Group
	cache sync.Map // url -> classifyResult
}

// NewDetailPool 创建worker池
func NewDetailPool(enricher *DetailEnricher, config PoolConfig) *DetailPool {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Burst < 1 {
		config.Burst = 1
	}

	limit := rate.Inf
	if config.RatePerSecond > 0 {
		limit = rate.Limit(config.RatePerSecond)
	}

	return &DetailPool{
		enricher: enricher,
		config:   config,
		limiter:  rate.NewLimiter(limit, config.Burst),
	}
}

// Run 为每一行派生职业标记, 返回结果与rows一一对应
//
// 无链接的行直接得到全false标记, 不发请求。单行失败只影响该行。
// 只有ctx被取消时才返回错误。
func (p *DetailPool) Run(ctx context.Context, rows []Row) ([]DetailResult, PoolStats, error) {
	results := make([]DetailResult, len(rows))
	queue := NewDetailQueue(len(rows))

	bar := utils.NewProgressBar(len(rows), "获取职业信息", p.config.Progress)
	defer bar.Finish()

	for i, row := range rows {
		results[i] = DetailResult{Index: i, Flags: p.enricher.Empty()}
		if row.Link == "" {
			bar.Add(1)
			continue
		}

		detailURL, err := p.enricher.Resolve(row.Link)
		if err != nil {
			utils.Warnf("解析详情链接失败 [%s]: %v", row.Link, err)
			results[i].Err = err
			bar.Add(1)
			continue
		}
		results[i].URL = detailURL

		if err := queue.Push(DetailJob{Index: i, Link: row.Link, URL: detailURL}); err != nil {
			results[i].Err = err
			bar.Add(1)
		}
	}
	queue.Close()

	utils.Infof("开始获取 %d 个详情页 (worker=%d)", queue.Pushed(), p.config.Workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < p.config.Workers; w++ {
		g.Go(func() error {
			for {
				job, ok, err := queue.Pop(gctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}

				flags, cached, err := p.classify(gctx, job.URL)
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}

				res := &results[job.Index]
				res.Flags = flags
				res.Cached = cached
				res.Err = err
				if err != nil {
					utils.Warnf("获取职业信息失败 [%s]: %v", job.URL, err)
				} else {
					utils.Debugf("职业信息 [%s]: %q", job.URL, flags.Tokens(models.DefaultYesToken, models.DefaultNoToken))
				}
				bar.Add(1)
			}
		})
	}

	var stats PoolStats
	if err := g.Wait(); err != nil {
		return nil, stats, err
	}

	for _, r := range results {
		switch {
		case r.Err != nil:
			stats.Failed++
		case r.Cached:
			stats.Cached++
		case r.URL != "":
			stats.Fetched++
		}
	}
	return results, stats, nil
}

// classify 同一URL只抓取一次; 并发的重复请求等待第一次的结果
func (p *DetailPool) classify(ctx context.Context, detailURL string) (models.ClassFlags, bool, error) {
	if v, ok := p.cache.Load(detailURL); ok {
		r := v.(classifyResult)
		return r.flags, true, r.err
	}

	executed := false
	v, err, _ := p.group.Do(detailURL, func() (interface{}, error) {
		if v, ok := p.cache.Load(detailURL); ok {
			return v, nil
		}
		executed = true
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		flags, err := p.enricher.Classify(ctx, detailURL)
		res := classifyResult{flags: flags, err: err}
		if ctx.Err() == nil {
			p.cache.Store(detailURL, res)
		}
		return res, nil
	})
	if err != nil {
		return p.enricher.Empty(), false, err
	}

	r := v.(classifyResult)
	return r.flags, !executed, r.err
}
