package crawlers

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/RecoveryAshes/AideddScraper/internal/utils"
	"github.com/gocolly/colly/v2"
)

const (
	// DefaultListingTimeout 列表页请求超时
	DefaultListingTimeout = 30 * time.Second
	// DefaultDetailTimeout 详情页请求超时
	DefaultDetailTimeout = 10 * time.Second
	// DefaultAcceptEncoding 请求的压缩方式; gzip由colly解压, br/deflate在响应回调中解压
	DefaultAcceptEncoding = "gzip, deflate, br"

	bodyKey   = "decoded_body"
	statusKey = "status_code"
)

// FetchConfig HTTP抓取配置
type FetchConfig struct {
	Timeout            time.Duration // 单次请求超时
	Delay              time.Duration // 每个请求完成后的礼貌性等待
	Parallelism        int           // 同时进行的请求数
	MaxBodySize        int           // 响应体上限(字节), 0表示使用colly默认值
	InsecureSkipVerify bool          // 跳过TLS证书验证
}

// Page 一次成功抓取的结果
type Page struct {
	URL        string
	StatusCode int
	Body       []byte // 已解压的响应体
}

// Fetcher 基于colly的同步页面抓取器
// 可以被多个goroutine同时调用, 并发数和间隔由LimitRule控制
type Fetcher struct {
	collector      *colly.Collector
	headerProvider models.HeaderProvider
	config         FetchConfig
}

// NewFetcher 创建抓取器, ctx取消时进行中的请求会被中断
func NewFetcher(ctx context.Context, config FetchConfig, headerProvider models.HeaderProvider) *Fetcher {
	if config.Timeout <= 0 {
		config.Timeout = DefaultDetailTimeout
	}
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}

	opts := []colly.CollectorOption{
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	}
	if config.MaxBodySize > 0 {
		opts = append(opts, colly.MaxBodySize(config.MaxBodySize))
	}
	c := colly.NewCollector(opts...)

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: config.Parallelism,
		IdleConnTimeout:     90 * time.Second,
	}
	if config.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		utils.Warnf("TLS证书验证已禁用")
	}
	c.WithTransport(transport)
	c.SetRequestTimeout(config.Timeout)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: config.Parallelism,
		Delay:       config.Delay,
	}); err != nil {
		utils.Warnf("设置并发限制失败: %v", err)
	}

	f := &Fetcher{
		collector:      c,
		headerProvider: headerProvider,
		config:         config,
	}
	f.setupCallbacks()

	utils.Debugf("抓取器: 超时=%s, 并发=%d, 间隔=%s", config.Timeout, config.Parallelism, config.Delay)
	return f
}

func (f *Fetcher) setupCallbacks() {
	f.collector.OnRequest(func(r *colly.Request) {
		if f.headerProvider != nil {
			headers, err := f.headerProvider.GetHeaders()
			if err != nil {
				utils.Warnf("获取HTTP头部失败: %v", err)
			} else {
				for name, values := range headers {
					if len(values) > 0 {
						r.Headers.Set(name, values[0])
					}
				}
			}
		}
		if r.Headers.Get("Accept-Encoding") == "" {
			r.Headers.Set("Accept-Encoding", DefaultAcceptEncoding)
		}
		utils.Debugf("访问: %s", r.URL.String())
	})

	f.collector.OnResponse(func(r *colly.Response) {
		body := r.Body
		if encoding := r.Headers.Get("Content-Encoding"); encoding != "" {
			decoded, err := decompressResponse(encoding, r.Body)
			if err != nil {
				utils.Warnf("解压响应失败 [%s] (编码=%s): %v", r.Request.URL, encoding, err)
			} else {
				body = decoded
			}
		}
		r.Ctx.Put(bodyKey, body)
		r.Ctx.Put(statusKey, r.StatusCode)
	})

	f.collector.OnError(func(r *colly.Response, err error) {
		utils.Debugf("请求失败 [%s] (状态码=%d): %v", r.Request.URL, r.StatusCode, err)
	})
}

// Fetch 同步抓取一个URL
// 网络错误、超时和非2xx状态码都返回错误
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cctx := colly.NewContext()
	if err := f.collector.Request(http.MethodGet, rawURL, nil, cctx, nil); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("请求失败 [%s]: %w", rawURL, err)
	}

	body, ok := cctx.GetAny(bodyKey).([]byte)
	if !ok {
		return nil, fmt.Errorf("请求失败 [%s]: 未收到响应体", rawURL)
	}
	status, _ := cctx.GetAny(statusKey).(int)
	return &Page{URL: rawURL, StatusCode: status, Body: body}, nil
}
