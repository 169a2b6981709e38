// Package crawlers 提供列表页表格提取和详情页职业补充功能
//
// # 概述
//
// crawlers包基于Colly抓取页面, 用goquery定位表格, 用x/net/html提取详情页可见文本。
// 所有请求共用同一套头部、超时和礼貌性间隔。
//
// # 核心组件
//
// ## Fetcher
//
// 同步抓取器。gzip由colly解压, br/deflate在OnResponse回调中解压。
// 网络错误和非2xx状态码都作为错误返回。
//
//	fetcher := NewFetcher(ctx, FetchConfig{Timeout: 30 * time.Second}, headerProvider)
//	page, err := fetcher.Fetch(ctx, "https://www.aidedd.org/spell/fr/")
//
// ## TableExtractor
//
// 定位id为"liste"的表格, 第一个首单元格为th或行号为0的行作为表头,
// 其余为数据行。所有单元格为空的行被丢弃。带"item"类的单元格中第一个
// 非空href给出详情链接。
//
//	extractor := NewTableExtractor(fetcher, "liste", "item")
//	table, size, err := extractor.Extract(ctx, listingURL)
//	if errors.Is(err, ErrTableNotFound) { /* 页面结构变化 */ }
//
// ## DetailPool
//
// 有界worker池(errgroup), 所有worker共享一个令牌桶(x/time/rate)。
// 结果按行号回填, 输出顺序与表格一致。相同URL在一次运行中只抓取一次。
// 单个详情页失败只会让该行的标记全部为false。
//
//	enricher := NewDetailEnricher(detailFetcher, "https://www.aidedd.org/spell/", classes)
//	pool := NewDetailPool(enricher, PoolConfig{Workers: ClampWorkers(4), RatePerSecond: 3})
//	results, stats, err := pool.Run(ctx, table.Rows)
//
// ## ClampWorkers
//
// 根据逻辑CPU数和可用内存(gopsutil)限制worker数量。
package crawlers
