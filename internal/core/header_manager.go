package core

import (
	"net/http"
	"sync"

	"github.com/RecoveryAshes/AideddScraper/internal/config"
	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/RecoveryAshes/AideddScraper/internal/utils"
)

const (
	// DefaultUserAgent 默认User-Agent
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/91.0.4472.124 Safari/537.36"
)

// HeaderManager 管理HTTP请求头部
// 实现 models.HeaderProvider, 合并优先级: 默认 < headers.yaml < 命令行
type HeaderManager struct {
	defaults http.Header
	config   http.Header
	cli      http.Header

	validator    *utils.HeaderValidator
	redactor     *utils.HeaderRedactor
	configLoader *config.HeaderConfigLoader

	once    sync.Once
	merged  http.Header
	loadErr error
}

// NewHeaderManager 创建头部管理器
// configFile为空时使用默认路径; cliHeaders格式为 "Name: Value"
func NewHeaderManager(configFile string, cliHeaders []string) (*HeaderManager, error) {
	cli, err := models.CliHeaders(cliHeaders).Parse()
	if err != nil {
		return nil, err
	}

	return &HeaderManager{
		defaults:     getDefaultHeaders(),
		cli:          cli,
		validator:    utils.NewHeaderValidator(),
		redactor:     utils.NewHeaderRedactor(),
		configLoader: config.NewHeaderConfigLoader(configFile),
	}, nil
}

func getDefaultHeaders() http.Header {
	return http.Header{
		"User-Agent":      []string{DefaultUserAgent},
		"Accept":          []string{"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		"Accept-Encoding": []string{"gzip, deflate, br"},
	}
}

// LoadConfig 加载 headers.yaml
func (hm *HeaderManager) LoadConfig() error {
	headerConfig, err := hm.configLoader.LoadConfig()
	if err != nil {
		return err
	}

	hm.config = make(http.Header)
	for name, value := range headerConfig.Headers {
		hm.config.Set(name, value)
	}

	if len(hm.config) > 0 {
		utils.Debugf("加载了%d个HTTP头部配置: %v", len(hm.config), hm.redactor.Redact(hm.config))
	}
	return nil
}

// Validate 依次验证默认、配置文件和命令行头部
func (hm *HeaderManager) Validate() error {
	for _, h := range []http.Header{hm.defaults, hm.config, hm.cli} {
		if err := hm.validator.Validate(h); err != nil {
			return err
		}
	}
	return nil
}

// GetMergedHeaders 按优先级合并头部
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, h := range []http.Header{hm.defaults, hm.config, hm.cli} {
		for name, values := range h {
			result[name] = values
		}
	}
	return result
}

// GetSafeHeaders 返回脱敏后的头部, 用于日志
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider
// 第一次调用时加载并验证, 之后返回同一结果
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	hm.once.Do(func() {
		if err := hm.LoadConfig(); err != nil {
			hm.loadErr = err
			return
		}
		if err := hm.Validate(); err != nil {
			hm.loadErr = err
			return
		}
		hm.merged = hm.GetMergedHeaders()
	})
	if hm.loadErr != nil {
		return nil, hm.loadErr
	}
	return hm.merged.Clone(), nil
}
