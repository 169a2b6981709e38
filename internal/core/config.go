package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/RecoveryAshes/AideddScraper/internal/utils"
	"github.com/spf13/viper"
)

// Config 应用程序配置
type Config struct {
	HTTP     HTTPConfig                `mapstructure:"http"`
	Detail   DetailConfig              `mapstructure:"detail"`
	Logging  LoggingConfig             `mapstructure:"logging"`
	Output   OutputConfig              `mapstructure:"output"`
	Profiles map[string]models.Profile `mapstructure:"profiles"`
}

// HTTPConfig 请求配置
type HTTPConfig struct {
	ListingTimeout     int  `mapstructure:"listing_timeout"` // 秒
	DetailTimeout      int  `mapstructure:"detail_timeout"`  // 秒
	MaxBodySize        int  `mapstructure:"max_body_size"`   // 字节, 0为colly默认
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// DetailConfig 详情页补充配置
type DetailConfig struct {
	Workers       int     `mapstructure:"workers"`
	DelayMs       int     `mapstructure:"delay_ms"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Report bool   `mapstructure:"report"`
}

// LoadConfig 加载配置文件; 未找到配置文件时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".aideddscraper"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
	} else {
		utils.Debugf("使用配置文件: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("http.listing_timeout", 30)
	v.SetDefault("http.detail_timeout", 10)
	v.SetDefault("http.max_body_size", 0)
	v.SetDefault("http.insecure_skip_verify", false)

	v.SetDefault("detail.workers", 2)
	v.SetDefault("detail.delay_ms", 300)
	v.SetDefault("detail.rate_per_second", 3.0)
	v.SetDefault("detail.burst", 1)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.report", true)

	setProfileDefaults(v, models.SpellProfile())
	setProfileDefaults(v, models.ItemProfile())
}

func setProfileDefaults(v *viper.Viper, p models.Profile) {
	prefix := "profiles." + p.Name + "."
	v.SetDefault(prefix+"name", p.Name)
	v.SetDefault(prefix+"listing_url", p.ListingURL)
	v.SetDefault(prefix+"detail_base_url", p.DetailBaseURL)
	v.SetDefault(prefix+"table_id", p.TableID)
	v.SetDefault(prefix+"item_class", p.ItemClass)
	v.SetDefault(prefix+"link_column", p.LinkColumn)
	v.SetDefault(prefix+"enrichment", string(p.Enrichment))
	v.SetDefault(prefix+"classes", p.Classes)
	v.SetDefault(prefix+"yes_token", p.YesToken)
	v.SetDefault(prefix+"no_token", p.NoToken)
	v.SetDefault(prefix+"output_file", p.OutputFile)
	v.SetDefault(prefix+"format", string(p.Format))
	v.SetDefault(prefix+"delimiter", p.Delimiter)
	v.SetDefault(prefix+"quoting", string(p.Quoting))
	v.SetDefault(prefix+"bom", p.BOM)
}

// Profile 按名称获取预设并校验
func (c *Config) Profile(name string) (models.Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return models.Profile{}, fmt.Errorf("未知的预设: %s (可用: %v)", name, c.ProfileNames())
	}
	if p.Name == "" {
		p.Name = name
	}
	if err := p.Validate(); err != nil {
		return models.Profile{}, fmt.Errorf("预设 %s 配置无效: %w", name, err)
	}
	return p, nil
}

// ProfileNames 已配置的预设名称(排序)
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LogConfig 转换为日志系统配置
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// ListingTimeout 列表页超时
func (c *Config) ListingTimeout() time.Duration {
	return time.Duration(c.HTTP.ListingTimeout) * time.Second
}

// DetailTimeout 详情页超时
func (c *Config) DetailTimeout() time.Duration {
	return time.Duration(c.HTTP.DetailTimeout) * time.Second
}

// Delay 每次详情页请求后的等待时间
func (c *Config) Delay() time.Duration {
	return time.Duration(c.Detail.DelayMs) * time.Millisecond
}

// MergeCLIFlags 合并命令行参数到配置, 命令行优先
// 未指定日志级别时 verbose 等同于 debug
// 负数表示未设置
func (c *Config) MergeCLIFlags(workers int, delayMs int, outputDir string, logLevel string, verbose bool) {
	if workers > 0 {
		c.Detail.Workers = workers
	}
	if delayMs >= 0 {
		c.Detail.DelayMs = delayMs
	}
	if outputDir != "" {
		c.Output.Dir = outputDir
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	} else if verbose {
		c.Logging.Level = "debug"
	}
}
