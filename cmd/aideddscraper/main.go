package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RecoveryAshes/AideddScraper/internal/core"
	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/RecoveryAshes/AideddScraper/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers        []string
	validateConfig bool

	// 运行参数
	outputFile string
	outputDir  string
	workers    int
	delayMs    int
	format     string
	noEnrich   bool
	report     bool

	// 批量参数
	batchDelay      int
	continueOnError bool

	// 自定义抓取参数
	scrapeURL        string
	scrapeTableID    string
	scrapeItemClass  string
	scrapeDetailBase string
	scrapeClasses    []string
	scrapeDelimiter  string
	scrapeQuoteAll   bool
)

// appConfig 在 PersistentPreRunE 中加载
var appConfig *core.Config

var rootCmd = &cobra.Command{
	Use:   "aideddscraper",
	Short: "aidedd.org 法术与魔法物品列表抓取工具",
	Long: `AideddScraper - 将 aidedd.org 的法术和魔法物品列表导出为CSV/XLSX

功能:
  • 提取列表页表格并过滤空表头列
  • 访问法术详情页, 为每个法术标记可用职业
  • 分号/逗号分隔, 可选全部加引号, UTF-8 BOM
  • JSON运行报告
  • 自定义HTTP请求头

示例:
  aideddscraper spells
  aideddscraper items -o objets.csv
  aideddscraper all --workers 4 --delay 500
  aideddscraper scrape --url https://www.aidedd.org/feats/fr/ --table-id liste
  aideddscraper spells -H "Accept-Language: fr-FR"
  aideddscraper --validate-config

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		config.MergeCLIFlags(workers, delayMs, outputDir, logLevel, verbose)
		if cmd.Flags().Changed("report") {
			config.Output.Report = report
		}

		if err := utils.InitLogger(config.LogConfig()); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}
		if verbose {
			utils.Debug("详细模式已启用")
		}

		appConfig = config
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateConfig {
			return runValidateConfig()
		}
		return cmd.Help()
	},
}

var spellsCmd = &cobra.Command{
	Use:   "spells",
	Short: "抓取法术列表 (含职业标记)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProfiles(cmd, []string{"spells"})
	},
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "抓取魔法物品列表",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProfiles(cmd, []string{"items"})
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "依次抓取法术和魔法物品",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputFile != "" {
			return fmt.Errorf("all 命令不支持 --output, 请在配置文件中为每个预设设置 output_file")
		}
		return runProfiles(cmd, []string{"spells", "items"})
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "抓取任意页面中的表格",
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateConfig {
			return runValidateConfig()
		}
		if err := ValidateRunFlags(workers, delayMs, format); err != nil {
			return err
		}

		profile, err := BuildAdHocProfile(scrapeURL, scrapeTableID, scrapeItemClass, scrapeDetailBase,
			scrapeClasses, scrapeDelimiter, scrapeQuoteAll)
		if err != nil {
			return err
		}
		core.ProfileOverrides{OutputFile: outputFile, Format: format, NoEnrich: noEnrich}.Apply(&profile)
		if err := profile.Validate(); err != nil {
			return err
		}

		headerManager, err := core.NewHeaderManager("", headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}

		runner := core.NewRunner(appConfig, profile, headerManager)
		runner.SetProgressOutput(os.Stderr)
		if _, err := runner.Run(cmd.Context()); err != nil {
			return fmt.Errorf("抓取失败: %w", err)
		}
		utils.Info("抓取任务完成!")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("AideddScraper %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

// runProfiles 运行一个或多个预设
func runProfiles(cmd *cobra.Command, names []string) error {
	if validateConfig {
		return runValidateConfig()
	}
	if err := ValidateRunFlags(workers, delayMs, format); err != nil {
		return err
	}

	headerManager, err := core.NewHeaderManager("", headers)
	if err != nil {
		return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}

	overrides := core.ProfileOverrides{OutputFile: outputFile, Format: format, NoEnrich: noEnrich}

	if len(names) == 1 {
		profile, err := appConfig.Profile(names[0])
		if err != nil {
			return err
		}
		overrides.Apply(&profile)
		if err := profile.Validate(); err != nil {
			return err
		}

		runner := core.NewRunner(appConfig, profile, headerManager)
		runner.SetProgressOutput(os.Stderr)
		if _, err := runner.Run(cmd.Context()); err != nil {
			return fmt.Errorf("抓取失败: %w", err)
		}
		utils.Info("抓取任务完成!")
		return nil
	}

	batch := core.NewBatchRunner(appConfig, overrides, time.Duration(batchDelay)*time.Second, continueOnError, headerManager)
	batch.SetProgressOutput(os.Stderr)
	if _, err := batch.RunAll(cmd.Context(), names); err != nil {
		return fmt.Errorf("批量抓取失败: %w", err)
	}
	utils.Info("批量抓取任务完成!")
	return nil
}

// runValidateConfig 验证配置文件和HTTP头部
func runValidateConfig() error {
	utils.Info("验证配置...")

	for _, name := range appConfig.ProfileNames() {
		if _, err := appConfig.Profile(name); err != nil {
			return fmt.Errorf("配置验证失败: %w", err)
		}
		utils.Infof("  预设 %s: OK", name)
	}

	headerManager, err := core.NewHeaderManager("", headers)
	if err != nil {
		return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}
	if err := headerManager.LoadConfig(); err != nil {
		return fmt.Errorf("加载头部配置失败: %w", err)
	}
	if err := headerManager.Validate(); err != nil {
		return fmt.Errorf("头部配置验证失败: %w", err)
	}

	safeHeaders := headerManager.GetSafeHeaders()
	utils.Info("配置验证通过!")
	utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
	for name, value := range safeHeaders {
		utils.Infof("  %s: %s", name, value)
	}
	return nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "输出文件 (默认使用预设中的文件名)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "输出目录 (默认 output.dir)")
	cmd.Flags().IntVar(&workers, "workers", 0, "详情页并发数 (默认 detail.workers)")
	cmd.Flags().IntVar(&delayMs, "delay", -1, "每次详情页请求后的等待时间(毫秒) (默认 detail.delay_ms)")
	cmd.Flags().StringVar(&format, "format", "", "输出格式 (csv|xlsx)")
	cmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "不访问详情页")
	cmd.Flags().BoolVar(&report, "report", true, "生成JSON运行报告")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件正确性")

	for _, cmd := range []*cobra.Command{spellsCmd, itemsCmd, allCmd, scrapeCmd} {
		addRunFlags(cmd)
	}

	allCmd.Flags().IntVar(&batchDelay, "batch-delay", 1, "两个预设之间的等待时间(秒)")
	allCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "某个预设失败时继续处理")

	scrapeCmd.Flags().StringVarP(&scrapeURL, "url", "u", "", "列表页URL (必需)")
	scrapeCmd.Flags().StringVar(&scrapeTableID, "table-id", models.DefaultTableID, "目标表格的id")
	scrapeCmd.Flags().StringVar(&scrapeItemClass, "item-class", models.DefaultItemClass, "含详情链接的单元格class")
	scrapeCmd.Flags().StringVar(&scrapeDetailBase, "detail-base", "", "详情链接的基础URL (默认为列表页URL)")
	scrapeCmd.Flags().StringSliceVar(&scrapeClasses, "classes", nil, "要在详情页中查找的名称 (逗号分隔)")
	scrapeCmd.Flags().StringVar(&scrapeDelimiter, "delimiter", ",", "分隔符")
	scrapeCmd.Flags().BoolVar(&scrapeQuoteAll, "quote-all", false, "所有字段加引号")
	scrapeCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(spellsCmd, itemsCmd, allCmd, scrapeCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			utils.Warn("收到中断信号, 未写出任何文件")
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		stop()
		os.Exit(1)
	}
}
