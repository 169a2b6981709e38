package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/RecoveryAshes/AideddScraper/internal/utils"
	"golang.org/x/text/encoding/unicode"
)

// lineTerminator 每条记录以CRLF结尾
const lineTerminator = "\r\n"

// Options 分隔文本的写出选项
type Options struct {
	Delimiter rune
	Quoting   models.QuotePolicy
	BOM       bool
}

// OptionsFromProfile 从预设读取写出选项
func OptionsFromProfile(p models.Profile) Options {
	return Options{
		Delimiter: p.DelimiterRune(),
		Quoting:   p.Quoting,
		BOM:       p.BOM,
	}
}

// DelimitedWriter 按行写出分隔文本
type DelimitedWriter struct {
	w    *bufio.Writer
	opts Options
}

// NewDelimitedWriter 创建写出器
func NewDelimitedWriter(w io.Writer, opts Options) *DelimitedWriter {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Quoting == "" {
		opts.Quoting = models.QuoteMinimal
	}
	return &DelimitedWriter{w: bufio.NewWriter(w), opts: opts}
}

// WriteRow 写出一行
func (dw *DelimitedWriter) WriteRow(r models.Record) error {
	// 单个空字段必须加引号,否则与空行无法区分
	if len(r) == 1 && r[0] == "" {
		_, err := dw.w.WriteString(`""` + lineTerminator)
		return err
	}

	for i, field := range r {
		if i > 0 {
			if _, err := dw.w.WriteRune(dw.opts.Delimiter); err != nil {
				return err
			}
		}
		if err := dw.writeField(field); err != nil {
			return err
		}
	}
	_, err := dw.w.WriteString(lineTerminator)
	return err
}

func (dw *DelimitedWriter) writeField(field string) error {
	if !dw.needsQuotes(field) {
		_, err := dw.w.WriteString(field)
		return err
	}
	quoted := `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	_, err := dw.w.WriteString(quoted)
	return err
}

func (dw *DelimitedWriter) needsQuotes(field string) bool {
	if dw.opts.Quoting == models.QuoteAll {
		return true
	}
	return strings.ContainsRune(field, dw.opts.Delimiter) ||
		strings.ContainsAny(field, "\"\r\n")
}

// Flush 刷新缓冲区
func (dw *DelimitedWriter) Flush() error {
	return dw.w.Flush()
}

// Encode 将数据集(表头在首行)写入w,返回写出的行数
func Encode(w io.Writer, ds *models.Dataset, opts Options) (int, error) {
	if ds.IsEmpty() {
		return 0, models.ErrEmptyDataset
	}

	var closer io.Closer
	if opts.BOM {
		bw := unicode.UTF8BOM.NewEncoder().Writer(w)
		if c, ok := bw.(io.Closer); ok {
			closer = c
		}
		w = bw
	}

	dw := NewDelimitedWriter(w, opts)
	lines := 0
	for _, r := range ds.Rows() {
		if err := dw.WriteRow(r); err != nil {
			return lines, fmt.Errorf("写入第%d行失败: %w", lines+1, err)
		}
		lines++
	}
	if err := dw.Flush(); err != nil {
		return lines, fmt.Errorf("刷新缓冲区失败: %w", err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			return lines, fmt.Errorf("写入BOM失败: %w", err)
		}
	}
	return lines, nil
}

// WriteFile 将数据集写入path
// 先写临时文件再重命名,失败时不留下半截文件
func WriteFile(path string, ds *models.Dataset, opts Options) (int, error) {
	if ds.IsEmpty() {
		return 0, models.ErrEmptyDataset
	}

	lines := 0
	err := writeAtomic(path, func(w io.Writer) error {
		n, err := Encode(w, ds, opts)
		lines = n
		return err
	})
	if err != nil {
		return 0, err
	}

	utils.Debugf("写入 %d 行到 %s", lines, path)
	return lines, nil
}

// writeAtomic 在目标目录中创建临时文件,写入成功后重命名
func writeAtomic(path string, fn func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmp.Name()

	if err := fn(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		utils.Warnf("设置文件权限失败: %v", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("重命名输出文件失败: %w", err)
	}
	return nil
}

// Write 按预设的输出格式写入path
func Write(path string, p models.Profile, ds *models.Dataset) (int, error) {
	switch p.Format {
	case models.FormatXLSX:
		return WriteXLSX(path, p.Name, ds)
	case models.FormatCSV, "":
		return WriteFile(path, ds, OptionsFromProfile(p))
	default:
		return 0, fmt.Errorf("不支持的输出格式: %s", p.Format)
	}
}
