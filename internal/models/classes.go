package models

import "strings"

const (
	// DefaultYesToken 标记为真时输出的文本
	DefaultYesToken = "Oui"
	// DefaultNoToken 标记为假时输出的文本
	DefaultNoToken = "Non"

	// ClassScanLines 详情页只扫描前N行可见文本
	ClassScanLines = 10
)

// DefaultSpellClasses 法术职业枚举(输出列顺序)
var DefaultSpellClasses = []string{
	"Barde",
	"Clerc",
	"Druide",
	"Paladin",
	"Rôdeur",
	"Ensorceleur",
	"Occultiste",
	"Magicien",
}

// ClassFlags 固定职业枚举 -> 是否可用
// 初始全部为false,只会由false变为true
type ClassFlags struct {
	names []string
	set   []bool
}

// NewClassFlags 创建全false的职业标记
func NewClassFlags(names []string) ClassFlags {
	return ClassFlags{
		names: names,
		set:   make([]bool, len(names)),
	}
}

// Names 返回职业枚举
func (f ClassFlags) Names() []string {
	return f.names
}

// Has 查询某职业是否已标记
func (f ClassFlags) Has(name string) bool {
	for i, n := range f.names {
		if n == name {
			return f.set[i]
		}
	}
	return false
}

// Any 是否至少有一个职业被标记
func (f ClassFlags) Any() bool {
	for _, v := range f.set {
		if v {
			return true
		}
	}
	return false
}

// ScanLine 对单行文本做职业名子串匹配(区分大小写)
func (f ClassFlags) ScanLine(line string) {
	for i, n := range f.names {
		if !f.set[i] && strings.Contains(line, n) {
			f.set[i] = true
		}
	}
}

// Tokens 按枚举顺序输出 yes/no 文本
func (f ClassFlags) Tokens(yes, no string) []string {
	out := make([]string, len(f.set))
	for i, v := range f.set {
		if v {
			out[i] = yes
		} else {
			out[i] = no
		}
	}
	return out
}

// DeriveClassFlags 从页面可见文本行派生职业标记
// 只检查前 ClassScanLines 行
func DeriveClassFlags(names []string, lines []string) ClassFlags {
	flags := NewClassFlags(names)
	if len(lines) > ClassScanLines {
		lines = lines[:ClassScanLines]
	}
	for _, line := range lines {
		flags.ScanLine(line)
	}
	return flags
}
