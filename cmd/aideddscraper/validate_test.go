package main

import (
	"testing"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
)

func TestValidateRunFlags(t *testing.T) {
	tests := []struct {
		name        string
		workers     int
		delayMs     int
		format      string
		expectError bool
	}{
		{"默认值", 0, -1, "", false},
		{"有效参数", 4, 500, "xlsx", false},
		{"大写格式", 2, 0, "CSV", false},
		{"并发数为负", -1, 0, "", true},
		{"并发数过大", 101, 0, "", true},
		{"等待时间过小", 1, -2, "", true},
		{"等待时间过大", 1, 60001, "", true},
		{"无效格式", 1, 0, "json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRunFlags(tt.workers, tt.delayMs, tt.format)
			if (err != nil) != tt.expectError {
				t.Errorf("期望错误=%v, 实际错误=%v", tt.expectError, err)
			}
		})
	}
}

func TestBuildAdHocProfile(t *testing.T) {
	p, err := BuildAdHocProfile("https://www.aidedd.org/feats/fr/", "liste", "item", "",
		[]string{" Guerrier ", "", "Moine"}, ";", true)
	if err != nil {
		t.Fatalf("构造预设失败: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("预设应有效: %v", err)
	}
	if !p.Enriches() || len(p.Classes) != 2 || p.Classes[0] != "Guerrier" {
		t.Errorf("职业列表错误: %v", p.Classes)
	}
	if p.Quoting != models.QuoteAll || p.Delimiter != ";" {
		t.Errorf("写出选项错误: %+v", p)
	}
	if p.OutputFile != "feats.csv" {
		t.Errorf("输出文件名错误: %s", p.OutputFile)
	}

	plain, err := BuildAdHocProfile("https://example.com/", "t", "item", "", nil, ",", false)
	if err != nil {
		t.Fatalf("构造预设失败: %v", err)
	}
	if plain.Enriches() || plain.OutputFile != "table.csv" || plain.Quoting != models.QuoteMinimal {
		t.Errorf("无职业时不应补充: %+v", plain)
	}

	if _, err := BuildAdHocProfile("ftp://example.com", "t", "item", "", nil, ",", false); err == nil {
		t.Error("非HTTP URL应失败")
	}
}
