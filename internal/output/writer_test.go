package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/RecoveryAshes/AideddScraper/internal/models"
	"github.com/xuri/excelize/v2"
)

func spellDataset() *models.Dataset {
	return &models.Dataset{
		Header: models.Record{"Nom", "École", "Barde", "Lien_Description"},
		Records: []models.Record{
			{"Boule de feu", "évocation", "Non", "https://www.aidedd.org/spell/fr/boule-de-feu"},
			{"Mot de pouvoir; mourir", "enchantement", "Oui", ""},
		},
	}
}

func TestEncode_MinimalQuoting(t *testing.T) {
	var buf bytes.Buffer
	lines, err := Encode(&buf, spellDataset(), Options{Delimiter: ';', Quoting: models.QuoteMinimal})
	if err != nil {
		t.Fatalf("写出失败: %v", err)
	}
	if lines != 3 {
		t.Errorf("期望3行, 得到 %d", lines)
	}

	want := "Nom;École;Barde;Lien_Description\r\n" +
		"Boule de feu;évocation;Non;https://www.aidedd.org/spell/fr/boule-de-feu\r\n" +
		"\"Mot de pouvoir; mourir\";enchantement;Oui;\r\n"
	if got := buf.String(); got != want {
		t.Errorf("输出不匹配\n得到: %q\n期望: %q", got, want)
	}
}

func TestEncode_QuoteAll(t *testing.T) {
	ds := &models.Dataset{
		Header:  models.Record{"Nom", "Type"},
		Records: []models.Record{{`Sac "sans fond"`, ""}},
	}

	var buf bytes.Buffer
	if _, err := Encode(&buf, ds, Options{Delimiter: ',', Quoting: models.QuoteAll}); err != nil {
		t.Fatalf("写出失败: %v", err)
	}

	want := "\"Nom\",\"Type\"\r\n\"Sac \"\"sans fond\"\"\",\"\"\r\n"
	if got := buf.String(); got != want {
		t.Errorf("输出不匹配\n得到: %q\n期望: %q", got, want)
	}
}

func TestEncode_SpecialFields(t *testing.T) {
	tests := []struct {
		name   string
		record models.Record
		want   string
	}{
		{"单个空字段", models.Record{""}, "\"\"\r\n"},
		{"换行", models.Record{"a\nb", "c"}, "\"a\nb\";c\r\n"},
		{"回车", models.Record{"a\rb"}, "\"a\rb\"\r\n"},
		{"引号", models.Record{`dit "x"`}, "\"dit \"\"x\"\"\"\r\n"},
		{"逗号在分号模式下不加引号", models.Record{"a,b", "c"}, "a,b;c\r\n"},
		{"两个空字段", models.Record{"", ""}, ";\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			dw := NewDelimitedWriter(&buf, Options{Delimiter: ';', Quoting: models.QuoteMinimal})
			if err := dw.WriteRow(tt.record); err != nil {
				t.Fatalf("写出失败: %v", err)
			}
			if err := dw.Flush(); err != nil {
				t.Fatalf("刷新失败: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("得到 %q, 期望 %q", got, tt.want)
			}
		})
	}
}

func TestEncode_BOM(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, spellDataset(), Options{Delimiter: ';', BOM: true}); err != nil {
		t.Fatalf("写出失败: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
		t.Errorf("输出应以UTF-8 BOM开头: % x", buf.Bytes()[:3])
	}
	if bytes.Count(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}) != 1 {
		t.Error("BOM只能出现一次")
	}
	if !bytes.Contains(buf.Bytes(), []byte("École")) {
		t.Error("非ASCII字符应按UTF-8原样写出")
	}
}

func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, &models.Dataset{}, Options{}); !errors.Is(err, models.ErrEmptyDataset) {
		t.Errorf("期望 ErrEmptyDataset, 得到 %v", err)
	}
	if buf.Len() != 0 {
		t.Error("空数据集不应写出任何内容")
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "sorts.csv")

	lines, err := WriteFile(path, spellDataset(), OptionsFromProfile(models.SpellProfile()))
	if err != nil {
		t.Fatalf("写入文件失败: %v", err)
	}
	if lines != 3 {
		t.Errorf("期望3行, 得到 %d", lines)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取文件失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\xEF\xBB\xBFNom;")) {
		t.Errorf("文件开头不正确: %q", data[:10])
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("输出目录不应残留临时文件: %v", entries)
	}
}

func TestWriteFile_EmptyLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vide.csv")
	if _, err := WriteFile(path, nil, Options{}); !errors.Is(err, models.ErrEmptyDataset) {
		t.Fatalf("期望 ErrEmptyDataset, 得到 %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("空数据集不应创建文件")
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sorts.xlsx")
	profile := models.SpellProfile()
	profile.Format = models.FormatXLSX

	lines, err := Write(path, profile, spellDataset())
	if err != nil {
		t.Fatalf("写入xlsx失败: %v", err)
	}
	if lines != 3 {
		t.Errorf("期望3行, 得到 %d", lines)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("打开工作簿失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("spells")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望3行, 得到 %d", len(rows))
	}
	if rows[0][0] != "Nom" || rows[1][0] != "Boule de feu" {
		t.Errorf("单元格内容错误: %v", rows)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	profile := models.ItemProfile()
	profile.Format = "json"
	if _, err := Write(filepath.Join(t.TempDir(), "x"), profile, spellDataset()); err == nil {
		t.Error("未知格式应返回错误")
	}
}
