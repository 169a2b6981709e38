package models

import (
	"errors"
	"reflect"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"有效的HTTP URL", "http://example.com", false},
		{"有效的HTTPS URL", "https://www.aidedd.org/spell/fr/", false},
		{"无效的协议", "ftp://example.com", true},
		{"无效的URL", "not a url", true},
		{"空URL", "", true},
		{"无协议", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveLink(t *testing.T) {
	tests := []struct {
		name string
		base string
		link string
		want string
	}{
		{"绝对路径", "https://www.aidedd.org/spell/", "/spell/fr/boule-de-feu", "https://www.aidedd.org/spell/fr/boule-de-feu"},
		{"相对路径", "https://www.aidedd.org/spell/", "fr/boule-de-feu", "https://www.aidedd.org/spell/fr/boule-de-feu"},
		{"查询参数", "https://www.aidedd.org/magic-item/", "?vo=bag-of-holding", "https://www.aidedd.org/magic-item/?vo=bag-of-holding"},
		{"完整URL", "https://www.aidedd.org/spell/", "https://example.com/x", "https://example.com/x"},
		{"空链接", "https://www.aidedd.org/spell/", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLink(tt.base, tt.link)
			if err != nil {
				t.Fatalf("ResolveLink() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveLink() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDataset_Compact(t *testing.T) {
	t.Run("删除空表头列", func(t *testing.T) {
		ds := &Dataset{
			Header:  Record{"Name", "", "Level"},
			Records: []Record{{"Fireball", "X", "3"}},
		}
		got := ds.Compact()

		if !reflect.DeepEqual(got.Header, Record{"Name", "Level"}) {
			t.Errorf("表头错误: %v", got.Header)
		}
		if !reflect.DeepEqual(got.Records[0], Record{"Fireball", "3"}) {
			t.Errorf("记录错误: %v", got.Records[0])
		}
	})

	t.Run("空白表头也删除", func(t *testing.T) {
		ds := &Dataset{
			Header:  Record{" ", "A", "\t\n"},
			Records: []Record{{"x", "y", "z"}},
		}
		got := ds.Compact()
		if !reflect.DeepEqual(got.Header, Record{"A"}) || !reflect.DeepEqual(got.Records[0], Record{"y"}) {
			t.Errorf("压缩结果错误: %+v", got)
		}
	})

	t.Run("短记录补空", func(t *testing.T) {
		ds := &Dataset{
			Header:  Record{"A", "", "C", "D"},
			Records: []Record{{"1"}, {"1", "2", "3", "4", "5"}},
		}
		got := ds.Compact()
		if !reflect.DeepEqual(got.Records[0], Record{"1", "", ""}) {
			t.Errorf("短记录错误: %v", got.Records[0])
		}
		if !reflect.DeepEqual(got.Records[1], Record{"1", "3", "4"}) {
			t.Errorf("长记录错误: %v", got.Records[1])
		}
		if !got.Aligned() {
			t.Error("压缩后每条记录长度应等于表头长度")
		}
	})

	t.Run("幂等", func(t *testing.T) {
		ds := &Dataset{
			Header:  Record{"", "Nom", "", "Niveau", "Lien"},
			Records: []Record{{"a", "b", "c"}, {"", "e", "f", "g", "h", "i"}},
		}
		once := ds.Compact()
		twice := once.Compact()
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("两次压缩结果不同:\n%+v\n%+v", once, twice)
		}
	})

	t.Run("不修改原数据集", func(t *testing.T) {
		ds := &Dataset{Header: Record{"A", ""}, Records: []Record{{"1", "2"}}}
		_ = ds.Compact()
		if len(ds.Header) != 2 || len(ds.Records[0]) != 2 {
			t.Error("Compact 不应修改原数据集")
		}
	})
}

func TestDataset_Rows(t *testing.T) {
	var empty *Dataset
	if !empty.IsEmpty() || empty.Rows() != nil {
		t.Error("nil 数据集应为空")
	}

	ds := &Dataset{Header: Record{"A"}, Records: []Record{{"1"}, {"2"}}}
	rows := ds.Rows()
	if len(rows) != 3 || rows[0][0] != "A" || rows[2][0] != "2" {
		t.Errorf("Rows() 错误: %v", rows)
	}
}

func TestHasContent(t *testing.T) {
	if HasContent([]string{"", "", ""}) {
		t.Error("全空行不应有内容")
	}
	if HasContent(nil) {
		t.Error("nil 行不应有内容")
	}
	if !HasContent([]string{"", "x"}) {
		t.Error("含非空单元格的行应有内容")
	}
}

func TestDeriveClassFlags(t *testing.T) {
	lines := []string{
		"Boule de feu",
		"niveau 3 - évocation",
		"Ensorceleur, Magicien",
	}

	flags := DeriveClassFlags(DefaultSpellClasses, lines)
	want := []string{"Non", "Non", "Non", "Non", "Non", "Oui", "Non", "Oui"}
	if got := flags.Tokens("Oui", "Non"); !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
	if !flags.Has("Magicien") || flags.Has("Barde") {
		t.Error("Has() 结果错误")
	}

	t.Run("只扫描前10行", func(t *testing.T) {
		lines := make([]string, 0, 11)
		for i := 0; i < 10; i++ {
			lines = append(lines, "texte")
		}
		lines = append(lines, "Barde")
		if DeriveClassFlags(DefaultSpellClasses, lines).Any() {
			t.Error("第11行不应被扫描")
		}
	})

	t.Run("区分大小写", func(t *testing.T) {
		if DeriveClassFlags(DefaultSpellClasses, []string{"barde clerc"}).Any() {
			t.Error("小写不应匹配")
		}
	})

	t.Run("子串匹配", func(t *testing.T) {
		if !DeriveClassFlags([]string{"Clerc"}, []string{"Clercs"}).Has("Clerc") {
			t.Error("子串应匹配")
		}
	})

	t.Run("纯函数", func(t *testing.T) {
		a := DeriveClassFlags(DefaultSpellClasses, lines).Tokens("y", "n")
		b := DeriveClassFlags(DefaultSpellClasses, lines).Tokens("y", "n")
		if !reflect.DeepEqual(a, b) {
			t.Error("相同内容应得到相同标记")
		}
	})
}

func TestProfile_Validate(t *testing.T) {
	spells := SpellProfile()
	if err := spells.Validate(); err != nil {
		t.Errorf("法术预设应有效: %v", err)
	}
	items := ItemProfile()
	if err := items.Validate(); err != nil {
		t.Errorf("物品预设应有效: %v", err)
	}

	// 详情页基础URL为空时回退到列表页URL
	adhoc := SpellProfile()
	adhoc.DetailBaseURL = ""
	if err := adhoc.Validate(); err != nil {
		t.Errorf("空的详情页基础URL应有效: %v", err)
	}

	tests := []struct {
		name   string
		modify func(p *Profile)
	}{
		{"无效URL", func(p *Profile) { p.ListingURL = "ftp://x" }},
		{"无效详情页URL", func(p *Profile) { p.DetailBaseURL = "ftp://x" }},
		{"空表格id", func(p *Profile) { p.TableID = "" }},
		{"多字符分隔符", func(p *Profile) { p.Delimiter = ";;" }},
		{"引号分隔符", func(p *Profile) { p.Delimiter = `"` }},
		{"无效引号策略", func(p *Profile) { p.Quoting = "none" }},
		{"无效格式", func(p *Profile) { p.Format = "json" }},
		{"无效补充方式", func(p *Profile) { p.Enrichment = "all" }},
		{"空输出文件", func(p *Profile) { p.OutputFile = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SpellProfile()
			tt.modify(&p)
			if err := p.Validate(); err == nil {
				t.Error("期望验证失败")
			}
		})
	}
}

func TestCliHeaders_Parse(t *testing.T) {
	headers, err := CliHeaders{"  User-Agent  : MyBot/1.0 ", "X-Custom: a: b"}.Parse()
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if headers.Get("User-Agent") != "MyBot/1.0" {
		t.Errorf("User-Agent = %q", headers.Get("User-Agent"))
	}
	if headers.Get("X-Custom") != "a: b" {
		t.Errorf("值中的冒号应保留, 得到 %q", headers.Get("X-Custom"))
	}

	if _, err := (CliHeaders{"NoColon"}).Parse(); err == nil {
		t.Error("缺少冒号应报错")
	}
	if _, err := (CliHeaders{": value"}).Parse(); err == nil {
		t.Error("空名称应报错")
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ConfigError{FilePath: "headers.yaml", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("ConfigError 应支持 errors.Is")
	}
}

func TestRunReport_JSON(t *testing.T) {
	r := NewRunReport(ItemProfile())
	r.Stats.DataRows = 12
	r.Finish(nil)

	data, err := r.ToJSON()
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	var got RunReport
	if err := got.FromJSON(data); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	if got.RunID == "" || got.RunID != r.RunID {
		t.Errorf("RunID 错误: %q", got.RunID)
	}
	if got.Status != RunStatusCompleted || got.Stats.DataRows != 12 {
		t.Errorf("报告内容错误: %+v", got)
	}

	failed := NewRunReport(SpellProfile())
	failed.Finish(ErrEmptyDataset)
	if failed.Status != RunStatusFailed || failed.ErrorMessage == "" {
		t.Error("失败运行应记录错误信息")
	}
}
