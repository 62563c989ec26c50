package policysearch

import "testing"

func TestScoreRecord(t *testing.T) {
	terms := queryTerms("养老 补贴")

	tests := []struct {
		name string
		rec  PolicyRecord
		want float64
	}{
		{
			name: "full match with marker and department",
			rec:  PolicyRecord{Title: "关于养老服务补贴发放办法", Department: "民政局"},
			want: 1.0,
		},
		{
			name: "half match no marker",
			rec:  PolicyRecord{Title: "养老机构名单"},
			want: 0.5,
		},
		{
			name: "no match",
			rec:  PolicyRecord{Title: "招聘公示"},
			want: 0,
		},
		{
			name: "marker only",
			rec:  PolicyRecord{Title: "关于调整收费标准的通知"},
			want: 0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			got := scoreRecord(&rec, terms)
			if got != tt.want {
				t.Errorf("scoreRecord(%q) = %v, want %v", tt.rec.Title, got, tt.want)
			}
		})
	}
}

func TestScoreRecord_ClassifiesPolicyType(t *testing.T) {
	rec := PolicyRecord{Title: "高新技术企业认定管理办法"}
	scoreRecord(&rec, nil)
	if rec.PolicyType != "办法" {
		t.Errorf("policy type = %q, want 办法", rec.PolicyType)
	}
}

func TestTierQuality(t *testing.T) {
	if q := tierQuality(nil); q != 0 {
		t.Errorf("empty tier quality = %v, want 0", q)
	}

	records := []PolicyRecord{{Relevance: 0.8}, {Relevance: 0.4}}
	if q := tierQuality(records); q != 0.6 {
		t.Errorf("tier quality = %v, want 0.6", q)
	}
}

func TestLacksSubstance(t *testing.T) {
	tests := []struct {
		name    string
		records []PolicyRecord
		want    bool
	}{
		{"empty", nil, true},
		{"empty title", []PolicyRecord{{Title: "", PublishDate: "2024-01-01"}}, true},
		{
			"most dates missing",
			[]PolicyRecord{
				{Title: "a", PublishDate: "2024-01-01"},
				{Title: "b"},
				{Title: "c"},
			},
			true,
		},
		{
			"substantial",
			[]PolicyRecord{
				{Title: "a", PublishDate: "2024-01-01"},
				{Title: "b", PublishDate: "2024-01-02"},
				{Title: "c"},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lacksSubstance(tt.records); got != tt.want {
				t.Errorf("lacksSubstance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasDepartmentSuffix(t *testing.T) {
	for dept, want := range map[string]bool{
		"省人力资源和社会保障厅": true,
		"市发展和改革委员会":   true,
		"市政府办公室":      true,
		"某某公司":        false,
		"":            false,
	} {
		if got := hasDepartmentSuffix(dept); got != want {
			t.Errorf("hasDepartmentSuffix(%q) = %v, want %v", dept, got, want)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy(""); err != nil || s != StrategyAuto {
		t.Errorf("empty strategy = %v, %v; want auto", s, err)
	}
	if _, err := ParseStrategy("fastest"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
