package policysearch

import (
	"strings"
)

// Marker terms used by Chinese government portals in policy document titles.
var policyTypeMarkers = []string{"办法", "通知", "规定", "意见", "公告", "条例", "细则"}

// Issuing-body suffixes, longest first so 委员会 wins over 部 etc.
var departmentSuffixes = []string{"委员会", "办公室", "厅", "局", "部"}

// classifyPolicyType returns the first recognized marker in the title,
// or empty when the title carries none.
func classifyPolicyType(title string) string {
	for _, m := range policyTypeMarkers {
		if strings.Contains(title, m) {
			return m
		}
	}
	return ""
}

func hasDepartmentSuffix(department string) bool {
	department = strings.TrimSpace(department)
	for _, s := range departmentSuffixes {
		if strings.HasSuffix(department, s) {
			return true
		}
	}
	return false
}

// queryTerms splits the query on whitespace. Single-token CJK queries are
// matched as one substring, which is how portal search boxes treat them.
func queryTerms(query string) []string {
	return strings.Fields(strings.TrimSpace(query))
}

// scoreRecord assigns a relevance in [0,1]: the fraction of query terms
// present in the title, weighted up when the title names a policy type and
// the department looks like a real issuing body.
func scoreRecord(rec *PolicyRecord, terms []string) float64 {
	if rec.PolicyType == "" {
		rec.PolicyType = classifyPolicyType(rec.Title)
	}

	var score float64
	if len(terms) > 0 {
		title := strings.ToLower(rec.Title)
		matched := 0
		for _, term := range terms {
			if strings.Contains(title, strings.ToLower(term)) {
				matched++
			}
		}
		score = float64(matched) / float64(len(terms))
	}

	if rec.PolicyType != "" {
		score += 0.2
	}
	if hasDepartmentSuffix(rec.Department) {
		score += 0.1
	}
	if score > 1 {
		score = 1
	}
	return score
}

func scoreRecords(records []PolicyRecord, query string) {
	terms := queryTerms(query)
	for i := range records {
		records[i].Relevance = scoreRecord(&records[i], terms)
	}
}

// tierQuality is the mean relevance across the tier's records, already
// normalized to [0,1]. An empty tier scores zero.
func tierQuality(records []PolicyRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.Relevance
	}
	return sum / float64(len(records))
}

// lacksSubstance is the page-complexity heuristic: a parse with empty
// titles or more than half the records missing dates means the page needs
// the heavier crawler backend.
func lacksSubstance(records []PolicyRecord) bool {
	if len(records) == 0 {
		return true
	}
	missingDates := 0
	for _, r := range records {
		if strings.TrimSpace(r.Title) == "" {
			return true
		}
		if strings.TrimSpace(r.PublishDate) == "" {
			missingDates++
		}
	}
	return missingDates*2 > len(records)
}
