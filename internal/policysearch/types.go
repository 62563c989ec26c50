package policysearch

import "fmt"

type Strategy string

const (
	StrategyAuto       Strategy = "auto"
	StrategyLocal      Strategy = "local"
	StrategyProvincial Strategy = "provincial"
	StrategyEngine     Strategy = "engine"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyLocal, StrategyProvincial, StrategyEngine:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown search strategy: %s", s)
}

const (
	defaultLimit = 10
	maxLimit     = 50
)

// PolicyRecord is one parsed search hit from a portal or engine page.
type PolicyRecord struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	PublishDate string  `json:"publish_date,omitempty"`
	PolicyType  string  `json:"policy_type,omitempty"`
	Department  string  `json:"department,omitempty"`
	Relevance   float64 `json:"relevance"`
}

type SearchRequest struct {
	Query    string
	Region   string
	Strategy Strategy
	Limit    int
}

// SearchResult always carries a summary, even when Records is empty.
type SearchResult struct {
	Records []PolicyRecord `json:"records"`
	Tier    string         `json:"tier,omitempty"`
	Quality float64        `json:"quality"`
	Summary string         `json:"summary"`
	Cached  bool           `json:"cached,omitempty"`
}
