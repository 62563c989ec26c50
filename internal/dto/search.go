package dto

type PolicySearchRequest struct {
	Query    string `json:"query" validate:"required"`
	Region   string `json:"region"`
	Strategy string `json:"strategy"`
	Limit    int    `json:"limit"`
}

type PolicyRecordResponse struct {
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	PublishDate string  `json:"publish_date,omitempty"`
	PolicyType  string  `json:"policy_type,omitempty"`
	Department  string  `json:"department,omitempty"`
	Relevance   float64 `json:"relevance"`
}

type PolicySearchResponse struct {
	Records []PolicyRecordResponse `json:"records"`
	Tier    string                 `json:"tier,omitempty"`
	Quality float64                `json:"quality"`
	Summary string                 `json:"summary"`
	Cached  bool                   `json:"cached,omitempty"`
}
