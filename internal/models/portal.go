package models

import (
	"time"

	"github.com/google/uuid"
)

// PortalSelectors are the CSS selectors used to parse a portal's search
// result page. Stored as JSONB on the portal row.
type PortalSelectors struct {
	Result     string `json:"result"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Date       string `json:"date"`
	Department string `json:"department"`
}

// PolicyPortal is a government website exposing a search endpoint for
// policy documents. Portals with a ParentRegion are municipal; portals
// without one act as the provincial fallback tier.
type PolicyPortal struct {
	ID           uuid.UUID       `db:"id"`
	Region       string          `db:"region"`
	Name         string          `db:"name"`
	SearchURL    string          `db:"search_url"` // %s placeholder for the query
	ParentRegion string          `db:"parent_region"`
	Selectors    PortalSelectors `db:"selectors"`
	Enabled      bool            `db:"enabled"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}
