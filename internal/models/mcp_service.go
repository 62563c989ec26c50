package models

import (
	"time"

	"github.com/google/uuid"
)

type MCPTransport string

const (
	MCPTransportHTTP  MCPTransport = "http"
	MCPTransportSSE   MCPTransport = "sse"
	MCPTransportStdio MCPTransport = "stdio"
)

// MCPService is a registered callable tool service. Registration is a
// convention: the platform stores the endpoint and probes it for health,
// it does not speak the tool protocol itself.
type MCPService struct {
	ID          uuid.UUID    `db:"id"`
	Name        string       `db:"name"`
	Endpoint    string       `db:"endpoint"`
	Transport   MCPTransport `db:"transport"`
	Description string       `db:"description"`
	Enabled     bool         `db:"enabled"`
	LastPingAt  *time.Time   `db:"last_ping_at"`
	LastStatus  string       `db:"last_status"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}
