package api

import (
	"github.com/ssargent/sharecart/pkg/cart"
	"github.com/ssargent/sharecart/pkg/journal"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// FieldUpdate sets one cart field from its text form
type FieldUpdate struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CartResponse describes the cart file after a read or write
type CartResponse struct {
	Path       string      `json:"path"`
	Record     cart.Record `json:"record"`
	SnapshotID string      `json:"snapshot_id,omitempty"` // snapshot of the previous contents
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string
}

// CartStore defines the cart file operations the server needs
type CartStore interface {
	Path() string
	Exists() bool
	Load() (cart.Record, error)
	Save(cart.Record) error
}

// Journal defines the snapshot history operations the server needs
type Journal interface {
	Append(cart.Record) (journal.Entry, error)
	Get(id string) (journal.Entry, error)
	List(limit int) ([]journal.Entry, error)
}
