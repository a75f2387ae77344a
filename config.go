package contactbridge

import (
	"time"

	"github.com/agentstation/contactbridge/pkg/contacts"
	"github.com/agentstation/contactbridge/pkg/errors"
)

// Default configuration values.
const (
	// DefaultLockTimeout bounds the wait for the shared sync lock.
	DefaultLockTimeout = 30 * time.Second

	// DefaultLogRetention is how many run-log rows are kept.
	DefaultLogRetention = 500

	// DefaultErrorLimit caps the error summary stored per run-log row.
	DefaultErrorLimit = 1000
)

// Config is the immutable configuration of a bridge. All components read
// from it; there is no process-wide mutable state.
type Config struct {
	// Label names the directory label marking records under sync.
	Label string `yaml:"label"`

	// Parties are the two configured party identifiers.
	Parties [2]string `yaml:"parties"`

	// Party is the identity this bridge runs as. Must be one of Parties.
	Party string `yaml:"party"`

	// LockTimeout bounds lock acquisition. Zero selects the default.
	LockTimeout time.Duration `yaml:"lock_timeout"`

	// LogRetention is the number of run-log rows to keep. Zero selects
	// the default; negative disables trimming.
	LogRetention int `yaml:"log_retention"`

	// ErrorLimit truncates the per-run error summary. Zero selects the
	// default.
	ErrorLimit int `yaml:"error_limit"`

	// Groups is the field list to sync. Empty means every group.
	Groups []contacts.Group `yaml:"groups"`
}

// Validate checks the configuration. The running party must be one of the
// two configured identities; this aborts before any buffer access.
func (c *Config) Validate() error {
	if c.Label == "" {
		return errors.NewConfigError("label", "sync label is required")
	}
	if c.Parties[0] == "" || c.Parties[1] == "" {
		return errors.NewConfigError("parties", "both party identifiers are required")
	}
	if c.Parties[0] == c.Parties[1] {
		return errors.NewConfigError("parties", "party identifiers must differ")
	}
	if c.Party != c.Parties[0] && c.Party != c.Parties[1] {
		return errors.NewConfigError("party", "running party is not one of the configured identities")
	}
	return nil
}

// withDefaults returns a copy with zero values replaced by defaults.
func (c Config) withDefaults() Config {
	if c.LockTimeout == 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	if c.LogRetention == 0 {
		c.LogRetention = DefaultLogRetention
	}
	if c.ErrorLimit == 0 {
		c.ErrorLimit = DefaultErrorLimit
	}
	if len(c.Groups) == 0 {
		c.Groups = contacts.AllGroups()
	}
	return c
}

// Other returns the identifier of the party this bridge is not running as.
func (c *Config) Other() string {
	if c.Party == c.Parties[0] {
		return c.Parties[1]
	}
	return c.Parties[0]
}
