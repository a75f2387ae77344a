// Package cmd implements the contactbridge CLI commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/contactbridge"
	"github.com/agentstation/contactbridge/internal/store/gormstore"
)

// App is the dependency surface the commands need from the application.
type App interface {
	Bridge() (contactbridge.Bridge, error)
	RunLog() (*gormstore.LogSink, error)
	Format() string
}

// render writes v in the requested format. The zero format is plain text,
// produced by the text function.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch format {
	case "", "text":
		return text(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
