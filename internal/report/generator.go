// Package report renders engine results for the CLI and files.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"fjacquet/finance-advisor/internal/logging"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Renderer serializes reports in the supported formats.
type Renderer struct {
	logger logging.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(logger logging.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Renderer{logger: logger}
}

// Render returns v encoded as format (json or yaml).
func (r *Renderer) Render(v interface{}, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return r.renderJSON(v)
	case FormatYAML:
		return r.renderYAML(v)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// Write renders v to w followed by a newline.
func (r *Renderer) Write(w io.Writer, v interface{}, format string) error {
	data, err := r.Render(v, format)
	if err != nil {
		return err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (r *Renderer) renderJSON(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		r.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return data, nil
}

func (r *Renderer) renderYAML(v interface{}) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		r.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return data, nil
}
