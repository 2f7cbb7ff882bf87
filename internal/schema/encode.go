package schema

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding of a document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a query or flag value onto a Format. Empty means JSON.
func ParseFormat(v string) (Format, error) {
	switch v {
	case "", "json", "openapi-json":
		return FormatJSON, nil
	case "yaml", "yml", "openapi":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported schema format %q", v)
	}
}

// ContentType returns the HTTP content type for f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/vnd.oai.openapi; charset=utf-8"
	}
	return "application/vnd.oai.openapi+json; charset=utf-8"
}

// Encode renders doc in the requested format.
func Encode(doc *openapi3.T, f Format) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	if f == FormatJSON {
		return data, nil
	}

	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return out, nil
}
