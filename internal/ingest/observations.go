package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ironsheep/scorecard-mcp/internal/scorecard"
)

// observationSchema accepts either a bare array of observations or an object
// carrying them under "observations" with an optional "player".
const observationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "fraction": {"type": "number", "minimum": 0, "maximum": 1},
    "observation": {
      "type": "object",
      "required": ["text", "x", "y", "width", "height"],
      "properties": {
        "text": {"type": "string"},
        "x": {"$ref": "#/definitions/fraction"},
        "y": {"$ref": "#/definitions/fraction"},
        "width": {"$ref": "#/definitions/fraction"},
        "height": {"$ref": "#/definitions/fraction"},
        "confidence": {"$ref": "#/definitions/fraction"}
      }
    },
    "observations": {
      "type": "array",
      "items": {"$ref": "#/definitions/observation"}
    }
  },
  "oneOf": [
    {"$ref": "#/definitions/observations"},
    {
      "type": "object",
      "required": ["observations"],
      "properties": {
        "player": {"type": "string"},
        "observations": {"$ref": "#/definitions/observations"}
      }
    }
  ]
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("observations.json", strings.NewReader(observationSchema)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("observations.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Document is a decoded observations file.
type Document struct {
	// Player is set only when the file names one.
	Player       string                      `json:"player,omitempty"`
	Observations []scorecard.TextObservation `json:"observations"`
}

// Decode validates data against the observation schema and decodes it.
func Decode(data []byte) (*Document, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal observations: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return nil, fmt.Errorf("observations do not match schema: %w", err)
	}

	var doc Document
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &doc.Observations)
	} else {
		err = json.Unmarshal(trimmed, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode observations: %w", err)
	}
	if doc.Observations == nil {
		doc.Observations = []scorecard.TextObservation{}
	}
	return &doc, nil
}

// LoadFile reads and decodes an observations file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read observations: %w", err)
	}
	return Decode(data)
}
