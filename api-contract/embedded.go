package apicontract

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yml
var specBytes []byte

// GetSpecBytes returns the embedded OpenAPI specification as a byte slice.
func GetSpecBytes() []byte {
	return specBytes
}

// Load parses and validates the embedded specification.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(specBytes)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi spec: %w", err)
	}

	return doc, nil
}
