// Package schemas embeds the JSON Schemas that modelscout validates its data
// files against.
package schemas

import _ "embed"

// CatalogSchemaJSON is the JSON Schema for catalog YAML files.
//
//go:embed catalog.schema.json
var CatalogSchemaJSON string
