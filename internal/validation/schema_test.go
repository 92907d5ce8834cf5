package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const validCatalog = `
version: 1
entries:
  - id: sd15-base
    family: sd15
    min_vram_gb: 4
    min_ram_gb: 8
    size_gb: 4.2
    capabilities:
      photorealism: 0.6
    modality: text-to-image
    ecosystem_maturity: 0.95
`

func TestValidateCatalogBytes_Valid(t *testing.T) {
	require.Empty(t, ValidateCatalogBytes([]byte(validCatalog)))
}

func TestValidateCatalogBytes_Violations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantHit string
	}{
		{
			name:    "missing version",
			mutate:  func(s string) string { return strings.Replace(s, "version: 1\n", "", 1) },
			wantHit: "version",
		},
		{
			name:    "missing family",
			mutate:  func(s string) string { return strings.Replace(s, "    family: sd15\n", "", 1) },
			wantHit: "family",
		},
		{
			name:    "unknown modality",
			mutate:  func(s string) string { return strings.Replace(s, "text-to-image", "3d-render", 1) },
			wantHit: "modality",
		},
		{
			name:    "capability out of range",
			mutate:  func(s string) string { return strings.Replace(s, "photorealism: 0.6", "photorealism: 1.6", 1) },
			wantHit: "photorealism",
		},
		{
			name:    "uppercase id",
			mutate:  func(s string) string { return strings.Replace(s, "id: sd15-base", "id: SD15-Base", 1) },
			wantHit: "id",
		},
		{
			name:    "zero size",
			mutate:  func(s string) string { return strings.Replace(s, "size_gb: 4.2", "size_gb: 0", 1) },
			wantHit: "size_gb",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateCatalogBytes([]byte(tt.mutate(validCatalog)))
			require.NotEmpty(t, errs)
			joined := strings.Join(errs, "\n")
			if !strings.Contains(joined, tt.wantHit) {
				t.Errorf("expected violation mentioning %q, got:\n%s", tt.wantHit, joined)
			}
		})
	}
}

func TestValidateCatalogBytes_BadYAML(t *testing.T) {
	errs := ValidateCatalogBytes([]byte("version: [unclosed"))
	require.Len(t, errs, 1)
	require.Contains(t, errs[0], "YAML parse error")
}

func TestValidateCatalogBytes_EmptyEntries(t *testing.T) {
	errs := ValidateCatalogBytes([]byte("version: 1\nentries: []\n"))
	require.NotEmpty(t, errs)
}
