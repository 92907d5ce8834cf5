package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/modelscout/modelscout/internal/engine"
)

const testCatalog = `
version: 1
substitutions:
  flux: sd15
entries:
  - id: flux-dev
    family: flux
    display_name: FLUX.1 Dev
    min_vram_gb: 24
    min_ram_gb: 32
    size_gb: 23.8
    capabilities:
      photorealism: 0.95
      prompt_adherence: 0.92
      base_throughput: 0.3
    style_tags: [photorealistic, cinematic]
    modality: text-to-image
    ecosystem_maturity: 0.8
    download:
      url: https://example.com/flux-dev.safetensors
      sha256: aaa111
  - id: sdxl-base
    family: sdxl
    display_name: SDXL Base
    min_vram_gb: 8
    min_ram_gb: 16
    size_gb: 6.9
    capabilities:
      photorealism: 0.8
      prompt_adherence: 0.75
      base_throughput: 0.5
    style_tags: [photorealistic]
    modality: text-to-image
    ecosystem_maturity: 0.95
    download:
      url: https://example.com/sdxl-base.safetensors
      sha256: bbb222
  - id: sd15-base
    family: sd15
    min_vram_gb: 4
    min_ram_gb: 8
    size_gb: 4.2
    capabilities:
      photorealism: 0.6
      prompt_adherence: 0.6
      base_throughput: 0.7
    modality: text-to-image
    ecosystem_maturity: 0.97
    download:
      url: https://example.com/sd15-base.safetensors
`

const testHardware = `
effective_vram_gb: 10
ram_gb: 32
free_storage_gb: 200
platform: linux
gpu_vendor: nvidia
`

func writeTestInputs(t *testing.T) (catalogPath, hardwarePath string) {
	t.Helper()
	dir := t.TempDir()
	catalogPath = filepath.Join(dir, "catalog.yaml")
	hardwarePath = filepath.Join(dir, "hardware.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0o644))
	require.NoError(t, os.WriteFile(hardwarePath, []byte(testHardware), 0o644))
	return catalogPath, hardwarePath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCommand()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRecommendCommand_Table(t *testing.T) {
	catalogPath, hardwarePath := writeTestInputs(t)

	out, err := runCommand(t, "recommend",
		"--catalog", catalogPath,
		"--hardware", hardwarePath,
		"--preset", "photorealism")
	require.NoError(t, err)

	require.Contains(t, out, "RECOMMENDATIONS")
	// flux-dev exceeds 10GB VRAM with no reduced-precision variant; the
	// two smaller models rank.
	require.Contains(t, out, "SDXL Base")
	require.Contains(t, out, "sd15-base")
	require.NotContains(t, out, "FLUX.1 Dev")
}

func TestRecommendCommand_JSON(t *testing.T) {
	catalogPath, hardwarePath := writeTestInputs(t)

	out, err := runCommand(t, "recommend",
		"--catalog", catalogPath,
		"--hardware", hardwarePath,
		"--preset", "photorealism",
		"--format", "json")
	require.NoError(t, err)

	var result engine.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Ranked, 2)
	require.Len(t, result.Rejections, 1)
	require.Equal(t, "flux-dev", result.Rejections[0].CandidateID)
	require.NotEmpty(t, result.Reasoning)
}

func TestRecommendCommand_TopLimitsOutput(t *testing.T) {
	catalogPath, hardwarePath := writeTestInputs(t)

	out, err := runCommand(t, "recommend",
		"--catalog", catalogPath,
		"--hardware", hardwarePath,
		"--format", "json",
		"--top", "1")
	require.NoError(t, err)

	var result engine.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Ranked, 1)
}

func TestRecommendCommand_ProjectConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.yaml"), []byte(testCatalog), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "machine.yaml"), []byte(testHardware), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".modelscout.yaml"), []byte(`
paths:
  catalog: models.yaml
  hardware: machine.yaml
output:
  top: 1
`), 0o644))
	t.Chdir(dir)

	// No --catalog/--hardware/--top: everything comes from .modelscout.yaml.
	out, err := runCommand(t, "recommend", "--format", "json")
	require.NoError(t, err)

	var result engine.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Ranked, 1)
}

func TestRecommendCommand_SetOverrides(t *testing.T) {
	catalogPath, hardwarePath := writeTestInputs(t)

	_, err := runCommand(t, "recommend",
		"--catalog", catalogPath,
		"--hardware", hardwarePath,
		"--set", "quality=0.9",
		"--set", "speed=0.1")
	require.NoError(t, err)

	_, err = runCommand(t, "recommend",
		"--catalog", catalogPath,
		"--hardware", hardwarePath,
		"--set", "qualty=0.9")
	require.Error(t, err, "typo'd factor name must fail")

	_, err = runCommand(t, "recommend",
		"--catalog", catalogPath,
		"--hardware", hardwarePath,
		"--set", "quality")
	require.ErrorContains(t, err, "expected factor=value")
}

func TestRecommendCommand_WritesManifest(t *testing.T) {
	catalogPath, hardwarePath := writeTestInputs(t)
	manifestPath := filepath.Join(t.TempDir(), "install.yaml")

	out, err := runCommand(t, "recommend",
		"--catalog", catalogPath,
		"--hardware", hardwarePath,
		"--manifest", manifestPath)
	require.NoError(t, err)
	require.Contains(t, out, "Install manifest written")

	data, err := os.ReadFile(manifestPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "candidate_id:")
}

func TestRecommendCommand_NoViableExitPath(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	hardwarePath := filepath.Join(dir, "hardware.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0o644))
	// 2GB of VRAM: every candidate is out of reach, even with relaxation.
	require.NoError(t, os.WriteFile(hardwarePath, []byte(`
effective_vram_gb: 2
ram_gb: 4
free_storage_gb: 10
platform: linux
gpu_vendor: none
`), 0o644))

	out, err := runCommand(t, "recommend",
		"--catalog", catalogPath,
		"--hardware", hardwarePath)
	require.Error(t, err)

	var noViableErr *NoViableError
	require.True(t, errors.As(err, &noViableErr), "expected NoViableError, got %T", err)
	require.Contains(t, out, "cloud")
}

func TestRecommendCommand_InvalidInputs(t *testing.T) {
	catalogPath, hardwarePath := writeTestInputs(t)

	_, err := runCommand(t, "recommend", "--catalog", catalogPath, "--hardware", hardwarePath, "--format", "xml")
	require.ErrorContains(t, err, "invalid format")

	_, err = runCommand(t, "recommend", "--catalog", catalogPath, "--hardware", hardwarePath, "--top", "0")
	require.ErrorContains(t, err, "--top")

	_, err = runCommand(t, "recommend", "--catalog", catalogPath, "--hardware", hardwarePath, "--preset", "nope")
	require.ErrorContains(t, err, "unknown preset")

	_, err = runCommand(t, "recommend", "--catalog", "missing.yaml", "--hardware", hardwarePath)
	require.Error(t, err)
}

func TestParseSetFlags(t *testing.T) {
	got, err := parseSetFlags([]string{"quality=0.9", "speed = 0.1"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"quality": "0.9", "speed": "0.1"}, got)

	_, err = parseSetFlags([]string{"=0.9"})
	require.Error(t, err)
}
