package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testSchema = `
naming:
  prefix: envoke_test
  case: SCREAMING_SNAKE_CASE
fields:
  - {name: name, type: string, env: true}
  - {name: port, type: int, env: true, default: "8080"}
  - {name: timeout, type: duration, env: true, default: 30s}
  - {name: region, type: "?string", env: true}
  - {name: tier, type: "?string", env: true}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", testSchema)

	t.Run("Environment", func(t *testing.T) {
		t.Setenv("ENVOKE_TEST_NAME", "svc")

		code, stdout, stderr := runCLI(t, "--schema", schema)
		require.Equal(t, 0, code, stderr)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, map[string]any{
			"name":    "svc",
			"port":    float64(8080),
			"timeout": "30s",
			"region":  nil,
			"tier":    nil,
		}, got)
	})

	t.Run("Layers", func(t *testing.T) {
		t.Setenv("ENVOKE_TEST_NAME", "from-env")
		config := writeFile(t, dir, "config.yaml", "envoke_test:\n  region: eu\n  name: from-file\n")
		dotenv := writeFile(t, dir, ".env", "ENVOKE_TEST_REGION=us\nENVOKE_TEST_TIER=gold\nENVOKE_TEST_PORT=9090\n")

		code, stdout, stderr := runCLI(t, "--schema", schema, "--file", config, "--dotenv", dotenv, "--format", "yaml")
		require.Equal(t, 0, code, stderr)

		var got map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
		assert.Equal(t, "from-env", got["name"])
		assert.Equal(t, "eu", got["region"])
		assert.Equal(t, "gold", got["tier"])
		assert.Equal(t, 9090, got["port"])
	})

	t.Run("Expand", func(t *testing.T) {
		t.Setenv("ENVOKE_TEST_HOST", "db")
		t.Setenv("ENVOKE_TEST_NAME", "svc-${ENVOKE_TEST_HOST}")

		code, stdout, stderr := runCLI(t, "--schema", schema, "--expand", "--snapshot")
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, `"name": "svc-db"`)
	})

	t.Run("Resolution errors", func(t *testing.T) {
		t.Setenv("ENVOKE_TEST_PORT", "eighty")

		code, stdout, stderr := runCLI(t, "--schema", schema, "--snapshot")
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "envoke: name: none of the variables (`ENVOKE_TEST_NAME`) was found\n")
		assert.Contains(t, stderr, "envoke: port: parse \"eighty\" from `ENVOKE_TEST_PORT` as int")
	})

	t.Run("Schema errors", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.yaml", "fields:\n  - {name: a, type: int}\n")
		code, _, stderr := runCLI(t, "--schema", bad)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "field has no source")
	})

	t.Run("Missing config file", func(t *testing.T) {
		code, _, stderr := runCLI(t, "--schema", schema, "--file", filepath.Join(dir, "missing.toml"))
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "envoke: ")
	})

	t.Run("Bad flags", func(t *testing.T) {
		code, _, stderr := runCLI(t, "--format", "xml")
		assert.Equal(t, 2, code)
		assert.NotEmpty(t, stderr)
	})

	t.Run("Bad log level", func(t *testing.T) {
		code, _, stderr := runCLI(t, "--schema", schema, "--log-level", "loud")
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, "parse log level")
	})
}
