package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "sqlite:\n  path: " + filepath.Join(dir, "shop.db") + "\nchatbot:\n  responsePicker: round_robin\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedAskAndList(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 13 products and 15 FAQs")

	out, err = run(t, "--config", cfg, "--json", "ask", "busco", "una", "camiseta", "roja")
	require.NoError(t, err)

	var resp struct {
		Response          string  `json:"response"`
		SessionID         string  `json:"session_id"`
		SuggestedProducts []int64 `json:"suggested_products"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.SuggestedProducts)

	out, err = run(t, "--config", cfg, "ask", "--session", resp.SessionID, "el primero")
	require.NoError(t, err)
	assert.Contains(t, out, "session: "+resp.SessionID)

	out, err = run(t, "--config", cfg, "faqs")
	require.NoError(t, err)
	assert.Contains(t, out, "¿Realizan envíos internacionales?")
}

func TestSeed_IsIdempotent(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "--config", cfg, "seed")
	require.NoError(t, err)
	_, err = run(t, "--config", cfg, "seed")
	require.NoError(t, err)

	out, err := run(t, "--config", cfg, "--json", "faqs")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 15)
}

func TestSeed_MissingFile(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "--config", cfg, "seed", "--file", "/nonexistent/catalog.yaml")
	assert.Error(t, err)
}

func TestAsk_RequiresMessage(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "--config", cfg, "ask")
	assert.Error(t, err)
}
