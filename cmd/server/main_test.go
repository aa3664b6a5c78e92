package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))

	missing := filepath.Join(t.TempDir(), "missing.json")
	cmd.SetArgs(append([]string{"--log-level=panic", "--model=" + missing, "--vectorizer=" + missing}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestDetectCommandFallsBackToScript(t *testing.T) {
	out, err := runCLI(t, "", "detect", "--json", "mingalarbar", "မင်္ဂလာပါ")
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)

	assert.Equal(t, "en", rows[0]["language"])
	assert.Equal(t, "script", rows[0]["source"])
	assert.Nil(t, rows[0]["confidence"])
	assert.Equal(t, "my", rows[1]["language"])
}

func TestDetectCommandReadsStdin(t *testing.T) {
	out, err := runCLI(t, "hello\n\nworld\n", "detect")
	require.NoError(t, err)

	assert.Contains(t, out, "Language")
	assert.NotContains(t, out, "LANGUAGE")
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "world")
}

func TestDetectCommandRequiresInput(t *testing.T) {
	_, err := runCLI(t, "", "detect")
	assert.Error(t, err)
}

func TestNormalizeCommandLeavesAsciiAlone(t *testing.T) {
	out, err := runCLI(t, "", "normalize", "plain text")
	require.NoError(t, err)
	assert.Equal(t, "plain text\n", out)
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Input", "Confidence"},
		[][]string{{"a", "0.500"}, {"b"}},
		[]columnAlignment{alignLeft, alignRight},
	)

	assert.Contains(t, out, "Input")
	assert.Contains(t, out, "Confidence")
	assert.NotContains(t, out, "INPUT")
	assert.Contains(t, out, "0.500")
	assert.Equal(t, "", renderTable(nil, nil, nil))
}

func TestRenderTableWrapsLongCells(t *testing.T) {
	long := strings.Repeat("x", maxColumnWidth*2)

	out := renderTable([]string{"Input"}, [][]string{{long}}, nil)

	assert.NotContains(t, out, long)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), maxColumnWidth+4)
	}
}

func TestFormatConfidence(t *testing.T) {
	c := 1.23456
	assert.Equal(t, "1.235", formatConfidence(&c))
	assert.Equal(t, "-", formatConfidence(nil))
}
