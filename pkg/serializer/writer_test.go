package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type sample struct {
	RunID string            `json:"run_id" yaml:"run_id"`
	Nodes map[string]int    `json:"nodes" yaml:"nodes"`
	Tags  []string          `json:"tags" yaml:"tags"`
	Meta  map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

func testSample() sample {
	return sample{
		RunID: "run-1",
		Nodes: map[string]int{"mon0": 3},
		Tags:  []string{"a", "b"},
	}
}

func TestSerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatJSON, &buf)

	require.NoError(t, w.Serialize(context.Background(), testSample()))

	var got sample
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, testSample(), got)
	assert.Contains(t, buf.String(), "  ", "output is indented")
}

func TestSerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatYAML, &buf)

	require.NoError(t, w.Serialize(context.Background(), testSample()))

	var got sample
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, testSample(), got)
}

func TestSerializeTable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)

	require.NoError(t, w.Serialize(context.Background(), testSample()))

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "RunID")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Nodes.mon0")
	assert.Contains(t, out, "Tags.[0]")
}

func TestSerializeTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(FormatTable, &buf)

	require.NoError(t, w.Serialize(context.Background(), struct{}{}))
	assert.Equal(t, "<empty>\n", buf.String())
}

func TestNewWriterUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("csv"), &buf)

	require.NoError(t, w.Serialize(context.Background(), testSample()))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "{"),
		"unknown formats fall back to JSON")
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	w := NewFileWriterOrStdout(FormatJSON, path)

	require.NoError(t, w.Serialize(context.Background(), testSample()))
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var got sample
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, testSample(), got)
}

func TestFormatIsUnknown(t *testing.T) {
	assert.False(t, FormatJSON.IsUnknown())
	assert.False(t, FormatYAML.IsUnknown())
	assert.False(t, FormatTable.IsUnknown())
	assert.True(t, Format("xml").IsUnknown())
	assert.Len(t, SupportedFormats(), 3)
}
