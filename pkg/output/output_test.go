package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newTestPrinter(format Format) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Printer{Out: &out, Err: &errOut, Format: format}, &out, &errOut
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"", FormatTable, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrinter_StatusLines(t *testing.T) {
	p, out, errOut := newTestPrinter(FormatTable)

	p.Success("Connected to %s", "http://localhost:3000/events")
	p.Info("Processing %d of %d endpoints", 2, 3)
	p.Warn("Stream paused")
	p.Error("Failed to connect on port %d", 3000)

	assert.Contains(t, out.String(), "✓ Connected to http://localhost:3000/events")
	assert.Contains(t, out.String(), "Processing 2 of 3 endpoints")
	assert.Contains(t, out.String(), "⚠ Stream paused")
	assert.NotContains(t, out.String(), "✗")
	assert.Contains(t, errOut.String(), "✗ Failed to connect on port 3000")
}

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestPrinter_PrintJSON(t *testing.T) {
	p, out, _ := newTestPrinter(FormatJSON)

	require.NoError(t, p.Print(sample{Name: "overview", Count: 42}, func() *Table {
		t.Fatal("table must not be built for json output")
		return nil
	}))

	var parsed sample
	require.NoError(t, json.Unmarshal(out.Bytes(), &parsed))
	assert.Equal(t, sample{Name: "overview", Count: 42}, parsed)
	assert.Contains(t, out.String(), "  \"name\":")
}

func TestPrinter_PrintYAMLUsesJSONNames(t *testing.T) {
	p, out, _ := newTestPrinter(FormatYAML)

	require.NoError(t, p.Print([]sample{{Name: "a", Count: 1}}, nil))

	var parsed []map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &parsed))
	require.Len(t, parsed, 1)
	assert.Equal(t, "a", parsed[0]["name"])
	assert.Equal(t, 1, parsed[0]["count"])
}

func TestPrinter_PrintTable(t *testing.T) {
	p, out, _ := newTestPrinter(FormatTable)

	require.NoError(t, p.Print(nil, func() *Table {
		table := NewTable("Title", "Value")
		table.AddRow("SLA Compliance", "97.0%")
		return table
	}))

	assert.Contains(t, out.String(), "SLA Compliance")
	assert.Contains(t, out.String(), "97.0%")
}

func TestPrinter_PrintTableWithoutBuilderFallsBackToJSON(t *testing.T) {
	p, out, _ := newTestPrinter(FormatTable)

	require.NoError(t, p.Print(sample{Name: "x"}, nil))

	assert.True(t, json.Valid(out.Bytes()))
}

func TestTable_Render_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewTable("Name", "Status").Render(&buf)

	assert.Contains(t, buf.String(), "Name")
	assert.Contains(t, buf.String(), "Status")
	assert.Contains(t, buf.String(), "----")
}

func TestTable_Render_ColumnAlignment(t *testing.T) {
	table := NewTable("Short", "VeryLongHeader")
	table.AddRow("A", "B")
	table.AddRow("LongValue", "C")

	var buf bytes.Buffer
	table.Render(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, len("LongValue  ")+len("VeryLongHeader  "), len(lines[3]))
	assert.True(t, strings.HasPrefix(lines[2], "A"+strings.Repeat(" ", 10)+"B"))
}

func TestTable_Render_ExtraCellsIgnored(t *testing.T) {
	table := NewTable("ID")
	table.AddRow("1", "unexpected")

	var buf bytes.Buffer
	table.Render(&buf)

	assert.NotContains(t, buf.String(), "unexpected")
}
