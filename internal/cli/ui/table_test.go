package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestTable(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	table := NewTable(&buf, []string{"LINE:COL", "TYPE", "LEXEME"}, &TableOptions{NoColor: true})

	table.AddRow("1:1", "LET", "let")
	table.AddRow("1:5", "IDENT", "x")
	table.AddRow("1:7", "INT", "1")

	table.Render()

	output := buf.String()

	// Check headers
	if !strings.Contains(output, "LINE:COL") {
		t.Errorf("Table output missing header 'LINE:COL'")
	}
	if !strings.Contains(output, "TYPE") {
		t.Errorf("Table output missing header 'TYPE'")
	}
	if !strings.Contains(output, "LEXEME") {
		t.Errorf("Table output missing header 'LEXEME'")
	}

	// Check rows
	if !strings.Contains(output, "LET") {
		t.Errorf("Table output missing row data 'LET'")
	}
	if !strings.Contains(output, "IDENT") {
		t.Errorf("Table output missing row data 'IDENT'")
	}
	if !strings.Contains(output, "let") {
		t.Errorf("Table output missing row data 'let'")
	}

	// Check separator
	if !strings.Contains(output, "─") {
		t.Errorf("Table output missing separator")
	}
}

func TestTableEmpty(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	table := NewTable(&buf, []string{}, &TableOptions{NoColor: true})

	table.Render()

	output := buf.String()
	if output != "" {
		t.Errorf("Expected empty output for table with no headers, got: %q", output)
	}
}

func TestDivider(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	Divider(&buf, 40, true)

	output := buf.String()

	if !strings.Contains(output, "─") {
		t.Errorf("Divider output missing line character")
	}

	// Should have 40 characters plus newline
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 0 && len(lines[0]) < 30 {
		t.Errorf("Divider seems too short")
	}
}

func TestDividerDefaultWidth(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	Divider(&buf, 0, true) // 0 should use default width of 80

	output := buf.String()

	if !strings.Contains(output, "─") {
		t.Errorf("Divider output missing line character")
	}
}

func TestHeader(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	Header(&buf, "AST: hello.nx", true)

	output := buf.String()

	if !strings.Contains(output, "AST: hello.nx") {
		t.Errorf("Header output missing title")
	}

	if !strings.Contains(output, "─") {
		t.Errorf("Header output missing divider")
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"test", 10, "test      "},
		{"test", 4, "test"},
		{"test", 2, "test"},
		{"", 5, "     "},
	}

	for _, tt := range tests {
		result := padRight(tt.input, tt.width)
		if result != tt.expected {
			t.Errorf("padRight(%q, %d) = %q; want %q", tt.input, tt.width, result, tt.expected)
		}
	}
}

func TestTableAlignment(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Short", "VeryLongHeader"}, &TableOptions{NoColor: true})

	table.AddRow("a", "b")
	table.AddRow("longer", "c")

	table.Render()

	output := buf.String()

	// The columns should be aligned based on the longest content
	lines := strings.Split(output, "\n")
	if len(lines) < 3 {
		t.Errorf("Expected at least 3 lines (header, separator, row)")
	}

	// Check that each row has consistent column positions
	// This is a basic check - more sophisticated alignment testing could be added
	for i, line := range lines {
		if line == "" {
			continue
		}
		if i > 0 && len(line) < 10 {
			t.Errorf("Line %d seems too short for proper alignment: %q", i, line)
		}
	}
}
