package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/cardshelf/internal/export"
)

func sampleTable() export.Table {
	return export.Table{
		Headers: []string{"ID", "Webpage name"},
		Rows:    [][]string{{"1", "Desmos"}},
	}
}

func TestWriteTableStdout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, "-", "csv", sampleTable()))
	assert.Equal(t, "ID,Webpage name\n1,Desmos\n", buf.String())
}

func TestWriteTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.csv")
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, path, "csv", sampleTable()))
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "ID,Webpage name"))
}

func TestWriteTableText(t *testing.T) {
	table := sampleTable()
	table.Widths = []int{4, 14}

	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, "-", "text", table))
	assert.Equal(t, "ID  Webpage name\n1   Desmos\n", buf.String())
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, buf.String(), "cardshelf ")
}
