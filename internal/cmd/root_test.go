package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_HasCommands(t *testing.T) {
	root := Root()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "list", "themes", "render", "convert"} {
		assert.Contains(t, names, want)
	}
}

func TestRoot_Help(t *testing.T) {
	root := Root()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"--help"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "pagemason")
	assert.Contains(t, buf.String(), "serve")
}

func TestConvert_RejectsSameFormats(t *testing.T) {
	root := Root()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"convert", "home", "--from", "html", "--to", "html"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both")
}

func TestRender_RejectsUnknownFormat(t *testing.T) {
	root := Root()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs([]string{"render", "home", "--ext", "xml"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
