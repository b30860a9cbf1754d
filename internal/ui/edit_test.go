package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageEditor_Edit(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"subject and body", "fix(auth): reject expired tokens\n\n- check exp claim\n\x04", "fix(auth): reject expired tokens\n\n- check exp claim", nil},
		{"ctrl-d on the same line", "docs: update readme\x04", "docs: update readme", nil},
		{"surrounding blank lines dropped", "\n\nchore: bump deps   \n\n", "chore: bump deps", nil},
		{"only blanks", "\n \n\x04", "", ErrEmptyInput},
		{"immediate eof", "", "", io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			editor := &MessageEditor{Current: "feat: old subject"}
			got, err := editor.Edit(context.Background(), strings.NewReader(tt.input), &bytes.Buffer{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessageEditor_Display(t *testing.T) {
	output := &bytes.Buffer{}
	editor := &MessageEditor{Current: "feat(auth): add login\n\n- add form", Hint: "Finish with Ctrl+D."}

	_, err := editor.Edit(context.Background(), strings.NewReader("x\x04"), output)
	require.NoError(t, err)

	out := output.String()
	assert.Contains(t, out, "│ feat(auth): add login")
	assert.Contains(t, out, "│ - add form")
	assert.Contains(t, out, "Finish with Ctrl+D.")
}

func TestMessageEditor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	editor := &MessageEditor{}
	got, err := editor.Edit(ctx, strings.NewReader("feat: x\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Empty(t, got)
}
