package cli

import (
	"bytes"
	"testing"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintOutput(t *testing.T) {
	value := pollOutput{
		TriggerID: "t-1",
		Watermark: 1700000000000,
		Items: []domain.PollItem{
			{EpochMilliseconds: 1700000000000, Data: map[string]any{"id": "7"}},
		},
	}

	tests := []struct {
		name     string
		format   string
		contains []string
		wantErr  bool
	}{
		{
			name:     "json",
			format:   outputJSON,
			contains: []string{`"trigger_id": "t-1"`, `"epochMilliseconds": 1700000000000`},
		},
		{
			name:     "yaml keeps json keys",
			format:   outputYAML,
			contains: []string{"trigger_id: t-1", "epochMilliseconds: 1700000000000", `id: "7"`},
		},
		{
			name:    "unknown",
			format:  "xml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			err := printOutput(&buf, tt.format, value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"start", "poll", "triggers", "status", "version"} {
		assert.True(t, names[want], want)
	}

	triggers, _, err := root.Find([]string{"triggers", "enable"})
	require.NoError(t, err)
	assert.Equal(t, "enable", triggers.Name())
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCommand()
	root.SetArgs([]string{"version"})

	assert.NoError(t, root.Execute())
}
