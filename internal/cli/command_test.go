package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"add 9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM", Command{Name: CmdAdd, Address: "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"}},
		{"ADD AbCdEf", Command{Name: CmdAdd, Address: "AbCdEf"}},
		{"  remove   XYZ  ", Command{Name: CmdRemove, Address: "XYZ"}},
		{"history abc", Command{Name: CmdHistory, Address: "abc"}},
		{"list", Command{Name: CmdList}},
		{"Check", Command{Name: CmdCheck}},
		{"help", Command{Name: CmdHelp}},
		{"exit", Command{Name: CmdExit}},
		{"", Command{}},
		{"   ", Command{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandUsage(t *testing.T) {
	for _, line := range []string{
		"add",
		"add a b",
		"remove",
		"history",
		"list extra",
		"check now",
		"exit 1",
		"track abc",
	} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseCommand(line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUsage))
		})
	}
}
