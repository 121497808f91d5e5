package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoster(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "with header", input: "name,number,position\nAvi,7,PG\nDana,12\n", want: 2},
		{name: "no header", input: "Avi, 7, PG\n", want: 1},
		{name: "bad number", input: "Avi,seven\n", wantErr: true},
		{name: "missing number", input: "Avi\n", wantErr: true},
		{name: "empty", input: "name,number\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players, err := parseRoster(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, players, tt.want)
			assert.Equal(t, "Avi", players[0].Name)
			assert.Equal(t, 7, players[0].Number)
			assert.True(t, players[0].Active)
		})
	}
}
