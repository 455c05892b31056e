package env

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "prod", want: Prod},
		{in: " Dev\n", want: Dev},
		{in: "LOCAL", want: Local},
		{in: "test", want: Test},
		{in: "", wantErr: true},
		{in: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMode_Hosted(t *testing.T) {
	t.Parallel()

	assert.True(t, Prod.Hosted())
	assert.True(t, Dev.Hosted())
	assert.False(t, Local.Hosted())
	assert.False(t, Test.Hosted())

	assert.Equal(t, slog.LevelInfo, Prod.SlogLevel())
	assert.Equal(t, slog.LevelDebug, Dev.SlogLevel())
}
