package cmd

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	for _, path := range [][]string{
		{"serve"},
		{"recalculate"},
		{"snapshot"},
		{"match"},
		{"import"},
		{"rules", "apply"},
		{"retailers", "recategorize"},
		{"plaid", "sync"},
	} {
		c, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], c.Name())
	}
}

func TestArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"recalculate without target", []string{"recalculate"}, "an account id or --all is required"},
		{"import without flags", []string{"import", "statement.csv"}, "required flag"},
		{"snapshot with args", []string{"snapshot", "extra"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootCmd.SetArgs(tt.args)
			rootCmd.SetOut(io.Discard)
			rootCmd.SetErr(io.Discard)
			err := rootCmd.Execute()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSnapshotHelpDescribesDailyRows(t *testing.T) {
	c, _, err := rootCmd.Find([]string{"snapshot"})
	require.NoError(t, err)
	assert.Contains(t, c.Short, "daily")
	assert.NotContains(t, c.Short, "monthly")
}
