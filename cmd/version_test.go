package cmd

import (
	"bytes"
	"context"
	"runtime"
	"testing"

	cmdutil "github.com/leg100/kdr/cmd/util"
	"github.com/leg100/kdr/pkg/testutil"
	"github.com/leg100/kdr/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	testutil.Run(t, "version", func(t *testutil.T) {
		// Set client version and commit
		t.Override(&version.Version, "123")
		t.Override(&version.Commit, "xyz")

		out := new(bytes.Buffer)
		f := cmdutil.NewFakeFactory(out)

		cmd := versionCmd(f)
		cmd.SetOut(out)

		require.NoError(t, cmd.ExecuteContext(context.Background()))
		assert.Equal(t, "kdr version 123\txyz\t"+runtime.Version()+"\n", out.String())
	})
}

func TestRootCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		out  string
		err  bool
	}{
		{
			name: "help",
			args: []string{"-h"},
			out:  "Usage:",
		},
		{
			name: "subcommands",
			args: []string{"--help"},
			out:  "backup",
		},
		{
			name: "verbosity",
			args: []string{"version", "-v=2"},
			out:  "kdr version",
		},
		{
			name: "invalid",
			args: []string{"invalid"},
			err:  true,
		},
	}
	for _, tt := range tests {
		testutil.Run(t, tt.name, func(t *testutil.T) {
			out := new(bytes.Buffer)
			f := cmdutil.NewFakeFactory(out)

			root := RootCmd(f)
			root.SetOut(out)
			root.SetErr(out)
			root.SetArgs(tt.args)

			err := root.ExecuteContext(context.Background())
			t.CheckError(tt.err, err)
			assert.Contains(t, out.String(), tt.out)
		})
	}
}
