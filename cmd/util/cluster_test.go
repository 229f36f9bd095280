package util

import (
	"context"
	"errors"
	"testing"

	kdrerrors "github.com/leg100/kdr/pkg/errors"
	"github.com/leg100/kdr/pkg/key"
	"github.com/leg100/kdr/pkg/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		meta map[string]string
		want key.Root
		err  error
	}{
		{
			name: "name flag",
			args: []string{"--cluster-name", "cluster1"},
			want: key.Root{ClusterSet: "default", ClusterName: "cluster1"},
		},
		{
			name: "name and set flags with prefix",
			args: []string{"--cluster-name", "cluster1", "--cluster-set", "prod", "--prefix", "$cluster_name/application-backups"},
			want: key.Root{Prefix: "cluster1/application-backups", ClusterSet: "prod", ClusterName: "cluster1"},
		},
		{
			name: "metadata",
			meta: map[string]string{"cluster.name": "cluster2", "cluster.set": "staging"},
			want: key.Root{ClusterSet: "staging", ClusterName: "cluster2"},
		},
		{
			name: "metadata without set",
			meta: map[string]string{"cluster.name": "cluster2"},
			want: key.Root{ClusterSet: "default", ClusterName: "cluster2"},
		},
		{
			name: "set flag overrides metadata",
			args: []string{"--cluster-set", "prod"},
			meta: map[string]string{"cluster.name": "cluster2", "cluster.set": "staging"},
			want: key.Root{ClusterSet: "prod", ClusterName: "cluster2"},
		},
		{
			name: "metadata missing name",
			meta: map[string]string{"region": "eu"},
			err:  kdrerrors.ErrInvalidArgument,
		},
		{
			name: "unresolved prefix",
			args: []string{"--cluster-name", "cluster1", "--prefix", "$region/backups"},
			err:  kdrerrors.ErrUnresolvedTemplate,
		},
	}
	for _, tt := range tests {
		testutil.Run(t, tt.name, func(t *testutil.T) {
			var c ClusterFlags
			cmd := &cobra.Command{Use: "foo", Run: func(*cobra.Command, []string) {}}
			c.AddToCmd(cmd)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.Execute())

			meta := func(context.Context) (map[string]string, error) {
				if tt.meta == nil {
					return nil, errors.New("no metadata")
				}
				return tt.meta, nil
			}

			root, err := c.Root(context.Background(), cmd, meta)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, root)
		})
	}
}
