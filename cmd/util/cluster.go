package util

import (
	"context"
	"fmt"

	"github.com/leg100/kdr/cmd/flags"
	"github.com/leg100/kdr/pkg/key"
	"github.com/spf13/cobra"
)

const (
	// DefaultClusterSet is used when neither the flag nor the cluster
	// metadata provide a cluster set
	DefaultClusterSet = "default"
)

// ClusterFlags identify the cluster whose backups are read or written
type ClusterFlags struct {
	Name   string
	Set    string
	Prefix string
}

func (c *ClusterFlags) AddToCmd(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.Name, "cluster-name", "", "Name of the cluster (defaults to the cluster's metadata)")
	cmd.Flags().StringVar(&c.Set, "cluster-set", DefaultClusterSet, "Cluster set the cluster belongs to")
	cmd.Flags().StringVar(&c.Prefix, "prefix", "", "Key prefix template, e.g. $cluster_name/backups")
}

// NeedsMetadata is true when the cluster name must be read from the cluster
func (c *ClusterFlags) NeedsMetadata() bool {
	return c.Name == ""
}

// Root resolves the cluster's location in the object store. Flags passed by
// the user take precedence over the metadata fetched with meta, which is only
// called when the cluster name is not given.
func (c *ClusterFlags) Root(ctx context.Context, cmd *cobra.Command, meta func(context.Context) (map[string]string, error)) (key.Root, error) {
	fields := make(map[string]string)
	if c.NeedsMetadata() {
		data, err := meta(ctx)
		if err != nil {
			return key.Root{}, fmt.Errorf("cluster name not specified: %w", err)
		}
		for k, v := range data {
			fields[k] = v
		}
	} else {
		fields[key.MetaClusterName] = c.Name
	}

	if _, ok := fields[key.MetaClusterSet]; !ok || flags.IsFlagPassed(cmd.Flags(), "cluster-set") {
		fields[key.MetaClusterSet] = c.Set
	}

	return key.NewRoot(c.Prefix, fields)
}
