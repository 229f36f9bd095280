package restore

import (
	"context"
	"fmt"

	"github.com/leg100/kdr/cmd/flags"
	"github.com/leg100/kdr/cmd/store"
	cmdutil "github.com/leg100/kdr/cmd/util"
	"github.com/leg100/kdr/pkg/apply"
	"github.com/leg100/kdr/pkg/cluster"
	"github.com/leg100/kdr/pkg/restore"
	"github.com/spf13/cobra"
)

type namespacesOptions struct {
	*cmdutil.Factory

	cluster     cmdutil.ClusterFlags
	storeConfig *store.Config

	kubeContext string
}

func NamespacesCmd(f *cmdutil.Factory) (*cobra.Command, *namespacesOptions) {
	o := &namespacesOptions{
		Factory:     f,
		storeConfig: store.NewConfig(),
	}

	cmd := &cobra.Command{
		Use:   "namespaces",
		Short: "List backed up namespaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}

	o.cluster.AddToCmd(cmd)
	o.storeConfig.AddToFlagSet(cmd.Flags())

	flags.AddKubeContextFlag(cmd, &o.kubeContext)

	return cmd, o
}

func (o *namespacesOptions) run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	bs, err := o.storeConfig.CreateSelectedStore(ctx)
	if err != nil {
		return err
	}

	root, err := o.cluster.Root(ctx, cmd, func(ctx context.Context) (map[string]string, error) {
		c, err := o.Create(o.kubeContext)
		if err != nil {
			return nil, err
		}
		return cluster.NewKube(c.KubeClient, c.DynamicClient).ClusterMetadata(ctx)
	})
	if err != nil {
		return err
	}

	// Listing does not apply anything
	engine := restore.New(bs, &apply.Null{}, restore.WithPrefix(root.Prefix))

	namespaces, err := engine.DiscoverNamespaces(ctx, root.ClusterSet, root.ClusterName)
	if err != nil {
		return err
	}
	for _, ns := range namespaces {
		fmt.Fprintln(o.Out, ns)
	}
	return nil
}
