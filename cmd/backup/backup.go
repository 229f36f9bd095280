package backup

import (
	"context"
	"fmt"

	"github.com/leg100/kdr/cmd/flags"
	"github.com/leg100/kdr/cmd/store"
	cmdutil "github.com/leg100/kdr/cmd/util"
	"github.com/leg100/kdr/pkg/backup"
	"github.com/leg100/kdr/pkg/catalog"
	"github.com/leg100/kdr/pkg/client"
	"github.com/leg100/kdr/pkg/cluster"
	kdrerrors "github.com/leg100/kdr/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

type backupOptions struct {
	*cmdutil.Factory

	*client.Client

	cluster     cmdutil.ClusterFlags
	storeConfig *store.Config

	kubeContext string
	customKinds map[string]string

	// Back up every namespace matching selector
	all      bool
	selector string

	// Skip resources that cannot be read rather than aborting
	skipUnreadable bool

	pageSize int64
}

func BackupCmd(f *cmdutil.Factory) (*cobra.Command, *backupOptions) {
	o := &backupOptions{
		Factory:     f,
		storeConfig: store.NewConfig(),
	}

	cmd := &cobra.Command{
		Use:   "backup [namespace...]",
		Short: "Back up namespaces to an object store",
		Long: `Back up the resources of one or more namespaces to an object store.

Each resource is written to its own key. Keys belonging to resources that no
longer exist are deleted from the store.`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if o.all == (len(args) > 0) {
				return fmt.Errorf("%w: specify either namespaces or --all", kdrerrors.ErrInvalidArgument)
			}
			if err := o.storeConfig.Validate(); err != nil {
				return err
			}

			o.Client, err = o.Create(o.kubeContext)
			if err != nil {
				return err
			}

			return o.run(cmd, args)
		},
	}

	o.cluster.AddToCmd(cmd)
	o.storeConfig.AddToFlagSet(cmd.Flags())

	flags.AddKubeContextFlag(cmd, &o.kubeContext)
	flags.AddCustomKindsFlag(cmd, &o.customKinds)

	cmd.Flags().BoolVar(&o.all, "all", false, "Back up all namespaces")
	cmd.Flags().StringVarP(&o.selector, "selector", "l", "", "Label selector restricting namespaces backed up with --all")
	cmd.Flags().BoolVar(&o.skipUnreadable, "skip-unreadable", false, "Skip resources that cannot be read, retaining previous backups of them")
	cmd.Flags().Int64Var(&o.pageSize, "page-size", cluster.DefaultPageSize, "Number of resources requested per list call")

	return cmd, o
}

func (o *backupOptions) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	customs, err := flags.CustomKinds(o.customKinds)
	if err != nil {
		return err
	}
	kinds := catalog.Default().WithCustomKinds(customs...)

	bs, err := o.storeConfig.CreateSelectedStore(ctx)
	if err != nil {
		return err
	}

	provider := cluster.NewKube(o.KubeClient, o.DynamicClient, cluster.WithPageSize(o.pageSize))

	root, err := o.cluster.Root(ctx, cmd, provider.ClusterMetadata)
	if err != nil {
		return err
	}

	namespaces := args
	if o.all {
		namespaces, err = listNamespaces(ctx, provider, o.selector)
		if err != nil {
			return err
		}
	}

	policy := backup.Abort
	if o.skipUnreadable {
		policy = backup.Skip
	}

	engine := backup.New(provider, bs, root,
		backup.WithCatalog(kinds),
		backup.WithReadFailurePolicy(policy))

	return o.backup(ctx, engine, namespaces)
}

func (o *backupOptions) backup(ctx context.Context, engine *backup.Engine, namespaces []string) error {
	for _, ns := range namespaces {
		result, err := engine.BackupNamespace(ctx, ns)
		if err != nil {
			return fmt.Errorf("backing up namespace %s: %w", ns, err)
		}
		fmt.Fprintf(o.Out, "Backed up namespace %s: %d stored, %d deleted, %d skipped\n", ns, result.Stored, result.Deleted, result.Skipped)
	}
	return nil
}

// listNamespaces returns the names of all namespaces matching selector
func listNamespaces(ctx context.Context, provider cluster.Provider, selector string) ([]string, error) {
	var names []string
	var cont string
	for {
		page, err := provider.ListNamespaces(ctx, selector, cont)
		if err != nil {
			return nil, fmt.Errorf("listing namespaces: %w", err)
		}
		for _, item := range page.Items {
			names = append(names, (&unstructured.Unstructured{Object: item}).GetName())
		}
		if page.Continue == "" {
			return names, nil
		}
		cont = page.Continue
	}
}
