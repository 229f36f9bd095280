package restore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/leg100/kdr/cmd/flags"
	"github.com/leg100/kdr/cmd/store"
	cmdutil "github.com/leg100/kdr/cmd/util"
	"github.com/leg100/kdr/pkg/apply"
	"github.com/leg100/kdr/pkg/catalog"
	"github.com/leg100/kdr/pkg/client"
	"github.com/leg100/kdr/pkg/cluster"
	kdrerrors "github.com/leg100/kdr/pkg/errors"
	"github.com/leg100/kdr/pkg/restore"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

// Restore strategies
const (
	strategyKubectl = "kubectl"
	strategyAPI     = "api"
	strategyNull    = "null"
)

var strategies = []string{strategyKubectl, strategyAPI, strategyNull}

type restoreOptions struct {
	*cmdutil.Factory

	*client.Client

	cluster     cmdutil.ClusterFlags
	storeConfig *store.Config

	kubeContext string
	customKinds map[string]string

	all      bool
	strategy string
	dryRun   bool
	replace  bool

	// Directory to which the kubectl strategy writes manifests
	dir string
}

func RestoreCmd(f *cmdutil.Factory) (*cobra.Command, *restoreOptions) {
	o := &restoreOptions{
		Factory:     f,
		storeConfig: store.NewConfig(),
	}

	cmd := &cobra.Command{
		Use:   "restore [namespace...]",
		Short: "Restore namespaces from an object store",
		Long: `Restore backed up namespaces to a cluster.

Resources are restored namespace by namespace, in dependency order. Resources
that already exist are left untouched unless --replace is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.all == (len(args) > 0) {
				return fmt.Errorf("%w: specify either namespaces or --all", kdrerrors.ErrInvalidArgument)
			}
			if !validStrategy(o.strategy) {
				return fmt.Errorf("%w: invalid strategy %s (valid strategies: %s)", kdrerrors.ErrInvalidArgument, o.strategy, strings.Join(strategies, ","))
			}
			if err := o.storeConfig.Validate(); err != nil {
				return err
			}

			selector := restore.Selector(args)
			if o.all {
				selector = restore.All
			}
			return o.run(cmd, selector)
		},
	}

	o.cluster.AddToCmd(cmd)
	o.storeConfig.AddToFlagSet(cmd.Flags())

	flags.AddKubeContextFlag(cmd, &o.kubeContext)
	flags.AddCustomKindsFlag(cmd, &o.customKinds)
	flags.AddDryRunFlag(cmd, &o.dryRun)

	cmd.Flags().BoolVar(&o.all, "all", false, "Restore all backed up namespaces")
	cmd.Flags().StringVar(&o.strategy, "strategy", strategyKubectl, fmt.Sprintf("How resources are applied (%s)", strings.Join(strategies, ",")))
	cmd.Flags().BoolVar(&o.replace, "replace", false, "Delete existing resources before restoring them")
	cmd.Flags().StringVar(&o.dir, "dir", "", "Directory for manifests applied with kubectl (defaults to a temporary directory)")

	return cmd, o
}

func validStrategy(strategy string) bool {
	for _, s := range strategies {
		if s == strategy {
			return true
		}
	}
	return false
}

// needsClient is true when the restore talks to the cluster via the API
func (o *restoreOptions) needsClient() bool {
	return o.strategy == strategyAPI || o.replace || o.cluster.NeedsMetadata()
}

func (o *restoreOptions) run(cmd *cobra.Command, selector restore.Selector) (err error) {
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

	var provider cluster.Provider
	if o.needsClient() {
		o.Client, err = o.Create(o.kubeContext)
		if err != nil {
			return err
		}
		provider = cluster.NewKube(o.KubeClient, o.DynamicClient)
	}

	// Metadata is only read when the cluster name is not given, in which case
	// a provider has been constructed
	root, err := o.cluster.Root(ctx, cmd, func(ctx context.Context) (map[string]string, error) {
		return provider.ClusterMetadata(ctx)
	})
	if err != nil {
		return err
	}

	strategy, err := o.newStrategy()
	if err != nil {
		return err
	}

	opts := []restore.Option{
		restore.WithPrefix(root.Prefix),
		restore.WithCatalog(kinds),
	}
	if o.replace {
		opts = append(opts, restore.WithReplaceExisting(provider))
	}

	n, err := restore.New(bs, strategy, opts...).RestoreNamespaces(ctx, root.ClusterSet, root.ClusterName, selector)
	if err != nil {
		return err
	}
	fmt.Fprintf(o.Out, "Restored %d resources\n", n)
	return nil
}

func (o *restoreOptions) newStrategy() (restore.Strategy, error) {
	switch o.strategy {
	case strategyAPI:
		return apply.NewAPI(o.RuntimeClient, o.dryRun), nil
	case strategyNull:
		return &apply.Null{}, nil
	}

	dir := o.dir
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "kdr-restore-")
		if err != nil {
			return nil, err
		}
		klog.V(1).Infof("writing manifests to %s", dir)
	}
	return apply.NewKubectl(dir, o.Out, o.ErrOut,
		apply.WithDryRun(o.dryRun),
		apply.WithKubeContext(o.kubeContext)), nil
}
