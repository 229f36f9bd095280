package flags

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leg100/kdr/pkg/catalog"
	kdrerrors "github.com/leg100/kdr/pkg/errors"
)

// CustomKinds converts Kind=group/version/plural pairs into kind specs,
// sorted by kind
func CustomKinds(kinds map[string]string) ([]catalog.KindSpec, error) {
	specs := make([]catalog.KindSpec, 0, len(kinds))
	for kind, gvr := range kinds {
		parts := strings.Split(gvr, "/")
		if kind == "" || len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("%w: custom kind %s=%s must be formatted as Kind=group/version/plural", kdrerrors.ErrInvalidArgument, kind, gvr)
		}
		specs = append(specs, catalog.KindSpec{
			Kind:     kind,
			Group:    parts[0],
			Version:  parts[1],
			Resource: parts[2],
			Custom:   true,
		})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Kind < specs[j].Kind })
	return specs, nil
}
