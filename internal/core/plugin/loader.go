package plugin

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"imgmin.io/cli/internal/logging"
)

// Load resolves and instantiates every spec against the registry. All loads
// run in parallel (they share no mutable state) and are joined before
// returning; handle order matches spec order. Any failure is fatal to the
// whole invocation, and all failures are reported together rather than just
// the first, so a user with two missing optimizers sees both hints at once.
func Load(ctx context.Context, reg *Registry, specs []Spec) ([]Handle, error) {
	handles := make([]Handle, len(specs))
	errs := make([]error, len(specs))

	var g errgroup.Group
	for i, spec := range specs {
		g.Go(func() error {
			factory, err := reg.Lookup(spec.Name)
			if err != nil {
				errs[i] = err
				return err
			}
			transform, err := factory(spec.Options)
			if err != nil {
				var nie *NotInstalledError
				if errors.As(err, &nie) {
					errs[i] = err
				} else {
					errs[i] = fmt.Errorf("plugin %s: %w", spec.Name, err)
				}
				return err
			}
			logging.L().Debug("plugin loaded", "name", spec.Name, "options", len(spec.Options))
			handles[i] = Handle{Spec: spec, Transform: transform}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Join(errs...)
	}
	return handles, nil
}
