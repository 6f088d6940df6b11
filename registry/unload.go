/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"context"

	"go.uber.org/zap"
)

// Unload removes name from every cache and index, from its descriptor file,
// and drops the registration of that file so that the next lookup reads the
// source again. Sibling descriptors stay registered. It reports whether a
// descriptor was registered under name; a negative-cache entry is cleared
// either way.
func (r *Registry) Unload(ctx context.Context, name string) (bool, error) {
	s, originating, err := r.enter(ctx)
	if err != nil {
		return false, err
	}
	if originating {
		defer r.exit(s)
	}

	td, found := r.deleteDescriptor(name)
	r.index.forget(name)
	r.named.forgetScope(name)
	if !found {
		return false, nil
	}

	if f := td.File(); f != nil {
		f.Remove(td)
		if _, ok := r.fileByKey.LoadAndDelete(f.Key); ok {
			r.metrics.Files.Dec()
		}
	}
	r.metrics.Unloads.Inc()
	r.logger.Debug("descriptor unloaded", zap.String("type", name))
	return true, nil
}
