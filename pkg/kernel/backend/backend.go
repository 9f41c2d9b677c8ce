// Package backend selects a geometry kernel by name.
package backend

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/chazu/lostmodeler/pkg/kernel"
	"github.com/chazu/lostmodeler/pkg/kernel/manifold"
	"github.com/chazu/lostmodeler/pkg/kernel/null"
	"github.com/chazu/lostmodeler/pkg/kernel/sdfx"
)

// Names lists the selectable kernels.
var Names = []string{"sdfx", "manifold", "null"}

// Options tunes the selected kernel.
type Options struct {
	// MeshCells is the sdfx marching cubes resolution.
	MeshCells int
}

// New returns the kernel called name. An empty name selects sdfx.
//
// When manifold is requested but was not compiled in, New logs a warning
// and returns the null kernel, so that the caller can still validate and
// split trays.
func New(name string, opts Options) (kernel.Kernel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sdfx":
		return sdfx.New(sdfx.Options{MeshCells: opts.MeshCells}), nil
	case "manifold":
		k, err := manifold.New()
		if err != nil {
			log.Warn().Err(err).Msg("falling back to null geometry kernel")
			return null.New(), nil
		}
		return k, nil
	case "null":
		return null.New(), nil
	}
	return nil, fmt.Errorf("unknown kernel %q (valid: %s)", name, strings.Join(Names, ", "))
}
