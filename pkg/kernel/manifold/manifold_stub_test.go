//go:build !manifold

package manifold

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/lostmodeler/pkg/kernel"
)

func TestNewReturnsError(t *testing.T) {
	if Available {
		t.Fatal("Available = true in a build without the manifold tag")
	}

	k, err := New()
	if err == nil {
		t.Fatal("New() error = nil, want non-nil error when manifold tag is not set")
	}
	if k != nil {
		t.Fatal("New() returned non-nil kernel, want nil when manifold tag is not set")
	}
	if !errors.Is(err, kernel.ErrUnavailable) {
		t.Errorf("New() error = %v, want it to wrap kernel.ErrUnavailable", err)
	}
	if !strings.Contains(err.Error(), "-tags=manifold") {
		t.Errorf("New() error = %q, want build hint", err.Error())
	}
}
