package modules

import (
	"context"

	"git.home.luguber.info/inful/attackbuild/internal/foundation/normalization"
)

// Action is the work a module performs. It runs synchronously to completion.
type Action func(ctx context.Context) error

// Descriptor describes one registered build module.
type Descriptor struct {
	Name        string
	Priority    int
	Run         Action
	MenuVisible bool
	MenuURL     string // navigation target when MenuVisible
}

// Key returns the case-folded name used to match selections.
func (d Descriptor) Key() string {
	return normalization.Fold(d.Name)
}
