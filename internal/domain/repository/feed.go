package repository

import "context"

// ChangeFeed is the notification side of the backing store. Writers publish
// the name of the collection they touched; subscribers receive a tick per
// event and respond by re-reading the full collection (snapshot delivery,
// not deltas).
type ChangeFeed interface {
	// Publish signals that a collection changed.
	Publish(ctx context.Context, collection string) error

	// Subscribe returns a channel that ticks on every change to the
	// collection, plus a cancel function. The caller owns the cancel; an
	// abandoned subscription leaks until the process exits.
	Subscribe(ctx context.Context, collection string) (<-chan struct{}, func(), error)
}
