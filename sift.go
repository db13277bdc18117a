// Package sift implements a composable filter expression tree: conditions
// grouped by and/or, arbitrarily nested. A Store mutates the tree while
// keeping it consistent and tells subscribers about each new snapshot;
// package compile folds a snapshot into a backend query predicate.
package sift

import (
	"context"

	nt "sift/entity"
)

// OnChange is called with the new snapshot after every successful mutation,
// typically to persist the filter somewhere.
type OnChange func(root *nt.Group)

// Config configures a store.
type Config struct {

	// Default seeds the tree at construction and is what ResetFilter
	// restores. Nil means an empty "and" root.
	Default *nt.GroupInput `yaml:"default,omitempty" json:"default,omitempty"`

	// OnChange, when set, runs before subscribers on each mutation.
	OnChange OnChange `yaml:"-" json:"-"`
}

// Store owns a filter tree and mutates it transactionally: every operation
// validates against the current snapshot, transforms a copy, reindexes, and
// notifies, leaving the tree untouched on failure. Old snapshots stay valid.
//
// A store is synchronous and single-threaded; hosts with concurrent callers
// must serialize access externally. A subscriber must not mutate the store
// from within its own notification.
type Store struct {
	root     *nt.Group
	ix       index
	def      *nt.GroupInput
	onChange OnChange
	subs     []*subscription
	logger   nt.Logger
	ctx      context.Context
}

type subscription struct {
	notify func(root *nt.Group)
}

// New creates a store with its tree hydrated from cfg.Default.
func (cfg *Config) New(ctx context.Context, lgr nt.Logger) *Store {

	if lgr == nil {
		lgr = nt.NopLogger{}
	}

	root := hydrate(cfg.Default)

	return &Store{
		root:     root,
		ix:       buildIndex(root),
		def:      cfg.Default,
		onChange: cfg.OnChange,
		logger:   lgr,
		ctx:      ctx,
	}
}

// Snapshot returns the current tree. Snapshots are immutable by contract;
// callers must not modify what they are handed.
func (st *Store) Snapshot() *nt.Group {
	return st.root
}

// RootID returns the root group's id.
func (st *Store) RootID() string {
	return st.root.Id
}

// Input flattens the current snapshot to an id-less input description.
func (st *Store) Input() *nt.GroupInput {
	return dehydrate(st.root)
}

// Find returns the node with the given id.
func (st *Store) Find(id string) (nt.Expression, error) {

	node, ok := st.ix.find(id)
	if !ok {
		return nil, errNotFound(id)
	}
	return node, nil
}

// ParentOf returns the id of a node's parent group.
// The root has no parent, which reports as not found.
func (st *Store) ParentOf(id string) (string, error) {

	if _, ok := st.ix.find(id); !ok {
		return "", errNotFound(id)
	}

	parentId, ok := st.ix.parentOf(id)
	if !ok {
		return "", errNotFound(id)
	}
	return parentId, nil
}

// IsDescendant reports whether nodeId sits somewhere below ancestorId.
func (st *Store) IsDescendant(ancestorId, nodeId string) bool {
	return st.ix.isDescendant(ancestorId, nodeId)
}

// Subscribe registers a listener called with each new snapshot, in
// registration order. The returned func unregisters it.
func (st *Store) Subscribe(notify func(root *nt.Group)) (unsubscribe func()) {

	sub := &subscription{notify: notify}
	st.subs = append(st.subs, sub)

	return func() {
		for i, have := range st.subs {
			if have == sub {
				st.subs = append(st.subs[:i], st.subs[i+1:]...)
				return
			}
		}
	}
}

// commit swaps in a new snapshot, rebuilds the index, and notifies exactly
// once: change callback first, then subscribers in registration order.
func (st *Store) commit(op string, root *nt.Group, kv ...any) {

	st.root = root
	st.ix = buildIndex(root)

	st.logger.Info(st.ctx, "filter mutated", append([]any{"op", op}, kv...)...)

	if st.onChange != nil {
		st.onChange(root)
	}
	for _, sub := range st.subs {
		sub.notify(root)
	}
}

// working returns a deep copy of the snapshot plus an index over the copy,
// so operations can transform freely and swap in on success.
func (st *Store) working() (*nt.Group, index) {

	root := st.root.CloneGroup()
	return root, buildIndex(root)
}
