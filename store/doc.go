// SPDX-License-Identifier: MIT

// Package store persists built joint-distribution models.
//
// A Model is the serializable copula.Spec of a run plus bookkeeping (ID,
// name, run ID, creation time, optional validation score). Backends
// register themselves by kind from an init function, so importing a
// backend package for its side effect is enough:
//
//	import _ "github.com/katalvlaran/lvsynth/store/sqlite"
//
//	repo, err := store.New(ctx, store.Config{Kind: "sqlite", DSN: "models.db"})
//	if err != nil { ... }
//	defer repo.Close()
//	err = repo.Save(ctx, &model)
//
// Registering the same kind twice panics.
package store
