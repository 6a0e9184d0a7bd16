package main

import (
	"github.com/Seagate/cortx-posix-sub001/config"
	"github.com/Seagate/cortx-posix-sub001/kvs"
)

// newStore opens the KVS index this invocation operates against. The real
// distributed index service is an external collaborator out of scope for
// this repo (spec §1 Non-goals: "the KVS backend itself"); this reference
// CLI runs the exact same tree/statstore/ino operations against the
// in-memory kvs.MemStore, so wiring a persistent backend here is a matter
// of swapping this one constructor for that backend's client, implementing
// kvs.Store.
func newStore(cfg config.Config) kvs.Store {
	return kvs.NewMemStore()
}
