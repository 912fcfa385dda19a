package engine

import "github.com/dragginzgame/icydb-go/store"

const commitRegion = "commit_marker"

func dataRegion(entityPath string) string  { return "data:" + entityPath }
func indexRegion(entityPath, ix string) string { return "index:" + entityPath + ":" + ix }

// SaveTo snapshots every registered entity's data and index stores, plus
// the commit slot, into host's stable-memory regions. Called before a
// simulated upgrade/restart.
func (e *Engine) SaveTo(host *store.HostSim) error {
	for path, h := range e.entities {
		keys, vals := h.data.Snapshot()
		if err := host.SaveRegion(dataRegion(path), store.EncodeSnapshot(keys, vals)); err != nil {
			return err
		}
		for name, ix := range h.indexes {
			keys, vals := ix.Snapshot()
			if err := host.SaveRegion(indexRegion(path, name), store.EncodeSnapshot(keys, vals)); err != nil {
				return err
			}
		}
	}
	return host.SaveRegion(commitRegion, e.commitLog.Snapshot())
}

// LoadFrom restores every registered entity's stores and the commit slot
// from host's stable-memory regions. Entities must already be registered
// (RegisterEntity is a schema declaration, not data) before calling this.
// Callers run Recover immediately afterward to replay any in-flight
// commit the snapshot captured mid-mutation.
func (e *Engine) LoadFrom(host *store.HostSim) error {
	for path, h := range e.entities {
		if data, ok, err := host.LoadRegion(dataRegion(path)); err != nil {
			return err
		} else if ok {
			keys, vals, err := store.DecodeSnapshot(data)
			if err != nil {
				return err
			}
			h.data.Restore(keys, vals)
		}
		for name, ix := range h.indexes {
			if data, ok, err := host.LoadRegion(indexRegion(path, name)); err != nil {
				return err
			} else if ok {
				keys, vals, err := store.DecodeSnapshot(data)
				if err != nil {
					return err
				}
				ix.Restore(keys, vals)
			}
		}
	}
	if raw, ok, err := host.LoadRegion(commitRegion); err != nil {
		return err
	} else if ok {
		e.commitLog.Restore(raw)
	}
	return nil
}
