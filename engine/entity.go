package engine

import (
	"github.com/dragginzgame/icydb-go/executor"
	"github.com/dragginzgame/icydb-go/index"
	"github.com/dragginzgame/icydb-go/key"
	"github.com/dragginzgame/icydb-go/schema"
	"github.com/dragginzgame/icydb-go/store"
)

// RowCodec is the pair of functions a registered entity supplies to let
// the engine cross between its stored row bytes and the decoded field
// map the predicate/executor layers operate on. The engine treats both
// directions as an opaque collaborator, the same boundary the schema
// code generator would normally own in a deployed build.
type RowCodec struct {
	Encode func(executor.Fields) (key.RawRow, error)
	Decode executor.RowDecoder
}

// entityHandle is everything the engine keeps for one registered entity:
// its declared shape, its row store, one IndexStore per declared index,
// and the codec that crosses row bytes.
type entityHandle struct {
	model   *schema.EntityModel
	data    *store.DataStore
	indexes index.Stores
	codec   RowCodec
}

// RegisterEntity validates model and allocates its stores. It must be
// called before any CRUD or query call references the entity's path,
// typically once at process startup for every entity the build declares.
func (e *Engine) RegisterEntity(model *schema.EntityModel, codec RowCodec) error {
	if err := model.Validate(); err != nil {
		return err
	}
	ixs := make(index.Stores, len(model.Indexes))
	for _, ix := range model.Indexes {
		ixs[ix.Name] = store.NewIndexStore()
	}
	e.entities[model.Path] = &entityHandle{
		model:   model,
		data:    store.NewDataStore(),
		indexes: ixs,
		codec:   codec,
	}
	return nil
}
