package index

import (
	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/schema"
)

// CheckStrongRelations verifies every RelationStrong field on row
// resolves to an existing row in its target entity. A dangling weak
// relation is never checked: those are advisory by declaration.
func CheckStrongRelations(model *schema.EntityModel, row Row, exists func(targetEntity string, pk string) bool) error {
	for _, f := range model.Fields {
		if f.Kind.Relation == nil || f.Kind.Relation.Strength != schema.RelationStrong {
			continue
		}
		v, ok := row[f.Name]
		if !ok || v.IsNull() {
			continue
		}
		target, ok := v.AsText()
		if !ok {
			return icyerr.Invariant(icyerr.OriginIndex, "strong relation field %s is not a text key", f.Name)
		}
		if !exists(f.Kind.Relation.Target, target) {
			return icyerr.ConflictErr(icyerr.OriginIndex, "StrongRelationTargetMissing{field=%s,target=%s}", f.Name, f.Kind.Relation.Target)
		}
	}
	return nil
}
