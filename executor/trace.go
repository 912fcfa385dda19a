package executor

import (
	"go.uber.org/zap"

	"github.com/dragginzgame/icydb-go/plan"
)

// LogAccess emits one structured line describing which access plan the
// planner chose for a query, the minimal trace a caller needs to debug
// "why didn't this use my index" without instrumenting the hot path.
func LogAccess(log *zap.Logger, entityPath string, a plan.Access) {
	if log == nil {
		return
	}
	fields := []zap.Field{
		zap.String("entity", entityPath),
		zap.Uint8("accessKind", uint8(a.Kind)),
	}
	if a.IndexName != "" {
		fields = append(fields, zap.String("index", a.IndexName))
	}
	log.Debug("executor access plan chosen", fields...)
}
