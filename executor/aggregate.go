package executor

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/dragginzgame/icydb-go/icyerr"
	"github.com/dragginzgame/icydb-go/plan"
	"github.com/dragginzgame/icydb-go/value"
)

// Aggregate reduces rows (already filtered, not yet paginated) to a
// single value per the plan's declared aggregate. Sum/Min/Max ignore
// rows where the field is missing or null; Count always counts the row
// itself, independent of any field.
func Aggregate(rows []Row, agg plan.Aggregate) (value.Value, error) {
	switch agg.Kind {
	case plan.AggregateCount:
		return value.Uint(uint64(len(rows))), nil

	case plan.AggregateSum:
		sum := decimal.Zero
		for _, r := range rows {
			v, ok := r.Fields[agg.Field]
			if !ok || v.IsNull() {
				continue
			}
			d, err := toDecimal(v)
			if err != nil {
				return value.Value{}, err
			}
			sum = sum.Add(d)
		}
		return value.DecimalV(sum), nil

	case plan.AggregateMin, plan.AggregateMax:
		var best *value.Value
		for i := range rows {
			v, ok := rows[i].Fields[agg.Field]
			if !ok || v.IsNull() {
				continue
			}
			if best == nil {
				b := v
				best = &b
				continue
			}
			c := value.Compare(v, *best)
			if (agg.Kind == plan.AggregateMin && c < 0) || (agg.Kind == plan.AggregateMax && c > 0) {
				b := v
				best = &b
			}
		}
		if best == nil {
			return value.Null(), nil
		}
		return *best, nil

	default:
		return value.Value{}, icyerr.Invariant(icyerr.OriginExecutor, "unknown aggregate kind %d", agg.Kind)
	}
}

func toDecimal(v value.Value) (decimal.Decimal, error) {
	switch v.Kind() {
	case value.KindDecimal:
		d, _ := v.AsDecimal()
		return d, nil
	case value.KindInt:
		i, _ := v.AsInt()
		return decimal.NewFromInt(i), nil
	case value.KindUint:
		u, _ := v.AsUint()
		return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0), nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		return decimal.NewFromFloat(f), nil
	default:
		return decimal.Decimal{}, icyerr.UnsupportedErr(icyerr.OriginExecutor, "field is not numeric: %s", v.Kind())
	}
}
