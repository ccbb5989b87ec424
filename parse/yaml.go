package parse

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/signadot/recs/record"
)

// fromYAML converts a document decoded with yaml.UseOrderedMap.
func fromYAML(v any) *record.Node {
	switch x := v.(type) {
	case nil:
		return record.Null()
	case yaml.MapSlice:
		res := record.NewObject()
		for _, item := range x {
			res.Set(yamlKey(item.Key), fromYAML(item.Value))
		}
		return res
	case map[string]any:
		m := make(map[string]*record.Node, len(x))
		for k, v := range x {
			m[k] = fromYAML(v)
		}
		return record.FromMap(m)
	case []any:
		res := record.NewArray()
		for _, elt := range x {
			res.Append(fromYAML(elt))
		}
		return res
	case string:
		return record.FromString(x)
	case bool:
		return record.FromBool(x)
	case int:
		return record.FromInt(int64(x))
	case int64:
		return record.FromInt(x)
	case uint64:
		return record.FromNumber(strconv.FormatUint(x, 10))
	case float64:
		if math.IsInf(x, 0) || math.IsNaN(x) {
			return record.FromString(strconv.FormatFloat(x, 'g', -1, 64))
		}
		return record.FromFloat(x)
	case *big.Int:
		return record.FromNumber(x.String())
	case time.Time:
		return record.FromString(x.Format(time.RFC3339Nano))
	default:
		return record.FromString(fmt.Sprint(x))
	}
}

func yamlKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}
