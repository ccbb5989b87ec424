// Package record provides the in-memory representation of records flowing
// through recs pipelines.
//
// A record is a tree of [Node] values: null, bool, number, string, array and
// object. Objects remember the order in which their keys were inserted and
// that order survives decoding and encoding, so operations that enumerate
// keys (key groups, output) are deterministic.
//
//	rec, err := record.Parse([]byte(`{"host":"a","lat":{"p50":3}}`))
//	v, ok := rec.Get("host")
//	rec.Set("seen", record.FromBool(true))
//
// Numbers are kept as their JSON text; use [Node.ToAny] to obtain int64 or
// float64 values.
package record
