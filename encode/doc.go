// Package encode writes streams of records.
//
// # Usage
//
//	w := encode.NewWriter(os.Stdout)
//	if err := w.Write(rec); err != nil {
//	    return err
//	}
//
//	// YAML documents, one per record
//	w := encode.NewWriter(os.Stdout, encode.EncodeFormat(format.YAMLFormat))
//
//	// colorized JSON lines
//	w := encode.NewWriter(os.Stdout, encode.EncodeColors(encode.NewColors()))
//
// JSON records are written one per line unless an indent is set. Object
// key order is kept in both formats.
//
// # Related Packages
//
//   - github.com/signadot/recs/record - the record model
//   - github.com/signadot/recs/parse - reading record streams
package encode
