// Package parse reads streams of records.
//
// # Usage
//
//	rc, err := parse.Open("events.json.zst")
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
//	rd := parse.NewReader(rc)
//	for {
//	    rec, err := rd.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // use rec
//	}
//
// JSON streams may hold concatenated or newline delimited values. YAML
// streams hold one record per document. Object key order is kept.
//
// Open detects gzip, zstd, lz4 and s2 compressed inputs by their magic
// bytes, falling back to the file extension.
//
// # Related Packages
//
//   - github.com/signadot/recs/record - the record model
//   - github.com/signadot/recs/encode - writing record streams
package parse
