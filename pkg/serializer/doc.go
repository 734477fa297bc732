// Package serializer writes collection results to various output formats.
//
// Three formats are supported:
//   - JSON: machine-readable structured data with indentation
//   - YAML: human-readable format
//   - Table: flattened key/value rows for quick inspection
//
// Usage:
//
//	w := serializer.NewWriter(serializer.FormatJSON, os.Stdout)
//	defer w.Close()
//	if err := w.Serialize(ctx, snapshot); err != nil {
//		log.Fatal(err)
//	}
package serializer
