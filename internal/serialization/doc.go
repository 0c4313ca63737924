// Package serialization exports a weighted graph as a single reduced-precision
// artifact for deployment.
//
// An artifact holds the graph description and its parameter stream:
//
//	Format Structure:
//	  [4 bytes: Magic "BORN"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON (description, tensor metadata, SHA-256 of the data)]
//	  [Tensor data: little-endian values, 64-byte aligned, stream order]
//
// Export is a one-shot transform of an already-built model; it never touches
// streaming state. ReadArtifact and Load reverse it, widening values back to
// float32.
//
// Example usage:
//
//	if err := serialization.Export("acoustic.born", model, serialization.DefaultExportOptions()); err != nil {
//	    log.Fatal(err)
//	}
//
//	model, err := serialization.Load("acoustic.born", cpu.New())
package serialization
