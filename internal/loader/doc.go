// Package loader reads and writes parameter streams.
//
// Weights live in SafeTensors files: an 8-byte little-endian header size, a
// JSON header mapping tensor names to dtype, shape and data offsets, then the
// raw tensor bytes. F32, F16, BF16 and F64 tensors are accepted and converted
// to float32 on load.
//
// A parameter stream is the ordered list of tensors Bind expects. Files written
// by WriteSafeTensors keep stream order in their data offsets, so a stream can
// be recovered even when the file's tensor names differ from the graph's:
//
//	desc, _ := graph.LoadDescription("acoustic.json")
//	model, _ := graph.Build(desc, cpu.New())
//	if err := loader.LoadInto("acoustic.safetensors", model); err != nil {
//	    log.Fatal(err)
//	}
package loader
