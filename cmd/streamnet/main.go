// Command streamnet builds, inspects, runs and exports streaming acoustic
// graphs.
//
// Usage:
//
//	streamnet describe --graph acoustic.json
//	streamnet run --graph acoustic.json --weights acoustic.safetensors --input speech.wav
//	streamnet export --graph acoustic.json --weights acoustic.safetensors --export acoustic.born
//	streamnet run --weights acoustic.born --chunk-frames 8 --start
//
// A run configuration file (--config) can hold the same settings; flags
// override it.
package main

import (
	"context"
	"os"
	"os/signal"

	"k8s.io/klog/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		klog.Errorf("%+v", err)
	}
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
