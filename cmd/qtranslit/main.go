package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kobzarvs/qtranslit/internal/app"
)

func main() {
	bridgeURL := flag.String("bridge", "", "websocket URL of a qtranslit-bridge (default: call the provider in process)")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	debug := flag.Bool("debug", false, "write debug logs")
	flag.Parse()

	opts := app.Options{BridgeURL: *bridgeURL, MetricsAddr: *metricsAddr, Debug: *debug}
	if err := app.New(flag.Args(), opts).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "qtranslit:", err)
		os.Exit(1)
	}
}
