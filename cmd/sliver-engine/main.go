package main

import (
	"flag"
	"log"
	"net"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"sliver/internal/engine"
)

func main() {
	listen := flag.String("listen", "", "serve on a TCP address instead of stdio, e.g. :9474")
	verbosity := flag.Int("verbosity", 1, "log verbosity")
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	if *listen == "" {
		// Child-process mode: one session over stdio.
		engine.ServeStdio(os.Stdin, os.Stdout)
		return
	}

	listener, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", *listen, err)
	}

	log.Printf("Slicing engine listening on %s", listener.Addr())
	if err := engine.NewServer(listener).Serve(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
