package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"sliver/internal/lsp"
)

func main() {
	engineCmd := flag.String("engine", "", "analysis engine command to spawn (overrides client options)")
	remote := flag.String("remote", "", "connect to a running engine at host:port instead of spawning")
	statePath := flag.String("state", "", "path of the position database")
	verbosity := flag.Int("verbosity", 1, "log verbosity")
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	// Create logs directory if it doesn't exist
	logsDir := filepath.Join(os.TempDir(), "sliver")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		log.Fatalf("Failed to create logs directory: %v", err)
	}

	logFile, err := os.OpenFile(
		filepath.Join(logsDir, "sliver.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()

	// Stdout belongs to the LSP transport; logs go to stderr and the file.
	multiWriter := io.MultiWriter(os.Stderr, logFile)
	log.SetOutput(multiWriter)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	log.Println("Starting sliver language server...")

	server, err := lsp.NewServer(lsp.Config{
		LocalCommand:  *engineCmd,
		RemoteAddress: *remote,
		StatePath:     *statePath,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := server.RunStdio(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
