package main

import (
	"log"
)

func main() {
	server, err := NewServer()
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}
	defer server.Shutdown()

	if err := server.Start(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
