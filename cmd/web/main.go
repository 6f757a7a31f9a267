package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/peterkuimelis/cct/internal/config"
	"github.com/peterkuimelis/cct/internal/web"
)

func main() {
	env := config.Load()

	port := flag.Int("port", env.HTTPPort, "HTTP port to listen on")
	taskFile := flag.String("task", env.TaskFile, "path to task options YAML (defaults when empty)")
	seed := flag.Int64("seed", env.Seed, "RNG seed for every session (0 for random)")
	flag.Parse()

	srv, err := web.NewServer(*taskFile, *seed)
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("cct web UI listening on http://localhost:%d", *port)
	if err := srv.ListenAndServe(addr); err != nil {
		config.Exitf("Error: %v", err)
	}
}
