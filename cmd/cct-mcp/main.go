package main

import (
	"flag"

	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/cct/internal/config"
	cctmcp "github.com/peterkuimelis/cct/internal/mcp"
)

func main() {
	env := config.Load()

	taskFile := flag.String("task", env.TaskFile, "path to task options YAML (defaults when empty)")
	seed := flag.Int64("seed", env.Seed, "RNG seed used when start_task gets none (0 for random)")
	flag.Parse()

	cctmcp.SetTaskFile(*taskFile)
	cctmcp.SetSeed(*seed)

	s := server.NewMCPServer("cct", "1.0.0")
	cctmcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		config.Exitf("Error: %v", err)
	}
}
