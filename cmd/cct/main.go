package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/peterkuimelis/cct/internal/config"
	cctnet "github.com/peterkuimelis/cct/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	env := config.Load()

	cmd := os.Args[1]
	switch cmd {
	case "host":
		runHost(env, os.Args[2:])
	case "join":
		runJoin(env, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  cct host [--port P] [--task FILE] [--seed N]")
	fmt.Println("  cct join [--addr ADDR] [--id PARTICIPANT]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host    Start a task server and log the session")
	fmt.Println("  join    Connect to a task server and take the task")
}

func runHost(env config.Env, args []string) {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	port := fs.String("port", env.Port, "TCP port to listen on")
	taskFile := fs.String("task", env.TaskFile, "path to task options YAML (defaults when empty)")
	seed := fs.Int64("seed", env.Seed, "RNG seed for loss card placement (0 for random)")
	fs.Parse(args)

	srv := &cctnet.Server{
		TaskFile: *taskFile,
		Port:     *port,
		Seed:     *seed,
	}

	if err := srv.Run(context.Background()); err != nil {
		config.Exitf("Error: %v", err)
	}
}

func runJoin(env config.Env, args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", env.Addr, "server address to connect to")
	id := fs.String("id", "", "participant ID recorded with the session")
	fs.Parse(args)

	if err := cctnet.Connect(context.Background(), *addr, *id); err != nil {
		config.Exitf("Error: %v", err)
	}
}
