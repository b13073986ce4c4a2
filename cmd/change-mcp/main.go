package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/image-change-mcp/internal/config"
	"github.com/ironsheep/image-change-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const logLevelEnv = "IMAGE_CHANGE_LOG_LEVEL"

func main() {
	args := os.Args[1:]
	configPath := ""

	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Printf("change-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		case "compare":
			os.Exit(runCompare(args[1:], os.Stdout, os.Stderr))
		case "--config":
			if len(args) < 2 {
				fmt.Fprintln(os.Stderr, "--config requires a file path")
				os.Exit(2)
			}
			configPath = args[1]
		default:
			fmt.Fprintf(os.Stderr, "unknown argument: %s\n\n", args[0])
			printUsage()
			os.Exit(2)
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv(logLevelEnv) == "debug"
	if debug {
		log.Printf("Image Change MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	srv, err := server.New(cfg, server.WithVersion(Version), server.WithDebug(debug))
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printUsage() {
	fmt.Println("change-mcp - MCP server for image change detection")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  change-mcp [--config FILE]                 Run the MCP server on stdin/stdout")
	fmt.Println("  change-mcp compare [flags] BEFORE AFTER    Compare two images and print a JSON report")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  IMAGE_CHANGE_LOG_LEVEL=debug    Enable debug logging")
	fmt.Println("  IMAGE_CHANGE_CONFIG=FILE        Configuration file (YAML)")
	fmt.Println("  IMAGE_CHANGE_THRESHOLD          Default change threshold (0-1)")
	fmt.Println("  IMAGE_CHANGE_TOP_N              Default number of regions reported")
	fmt.Println("  IMAGE_CHANGE_MIN_AREA           Default minimum region area in pixels")
	fmt.Println()
	fmt.Println("Run 'change-mcp compare -h' for comparison flags.")
	fmt.Println("In server mode, configure it in your MCP client (e.g., Claude Desktop).")
}
