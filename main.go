package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ocupoint/leweicam/pkg/lewei"
)

const version = "0.1.0"

func nowStamp() string {
	return time.Now().Format("20060102-150405.000000")
}

// globalFlags holds the flags shared by every subcommand.
type globalFlags struct {
	ip         string
	cmdPort    int
	streamPort int
	quiet      bool
}

func parseGlobalFlags(args []string) (*globalFlags, []string) {
	fs := flag.NewFlagSet("leweicam", flag.ExitOnError)
	g := &globalFlags{}
	fs.StringVar(&g.ip, "ip", lewei.DefaultCamIP, "camera IP address")
	fs.IntVar(&g.cmdPort, "command-port", lewei.DefaultCmdPort, "command port")
	fs.IntVar(&g.streamPort, "stream-port", lewei.DefaultStreamPort, "stream port")
	fs.BoolVar(&g.quiet, "q", false, "suppress progress output")
	fs.BoolVar(&g.quiet, "quiet", false, "suppress progress output")
	showVersion := fs.Bool("v", false, "print version and exit")
	fs.BoolVar(showVersion, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [global flags] <subcommand> [args]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Subcommands: baud, camflip, config, file, heartbeat, pic, pic2, rec, reformat, res, stream, time, wifi")
		fmt.Fprintln(os.Stderr, "\nGlobal flags:")
		fs.PrintDefaults()
	}

	// Global flags may appear before the subcommand name; flag parsing
	// stops at the first non-flag argument, which names the subcommand.
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *showVersion {
		fmt.Println("leweicam", version)
		os.Exit(0)
	}
	return g, fs.Args()
}

func main() {
	g, rest := parseGlobalFlags(os.Args[1:])
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "no subcommand given")
		os.Exit(1)
	}

	cam := lewei.NewCamera(g.ip, lewei.Options{CmdPort: g.cmdPort, StreamPort: g.streamPort})

	handler, ok := dispatchTable[rest[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", rest[0])
		os.Exit(1)
	}

	if err := handler(cam, g, rest[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
