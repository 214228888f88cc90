// Package main implements the spigletc binary: Spiglet back-end analysis
// (flow graph, liveness, register allocation) ahead of Kanga emission.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/config"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/frontend"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/kanga"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/logger"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/pipeline"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "analyze":
		if err := analyze(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("spigletc version %s\n", version)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`spigletc - Spiglet to Kanga back-end analysis

Usage:
    spigletc analyze <source.spg>   Print flow graph, liveness and register allocation
    spigletc version                Show version
    spigletc help                   Show this help message

Environment:
    SPIGLETC_SCRATCH_REGS   scratch registers t0..t9 to use (default 10)
    SPIGLETC_SAVED_REGS     saved registers s0..s7 to use (default 8)
    SPIGLETC_WORKERS        methods analysed in parallel (default GOMAXPROCS)
    SPIGLETC_LOG_LEVEL      debug, info, warn or error (default info)
    SPIGLETC_LOG_FORMAT     text or json (default text)
    SPIGLETC_LOG_FILE       append logs to this file instead of stderr
    SPIGLETC_LOG_DIR        write JSON logs to spigletc.log in this directory
    SPIGLETC_DEBUG          debug level logs with source positions`)
}

func analyze(args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("no input file")
	}

	cfg := config.FromEnv()
	if err := cfg.InitLogging(); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	logger.LogCompilerStart(args)
	start := time.Now()

	source := args[0]
	logger.LogFileProcessing(source)
	src, err := os.ReadFile(source)
	if err != nil {
		return err
	}

	prog, err := frontend.Parse(string(src))
	if err != nil {
		logger.LogCompilerComplete(false, time.Since(start).String())
		return fmt.Errorf("%s: %w", source, err)
	}

	unit, err := pipeline.New(cfg).Run(context.Background(), prog)
	if unit != nil {
		for _, m := range unit.Methods {
			dump(out, m)
		}
	}
	logger.LogCompilerComplete(err == nil, time.Since(start).String())
	return err
}

// dump prints the analysis of one method
func dump(w io.Writer, m *kanga.Method) {
	fmt.Fprintf(w, "%s [%d] [%d] [%d]\n", m.Name, m.Params, m.StackSlots, m.CallParams)

	for _, v := range m.Graph.Vertices() {
		marker := ""
		switch v.Index {
		case m.Graph.Entry:
			marker = " entry"
		case m.Graph.Exit:
			marker = " exit"
		}
		fmt.Fprintf(w, "  %3d%s -> %v def=%s use=%s in=%s out=%s\n",
			v.Index, marker, v.Succs, v.Def.String(), v.Use.String(), v.LiveIn.String(), v.LiveOut.String())
	}

	temps := make([]int, 0, len(m.Intervals))
	for t := range m.Intervals {
		temps = append(temps, t)
	}
	slices.Sort(temps)
	for _, t := range temps {
		iv := m.Intervals[t]
		home, _ := m.Home(t)
		fmt.Fprintf(w, "  TEMP %-4d [%d, %d] %s\n", t, iv.Start, iv.End, home)
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
}
