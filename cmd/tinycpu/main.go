// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ezrec/tinycpu/cpu"
	"github.com/ezrec/tinycpu/emulator"
)

func main() {
	var compile string
	var frequency uint
	var quiet bool
	var verbose bool
	var limit int

	asm := &cpu.Assembler{}

	flag.StringVar(&compile, "c", "", ".tc file to compile and run")
	flag.UintVar(&frequency, "f", emulator.DEFAULT_FREQUENCY, "Instructions per second")
	flag.BoolVar(&quiet, "q", false, "Quiet mode, only print the summary")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.IntVar(&limit, "l", 0, "Call stack depth limit, 0 for none")
	flag.Func("D", "Predefine an equate, as NAME=VALUE", func(define string) error {
		name, value, ok := strings.Cut(define, "=")
		if !ok || len(name) == 0 {
			return fmt.Errorf("expected NAME=VALUE, got %q", define)
		}
		asm.Predefine(name, value)
		return nil
	})

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(compile) == 0 {
		log.Fatalf("%v: -c FILE is required", os.Args[0])
	}

	inf, err := os.Open(compile)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}
	defer inf.Close()

	asm.Verbose = verbose
	prog, err := asm.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	emu, err := emulator.NewEmulator(frequency)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
	emu.Verbose = verbose
	emu.Quiet = quiet
	emu.Output = os.Stdout
	emu.Cpu.Stack.Limit = limit

	err = emu.LoadProgram(prog)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	_, err = emu.Run()
	if err != nil {
		if verbose {
			log.Print(emu.Cpu.String())
		}
		log.Fatalf("%v: %v", compile, err)
	}
}
