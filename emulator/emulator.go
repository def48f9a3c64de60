// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/ezrec/tinycpu/cpu"
	"github.com/ezrec/tinycpu/translate"
)

const (
	DEFAULT_FREQUENCY = 100 // Default instructions per second.
)

// Summary of a completed run.
type Summary struct {
	Instructions int           // Total instructions executed.
	Elapsed      time.Duration // Wall clock duration of the run.
}

// Emulator state. CPU + pacing + trace output.
type Emulator struct {
	Verbose  bool // If set, enables verbose logging.
	*cpu.Cpu      // Reference to the CPU simulation.

	Output io.Writer // Trace and summary output, or nil to discard.
	Quiet  bool      // If set, only the summary is written to Output.

	Sleep func(d time.Duration) // Pacing sleep, defaults to time.Sleep.
	Now   func() time.Time      // Clock, defaults to time.Now.
}

// NewEmulator creates a new emulator paced to a frequency.
func NewEmulator(frequency uint) (emu *Emulator, err error) {
	cp, err := cpu.NewCpu(frequency)
	if err != nil {
		return
	}

	emu = &Emulator{
		Cpu:   cp,
		Sleep: time.Sleep,
		Now:   time.Now,
	}

	return
}

// LineNo returns the source line number for the current instruction, or 0.
func (emu *Emulator) LineNo() int {
	dbg := emu.Cpu.Program.Debug(emu.Cpu.Ip)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	ip := emu.Cpu.Ip
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Ip: ip, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrIpEmpty) || errors.Is(err, cpu.ErrIpExit) {
		err = nil
		done = true
		return
	}

	return
}

// pace sleeps for what remains of the cycle begun at start.
func (emu *Emulator) pace(start time.Time) {
	elapsed := emu.Now().Sub(start)
	if elapsed < emu.Cpu.CycleDuration {
		emu.Sleep(emu.Cpu.CycleDuration - elapsed)
	}
}

// trace writes the trace line of a dispatched instruction.
func (emu *Emulator) trace(ip int, result uint16) {
	fmt.Fprintf(emu.Output, "%d: %d\n", ip, result)
}

// Run boots the CPU and executes the program from main until it exits,
// runs off the end of the program, or fails.
//
// An emulator can only be run once.
func (emu *Emulator) Run() (summary Summary, err error) {
	if emu.Output == nil {
		emu.Output = io.Discard
	}
	if !emu.Quiet {
		emu.Cpu.Trace = emu.trace
	}

	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Boot()
	if err != nil {
		return
	}

	start := emu.Now()
	defer func() {
		summary = Summary{
			Instructions: emu.Cpu.Ticks,
			Elapsed:      emu.Now().Sub(start),
		}
		if emu.Verbose {
			log.Printf("emulator: %v instructions in %v", summary.Instructions, summary.Elapsed)
		}
		if err == nil {
			// Plain numbers, never grouped or localized.
			translate.Fprintf(emu.Output, "Completed %s CPU instructions in %s seconds\n",
				strconv.Itoa(summary.Instructions),
				strconv.FormatFloat(summary.Elapsed.Seconds(), 'f', -1, 64))
		}
	}()

	for {
		cycle := emu.Now()

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}

		emu.pace(cycle)
	}
}
