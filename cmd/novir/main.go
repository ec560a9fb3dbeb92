// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/ezrec/novir/cpu"
	"github.com/ezrec/novir/disasm"
	"github.com/ezrec/novir/emulator"
	"github.com/ezrec/novir/internal"
	"github.com/ezrec/novir/translate"
)

var f = translate.From

var (
	ErrInputMissing   = errors.New(f("input file missing"))
	ErrOutputMissing  = errors.New(f("output file missing"))
	ErrCommandUnknown = errors.New(f("command unknown"))
)

// command is a subcommand of the simulator.
type command struct {
	usage string
	run   func(emu *emulator.Emulator, args []string) error
}

var commands = map[string]command{
	"new":       {"-o FILE", cmdNew},
	"write":     {"-i FILE [-o FILE] [-x] -a ADDR -d DATA", cmdWrite},
	"setpc":     {"-i FILE [-o FILE] [-x] -d DATA", cmdSetPc},
	"run":       {"-i FILE [-o FILE]", cmdRun},
	"step":      {"-i FILE [-o FILE] [-n COUNT]", cmdStep},
	"data":      {"-i FILE [-x] [-s START] [-e END]", cmdData},
	"code":      {"-i FILE [-x] [-s START] [-e END]", cmdCode},
	"registers": {"-i FILE [-x]", cmdRegisters},
	"stats":     {"-i FILE", cmdStats},
	"asm":       {"-i SOURCE -o FILE", cmdAsm},
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: %v [-arch neander|ahmes|ramses] [-v] COMMAND [options]\n\n", os.Args[0])

	var names []string
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-10s %v\n", name, commands[name].usage)
	}
	fmt.Fprintln(out)
	flag.PrintDefaults()
}

// options are the flags shared by the subcommands.
type options struct {
	flags  *flag.FlagSet
	input  string
	output string
	hex    bool
}

func newOptions(name string, output bool, hex bool) (opts *options) {
	opts = &options{
		flags: flag.NewFlagSet(name, flag.ExitOnError),
	}

	opts.flags.StringVar(&opts.input, "i", "", "Input .mem or .state file")
	if output {
		opts.flags.StringVar(&opts.output, "o", "", "Output .mem or .state file (default: the input file)")
	}
	if hex {
		opts.flags.BoolVar(&opts.hex, "x", false, "Hexadecimal numbers")
	}

	return
}

// parse parses the arguments, and loads the input file.
func (opts *options) parse(emu *emulator.Emulator, args []string) (err error) {
	err = opts.flags.Parse(args)
	if err != nil {
		return
	}

	if opts.flags.NArg() != 0 {
		err = fmt.Errorf("%w: %v", cpu.ErrOpcodeExtraArgs, opts.flags.Args())
		return
	}

	if len(opts.input) == 0 {
		err = ErrInputMissing
		return
	}

	err = emu.Load(opts.input)
	return
}

// save writes the machine to the output file, or back to the input file.
func (opts *options) save(emu *emulator.Emulator) (err error) {
	path := opts.output
	if len(path) == 0 {
		path = opts.input
	}

	err = emu.Save(path)
	return
}

// parseRange parses optional start and end addresses.
func parseRange(start_text, end_text string, hex bool, start, end byte) (byte, byte, error) {
	var err error
	if len(start_text) != 0 {
		start, err = internal.ParseByte(start_text, hex)
		if err != nil {
			return 0, 0, err
		}
	}
	if len(end_text) != 0 {
		end, err = internal.ParseByte(end_text, hex)
		if err != nil {
			return 0, 0, err
		}
	}

	return start, end, nil
}

func cmdNew(emu *emulator.Emulator, args []string) (err error) {
	flags := flag.NewFlagSet("new", flag.ExitOnError)
	var output string
	flags.StringVar(&output, "o", "", "Output .mem or .state file")

	err = flags.Parse(args)
	if err != nil {
		return
	}
	if len(output) == 0 {
		err = ErrOutputMissing
		return
	}

	emu.Reset()
	err = emu.Save(output)
	return
}

func cmdWrite(emu *emulator.Emulator, args []string) (err error) {
	opts := newOptions("write", true, true)
	var addr_text, data_text string
	opts.flags.StringVar(&addr_text, "a", "", "Address")
	opts.flags.StringVar(&data_text, "d", "", "Data")

	err = opts.parse(emu, args)
	if err != nil {
		return
	}

	addr, err := internal.ParseByte(addr_text, opts.hex)
	if err != nil {
		return
	}
	data, err := internal.ParseByte(data_text, opts.hex)
	if err != nil {
		return
	}

	emu.Cpu.WriteRaw(addr, data)

	err = opts.save(emu)
	return
}

func cmdSetPc(emu *emulator.Emulator, args []string) (err error) {
	opts := newOptions("setpc", true, true)
	var data_text string
	opts.flags.StringVar(&data_text, "d", "", "Program counter")

	err = opts.parse(emu, args)
	if err != nil {
		return
	}

	pc, err := internal.ParseByte(data_text, opts.hex)
	if err != nil {
		return
	}

	emu.Cpu.SetPc(pc)

	err = opts.save(emu)
	return
}

func cmdRun(emu *emulator.Emulator, args []string) (err error) {
	opts := newOptions("run", true, false)

	err = opts.parse(emu, args)
	if err != nil {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx)
	if err != nil {
		// Keep the interrupted machine.
		err = errors.Join(err, opts.save(emu))
		return
	}

	err = opts.save(emu)
	return
}

func cmdStep(emu *emulator.Emulator, args []string) (err error) {
	opts := newOptions("step", true, false)
	var count int
	opts.flags.IntVar(&count, "n", 1, "Number of cycles")

	err = opts.parse(emu, args)
	if err != nil {
		return
	}

	emu.Step(count)

	err = opts.save(emu)
	return
}

func cmdListing(name string, start, end byte, listing func(emu *emulator.Emulator, start, end byte, base disasm.Base) error) func(*emulator.Emulator, []string) error {
	return func(emu *emulator.Emulator, args []string) (err error) {
		opts := newOptions(name, false, true)
		var start_text, end_text string
		opts.flags.StringVar(&start_text, "s", "", fmt.Sprintf("Start address (default %v)", start))
		opts.flags.StringVar(&end_text, "e", "", fmt.Sprintf("End address (default %v)", end))

		err = opts.parse(emu, args)
		if err != nil {
			return
		}

		start, end, err := parseRange(start_text, end_text, opts.hex, start, end)
		if err != nil {
			return
		}

		err = listing(emu, start, end, disasm.BaseOf(opts.hex))
		return
	}
}

var cmdData = cmdListing("data", cpu.ARENA_DATA, cpu.ARENA_TOP,
	func(emu *emulator.Emulator, start, end byte, base disasm.Base) error {
		return disasm.Data(os.Stdout, emu.Cpu, start, end, base)
	})

var cmdCode = cmdListing("code", cpu.ARENA_CODE, cpu.ARENA_DATA-1,
	func(emu *emulator.Emulator, start, end byte, base disasm.Base) error {
		return disasm.Code(os.Stdout, emu.Cpu, start, end, base)
	})

func cmdRegisters(emu *emulator.Emulator, args []string) (err error) {
	opts := newOptions("registers", false, true)

	err = opts.parse(emu, args)
	if err != nil {
		return
	}

	err = disasm.Registers(os.Stdout, emu.Cpu, disasm.BaseOf(opts.hex))
	return
}

func cmdStats(emu *emulator.Emulator, args []string) (err error) {
	opts := newOptions("stats", false, false)

	err = opts.parse(emu, args)
	if err != nil {
		return
	}

	err = disasm.Stats(os.Stdout, emu.Cpu)
	return
}

func cmdAsm(emu *emulator.Emulator, args []string) (err error) {
	flags := flag.NewFlagSet("asm", flag.ExitOnError)
	var source, output string
	flags.StringVar(&source, "i", "", "Assembly source file")
	flags.StringVar(&output, "o", "", "Output .mem or .state file")

	err = flags.Parse(args)
	if err != nil {
		return
	}
	if len(source) == 0 {
		err = ErrInputMissing
		return
	}
	if len(output) == 0 {
		err = ErrOutputMissing
		return
	}

	inf, err := os.Open(source)
	if err != nil {
		return
	}
	defer inf.Close()

	err = emu.Assemble(inf)
	if err != nil {
		err = fmt.Errorf("%v: %w", source, err)
		return
	}

	err = emu.Save(output)
	return
}

func main() {
	var arch_name string
	var verbose bool

	flag.StringVar(&arch_name, "arch", "neander", "Architecture (neander, ahmes, ramses)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Usage = usage

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	arch, err := cpu.ArchByName(arch_name)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	name := strings.ToLower(flag.Arg(0))
	cmd, ok := commands[name]
	if !ok {
		log.Fatalf("%v: %v: %v", os.Args[0], ErrCommandUnknown, name)
	}

	emu := emulator.NewEmulator(arch)
	emu.Verbose = verbose

	err = cmd.run(emu, flag.Args()[1:])
	if err != nil {
		log.Fatalf("%v: %v", name, err)
	}
}
