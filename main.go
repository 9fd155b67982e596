package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/susantabiswas/lc3vm/vm"
)

var cli struct {
	Image string `arg:"" type:"existingfile" help:"Path to an LC-3 program image."`
	Trace bool   `help:"Log each executed instruction to stderr."`
}

func init() {
	log.SetFlags(0)
	log.SetPrefix("lc3: ")
	log.SetOutput(os.Stderr)
}

func run() int {
	file, err := os.Open(cli.Image)
	if err != nil {
		log.Println(err)
		return 1
	}
	defer file.Close()

	terminal := vm.NewTerminal()
	machine := vm.New(terminal)

	if err := machine.LoadImage(file); err != nil {
		log.Println(err)
		return 1
	}

	if err := terminal.EnableRawMode(); err != nil {
		log.Println(err)
		return 1
	}
	defer terminal.Restore()

	installSignalHandler(terminal)

	if err := machine.Run(); err != nil {
		log.Println(err)
		return 1
	}

	return 0
}

// installSignalHandler restores the terminal before dying on an
// interrupt; the machine offers no mid-instruction cancellation.
func installSignalHandler(terminal *vm.Terminal) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-c
		terminal.Restore()
		fmt.Fprintln(os.Stderr)
		log.Printf("received signal: %v", sig)

		if num, ok := sig.(syscall.Signal); ok {
			os.Exit(128 + int(num))
		}
		os.Exit(1)
	}()
}

func main() {
	kong.Parse(&cli,
		kong.Name("lc3"),
		kong.Description("An LC-3 virtual machine."),
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			// usage problems exit 2; load and runtime failures exit 1
			if code != 0 {
				code = 2
			}
			os.Exit(code)
		}),
	)

	if cli.Trace {
		vm.EnableTrace()
	}

	os.Exit(run())
}
