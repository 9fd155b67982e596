package vm

import (
	"encoding/binary"
	"fmt"
	"io"
)

// VM is a complete LC-3 machine: 65536 words of memory, eight general
// purpose registers, PC and COND, wired to a Console for keyboard and
// display access.
type VM struct {
	memory memory
	cpu    cpu
}

// New returns a zeroed machine with PC at the canonical user-program
// start and the condition register set to ZRO.
func New(console Console) *VM {
	vm := &VM{}
	vm.memory.console = console
	vm.cpu.memory = &vm.memory
	vm.cpu.console = console
	vm.cpu.internalRegisters.pc = UserSpaceStart
	vm.cpu.internalRegisters.cond = FLAG_ZRO
	return vm
}

// LoadImage places a program image into memory. The first big-endian
// word of the image is the origin; every following big-endian word is
// stored contiguously from there. Input past the end of memory, and a
// trailing odd byte, are ignored.
func (vm *VM) LoadImage(r io.Reader) error {
	scratch := make([]byte, 2)

	if _, err := io.ReadFull(r, scratch); err != nil {
		return fmt.Errorf("reading image origin: %w", err)
	}
	origin := binary.BigEndian.Uint16(scratch)

	count := 0
	for addr := int(origin); addr < MemorySize; addr++ {
		_, err := io.ReadFull(r, scratch)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		} else if err != nil {
			return fmt.Errorf("reading image word: %w", err)
		}

		vm.memory.cells[addr] = word(binary.BigEndian.Uint16(scratch))
		count++
	}

	trace.Printf("loaded %d words at origin 0x%04x", count, origin)
	return nil
}

// Run drives the fetch/decode/execute loop until a HALT trap stops the
// machine or an instruction aborts.
func (vm *VM) Run() error {
	vm.cpu.running = true

	for vm.cpu.running {
		if err := vm.cpu.step(); err != nil {
			return err
		}
	}

	return nil
}
