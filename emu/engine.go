package emu

// Engine is an execution strategy for a Core. Exactly one engine drives a
// core; it is chosen once at startup.
type Engine interface {
	// Init acquires backend resources. A false return means the caller
	// must fall back to another engine.
	Init() bool

	// Execute runs guest instructions until the core's System stops. It is
	// not reentrant.
	Execute()

	// Clear reports that [addr, addr+size) was overwritten.
	Clear(addr, size uint32)

	// Shutdown releases backend resources.
	Shutdown()

	// Reset returns the core to its power-on state.
	Reset()

	// Implemented reports whether the engine can run on this host.
	Implemented() bool

	SetPGXPMode(mode uint32)
	Name() string
	IsDynarec() bool

	// Buffer exposes the code buffer of a translating engine, nil
	// otherwise.
	Buffer() []byte

	Core() *Core
}

var _ Engine = (*Interpreter)(nil)
