// Package backend selects the execution engine for a core.
package backend

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/r3ksim/dynarec"
	"github.com/sarchlab/r3ksim/emu"
)

// Kind names an execution engine.
type Kind int

// Engine kinds.
const (
	Interpreter Kind = iota
	Recompiler
)

func (k Kind) String() string {
	switch k {
	case Interpreter:
		return "interpreter"
	case Recompiler:
		return "recompiler"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a command line name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "interpreter", "interp", "int":
		return Interpreter, nil
	case "recompiler", "dynarec", "rec":
		return Recompiler, nil
	}
	return 0, fmt.Errorf("unknown backend %q", name)
}

// New returns an initialized engine of the requested kind. When the
// recompiler is unavailable on this host or fails to initialize, a warning
// is logged and the interpreter is returned instead.
func New(kind Kind, core *emu.Core, opts ...dynarec.Option) emu.Engine {
	if kind == Recompiler {
		r := dynarec.New(core, opts...)
		switch {
		case !r.Implemented():
			core.Logger().WithField("backend", kind).
				Warn("recompiler not available on this host, falling back to interpreter")
		case !r.Init():
			core.Logger().WithField("backend", kind).
				Warn("recompiler failed to initialize, falling back to interpreter")
		default:
			return r
		}
	}

	interp := emu.NewInterpreter(core)
	if !interp.Init() {
		panic("backend: interpreter failed to initialize")
	}
	return interp
}

// Fields describes an engine for structured logs.
func Fields(e emu.Engine) logrus.Fields {
	return logrus.Fields{
		"backend": e.Name(),
		"dynarec": e.IsDynarec(),
	}
}
