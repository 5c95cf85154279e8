package emu

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Kernel call tables. The firmware dispatches through fixed entry points in
// low RAM with the function number in t1.
const (
	KernelA0 = 0xa0
	KernelB0 = 0xb0
	KernelC0 = 0xc0
)

// Argument registers.
const (
	regA0 = 4
	regA1 = 5
	regA2 = 6
	regA3 = 7
)

// ttyFD is the file descriptor of the debug console.
const ttyFD = 1

// maxKernelWrite bounds a single intercepted write().
const maxKernelWrite = 1 << 16

// maxKernelString bounds an intercepted puts().
const maxKernelString = 4096

// interceptKernel observes a fetch at pc. It never changes guest state.
func (c *Core) interceptKernel(pc uint32) {
	base := (pc >> 20) & 0xffc
	if base != 0x000 && base != 0x800 && base != 0xa00 {
		return
	}

	table := pc & c.ramMask
	if table != KernelA0 && table != KernelB0 && table != KernelC0 {
		return
	}

	call := c.Regs.GPR.R[RegT1] & 0xff
	if c.tty != nil {
		switch table {
		case KernelA0:
			c.processA0(call)
		case KernelB0:
			c.processB0(call)
		}
	}

	if c.kernelLog {
		c.logKernelCall(table, call)
	}
}

func (c *Core) processA0(call uint32) {
	switch call {
	case 0x03:
		c.ttyWrite()
	case 0x09:
		c.ttyPutc()
	case 0x3c:
		c.ttyPutchar()
	case 0x3e:
		c.ttyPuts()
	}
}

func (c *Core) processB0(call uint32) {
	switch call {
	case 0x35:
		c.ttyWrite()
	case 0x3b:
		c.ttyPutc()
	case 0x3d:
		c.ttyPutchar()
	case 0x3f:
		c.ttyPuts()
	}
}

// write(fd, buf, len)
func (c *Core) ttyWrite() {
	r := &c.Regs.GPR
	if r.R[regA0] != ttyFD {
		return
	}
	n := r.R[regA2]
	if n > maxKernelWrite {
		n = maxKernelWrite
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = c.mem.Read8(r.R[regA1]+uint32(i), ReadDebug)
	}
	c.emit(buf)
}

// putc(char, fd)
func (c *Core) ttyPutc() {
	r := &c.Regs.GPR
	if r.R[regA1] != ttyFD {
		return
	}
	c.emit([]byte{byte(r.R[regA0])})
}

// putchar(char)
func (c *Core) ttyPutchar() {
	c.emit([]byte{byte(c.Regs.GPR.R[regA0])})
}

// puts(str)
func (c *Core) ttyPuts() {
	s := ReadString(c.mem, c.Regs.GPR.R[regA0], maxKernelString)
	c.emit([]byte(s))
}

func (c *Core) emit(b []byte) {
	if _, err := c.tty.Write(b); err != nil {
		c.logger.WithError(err).Warn("tty write failed")
	}
}

func (c *Core) logKernelCall(table, call uint32) {
	r := &c.Regs.GPR
	c.logger.WithFields(logrus.Fields{
		"call": KernelCallName(table, call),
		"a0":   fmt.Sprintf("%08x", r.R[regA0]),
		"a1":   fmt.Sprintf("%08x", r.R[regA1]),
		"a2":   fmt.Sprintf("%08x", r.R[regA2]),
		"a3":   fmt.Sprintf("%08x", r.R[regA3]),
		"ra":   fmt.Sprintf("%08x", r.R[RegRA]),
	}).Info("kernel call")
}

// KernelCallName returns a printable name for call in table.
func KernelCallName(table, call uint32) string {
	var names map[uint32]string
	switch table {
	case KernelA0:
		names = kernelA0Names
	case KernelB0:
		names = kernelB0Names
	case KernelC0:
		names = kernelC0Names
	}
	if n, ok := names[call]; ok {
		return fmt.Sprintf("%s(%02x:%s)", kernelTablePrefix(table), call, n)
	}
	return fmt.Sprintf("%s(%02x)", kernelTablePrefix(table), call)
}

func kernelTablePrefix(table uint32) string {
	return fmt.Sprintf("%X", table)
}

// SetTTY redirects intercepted console output. A nil writer disables the
// redirection.
func (c *Core) SetTTY(w io.Writer) {
	c.tty = w
}

// SetKernelLog toggles logging of kernel calls.
func (c *Core) SetKernelLog(on bool) {
	c.kernelLog = on
}

var kernelA0Names = map[uint32]string{
	0x00: "open", 0x01: "lseek", 0x02: "read", 0x03: "write",
	0x04: "close", 0x05: "ioctl", 0x06: "exit", 0x07: "isatty",
	0x08: "getc", 0x09: "putc", 0x0a: "todigit", 0x0b: "atof",
	0x0c: "strtoul", 0x0d: "strtol", 0x0e: "abs", 0x0f: "labs",
	0x10: "atoi", 0x11: "atol", 0x12: "atob", 0x13: "setjmp",
	0x14: "longjmp", 0x15: "strcat", 0x16: "strncat", 0x17: "strcmp",
	0x18: "strncmp", 0x19: "strcpy", 0x1a: "strncpy", 0x1b: "strlen",
	0x1c: "index", 0x1d: "rindex", 0x1e: "strchr", 0x1f: "strrchr",
	0x20: "strpbrk", 0x21: "strspn", 0x22: "strcspn", 0x23: "strtok",
	0x24: "strstr", 0x25: "toupper", 0x26: "tolower", 0x27: "bcopy",
	0x28: "bzero", 0x29: "bcmp", 0x2a: "memcpy", 0x2b: "memset",
	0x2c: "memmove", 0x2d: "memcmp", 0x2e: "memchr", 0x2f: "rand",
	0x30: "srand", 0x31: "qsort", 0x32: "strtod", 0x33: "malloc",
	0x34: "free", 0x35: "lsearch", 0x36: "bsearch", 0x37: "calloc",
	0x38: "realloc", 0x39: "InitHeap", 0x3a: "_exit", 0x3b: "getchar",
	0x3c: "putchar", 0x3d: "gets", 0x3e: "puts", 0x3f: "printf",
	0x40: "SystemErrorUnresolvedException", 0x41: "LoadTest", 0x42: "Load",
	0x43: "Exec", 0x44: "FlushCache", 0x45: "init_a0_b0_c0_vectors",
	0x46: "GPU_dw", 0x47: "gpu_send_dma", 0x48: "SendGP1Command",
	0x49: "GPU_cw", 0x4a: "GPU_cwp", 0x4b: "send_gpu_linked_list",
	0x4c: "gpu_abort_dma", 0x4d: "GetGPUStatus", 0x4e: "gpu_sync",
	0x51: "LoadExec", 0x52: "GetSysSp", 0x54: "_96_init", 0x55: "_bu_init",
	0x56: "_96_remove", 0x70: "_bu_init", 0x71: "_96_init", 0x72: "_96_remove",
	0x78: "_96_CdSeekL", 0x7c: "_96_CdGetStatus", 0x7e: "_96_CdRead",
	0x95: "_96_CdInit", 0x96: "_96_CdReset", 0x9f: "SetMem", 0xa0: "_boot",
	0xa1: "SystemError", 0xa2: "EnqueueCdIntr", 0xa3: "DequeueCdIntr",
	0xab: "_card_info", 0xac: "_card_load",
}

var kernelB0Names = map[uint32]string{
	0x00: "alloc_kernel_memory", 0x01: "free_kernel_memory",
	0x02: "init_timer", 0x03: "get_timer", 0x04: "enable_timer_irq",
	0x05: "disable_timer_irq", 0x06: "restart_timer", 0x07: "DeliverEvent",
	0x08: "OpenEvent", 0x09: "CloseEvent", 0x0a: "WaitEvent",
	0x0b: "TestEvent", 0x0c: "EnableEvent", 0x0d: "DisableEvent",
	0x0e: "OpenThread", 0x0f: "CloseThread", 0x10: "ChangeThread",
	0x12: "InitPad", 0x13: "StartPad", 0x14: "StopPad",
	0x15: "OutdatedPadInitAndStart", 0x16: "OutdatedPadGetButtons",
	0x17: "ReturnFromException", 0x18: "SetDefaultExitFromException",
	0x19: "SetCustomExitFromException", 0x20: "UnDeliverEvent",
	0x32: "open", 0x33: "lseek", 0x34: "read", 0x35: "write",
	0x36: "close", 0x37: "ioctl", 0x38: "exit", 0x39: "isatty",
	0x3a: "getc", 0x3b: "putc", 0x3c: "getchar", 0x3d: "putchar",
	0x3e: "gets", 0x3f: "puts", 0x40: "cd", 0x41: "format",
	0x42: "firstfile", 0x43: "nextfile", 0x44: "rename", 0x45: "delete",
	0x46: "undelete", 0x47: "AddDevice", 0x48: "RemoveDevice",
	0x49: "PrintInstalledDevices", 0x4a: "InitCard", 0x4b: "StartCard",
	0x4c: "StopCard", 0x4e: "write_card_sector", 0x4f: "read_card_sector",
	0x50: "allow_new_card", 0x51: "Krom2RawAdd", 0x53: "Krom2Offset",
	0x54: "GetLastError", 0x55: "GetLastFileError", 0x56: "GetC0Table",
	0x57: "GetB0Table", 0x58: "get_bu_callback_port", 0x59: "testdevice",
	0x5b: "ChangeClearPad", 0x5c: "get_card_status", 0x5d: "wait_card_status",
}

var kernelC0Names = map[uint32]string{
	0x00: "EnqueueTimerAndVblankIrqs", 0x01: "EnqueueSyscallHandler",
	0x02: "SysEnqIntRP", 0x03: "SysDeqIntRP", 0x04: "get_free_EvCB_slot",
	0x05: "get_free_TCB_slot", 0x06: "ExceptionHandler",
	0x07: "InstallExceptionHandlers", 0x08: "SysInitMemory",
	0x09: "SysInitKernelVariables", 0x0a: "ChangeClearRCnt",
	0x0c: "InitDefInt", 0x0d: "SetIrqAutoAck", 0x12: "InstallDevices",
	0x13: "FlushStdInOutPut", 0x15: "tty_cdevinput", 0x16: "tty_cdevscan",
	0x17: "tty_circgetc", 0x18: "tty_circputc", 0x19: "ioabort",
	0x1a: "set_card_find_mode", 0x1b: "KernelRedirect",
	0x1c: "AdjustA0Table", 0x1d: "get_card_find_mode",
}
