package emu

import (
	"golang.org/x/exp/slices"
)

// Symbol names a guest address.
type Symbol struct {
	Addr uint32
	Name string
}

// Symbols is an address to name table kept sorted by address.
type Symbols struct {
	entries []Symbol
}

// NewSymbols returns an empty table.
func NewSymbols() *Symbols {
	return &Symbols{}
}

func (s *Symbols) search(addr uint32) (int, bool) {
	return slices.BinarySearchFunc(s.entries, addr, func(e Symbol, a uint32) int {
		switch {
		case e.Addr < a:
			return -1
		case e.Addr > a:
			return 1
		}
		return 0
	})
}

// Add names addr, replacing any previous name.
func (s *Symbols) Add(addr uint32, name string) {
	i, found := s.search(addr)
	if found {
		s.entries[i].Name = name
		return
	}
	s.entries = slices.Insert(s.entries, i, Symbol{Addr: addr, Name: name})
}

// At returns the name of addr.
func (s *Symbols) At(addr uint32) (string, bool) {
	if s == nil {
		return "", false
	}
	i, found := s.search(addr)
	if !found {
		return "", false
	}
	return s.entries[i].Name, true
}

// Containing returns the closest symbol at or below addr.
func (s *Symbols) Containing(addr uint32) (Symbol, bool) {
	if s == nil {
		return Symbol{}, false
	}
	i, found := s.search(addr)
	if found {
		return s.entries[i], true
	}
	if i == 0 {
		return Symbol{}, false
	}
	return s.entries[i-1], true
}

// Len returns the number of symbols.
func (s *Symbols) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// All returns a copy of the table in address order.
func (s *Symbols) All() []Symbol {
	if s == nil {
		return nil
	}
	return slices.Clone(s.entries)
}
