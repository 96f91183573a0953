package model

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/augur/pkg/domain/types"
)

// Markers of the instruction language that the planner itself relies on
const (
	FunctionMarker = "ƒ"
	ReturnMarker   = "⟼"
	PrintMarker    = "⌽"
	EntryPoint     = "ƒmain()"
	Invocation     = "main()"
)

// Symbol describes one instruction marker of the language
type Symbol struct {
	Marker      string
	Name        string
	Description string
	Capability  types.Capability
	// Prefix symbols only match at the start of a trimmed line
	Prefix bool
}

// SymbolTable is an ordered set of symbols. Lookup honours registration order.
type SymbolTable struct {
	symbols []Symbol
	byName  map[string]int
}

// NewSymbolTable returns an empty symbol table
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]int)}
}

// Register adds s. It fails on an empty or duplicated marker or name and on an
// unknown capability.
func (t *SymbolTable) Register(s Symbol) error {
	if s.Marker == "" {
		return goerr.New("symbol marker is required", goerr.V("name", s.Name))
	}
	if s.Name == "" {
		return goerr.New("symbol name is required", goerr.V("marker", s.Marker))
	}
	if !s.Capability.IsValid() {
		return goerr.New("invalid symbol capability", goerr.V("name", s.Name), goerr.V("capability", s.Capability))
	}
	if _, ok := t.byName[s.Name]; ok {
		return goerr.New("duplicate symbol name", goerr.V("name", s.Name))
	}
	for _, existing := range t.symbols {
		if existing.Marker == s.Marker {
			return goerr.New("duplicate symbol marker", goerr.V("marker", s.Marker), goerr.V("name", s.Name))
		}
	}

	t.byName[s.Name] = len(t.symbols)
	t.symbols = append(t.symbols, s)
	return nil
}

// Get returns the symbol registered under name
func (t *SymbolTable) Get(name string) (Symbol, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Symbol{}, false
	}
	return t.symbols[i], true
}

// In reports whether s appears in the trimmed line
func (s Symbol) In(line string) bool {
	if s.Prefix {
		return strings.HasPrefix(line, s.Marker)
	}
	return strings.Contains(line, s.Marker)
}

// Lookup returns the first symbol recognised in line
func (t *SymbolTable) Lookup(line string) (Symbol, bool) {
	line = strings.TrimSpace(line)
	for _, s := range t.symbols {
		if s.In(line) {
			return s, true
		}
	}
	return Symbol{}, false
}

// Symbols returns the registered symbols in registration order
func (t *SymbolTable) Symbols() []Symbol {
	out := make([]Symbol, len(t.symbols))
	copy(out, t.symbols)
	return out
}

// Capabilities returns the distinct capabilities code uses, in first-seen order.
// Every symbol on a line counts, not only the first one.
func (t *SymbolTable) Capabilities(code string) []types.Capability {
	var caps []types.Capability
	seen := make(map[types.Capability]bool)
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		for _, s := range t.symbols {
			if seen[s.Capability] || !s.In(line) {
				continue
			}
			seen[s.Capability] = true
			caps = append(caps, s.Capability)
		}
	}
	return caps
}

var defaultSymbols = []Symbol{
	{Marker: FunctionMarker, Name: "function", Description: "Function definition", Capability: types.CapabilityControl, Prefix: true},
	{Marker: PrintMarker + "(", Name: "print", Description: "Print statement", Capability: types.CapabilityControl},
	{Marker: "📂(", Name: "list_directory", Description: "List directory", Capability: types.CapabilityFile},
	{Marker: "📖(", Name: "read", Description: "Read file or memory", Capability: types.CapabilityFile},
	{Marker: "✍(", Name: "write", Description: "Write file", Capability: types.CapabilityFile},
	{Marker: "↗(", Name: "http_get", Description: "HTTP GET request", Capability: types.CapabilityNetwork},
	{Marker: "📝(", Name: "store", Description: "Store in memory", Capability: types.CapabilityMemory},
	{Marker: "📥(", Name: "read_input", Description: "Get input from file", Capability: types.CapabilityInput},
	{Marker: "📤(", Name: "write_output", Description: "Write output to file", Capability: types.CapabilityInput},
	{Marker: "📩(", Name: "wait_input", Description: "Wait for input file", Capability: types.CapabilityInput},
	{Marker: ReturnMarker + "(", Name: "return", Description: "Return statement", Capability: types.CapabilityControl},
}

// DefaultSymbols returns a table with the built-in instruction markers
func DefaultSymbols() *SymbolTable {
	t := NewSymbolTable()
	for _, s := range defaultSymbols {
		if err := t.Register(s); err != nil {
			panic(err)
		}
	}
	return t
}
