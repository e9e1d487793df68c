// Package nameservice reads a names file and creates a name service lookup
// for the addresses taking part in an election.
package nameservice

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// NameService maintains a map of addresses for name lookup.
type NameService struct {
	names map[string]string
}

// New constructs a name service from the file at path. Each line holds a
// name followed by the address it belongs to. Blank lines and lines starting
// with # are skipped. An empty path gives a name service with no names.
func New(path string) (*NameService, error) {
	ns := NameService{
		names: make(map[string]string),
	}

	if path == "" {
		return &ns, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening names: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expecting name and address", n)
		}

		address := fields[len(fields)-1]
		ns.names[address] = strings.Join(fields[:len(fields)-1], " ")
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading names: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address.
func (ns *NameService) Lookup(address string) string {
	name, exists := ns.names[address]
	if !exists {
		return address
	}
	return name
}

// Copy returns a copy of the map of addresses and names.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.names))
	for address, name := range ns.names {
		cpy[address] = name
	}
	return cpy
}
