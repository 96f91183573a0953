package types

import "fmt"

// Capability is the class of side effect an instruction symbol needs from the executor
type Capability string

const (
	CapabilityControl Capability = "control"
	CapabilityFile    Capability = "file"
	CapabilityNetwork Capability = "network"
	CapabilityMemory  Capability = "memory"
	CapabilityInput   Capability = "input"
)

// AllCapabilities returns all valid capabilities
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityControl,
		CapabilityFile,
		CapabilityNetwork,
		CapabilityMemory,
		CapabilityInput,
	}
}

// IsValid checks if the capability is known
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityControl,
		CapabilityFile,
		CapabilityNetwork,
		CapabilityMemory,
		CapabilityInput:
		return true
	default:
		return false
	}
}

// String returns the string representation of the capability
func (c Capability) String() string {
	return string(c)
}

// ParseCapability parses a string into a Capability
func ParseCapability(s string) (Capability, error) {
	c := Capability(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid capability: %s", s)
	}
	return c, nil
}
