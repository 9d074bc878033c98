package channel

import (
	"fmt"

	"github.com/samber/lo"
)

// Port is an input of a channel: the register file or a spline.
type Port int

const (
	PortConfig Port = iota // cfg
	PortOffset             // u
	PortAmp1               // a1
	PortFreq1              // f1
	PortPhase1             // p1
	PortAmp2               // a2
	PortFreq2              // f2
	PortPhase2             // p2
	PortFreq0              // f0
	PortPhase0             // p0
	numPorts
)

var portNames = map[Port]string{
	PortConfig: "cfg",
	PortOffset: "u",
	PortAmp1:   "a1",
	PortFreq1:  "f1",
	PortPhase1: "p1",
	PortAmp2:   "a2",
	PortFreq2:  "f2",
	PortPhase2: "p2",
	PortFreq0:  "f0",
	PortPhase0: "p0",
}

var portsByName = lo.Invert(portNames)

func (p Port) String() string {
	if name, ok := portNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Port(%d)", int(p))
}

// ParsePort returns the port with the given short name.
func ParsePort(name string) (Port, error) {
	p, ok := portsByName[name]
	if !ok {
		return 0, fmt.Errorf("%q: %w", name, ErrPort)
	}
	return p, nil
}

// Inputs returns the port names in address order.
func Inputs() []string {
	return lo.Times(int(numPorts), func(i int) string { return Port(i).String() })
}
