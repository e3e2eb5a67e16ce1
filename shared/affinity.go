// Package shared holds the wire protocol between the controller, the
// cross-bitness launcher and the injected payload: the display-affinity
// values and the named parameter block all three are built against.
package shared

import "fmt"

// Affinity is the per-window display affinity understood by the payload.
// Values match the user32 WDA_* constants.
type Affinity uint32

const (
	// AffinityNone makes the window visible to screen capture again.
	AffinityNone Affinity = 0x00000000
	// AffinityExcludeFromCapture hides the window from screen-capture APIs.
	// Requires Windows 10 2004 (build 19041) or later.
	AffinityExcludeFromCapture Affinity = 0x00000011
)

func (a Affinity) String() string {
	switch a {
	case AffinityNone:
		return "none"
	case AffinityExcludeFromCapture:
		return "exclude-from-capture"
	default:
		return fmt.Sprintf("affinity(0x%x)", uint32(a))
	}
}

// BlockName is the name of the shared parameter block. It is a protocol
// constant: the payload opens the mapping by this exact name, so changing
// it is a breaking change for every deployed payload DLL.
const BlockName = `Local\WdaInjectHwnd_WindowMod`
