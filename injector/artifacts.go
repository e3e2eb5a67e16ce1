package injector

import (
	"fmt"
	"os"
	"path/filepath"
)

// Bitness of a process image, 32 or 64.
type Bitness int

const (
	Bitness32 Bitness = 32
	Bitness64 Bitness = 64
)

func (b Bitness) String() string { return fmt.Sprintf("%d-bit", int(b)) }

// Opposite returns the other supported bitness.
func (b Bitness) Opposite() Bitness {
	if b == Bitness64 {
		return Bitness32
	}
	return Bitness64
}

// Artifact naming convention. The payload and launcher binaries live beside
// the controller executable under bitness-qualified names; the unqualified
// payload name is a legacy fallback accepted for the controller's own
// bitness only. Both the orchestrator and the launcher depend on these
// names, so they are effectively part of the cross-process protocol.
const (
	payloadBaseName  = "wda_inject"
	launcherBaseName = "wda_launcher"
	// LegacyPayloadName is the unqualified payload filename older installs
	// shipped. Module-list scans match it as well as the qualified names.
	LegacyPayloadName = payloadBaseName + ".dll"
)

// PayloadFileName returns the bitness-qualified payload DLL filename,
// e.g. "wda_inject_64.dll".
func PayloadFileName(b Bitness) string {
	return fmt.Sprintf("%s_%d.dll", payloadBaseName, int(b))
}

// LauncherFileName returns the launcher binary filename for the given
// bitness, e.g. "wda_launcher_32.exe".
func LauncherFileName(b Bitness) string {
	return fmt.Sprintf("%s_%d.exe", launcherBaseName, int(b))
}

// Artifacts locates payload and launcher binaries inside a single directory,
// by convention the directory of the controller executable.
type Artifacts struct {
	Dir string
	// Native is the controller's own bitness; the legacy fallback name is
	// only valid for it.
	Native Bitness
}

// PayloadPath resolves the payload DLL for the given bitness. For the native
// bitness the qualified name wins over the legacy name when both exist.
func (a Artifacts) PayloadPath(b Bitness) (string, error) {
	qualified := filepath.Join(a.Dir, PayloadFileName(b))
	if fileExists(qualified) {
		return qualified, nil
	}
	if b == a.Native {
		legacy := filepath.Join(a.Dir, LegacyPayloadName)
		if fileExists(legacy) {
			return legacy, nil
		}
	}
	return "", wrap(KindArtifactMissing, "resolve payload",
		fmt.Errorf("%s not found in %s", PayloadFileName(b), a.Dir))
}

// LauncherPath resolves the cross-bitness launcher binary for the given
// bitness.
func (a Artifacts) LauncherPath(b Bitness) (string, error) {
	p := filepath.Join(a.Dir, LauncherFileName(b))
	if !fileExists(p) {
		return "", wrap(KindArtifactMissing, "resolve launcher",
			fmt.Errorf("%s not found in %s", LauncherFileName(b), a.Dir))
	}
	return p, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
