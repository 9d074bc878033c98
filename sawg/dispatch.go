package sawg

import (
	"os"
	"strconv"
)

// DispatchLevel is the vector instruction set detected on the host running
// the model. The model itself is scalar; the level is reported so that
// simulation throughput numbers can be read against the machine.
type DispatchLevel int

const (
	// DispatchScalar indicates no usable vector extension.
	DispatchScalar DispatchLevel = iota

	// DispatchSSE2 indicates SSE2 instructions (x86-64 baseline).
	DispatchSSE2

	// DispatchAVX2 indicates AVX2 instructions (256-bit).
	DispatchAVX2

	// DispatchAVX512 indicates AVX-512 instructions (512-bit).
	DispatchAVX512

	// DispatchNEON indicates ARM NEON instructions (128-bit).
	DispatchNEON

	// DispatchSVE indicates ARM SVE instructions (scalable vector).
	DispatchSVE
)

// String returns a human-readable name for the dispatch level.
func (d DispatchLevel) String() string {
	switch d {
	case DispatchScalar:
		return "scalar"
	case DispatchSSE2:
		return "sse2"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	case DispatchNEON:
		return "neon"
	case DispatchSVE:
		return "sve"
	default:
		return "unknown"
	}
}

// currentLevel and currentWidth are set by init() in dispatch_*.go files.
var (
	currentLevel DispatchLevel
	currentWidth int
)

// CurrentLevel returns the detected host vector level.
func CurrentLevel() DispatchLevel {
	return currentLevel
}

// CurrentWidth returns the host vector register width in bytes.
func CurrentWidth() int {
	return currentWidth
}

// HostLanes returns how many int64 samples fit in one host vector register.
func HostLanes() int {
	return max(1, currentWidth/8)
}

// NoSimdEnv checks if the SAWG_NO_SIMD environment variable is set.
// When set, detection reports scalar regardless of CPU capabilities.
func NoSimdEnv() bool {
	val := os.Getenv("SAWG_NO_SIMD")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}

func setScalarMode() {
	currentLevel = DispatchScalar
	currentWidth = 8
}
