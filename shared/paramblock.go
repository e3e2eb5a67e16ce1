package shared

// Binary layout of the parameter block. The block is read by payload DLLs of
// both bitnesses, so the offsets are fixed rather than derived from a Go
// struct: the handle field is always 8 bytes (window handles are 32-bit
// significant on Win64, so the value survives a 32-bit read), the affinity
// follows at offset 8. No versioning; controller and payload must be built
// from this same definition.
const (
	blockSize       = 16
	offTargetHandle = 0
	offAffinity     = 8
)

// BlockSize is the size in bytes of the shared parameter block mapping.
const BlockSize = blockSize
