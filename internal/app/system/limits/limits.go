// internal/app/system/limits/limits.go
package limits

// Request body and content limits. These keep oversized requests from
// exhausting memory and keep thread documents within a sane size.
const (
	// MaxBodyBytes is the maximum size accepted for JSON request bodies.
	MaxBodyBytes = 64 << 10 // 64 KB

	// MinThreadTextLen is the minimum length of thread text after
	// sanitization and trimming.
	MinThreadTextLen = 1

	// MaxThreadTextLen is the maximum length of thread text.
	MaxThreadTextLen = 4000
)
