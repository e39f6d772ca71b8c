// internal/app/system/limits/limits.go
package limits

// Request body size limits. These bound memory used by form and JSON
// decoding.
const (
	// MaxDepartmentFormSize bounds POST /departments bodies.
	MaxDepartmentFormSize = 64 << 10 // 64 KB
)
