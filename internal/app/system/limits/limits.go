// internal/app/system/limits/limits.go

// Package limits holds the request size ceilings used across handlers.
package limits

const (
	// MaxJSONBody bounds JSON request bodies.
	MaxJSONBody = 1 << 20 // 1 MiB

	// MaxUploadBytes bounds a single uploaded file.
	MaxUploadBytes = 100 << 20 // 100 MiB

	// MaxMultipartMemory is the in-memory portion of multipart parsing;
	// the rest spills to temp files.
	MaxMultipartMemory = 10 << 20 // 10 MiB
)
