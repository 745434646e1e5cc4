package constants

// MaxPayloadSize is the largest spend payload (in bytes) a JSON source may
// return. Larger bodies are rejected instead of being loaded into memory.
const MaxPayloadSize = 64 * 1024 * 1024 // 64 MB
