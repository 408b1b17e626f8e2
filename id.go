package everruns

import (
	"crypto/rand"
	"encoding/hex"
)

// NewAgentID generates a client-supplied agent identifier.
// Format: agent_{32 hex chars}, e.g. "agent_a1b2c3d4e5f6a7b8a1b2c3d4e5f6a7b8".
func NewAgentID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "agent_" + hex.EncodeToString(b)
}

// validAgentID reports whether id matches the agent_<32 hex> format.
func validAgentID(id string) bool {
	const prefix = "agent_"
	if len(id) != len(prefix)+32 || id[:len(prefix)] != prefix {
		return false
	}
	_, err := hex.DecodeString(id[len(prefix):])
	return err == nil
}
