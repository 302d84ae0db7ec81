package persistence

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Run is one row of the ledger.
//
//nolint:govet // fieldalignment: mirrors column order
type Run struct {
	ID             string
	Request        string
	Status         string
	Rounds         int
	Turns          int
	ArtifactPath   string
	ArtifactSHA256 string
	Published      bool
	Error          string
	ErrorStage     string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// ContentHash returns the hex SHA-256 of an artifact body.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
