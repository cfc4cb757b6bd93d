// Package checksum produces the digests used as ETags for the manual
// todo collection.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/nbtodo/nbtodo/internal/models"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Items digests a manual todo collection in its canonical JSON form. A nil
// slice digests the same as an empty one, so a store that has never been
// written and one holding zero items produce equal ETags.
func Items(items []models.Todo) string {
	if items == nil {
		items = []models.Todo{}
	}
	data, _ := json.Marshal(items)
	return Sum(data)
}
