package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vitrina/backend/internal/domain/shared/valueobject"
)

// StorageKey is the key the cart snapshot is stored under
const StorageKey = "carrito"

// SnapshotKey namespaces the storage key by session
func SnapshotKey(sessionID string) string {
	if sessionID == "" {
		return StorageKey
	}
	return sessionID + ":" + StorageKey
}

// ErrCorruptSnapshot is returned by DecodeSnapshot for unusable content
var ErrCorruptSnapshot = errors.New("cart snapshot is corrupt")

// EncodeSnapshot serializes the full line sequence
func EncodeSnapshot(l *Ledger) ([]byte, error) {
	data, err := json.Marshal(l.lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a stored snapshot strictly. Empty input is an empty
// cart. Lines without a product id, with a quantity outside
// [1, MaxLineQuantity], or repeating a product id make the whole snapshot
// corrupt.
func DecodeSnapshot(data []byte) (*Ledger, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewLedger(), nil
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	seen := make(map[string]bool, len(lines))
	for i, line := range lines {
		if line.ProductID == "" {
			return nil, fmt.Errorf("%w: line %d has no product id", ErrCorruptSnapshot, i)
		}
		if line.Quantity < valueobject.MinLineQuantity || line.Quantity > valueobject.MaxLineQuantity {
			return nil, fmt.Errorf("%w: line %d has quantity %d", ErrCorruptSnapshot, i, line.Quantity)
		}
		if seen[line.ProductID] {
			return nil, fmt.Errorf("%w: product %s appears twice", ErrCorruptSnapshot, line.ProductID)
		}
		seen[line.ProductID] = true
	}

	if lines == nil {
		lines = make([]Line, 0)
	}
	return &Ledger{lines: lines}, nil
}

// Hydrate restores a ledger from a snapshot and never fails: corrupt content
// yields an empty ledger. The returned error only describes what was
// discarded so callers can log it; it must not be surfaced to the user.
func Hydrate(data []byte) (*Ledger, error) {
	l, err := DecodeSnapshot(data)
	if err != nil {
		return NewLedger(), err
	}
	return l, nil
}
