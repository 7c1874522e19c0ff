// Package chain holds the small pieces of on-chain identity the portal needs
// without a live network: transaction hash derivation and wallet address
// normalisation.
package chain

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// TxHash derives a 0x-prefixed 32 byte keccak hash for a simulated transfer.
// The nonce keeps hashes distinct for identical transfers in the same instant.
func TxHash(from, projectID string, amount float64, at time.Time, nonce uint64) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(strings.ToLower(from)))
	h.Write([]byte(projectID))

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(amount*100))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(at.UnixNano()))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], nonce)
	h.Write(buf[:])

	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// NormalizeAddress returns the EIP-55 checksum form of real hex addresses and
// leaves placeholder addresses (mock wallets such as 0x1A2B...C3D4) untouched.
func NormalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if common.IsHexAddress(addr) {
		return common.HexToAddress(addr).Hex()
	}
	return addr
}

// SameAddress compares wallet addresses case-insensitively
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ShortAddress returns the first n characters of an address
func ShortAddress(addr string, n int) string {
	if len(addr) <= n {
		return addr
	}
	return addr[:n]
}
