// Package quickxorhash implements QuickXorHash, the content hash SharePoint
// and OneDrive report for files in business drives.
//
// Each input byte is XORed into a 160-bit circular buffer at a bit offset
// that advances by 11 per byte. The digest is the buffer with the total
// input length, as a little-endian uint64, XORed into its last 8 bytes.
// Digests are conventionally exchanged base64-encoded; see Base64.
package quickxorhash

import (
	"encoding/base64"
	"encoding/binary"
	"hash"
)

const (
	// Size is the length, in bytes, of a QuickXorHash digest.
	Size = 20

	// BlockSize is the preferred input block size for the hash, in bytes.
	BlockSize = 64

	shift       = 11
	widthInBits = Size * 8
)

type digest struct {
	buf    [Size]byte
	bitPos int // insertion point of the next byte, in [0, widthInBits)
	length uint64
}

// New returns a new hash.Hash computing the QuickXorHash checksum.
func New() hash.Hash {
	return &digest{}
}

// Write absorbs more data into the running hash. It never fails.
func (d *digest) Write(p []byte) (int, error) {
	pos := d.bitPos

	for _, b := range p {
		idx, off := pos/8, pos%8
		v := uint16(b) << off

		d.buf[idx] ^= byte(v)
		// Bits that spill past the byte land in the next one, wrapping
		// from the last byte of the buffer back to the first.
		d.buf[(idx+1)%Size] ^= byte(v >> 8)

		pos += shift
		if pos >= widthInBits {
			pos -= widthInBits
		}
	}

	d.bitPos = pos
	d.length += uint64(len(p))

	return len(p), nil
}

// Sum appends the current hash to b and returns the resulting slice.
// It does not change the underlying hash state.
func (d *digest) Sum(b []byte) []byte {
	out := d.buf

	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], d.length)

	for i := range n {
		out[Size-len(n)+i] ^= n[i]
	}

	return append(b, out[:]...)
}

// Reset resets the hash to its initial state.
func (d *digest) Reset() {
	*d = digest{}
}

// Size returns the number of bytes Sum will return.
func (d *digest) Size() int {
	return Size
}

// BlockSize returns the hash's underlying block size.
func (d *digest) BlockSize() int {
	return BlockSize
}

// Base64 returns the standard base64 encoding of the QuickXorHash of data,
// the form the service uses in file.hashes.quickXorHash.
func Base64(data []byte) string {
	h := New()
	_, _ = h.Write(data)

	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
