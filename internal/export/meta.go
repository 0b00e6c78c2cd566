package export

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/netsim/topogen"))

// RunID derives a deterministic UUIDv5 from the seed and the input digest, so the
// same inputs always produce the same identifier.
func RunID(seed uint64, inputDigest string) string {
	return uuid.NewSHA1(runNamespace, []byte(fmt.Sprintf("%d:%s", seed, inputDigest))).String()
}

// Digest is a BLAKE2b-256 hash over labelled inputs.
type Digest struct {
	h hash.Hash
}

// NewDigest returns an empty digest.
func NewDigest() *Digest {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // only fails for oversized keys
	}
	return &Digest{h: h}
}

func (d *Digest) label(name string, size int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(len(name)))
	d.h.Write(buf[:])
	io.WriteString(d.h, name)
	binary.BigEndian.PutUint64(buf[:], uint64(size))
	d.h.Write(buf[:])
}

// Add hashes data under name.
func (d *Digest) Add(name string, data []byte) {
	d.label(name, int64(len(data)))
	d.h.Write(data)
}

// AddFile hashes the contents of path under name.
func (d *Digest) AddFile(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	d.label(name, info.Size())
	if _, err := io.Copy(d.h, f); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	return nil
}

// Sum returns the hex digest.
func (d *Digest) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}
