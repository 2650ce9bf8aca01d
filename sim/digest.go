package sim

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"golang.org/x/crypto/blake2b"
)

// ConfigDigest fingerprints the geometry, seed and positions of a run. Two runs with
// equal digests start from bit-identical states.
func ConfigDigest(cfg Config, positions []Vec2) string {
	h, _ := blake2b.New256(nil) // only fails for oversized keys
	var buf [8]byte
	putF := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	putI := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}

	putI(int64(cfg.NumDisks))
	putI(int64(cfg.Cells[0]))
	putI(int64(cfg.Cells[1]))
	putI(int64(cfg.CellCapacity))
	putI(cfg.Params.Seed)
	putI(cfg.ChainsPerInterval)
	putF(cfg.Box[0])
	putF(cfg.Box[1])
	putF(cfg.Sigma)
	putF(cfg.ChainLength)
	putF(cfg.TotalLength)
	for _, p := range positions {
		putF(p[0])
		putF(p[1])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotDigest fingerprints a set of positions.
func SnapshotDigest(positions []Vec2) string {
	sum := blake2b.Sum256(positionBytes(positions))
	return hex.EncodeToString(sum[:])
}

func positionBytes(positions []Vec2) []byte {
	b := make([]byte, 0, 16*len(positions))
	for _, p := range positions {
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(p[0]))
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(p[1]))
	}
	return b
}
