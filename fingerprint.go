package tumbler

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// Fingerprint digests a trajectory. Two runs with the same seed and
// configuration produce the same Sum64.
type Fingerprint struct {
	digest *xxhash.Digest
	buf    []byte
}

func NewFingerprint() *Fingerprint {
	return &Fingerprint{digest: xxhash.New(), buf: make([]byte, 0, 128)}
}

// Add mixes the ball state and the boundary orientation of a snapshot
func (f *Fingerprint) Add(s Snapshot) {
	f.buf = binary.LittleEndian.AppendUint64(f.buf[:0], s.Tick)
	f.buf = appendVec(f.buf, s.Ball.Position)
	f.buf = appendVec(f.buf, s.Ball.Velocity)
	f.buf = appendVec(f.buf, s.Spin.Angles)
	_, _ = f.digest.Write(f.buf)
}

func (f *Fingerprint) Sum64() uint64 {
	return f.digest.Sum64()
}

func appendVec(buf []byte, v mgl64.Vec3) []byte {
	for _, c := range v {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c))
	}
	return buf
}
