package grid

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/rxtech-lab/forest/internal/types"
	"github.com/zeebo/xxh3"
)

// HashBars fingerprints a bar series. Equal series hash equally regardless of
// their time zone.
func HashBars(bars []types.Bar) uint64 {
	hasher := xxh3.New()
	buf := make([]byte, 8)

	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf, v)
		_, _ = hasher.Write(buf)
	}

	for _, bar := range bars {
		write(uint64(bar.Time.UnixNano()))
		write(math.Float64bits(bar.Open))
		write(math.Float64bits(bar.High))
		write(math.Float64bits(bar.Low))
		write(math.Float64bits(bar.Close))
		write(math.Float64bits(bar.Volume))
	}

	return hasher.Sum64()
}

// Key identifies the run described by fingerprint over the bars hashing to barsHash.
func Key(barsHash uint64, fingerprint string) string {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, barsHash)

	sum := xxh3.Hash128(append(buf, fingerprint...)).Bytes()

	return hex.EncodeToString(sum[:])
}
