package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to the given length.
func ContentHash(data []byte, hexLen int) string {
	return truncate(xxhash.Sum64(data), hexLen)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return truncate(h.Sum64(), hexLen), nil
}

// ExportName builds a download name: momento-<kind>-<unix-millis>-<hash8>.<ext>.
func ExportName(kind string, at time.Time, data []byte, ext string) string {
	return fmt.Sprintf("momento-%s-%d-%s.%s", kind, at.UnixMilli(), ContentHash(data, 8), ext)
}

func truncate(sum uint64, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], sum)
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
