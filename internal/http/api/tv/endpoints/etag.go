package endpoints

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/blake2b"

	"github.com/Nixie-Tech-LLC/marquee/internal/model"
)

// contentETag fingerprints a feed by item id and last update. Order matters.
func contentETag(items []model.ContentItem) string {
	h, _ := blake2b.New256(nil)
	var buf [16]byte
	for _, x := range items {
		binary.BigEndian.PutUint64(buf[:8], uint64(x.ID))
		binary.BigEndian.PutUint64(buf[8:], uint64(x.LastUpdatedAt.UnixNano()))
		h.Write(buf[:])
	}
	return `"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`
}

// etagMatches checks If-None-Match, and X-If-None-Match for players that
// cannot set the standard header.
func etagMatches(ctx *gin.Context, tag string) bool {
	for _, header := range []string{"If-None-Match", "X-If-None-Match"} {
		for _, candidate := range strings.Split(ctx.GetHeader(header), ",") {
			candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
			if candidate == tag || candidate == "*" {
				return true
			}
		}
	}
	return false
}
