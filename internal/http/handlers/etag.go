package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes payload with a content hash ETag and answers 304
// when If-None-Match already names it. Note lists are per user, so shared
// caches must not store them.
func RespondJSONWithETag(ctx *gin.Context, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	etag := etagFor(body)
	ctx.Header("ETag", etag)
	ctx.Header("Cache-Control", "private, no-cache")

	if etagMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

func etagFor(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func etagMatches(header, current string) bool {
	header = strings.TrimSpace(header)
	if header == "" || current == "" {
		return false
	}
	if header == "*" {
		return true
	}

	for _, part := range strings.Split(header, ",") {
		// weak comparison, W/"x" matches "x"
		if strings.TrimPrefix(strings.TrimSpace(part), "W/") == current {
			return true
		}
	}
	return false
}
