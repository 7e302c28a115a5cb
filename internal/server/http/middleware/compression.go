package middleware

import (
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxDecompressedBody caps the size of an inflated gzip request body.
const MaxDecompressedBody int64 = 1 << 20

// DecompressRequest inflates gzip encoded request bodies. Bodies that inflate
// past limit bytes fail with 413 when read.
func DecompressRequest(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		limit = MaxDecompressedBody
	}
	return func(c *gin.Context) {
		if !strings.EqualFold(strings.TrimSpace(c.GetHeader("Content-Encoding")), "gzip") {
			c.Next()
			return
		}

		originalBody := c.Request.Body
		reader, err := gzip.NewReader(originalBody)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		defer reader.Close()
		defer originalBody.Close()

		c.Request.Body = &limitedBody{r: io.LimitReader(reader, limit+1), remaining: limit}
		c.Request.Header.Del("Content-Encoding")
		c.Request.ContentLength = -1
		c.Next()

		if body, ok := c.Request.Body.(*limitedBody); ok && body.exceeded && !c.Writer.Written() {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
		}
	}
}

var errBodyTooLarge = errors.New("decompressed request body too large")

type limitedBody struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (b *limitedBody) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if int64(n) > b.remaining {
		b.exceeded = true
		return int(b.remaining), errBodyTooLarge
	}
	b.remaining -= int64(n)
	return n, err
}

func (b *limitedBody) Close() error { return nil }
