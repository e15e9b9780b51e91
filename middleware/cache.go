package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PublicCache cached erfolgreiche GET-Antworten der Public-Zone in Redis.
// Cache-Fehler werden nur geloggt, der Request läuft normal weiter.
func PublicCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		key := "public:" + c.Request.RequestURI

		if body, err := rdb.Get(c.Request.Context(), key).Bytes(); err == nil {
			// Hit liefert dieselben Header wie der Miss-Pfad
			c.Header("Cache-Control", "public, max-age="+strconv.Itoa(int(ttl.Seconds())))
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = w
		c.Next()

		if w.Status() == http.StatusOK && w.buf.Len() > 0 {
			if err := rdb.Set(c.Request.Context(), key, w.buf.Bytes(), ttl).Err(); err != nil {
				log.Warn("Public-Cache konnte nicht geschrieben werden",
					zap.String("key", key), zap.Error(err))
			}
		}
	}
}

// captureWriter schreibt die Antwort zusätzlich in einen Puffer.
type captureWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
