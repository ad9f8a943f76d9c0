package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emberhav/pricewatch/internal/logger"
)

// deadBackendCache builds a cache over a redis client pointed at a
// port nothing listens on, so every command fails at dial time.
func deadBackendCache() *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		ReadTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	return New(client, time.Minute, logger.New("error", false))
}

func TestGetDegradesToMissWhenBackendDown(t *testing.T) {
	c := deadBackendCache()

	data, ok := c.Get(context.Background(), "pw:item:i1")
	if ok {
		t.Error("Get() reported a hit with the backend down")
	}
	if data != nil {
		t.Errorf("Get() = %v, want nil on degraded miss", data)
	}
}

func TestGetJSONDegradesToMissWhenBackendDown(t *testing.T) {
	c := deadBackendCache()

	var out map[string]string
	if c.GetJSON(context.Background(), "pw:items:owner:o1", &out) {
		t.Error("GetJSON() reported a hit with the backend down")
	}
	if out != nil {
		t.Errorf("GetJSON() populated out = %v on degraded miss", out)
	}
}

func TestSetSwallowsBackendFailure(t *testing.T) {
	c := deadBackendCache()

	// Writes against a dead backend return, they never panic or block
	// beyond the client timeouts.
	c.Set(context.Background(), "pw:item:i1", []byte(`{}`))
	c.SetJSON(context.Background(), "pw:item:i1", map[string]string{"id": "i1"})
}

func TestInvalidateSwallowsBackendFailure(t *testing.T) {
	c := deadBackendCache()

	c.Invalidate(context.Background(), ItemScopedKeys("i1", "o1")...)
	c.Invalidate(context.Background()) // no keys is a no-op, no backend call
}
