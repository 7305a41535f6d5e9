package cache

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantDB  int
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", 0, false},
		{"valid-with-db", "redis://localhost:6379/3", 3, false},
		{"tls", "rediss://cache.internal:6380/1", 1, false},
		{"empty", "", 0, true},
		{"wrong-scheme", "http://localhost:6379", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && opts.DB != tt.wantDB {
				t.Errorf("ParseURL() DB = %d, want %d", opts.DB, tt.wantDB)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	o := &redis.Options{PoolSize: 7}
	WithPoolSize(0)(o)
	if o.PoolSize != 7 {
		t.Errorf("WithPoolSize(0) changed PoolSize to %d", o.PoolSize)
	}
	WithPoolSize(20)(o)
	if o.PoolSize != 20 {
		t.Errorf("PoolSize = %d, want 20", o.PoolSize)
	}

	WithTimeout(2 * time.Second)(o)
	if o.ReadTimeout != 2*time.Second || o.WriteTimeout != 2*time.Second || o.DialTimeout != 3*time.Second {
		t.Errorf("timeouts = %v/%v/%v", o.ReadTimeout, o.WriteTimeout, o.DialTimeout)
	}
}

func TestServerVersion(t *testing.T) {
	tests := []struct {
		name        string
		info        string
		wantName    string
		wantVersion string
	}{
		{"redis", "# Server\r\nredis_version:7.2.4\r\nredis_mode:standalone\r\n", "redis", "7.2.4"},
		{"dragonfly", "# Server\r\nredis_version:7.2.0\r\ndragonfly_version:df-v1.21.2\r\n", "dragonfly", "df-v1.21.2"},
		{"empty", "", "redis", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, version := serverVersion(tt.info)
			if name != tt.wantName || version != tt.wantVersion {
				t.Errorf("serverVersion() = %q, %q, want %q, %q", name, version, tt.wantName, tt.wantVersion)
			}
		})
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	_, err := New(t.Context(), "redis://localhost:59999", WithTimeout(500*time.Millisecond))
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}
