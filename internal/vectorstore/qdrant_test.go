package vectorstore

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestGRPCAddress(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{
			name:     "default HTTP port",
			urlStr:   "http://localhost:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "custom port",
			urlStr:   "http://qdrant:9000",
			wantHost: "qdrant",
			wantPort: 9001,
		},
		{
			name:     "no port",
			urlStr:   "http://localhost",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:     "no hostname",
			urlStr:   "http://:6333",
			wantHost: "localhost",
			wantPort: 6334,
		},
		{
			name:    "invalid URL",
			urlStr:  "://invalid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcAddress(tt.urlStr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("grpcAddress() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if host != tt.wantHost {
				t.Errorf("grpcAddress() host = %v, want %v", host, tt.wantHost)
			}
			if port != tt.wantPort {
				t.Errorf("grpcAddress() port = %v, want %v", port, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	if _, err := NewQdrantStore("://invalid"); err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestCollectionName(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"grant_kb", "0123456789abcdef0123", "grant_kb_0123456789ab"},
		{"grant_kb", "abc", "grant_kb_abc"},
	}
	for _, tt := range tests {
		if got := CollectionName(tt.prefix, tt.key); got != tt.want {
			t.Errorf("CollectionName(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
		}
	}
}

func TestQdrantStore_Upsert_OnlyZeroVectors(t *testing.T) {
	// returns before touching the client
	store := &QdrantStore{}
	err := store.Upsert(context.Background(), "c", []Point{{ID: "a", Vec: []float32{0, 0}}})
	if err != nil {
		t.Errorf("Upsert() with only zero vectors error = %v, want nil", err)
	}
}

func TestQdrantStore_Search_InvalidK(t *testing.T) {
	store := &QdrantStore{}
	for _, k := range []int{0, -1} {
		if _, err := store.Search(context.Background(), "c", []float32{1, 2}, k); err == nil {
			t.Errorf("Search() with k=%d should return error", k)
		}
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	if got := convertPayloadToMap(nil); got == nil || len(got) != 0 {
		t.Errorf("convertPayloadToMap(nil) = %v, want empty map", got)
	}

	payload := qdrant.NewValueMap(map[string]any{
		"path":       "Proposals/a.md",
		"start_line": 3,
		"priority":   2.0,
		"tags":       []any{"x", true},
	})
	got := convertPayloadToMap(payload)

	if got["path"] != "Proposals/a.md" {
		t.Errorf("path = %v, want Proposals/a.md", got["path"])
	}
	if got["start_line"] != int64(3) {
		t.Errorf("start_line = %v (%T), want int64 3", got["start_line"], got["start_line"])
	}
	if got["priority"] != 2.0 {
		t.Errorf("priority = %v, want 2.0", got["priority"])
	}
	tags, ok := got["tags"].([]any)
	if !ok || len(tags) != 2 || tags[1] != true {
		t.Errorf("tags = %v, want [x true]", got["tags"])
	}
}
