package controlplane

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStreamRevisionLogs(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   []string
	}{
		{
			"json log events",
			"data: {\"seq_no\": 1, \"content\": \"cloning repository\"}\n\n" +
				"data: {\"seq_no\": 2, \"content\": \"building graph\"}\n\n" +
				"event: end\n\n",
			[]string{"cloning repository", "building graph"},
		},
		{
			"non-json payload passed through",
			"data: plain text line\n\nevent: end\n\n",
			[]string{"plain text line"},
		},
		{
			"clean EOF without end event",
			"data: {\"content\": \"done\"}\n\n",
			[]string{"done"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Accept"); got != "text/event-stream" {
					t.Errorf("Accept = %q, want text/event-stream", got)
				}
				w.Header().Set("Content-Type", "text/event-stream")
				w.Write([]byte(tt.stream))
			}))
			defer server.Close()

			client, _ := NewClient(server.URL, "key")
			var out bytes.Buffer
			if err := client.StreamRevisionLogs(context.Background(), "dep-1", "rev-1", &out); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines %q, want %d", len(got), got, len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStreamRevisionLogs_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "revision not found"}`))
	}))
	defer server.Close()

	client, _ := NewClient(server.URL, "key")
	var out bytes.Buffer
	err := client.StreamRevisionLogs(context.Background(), "dep-1", "rev-1", &out)
	if err == nil {
		t.Fatal("expected error for 404 stream, got nil")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v, want mention of status 404", err)
	}
}
