package emotion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClassifyPostsImageAndDevice(t *testing.T) {
	var got detectRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"emotions":[{"label":"happy","score":0.91},{"label":"neutral","score":0.05}],"dominant_emotion":"Happy"}`))
	}))
	defer srv.Close()

	client, err := New(Config{URL: srv.URL + "/", Device: "cuda:0"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := client.Classify(context.Background(), []byte{0xff, 0xd8, 0xff})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	label, score := result.Dominant()
	if label != "happy" || score != 0.91 {
		t.Fatalf("unexpected dominant %q %v", label, score)
	}
	if got.Device != "cuda:0" {
		t.Fatalf("expected device in request, got %q", got.Device)
	}
	raw, err := base64.StdEncoding.DecodeString(got.Image)
	if err != nil || len(raw) != 3 {
		t.Fatalf("unexpected image payload %q", got.Image)
	}
}

func TestClassifyReportsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no face detected", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client, err := New(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Classify(context.Background(), []byte{1})
	if err == nil || !strings.Contains(err.Error(), "no face detected") {
		t.Fatalf("expected server detail in error, got %v", err)
	}
}

func TestClassifyFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"emotions":[{"label":"sad","score":0.4},{"label":"angry","score":0.6}]}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "frame.jpg")
	if err := os.WriteFile(path, []byte{0xff, 0xd8}, 0o644); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	client, err := New(Config{URL: srv.URL, RequestsPerSecond: 100})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := client.ClassifyFile(context.Background(), path)
	if err != nil {
		t.Fatalf("classify file: %v", err)
	}
	if label, _ := result.Dominant(); label != "angry" {
		t.Fatalf("expected highest score to win without dominant label, got %q", label)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(Config{URL: "not a url"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestClassifyHonoursCancellation(t *testing.T) {
	client, err := New(Config{URL: "http://127.0.0.1:1", RequestsPerSecond: 0.001})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.Classify(ctx, []byte{1}); err == nil {
		t.Fatal("expected cancellation error")
	}
}
