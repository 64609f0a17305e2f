package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestQwenClientGenerate(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/out.png" {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("edited"))
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", got)
		}
		var payload qwenRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if payload.Model != "qwen-image-edit" {
			t.Errorf("unexpected model: %s", payload.Model)
		}
		if len(payload.Input.Messages) != 1 {
			t.Errorf("unexpected messages length: %d", len(payload.Input.Messages))
		}
		contents := payload.Input.Messages[0].Content
		if len(contents) != 2 {
			t.Errorf("unexpected content length: %d", len(contents))
		}
		if contents[0].Image != "https://example.com/in.png" {
			t.Errorf("image content mismatch: %+v", contents[0])
		}
		if got := strings.TrimSpace(contents[1].Text); got != "do something" {
			t.Errorf("instruction mismatch: %s", got)
		}
		fmt.Fprintf(w, `{"output":{"choices":[{"message":{"content":[{"image":%q}]}}]},"request_id":"r-1"}`, ts.URL+"/out.png")
	}))
	defer ts.Close()

	client := NewQwenClient(QwenOptions{APIKey: "test-key", BaseURL: ts.URL})
	got, err := client.Generate(context.Background(), Request{ReferenceImageURL: "https://example.com/in.png", Prompt: "do something"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if string(got.Data) != "edited" || got.MIMEType != "image/png" {
		t.Fatalf("unexpected image: %+v", got)
	}
}

func TestQwenClientErrorMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"InvalidParameter","message":"url error"}`))
	}))
	defer ts.Close()

	client := NewQwenClient(QwenOptions{APIKey: "k", BaseURL: ts.URL})
	_, err := client.Generate(context.Background(), Request{ReferenceImageURL: "https://example.com/in.png", Prompt: "p"})
	if err == nil || err.Error() != "qwen error: url error (InvalidParameter)" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQwenClientMissingKey(t *testing.T) {
	client := NewQwenClient(QwenOptions{})
	if _, err := client.Generate(context.Background(), Request{ReferenceImageURL: "https://example.com/in.png"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected error when api key missing, got %v", err)
	}
}
