package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:     "dummy",
		HTTPClient: &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func textReply(text string) string {
	return fmt.Sprintf(`{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
}

func TestGeneratePostContentParsesStructuredReply(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if !strings.Contains(r.URL.Path, "gemini-flash-latest") {
			t.Errorf("unexpected model path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "dummy" {
			t.Errorf("missing api key query parameter")
		}
		return jsonResponse(http.StatusOK, textReply(`{"prompt":"a festive scene","caption":"Happy holidays!"}`)), nil
	})

	content, err := client.GeneratePostContent(context.Background(), "instruction")
	if err != nil {
		t.Fatalf("GeneratePostContent returned error: %v", err)
	}
	if content.Prompt != "a festive scene" {
		t.Fatalf("Prompt = %q, want %q", content.Prompt, "a festive scene")
	}
	if content.Caption != "Happy holidays!" {
		t.Fatalf("Caption = %q, want %q", content.Caption, "Happy holidays!")
	}
}

func TestGeneratePostContentToleratesCodeFences(t *testing.T) {
	fenced := "```json\n{\"prompt\":\"p\",\"caption\":\"c\"}\n```"
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, textReply(fenced)), nil
	})

	content, err := client.GeneratePostContent(context.Background(), "instruction")
	if err != nil {
		t.Fatalf("GeneratePostContent returned error: %v", err)
	}
	if content.Prompt != "p" || content.Caption != "c" {
		t.Fatalf("content = %+v, want prompt p caption c", content)
	}
}

func TestGeneratePostContentRejectsMissingFields(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, textReply(`{"prompt":"only a prompt"}`)), nil
	})

	if _, err := client.GeneratePostContent(context.Background(), "instruction"); err == nil {
		t.Fatal("expected error for reply without caption")
	}
}

func TestGeneratePostContentRejectsUnparseableReply(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, textReply("not json at all")), nil
	})

	if _, err := client.GeneratePostContent(context.Background(), "instruction"); err == nil {
		t.Fatal("expected error for unparseable reply")
	}
}

func TestGeneratePostContentSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`), nil
	})

	_, err := client.GeneratePostContent(context.Background(), "instruction")
	if err == nil {
		t.Fatal("expected error for API failure status")
	}
	if !strings.Contains(err.Error(), "quota") {
		t.Fatalf("error %q does not carry the API message", err)
	}
}

func TestGenerateImageReturnsInlineData(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G'}
	body := fmt.Sprintf(
		`{"candidates":[{"content":{"parts":[{"text":"here you go"},{"inlineData":{"mimeType":"image/png","data":%q}}]}}]}`,
		base64.StdEncoding.EncodeToString(raw),
	)
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if !strings.Contains(r.URL.Path, "gemini-3-pro-image-preview") {
			t.Errorf("unexpected model path: %s", r.URL.Path)
		}
		return jsonResponse(http.StatusOK, body), nil
	})

	data, err := client.GenerateImage(context.Background(), "a festive scene")
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if string(data) != string(raw) {
		t.Fatalf("data = %v, want %v", data, raw)
	}
}

func TestGenerateImageRequiresImagePayload(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, textReply("sorry, text only")), nil
	})

	if _, err := client.GenerateImage(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error when reply has no image payload")
	}
}

func TestGenerateImageTransportFailure(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})

	if _, err := client.GenerateImage(context.Background(), "prompt"); err == nil {
		t.Fatal("expected transport error to propagate")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Options{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
