package fault

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(Conversion, "cannot decode %s", "clip.webm")
	kind, ok := KindOf(err)
	if !ok || kind != Conversion {
		t.Errorf("KindOf = %v, %v", kind, ok)
	}

	wrapped := fmt.Errorf("chunk 2: %w", err)
	if !Is(wrapped, Conversion) {
		t.Error("kind lost through wrapping")
	}

	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("plain error should carry no kind")
	}
}

func TestErrorMessageNamesKind(t *testing.T) {
	err := New(Segmentation, "splitter exited with status 1")
	if got := err.Error(); !strings.HasPrefix(got, "segmentation: ") {
		t.Errorf("Error() = %q", got)
	}
}

func TestFromBackend(t *testing.T) {
	connErr := &url.Error{Op: "Post", URL: "http://127.0.0.1:1/v1", Err: errors.New("connection refused")}
	if got := FromBackend(connErr); got.Kind != BackendUnavailable {
		t.Errorf("connection error classified as %v", got.Kind)
	}

	statusErr := errors.New("status 500")
	if got := FromBackend(statusErr); got.Kind != BackendError {
		t.Errorf("status error classified as %v", got.Kind)
	}
}
