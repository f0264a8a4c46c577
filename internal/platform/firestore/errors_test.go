package firestore

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestWrapErrorClassification(t *testing.T) {
	cases := []struct {
		code        codes.Code
		notFound    bool
		conflict    bool
		unavailable bool
	}{
		{code: codes.NotFound, notFound: true},
		{code: codes.AlreadyExists, conflict: true},
		{code: codes.Aborted, conflict: true},
		{code: codes.Unavailable, unavailable: true},
		{code: codes.ResourceExhausted, unavailable: true},
		{code: codes.PermissionDenied},
	}

	for _, tc := range cases {
		err := WrapError("estimates.get", status.Error(tc.code, "boom"))
		var repoErr *Error
		if !errors.As(err, &repoErr) {
			t.Fatalf("%s: expected *Error, got %T", tc.code, err)
		}
		if repoErr.IsNotFound() != tc.notFound || repoErr.IsConflict() != tc.conflict || repoErr.IsUnavailable() != tc.unavailable {
			t.Fatalf("%s: unexpected classification %+v", tc.code, repoErr)
		}
	}
}

func TestWrapErrorPassesThroughCancellation(t *testing.T) {
	if err := WrapError("op", status.Error(codes.Canceled, "cancelled")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := WrapError("op", context.DeadlineExceeded); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	if WrapError("op", nil) != nil {
		t.Fatalf("expected nil")
	}
}

func TestWrapErrorKeepsExistingClassification(t *testing.T) {
	first := WrapError("estimates.get", status.Error(codes.NotFound, "missing"))
	second := WrapError("outer", first)
	if second != first {
		t.Fatalf("expected wrapped error to be reused")
	}
	if second.Error() != "estimates.get: rpc error: code = NotFound desc = missing" {
		t.Fatalf("unexpected message %q", second.Error())
	}
}

func TestProviderClosed(t *testing.T) {
	p := NewProvider(Config{ProjectID: "p"})
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := p.Client(context.Background()); !errors.Is(err, ErrProviderClosed) {
		t.Fatalf("expected ErrProviderClosed, got %v", err)
	}
}
