package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(New(Conflict, "slot taken")); got != Conflict {
		t.Errorf("expected Conflict, got %d", got)
	}
	if got := KindOf(errors.New("plain")); got != Internal {
		t.Errorf("expected Internal for plain error, got %d", got)
	}

	// Kind survives wrapping with fmt.Errorf.
	wrapped := fmt.Errorf("list appointments: %w", New(NotFound, "appointment not found"))
	if got := KindOf(wrapped); got != NotFound {
		t.Errorf("expected NotFound through wrap, got %d", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{New(Validation, "bad date"), http.StatusBadRequest},
		{New(PaymentVerification, "payment verification failed"), http.StatusBadRequest},
		{New(NotFound, "doctor not found"), http.StatusNotFound},
		{New(Forbidden, "not your appointment"), http.StatusForbidden},
		{New(Conflict, "no available slots"), http.StatusConflict},
		{errors.New("pg: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestMessage_MasksInternal(t *testing.T) {
	if got := Message(errors.New("pq: relation does not exist")); got != "internal server error" {
		t.Errorf("internal detail leaked: %q", got)
	}
	if got := Message(Wrap(Internal, errors.New("dial tcp"), "create payment order")); got != "internal server error" {
		t.Errorf("internal detail leaked: %q", got)
	}
	if got := Message(New(Conflict, "no available slots for this date")); got != "no available slots for this date" {
		t.Errorf("unexpected message: %q", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := Wrap(Internal, cause, "gateway order")
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}
