package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodeUnknownNode, "no node with id %d", 7), "UNKNOWN_NODE: no node with id 7"},
		{"wrapped", Wrap(ErrCodeMalformedTree, errors.New("unexpected EOF"), "decode %s", "cs3230.json"),
			"MALFORMED_TREE: decode cs3230.json: unexpected EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetch payload")

	if !errors.Is(err, cause) || errors.Unwrap(err) != cause {
		t.Error("cause should be reachable through Unwrap")
	}
	if got := UserMessage(err); got != "fetch payload" {
		t.Errorf("UserMessage() = %q, want the message alone", got)
	}
}

func TestCodeLookup(t *testing.T) {
	inner := New(ErrCodeUnknownNode, "no node with id 9")
	outer := Wrap(ErrCodeStructuralInvariant, inner, "reconcile")

	tests := []struct {
		name     string
		err      error
		wantCode Code
		wantKind Kind
	}{
		{"coded", inner, ErrCodeUnknownNode, KindMissing},
		{"outermost wins", outer, ErrCodeStructuralInvariant, KindInternal},
		{"behind fmt wrap", fmt.Errorf("activate: %w", inner), ErrCodeUnknownNode, KindMissing},
		{"uncoded", errors.New("boom"), "", KindInternal},
		{"nil", nil, "", KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.wantCode {
				t.Errorf("GetCode() = %q, want %q", got, tt.wantCode)
			}
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", got, tt.wantKind)
			}
			if tt.wantCode != "" && !Is(tt.err, tt.wantCode) {
				t.Errorf("Is(%q) = false", tt.wantCode)
			}
		})
	}

	if Is(errors.New("boom"), "") {
		t.Error("uncoded error should not match the empty code")
	}
	if Is(outer, ErrCodeUnknownNode) {
		t.Error("Is should only look at the outermost code")
	}
}

func TestKinds(t *testing.T) {
	tests := map[Kind][]Code{
		KindInput:       {ErrCodeMalformedTree, ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath},
		KindMissing:     {ErrCodeUnknownNode, ErrCodeNotFound, ErrCodeViewNotFound},
		KindUnavailable: {ErrCodeNetwork, ErrCodeTimeout, ErrCodeUnsupported},
		KindInternal:    {ErrCodeInternal, ErrCodeStructuralInvariant, Code("SOMETHING_NEW")},
	}
	for kind, codes := range tests {
		for _, c := range codes {
			if got := c.Kind(); got != kind {
				t.Errorf("%s.Kind() = %v, want %v", c, got, kind)
			}
		}
	}
}

func TestUserMessagePlainError(t *testing.T) {
	if got := UserMessage(errors.New("disk full")); got != "disk full" {
		t.Errorf("UserMessage() = %q", got)
	}
}
