package apperr

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies an error. It reuses the gRPC code space so errors coming
// back from Firestore and friends classify the same way as our own.
type Kind = codes.Code

const (
	KindInvalidArgument     = codes.InvalidArgument
	KindPermissionDenied    = codes.PermissionDenied
	KindPreconditionFailed  = codes.FailedPrecondition
	KindNotFound            = codes.NotFound
	KindUpstreamUnavailable = codes.Unavailable
	KindUnauthenticated     = codes.Unauthenticated
	KindAlreadyExists       = codes.AlreadyExists
	KindInternal            = codes.Internal
)

// Error carries a kind, a human readable detail and an optional cause.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Detail == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// GRPCStatus lets status.Code and status.FromError understand *Error.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Kind, e.Error())
}

// New creates an error of the given kind.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap attaches a kind and detail to err. A nil err yields nil.
func Wrap(kind Kind, err error, detail string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func InvalidArgument(detail string) *Error {
	return New(KindInvalidArgument, detail)
}

func NotFound(detail string) *Error {
	return New(KindNotFound, detail)
}

func PreconditionFailed(detail string) *Error {
	return New(KindPreconditionFailed, detail)
}

// Unavailable marks err as an upstream (store or identity provider) failure.
func Unavailable(err error, detail string) error {
	return Wrap(KindUpstreamUnavailable, err, detail)
}

// KindOf returns the kind of err. Errors that carry no kind report Internal,
// nil reports OK.
func KindOf(err error) Kind {
	if err == nil {
		return codes.OK
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return KindInternal
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// DetailOf returns the detail of the outermost *Error in err's chain, or
// err.Error() for plain errors.
func DetailOf(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Detail != "" {
		return appErr.Detail
	}
	return err.Error()
}
