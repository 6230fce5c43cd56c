package model

import "errors"

// ErrorKind classifies pipeline failures for the presentation layer.
type ErrorKind string

const (
	KindInvalidSymbol       ErrorKind = "INVALID_SYMBOL"
	KindDataUnavailable     ErrorKind = "DATA_UNAVAILABLE"
	KindSourceUnreachable   ErrorKind = "SOURCE_UNREACHABLE"
	KindProviderUnreachable ErrorKind = "PROVIDER_UNREACHABLE"
)

// Retryable reports whether retrying the same request can succeed.
func (k ErrorKind) Retryable() bool {
	return k == KindSourceUnreachable || k == KindProviderUnreachable
}

func (k ErrorKind) message() string {
	switch k {
	case KindInvalidSymbol:
		return "invalid symbol"
	case KindDataUnavailable:
		return "data unavailable"
	case KindSourceUnreachable:
		return "market data source unreachable"
	case KindProviderUnreachable:
		return "sentiment provider unreachable"
	default:
		return "unknown error"
	}
}

// Stage names the pipeline step that failed.
type Stage string

const (
	StageInput     Stage = "input"
	StagePrice     Stage = "price"
	StageSentiment Stage = "sentiment"
)

// Error is the typed failure reported by fetchers, providers and the assembler.
type Error struct {
	Kind   ErrorKind
	Stage  Stage
	Symbol string
	Err    error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrInvalidSymbol       = &Error{Kind: KindInvalidSymbol}
	ErrDataUnavailable     = &Error{Kind: KindDataUnavailable}
	ErrSourceUnreachable   = &Error{Kind: KindSourceUnreachable}
	ErrProviderUnreachable = &Error{Kind: KindProviderUnreachable}
)

func (e *Error) Error() string {
	msg := e.Kind.message()
	if e.Stage != "" {
		msg = string(e.Stage) + ": " + msg
	}
	if e.Symbol != "" {
		msg += " (" + e.Symbol + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so that errors.Is(err, ErrDataUnavailable) works for any symbol.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, stage Stage, symbol string, err error) *Error {
	return &Error{Kind: kind, Stage: stage, Symbol: symbol, Err: err}
}

// InvalidSymbol rejects malformed input before any network call.
func InvalidSymbol(symbol, reason string) *Error {
	return newError(KindInvalidSymbol, StageInput, symbol, errors.New(reason))
}

// DataUnavailable reports a reachable source with no rows for the symbol.
func DataUnavailable(symbol string, err error) *Error {
	return newError(KindDataUnavailable, StagePrice, symbol, err)
}

// SourceUnreachable reports a market-data transport failure or timeout.
func SourceUnreachable(symbol string, err error) *Error {
	return newError(KindSourceUnreachable, StagePrice, symbol, err)
}

// ProviderUnreachable reports a sentiment transport failure, timeout or malformed response.
func ProviderUnreachable(symbol string, err error) *Error {
	return newError(KindProviderUnreachable, StageSentiment, symbol, err)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StageOf returns the stage of the first *Error in err's chain.
func StageOf(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// Retryable reports whether err is a transient transport failure.
func Retryable(err error) bool {
	return KindOf(err).Retryable()
}
