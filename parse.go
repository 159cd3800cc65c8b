package containerjson

import (
	"errors"
	"io"

	eng "github.com/reoring/containerjson/internal/engine"
)

// ToIssues normalizes any error into Issues. Enforcement errors keep their code
// and path; other errors become parse_error at the root.
func ToIssues(err error) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message, Offset: -1})
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return AppendIssues(nil, Issue{Code: CodeTruncated, Path: "/", Message: "unexpected end of input", Cause: err, Offset: -1})
	}
	return AppendIssues(nil, Issue{Code: CodeParseError, Path: "/", Message: err.Error(), Cause: err, Offset: -1})
}

// Enforce wraps a Source with the depth, size and duplicate-key limits of cfg.
// Warnings for duplicate keys are logged to cfg.Log().
func Enforce(src Source, cfg Config) eng.PathSource {
	log := cfg.Log()
	return eng.WrapWithEnforcement(EngineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: toEngineDup(cfg.Strictness.OnDuplicateKey),
		MaxDepth:    cfg.MaxDepth,
		MaxBytes:    cfg.MaxBytes,
		IssueSink: func(si eng.SimpleIssue) {
			log.Warn("containerjson: "+si.Message, "code", si.Code, "path", si.Path)
		},
	})
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Warn:
		return eng.DupWarn
	case Error:
		return eng.DupError
	}
	return eng.DupIgnore
}

// ---- Source -> engine.TokenSource adapter ----

type tokenSourceAdapter struct{ inner Source }

func (a *tokenSourceAdapter) NextToken() (eng.Token, error) {
	t, err := a.inner.NextToken()
	if err != nil {
		return eng.Token{}, err
	}
	return eng.Token{
		Kind:   toEngineKind(t.Kind),
		String: t.String,
		Number: t.Number,
		Bool:   t.Bool,
		Offset: t.Offset,
	}, nil
}

func (a *tokenSourceAdapter) Location() int64 { return a.inner.Location() }

// EngineTokenSource exposes the engine.TokenSource view of a Source.
func EngineTokenSource(s Source) eng.TokenSource {
	if ea, ok := s.(*engineSourceAdapter); ok {
		return ea.inner
	}
	return &tokenSourceAdapter{inner: s}
}

func toEngineKind(k tokenKind) eng.Kind {
	switch k {
	case _tokenBeginObject:
		return eng.KindBeginObject
	case _tokenEndObject:
		return eng.KindEndObject
	case _tokenBeginArray:
		return eng.KindBeginArray
	case _tokenEndArray:
		return eng.KindEndArray
	case _tokenKey:
		return eng.KindKey
	case _tokenString:
		return eng.KindString
	case _tokenNumber:
		return eng.KindNumber
	case _tokenBool:
		return eng.KindBool
	default:
		return eng.KindNull
	}
}
