package jerrors

import (
	"strconv"

	"github.com/graphql-go/graphql/gqlerrors"
)

// Error is the JSON shape of an error written by the HTTP transport.
type Error struct {
	Message    string    `json:"message"`
	Extensions Extension `json:"extensions"`
	Paths      []string  `json:"paths"`
}

// Extension carries the error classification. Vetoes also name the feature
// and the reason given by the domain.
type Extension struct {
	Code    string `json:"code"`
	Feature string `json:"feature,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// ConvertError turns a transport level failure into an Error.
func ConvertError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{
		Message:    err.Error(),
		Extensions: Extension{Code: string(CodeOf(err))},
		Paths:      []string{},
	}
}

// FromFormatted converts the errors collected by the GraphQL engine.
func FromFormatted(errs []gqlerrors.FormattedError) []*Error {
	if len(errs) == 0 {
		return nil
	}
	out := make([]*Error, 0, len(errs))
	for _, fe := range errs {
		e := &Error{
			Message:    fe.Message,
			Extensions: Extension{Code: string(CodeUnknown)},
			Paths:      []string{},
		}
		if code, ok := fe.Extensions["code"].(string); ok {
			e.Extensions.Code = code
		}
		e.Extensions.Feature, _ = fe.Extensions["feature"].(string)
		e.Extensions.Reason, _ = fe.Extensions["reason"].(string)
		for _, p := range fe.Path {
			e.Paths = append(e.Paths, fmtPath(p))
		}
		out = append(out, e)
	}
	return out
}

func fmtPath(p interface{}) string {
	switch v := p.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
