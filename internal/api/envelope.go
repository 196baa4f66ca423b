package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the response envelope schema version.
const EnvelopeVersion = 1

// Envelope wraps every JSON response body.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps response bodies in an Envelope.
// Error bodies become {v, success:false, error, code, details}.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case Envelope, *Envelope:
		return v, nil
	case *APIError:
		return errorEnvelope(body), nil
	default:
		return Envelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
	}
}

func errorEnvelope(e *APIError) Envelope {
	return Envelope{
		Version: EnvelopeVersion,
		Success: false,
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}
