package middleware

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// SanitizeConfig bounds the shape of caller input.
type SanitizeConfig struct {
	// MaxParams caps the number of top-level parameters. Defaults to 32.
	MaxParams int

	// MaxStringLength caps any single string value, in bytes. Defaults
	// to 4096.
	MaxStringLength int

	// MaxDepth caps nesting of maps and slices inside parameter values.
	// Defaults to 5.
	MaxDepth int
}

// Sanitize validates raw caller input before it can consume rate-limit
// quota or reach the upstream.
type Sanitize struct {
	config SanitizeConfig
}

var _ Middleware = (*Sanitize)(nil)

func NewSanitize(config SanitizeConfig) *Sanitize {
	if config.MaxParams <= 0 {
		config.MaxParams = 32
	}
	if config.MaxStringLength <= 0 {
		config.MaxStringLength = 4096
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = 5
	}
	return &Sanitize{config: config}
}

func (s *Sanitize) Name() string { return "sanitize" }

func (s *Sanitize) Handle(ctx context.Context, req *Request, next Next) (*Response, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return next(ctx, req)
}

func (s *Sanitize) validate(req *Request) error {
	if req.Operation == "" {
		return &SanitizeError{Field: "operation", Reason: "empty"}
	}
	if !validOperationName(req.Operation) {
		return &SanitizeError{Field: "operation", Reason: "must be lowercase letters, digits, and underscores"}
	}
	if len(req.Params) > s.config.MaxParams {
		return &SanitizeError{
			Field:  "params",
			Reason: fmt.Sprintf("too many parameters (%d > %d)", len(req.Params), s.config.MaxParams),
		}
	}
	for key, value := range req.Params {
		if key == "" {
			return &SanitizeError{Field: "params", Reason: "empty parameter name"}
		}
		if err := s.validateValue(key, value, 0); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sanitize) validateValue(field string, value any, depth int) error {
	if depth > s.config.MaxDepth {
		return &SanitizeError{Field: field, Reason: fmt.Sprintf("nesting deeper than %d", s.config.MaxDepth)}
	}
	switch v := value.(type) {
	case nil, bool, int, int32, int64, float32, float64:
		return nil
	case string:
		return s.validateString(field, v)
	case []any:
		for i, item := range v {
			if err := s.validateValue(fmt.Sprintf("%s[%d]", field, i), item, depth+1); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for k, item := range v {
			if k == "" {
				return &SanitizeError{Field: field, Reason: "empty key"}
			}
			if err := s.validateValue(field+"."+k, item, depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return &SanitizeError{Field: field, Reason: fmt.Sprintf("unsupported type %T", value)}
	}
}

func (s *Sanitize) validateString(field, v string) error {
	if len(v) > s.config.MaxStringLength {
		return &SanitizeError{
			Field:  field,
			Reason: fmt.Sprintf("string longer than %d bytes", s.config.MaxStringLength),
		}
	}
	if !utf8.ValidString(v) {
		return &SanitizeError{Field: field, Reason: "invalid UTF-8"}
	}
	for _, r := range v {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return &SanitizeError{Field: field, Reason: "control character in value"}
		}
	}
	return nil
}

func validOperationName(op string) bool {
	for _, r := range op {
		switch {
		case 'a' <= r && r <= 'z':
		case '0' <= r && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
