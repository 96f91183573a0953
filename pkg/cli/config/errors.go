package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrDuplicatePatternID = goerr.New("duplicate pattern ID")
	ErrInvalidLimit       = goerr.New("limit must not be negative")
	ErrUnknownTemplate    = goerr.New("unknown template")
)

// Context keys for error values
const (
	ConfigPathKey    = "config_path"
	PatternIDKey     = "pattern_id"
	PatternIndexKey  = "pattern_index"
	TemplateNameKey  = "template_name"
	TemplateIndexKey = "template_index"
	FieldKey         = "field"
)
