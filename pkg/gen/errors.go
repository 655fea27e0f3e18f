package gen

import "fmt"

// DataError is a schema mismatch in LLM output that survived normalization.
// Fatal to the stage; the caller may retry the whole stage.
type DataError struct {
	Stage string
	Field string
	Err   error
}

func (e *DataError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: malformed %q: %v", e.Stage, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: malformed response: %v", e.Stage, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }

// LLMError is a provider call that failed outright.
type LLMError struct {
	Stage string
	Err   error
}

func (e *LLMError) Error() string {
	return fmt.Sprintf("%s: provider call failed: %v", e.Stage, e.Err)
}

func (e *LLMError) Unwrap() error { return e.Err }

// ConfigurationError is a missing prompt template, credential or model
// mapping. Fatal at first use.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Msg, e.Err)
	}
	return "configuration: " + e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
