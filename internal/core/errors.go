package core

// errors.go defines the pipeline error taxonomy and the mapping to
// user-facing messages.
//
// Every failure carries enough structure for the web layer to pick an HTTP
// status and for users to fix their source file: normalization errors name
// the offending field, decode errors identify the structural problem, and
// template errors are surfaced generically because template internals are
// an operator concern, not a caller one.
//
// Error codes are grouped by category for support reference:
//
//	FILE001 - unsupported file type
//	FILE002 - file too large
//	FILE003 - empty or missing file
//	FILE004 - malformed file
//	FILE005 - duplicate column header
//	VAL001  - missing required column
//	VAL002  - invalid value in column
//	VAL003  - unknown generation mode
//	TPL001  - template misconfiguration (unknown placeholder / unavailable)
//	GEN001  - no documents produced
//	ERR000  - unexpected failure

import (
	"errors"
	"fmt"
	"net/http"

	"docgen/internal/decode"
)

// InputKind classifies client-caused input rejections.
type InputKind int

const (
	InputUnsupportedType InputKind = iota
	InputTooLarge
	InputEmpty
	InputTooManyRows
	InputBadMode
	InputMissingFile
)

// InputError is a request rejected before the pipeline runs.
type InputError struct {
	Kind   InputKind
	Detail string
}

func (e *InputError) Error() string {
	switch e.Kind {
	case InputUnsupportedType:
		return fmt.Sprintf("unsupported file type: %s", e.Detail)
	case InputTooLarge:
		return fmt.Sprintf("file too large: %s", e.Detail)
	case InputEmpty:
		return "empty file"
	case InputMissingFile:
		return "no file provided"
	case InputTooManyRows:
		return fmt.Sprintf("too many rows: %s", e.Detail)
	default:
		return fmt.Sprintf("unknown generation mode: %s", e.Detail)
	}
}

// NormalizeKind classifies schema mismatches.
type NormalizeKind int

const (
	MissingField NormalizeKind = iota
	InvalidValue
)

// NormalizeError is a schema mismatch in the source file. Field is the
// canonical field name so the caller can locate the offending column.
type NormalizeError struct {
	Kind   NormalizeKind
	Field  string
	Detail string
}

func (e *NormalizeError) Error() string {
	if e.Kind == MissingField {
		return fmt.Sprintf("missing required column for field %q", e.Field)
	}
	if e.Detail != "" {
		return fmt.Sprintf("invalid value for field %q: %s", e.Field, e.Detail)
	}
	return fmt.Sprintf("invalid value for field %q", e.Field)
}

// BindKind classifies template binding failures.
type BindKind int

const (
	UnknownPlaceholder BindKind = iota
	TemplateUnavailable
)

// BindError is a template misconfiguration. These are operator-facing:
// the caller cannot fix the template, so the web layer reports them as a
// generic processing failure while the full detail is logged.
type BindError struct {
	Kind  BindKind
	Token string
	Err   error
}

func (e *BindError) Error() string {
	if e.Kind == UnknownPlaceholder {
		return fmt.Sprintf("template placeholder %q does not match any schema field", e.Token)
	}
	if e.Err != nil {
		return fmt.Sprintf("template unavailable: %v", e.Err)
	}
	return "template unavailable"
}

func (e *BindError) Unwrap() error { return e.Err }

// ErrNoDocuments is returned when packaging is asked to archive zero
// documents, which means the input had no usable data rows.
var ErrNoDocuments = errors.New("no documents to package")

// Stage identifies where in the pipeline a request failed.
type Stage string

const (
	StageInput     Stage = "input"
	StageDecode    Stage = "decode"
	StageNormalize Stage = "normalize"
	StageAggregate Stage = "aggregate"
	StageBind      Stage = "bind"
	StagePack      Stage = "pack"
)

// StageError wraps a failure with the pipeline stage that produced it.
// A request either yields a complete archive or exactly one StageError.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// UserMessage is the user-facing rendering of a pipeline failure.
type UserMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// MapError converts any pipeline error into a UserMessage. Unrecognized
// errors fall through to ERR000 with a generic message so internal detail
// never leaks to callers.
func MapError(err error) UserMessage {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		switch inputErr.Kind {
		case InputUnsupportedType:
			return UserMessage{Code: "FILE001", Message: "Unsupported file type.", Action: "Upload an .xlsx or .csv file."}
		case InputTooLarge:
			return UserMessage{Code: "FILE002", Message: "File exceeds the maximum allowed size.", Action: "Split the file and upload it in parts."}
		case InputEmpty:
			return UserMessage{Code: "FILE003", Message: "The uploaded file is empty.", Action: "Upload a file with a header row and data rows."}
		case InputMissingFile:
			return UserMessage{Code: "FILE003", Message: "No file was provided.", Action: "Attach an .xlsx or .csv file as the \"file\" form field."}
		case InputTooManyRows:
			return UserMessage{Code: "FILE002", Message: "File has too many rows.", Action: "Split the file and upload it in parts."}
		default:
			return UserMessage{Code: "VAL003", Message: "Unknown generation mode.", Action: "Use mode 'individual' or 'aggregated'."}
		}
	}

	var decodeErr *decode.Error
	if errors.As(err, &decodeErr) {
		switch decodeErr.Kind {
		case decode.DuplicateHeader:
			return UserMessage{Code: "FILE005", Message: "The file has a duplicate or empty column header.", Action: "Make every header cell unique and non-empty."}
		case decode.UnsupportedFormat:
			return UserMessage{Code: "FILE001", Message: "Unsupported file type.", Action: "Upload an .xlsx or .csv file."}
		default:
			return UserMessage{Code: "FILE004", Message: "The file could not be read.", Action: "Re-export the file and try again."}
		}
	}

	var normErr *NormalizeError
	if errors.As(err, &normErr) {
		if normErr.Kind == MissingField {
			return UserMessage{
				Code:    "VAL001",
				Message: fmt.Sprintf("Required column %q is missing.", normErr.Field),
				Action:  "Check that all required columns are present in your file.",
			}
		}
		return UserMessage{
			Code:    "VAL002",
			Message: fmt.Sprintf("Column %q contains an invalid value.", normErr.Field),
			Action:  "Remove currency symbols and use standard decimal format.",
		}
	}

	var bindErr *BindError
	if errors.As(err, &bindErr) {
		return UserMessage{Code: "TPL001", Message: "Document generation failed.", Action: "Contact the operator; the document template is misconfigured."}
	}

	if errors.Is(err, ErrNoDocuments) {
		return UserMessage{Code: "GEN001", Message: "No documents were produced.", Action: "The file has a header but no usable data rows."}
	}

	return UserMessage{Code: "ERR000", Message: "An unexpected error occurred.", Action: "Please try again or contact support."}
}

// HTTPStatus maps a pipeline error to the response status code. Client-
// fixable problems are 400s; template faults and anything unknown are 500s.
func HTTPStatus(err error) int {
	var (
		inputErr  *InputError
		decodeErr *decode.Error
		normErr   *NormalizeError
		bindErr   *BindError
	)
	switch {
	case errors.As(err, &inputErr), errors.As(err, &decodeErr),
		errors.As(err, &normErr), errors.Is(err, ErrNoDocuments):
		return http.StatusBadRequest
	case errors.As(err, &bindErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
