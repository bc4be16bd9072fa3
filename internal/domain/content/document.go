package content

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/glamsite/glamsite/internal/domain"
)

// Document is the full JSON content for one section. It is stored and
// returned verbatim.
type Document = json.RawMessage

// Kind is the JSON type of a value.
type Kind string

const (
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBool    Kind = "bool"
	KindNull    Kind = "null"
	KindInvalid Kind = "invalid"
)

// KindOf reports the JSON type of data without fully decoding it.
// Data that is not valid JSON is KindInvalid.
func KindOf(data []byte) Kind {
	if !json.Valid(data) {
		return KindInvalid
	}
	trimmed := bytes.TrimSpace(data)
	switch trimmed[0] {
	case '{':
		return KindObject
	case '[':
		return KindArray
	case '"':
		return KindString
	case 't', 'f':
		return KindBool
	case 'n':
		return KindNull
	default:
		return KindNumber
	}
}

// CheckObject returns a validation error unless doc is a JSON object.
// Arrays are rejected even though they are structured values.
func CheckObject(doc []byte) error {
	switch k := KindOf(doc); k {
	case KindObject:
		return nil
	case KindInvalid:
		return fmt.Errorf("%w: document is not valid JSON", domain.ErrValidation)
	default:
		return fmt.Errorf("%w: document must be a JSON object, got %s", domain.ErrValidation, k)
	}
}
