package content

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/glamsite/glamsite/internal/domain"
)

// Validator inspects a document that has already passed the object check.
// A non-nil error rejects the write.
type Validator func(s Section, doc Document) error

// ShapeValidator rejects documents whose top-level fields disagree in JSON
// kind with the section's scaffold. Fields the scaffold does not define, and
// scaffold fields the document omits, are accepted.
func ShapeValidator(s Section, doc Document) error {
	var want map[string]json.RawMessage
	if err := json.Unmarshal(Scaffold(s), &want); err != nil {
		return fmt.Errorf("decode scaffold %s: %w", s, err)
	}
	var got map[string]json.RawMessage
	if err := json.Unmarshal(doc, &got); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, ok := got[k]
		if !ok {
			continue
		}
		if wk, gk := KindOf(want[k]), KindOf(v); wk != gk {
			return fmt.Errorf("%w: field %q must be %s, got %s", domain.ErrValidation, k, wk, gk)
		}
	}
	return nil
}
