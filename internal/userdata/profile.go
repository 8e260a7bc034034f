package userdata

import (
	"errors"
	"fmt"
	"sort"
)

const (
	FieldName = "name"
	FieldAge  = "age"
)

// Fields is the loose key/value form of a profile. It is used both as the
// partial-update payload and as the merge working set.
type Fields map[string]any

// Profile is the persisted user profile.
//
// Schema constraints: the on-disk object may only carry name and age, each a
// string or null. Age is kept as a string exactly as entered.
type Profile struct {
	Name *string `json:"name"`
	Age  *string `json:"age"`
}

// Fields returns the full mapping of the profile. Both keys are always present;
// unset fields map to nil.
func (p Profile) Fields() Fields {
	out := Fields{FieldName: nil, FieldAge: nil}
	if p.Name != nil {
		out[FieldName] = *p.Name
	}
	if p.Age != nil {
		out[FieldAge] = *p.Age
	}
	return out
}

// DisplayName returns the name, or "" when unset.
func (p Profile) DisplayName() string {
	if p.Name == nil {
		return ""
	}
	return *p.Name
}

// HasName reports whether a non-empty name is set.
func (p Profile) HasName() bool {
	return p.DisplayName() != ""
}

// ParseProfile validates a loose mapping against the profile schema.
//
// Every violation is reported; the returned error joins one *ValidationError
// per offending key. Keys are checked in sorted order so messages are stable.
func ParseProfile(fields Fields) (Profile, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var p Profile
	var errs []error
	for _, k := range keys {
		v := fields[k]
		var dst **string
		switch k {
		case FieldName:
			dst = &p.Name
		case FieldAge:
			dst = &p.Age
		default:
			errs = append(errs, &ValidationError{Field: k, Reason: "unknown field"})
			continue
		}
		s, err := optionalString(v)
		if err != nil {
			errs = append(errs, &ValidationError{Field: k, Reason: err.Error()})
			continue
		}
		*dst = s
	}
	if len(errs) == 0 {
		return p, nil
	}
	return Profile{}, errors.Join(errs...)
}

func optionalString(v any) (*string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &t, nil
	case *string:
		return t, nil
	default:
		return nil, fmt.Errorf("must be a string or null (got %s)", jsonTypeName(v))
	}
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// StringPtr is a small helper for building profiles in code.
func StringPtr(s string) *string { return &s }
