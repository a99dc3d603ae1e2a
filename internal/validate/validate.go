// Package validate implements the shared record validation rules: a fixed-order
// required-field check followed by enumerated-value checks. Validators are pure
// functions over the incoming JSON object and run before any storage mutation.
package validate

import (
	"fmt"
	"strings"
)

// EnumRule constrains a field to a fixed set of literal values (case-sensitive).
// Optional rules are checked only when the field is present.
type EnumRule struct {
	Field    string
	Allowed  []string
	Optional bool
}

// Rules describes validation for one resource type.
type Rules struct {
	Required []string
	Enums    []EnumRule
}

// Allowed value sets shared by the insurance application resources.
var (
	InsuranceTypes   = []string{"life", "health", "vehicle"}
	PaymentTerms     = []string{"monthly", "yearly"}
	HealthConditions = []string{"Yes", "No"}
	Statuses         = []string{"Pending", "Accepted", "Rejected"}
)

// Validate checks doc against the rules and returns an error naming the first
// failing field, or nil when the record is acceptable.
func (r Rules) Validate(doc map[string]interface{}) error {
	for _, field := range r.Required {
		if isEmpty(doc[field]) {
			return fmt.Errorf("%s is required", field)
		}
	}
	for _, rule := range r.Enums {
		v, present := doc[rule.Field]
		if !present || isEmpty(v) {
			if rule.Optional {
				continue
			}
			// Non-optional enum fields are also in Required; nothing more to say here.
			continue
		}
		if err := rule.check(v); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePartial checks only the enum rules for fields present in doc.
// Used for merge-patch updates where absent fields stay untouched.
func (r Rules) ValidatePartial(doc map[string]interface{}) error {
	for _, rule := range r.Enums {
		v, present := doc[rule.Field]
		if !present {
			continue
		}
		if err := rule.check(v); err != nil {
			return err
		}
	}
	return nil
}

func (e EnumRule) check(v interface{}) error {
	s, ok := v.(string)
	if ok {
		for _, a := range e.Allowed {
			if s == a {
				return nil
			}
		}
	}
	return fmt.Errorf("Invalid %s. Allowed: %s", e.Field, strings.Join(e.Allowed, ", "))
}

// isEmpty mirrors the platform's notion of a missing value: nil, empty string,
// false, zero number, or an empty collection.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	case int64:
		return t == 0
	case []interface{}:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}
