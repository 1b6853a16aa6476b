package sequence

import "seqcode/domain/record"

// Eligible decides whether a locked definition should generate a code for
// the incoming record. Rules short-circuit; a false from any rule means
// "skip this definition", never an error.
//
// The rules, in order:
//  1. On Update the record must contain the watched trigger attribute.
//  2. A conditional definition fires only when the record carries the
//     conditional attribute with exactly the configured option value.
//  3. A non-blank value already on the incoming record is a manual value and
//     is never overwritten.
//  4. On Update a non-blank value already persisted (pre-update snapshot) is
//     never overwritten either.
func Eligible(def *Definition, rec record.Record, event TriggerEvent, preImage record.Record) bool {
	if event == TriggerUpdate && !rec.Contains(def.TriggerAttribute) {
		return false
	}

	if def.Conditional() {
		v, ok := rec.Get(def.ConditionalAttribute)
		if !ok {
			return false
		}
		option, ok := v.OptionNumber()
		if !ok || option != def.ConditionalValue {
			return false
		}
	}

	if rec.Contains(def.AttributeName) && !rec.BlankAt(def.AttributeName) {
		return false
	}

	if event == TriggerUpdate && preImage != nil && !preImage.BlankAt(def.AttributeName) {
		return false
	}

	return true
}
