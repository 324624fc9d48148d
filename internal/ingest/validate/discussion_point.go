package validate

import "fmt"

// normalizeDiscussionPoint resolves the polymorphic discussionPoints shape
// (spec §4.2, §9 "tagged variant" design note):
// DiscussionPointInput = String | Object{point: String} | Object{single_key: V}.
// String coercion of a single-key object's value is applied as a last
// resort (spec §4.2); coerced reports whether that fallback fired, for
// validation_warnings_count accounting (SPEC_FULL.md §9.1 resolution 3).
func normalizeDiscussionPoint(raw any) (text string, coerced bool, err error) {
	switch v := raw.(type) {
	case string:
		return v, false, nil
	case map[string]any:
		if id, ok := v["id"]; ok {
			_ = id // consumed separately by the caller via raw["id"]
		}
		if point, ok := v["point"]; ok {
			s, ok := point.(string)
			if !ok {
				return "", false, fmt.Errorf("discussionPoints: point field is not a string")
			}
			return s, false, nil
		}
		// Single-key object fallback: the lone non-"id" key's value becomes
		// the point text via string coercion. An object with zero or several
		// non-"id" keys has no usable field.
		var lone any
		keys := 0
		for k, val := range v {
			if k == "id" {
				continue
			}
			lone = val
			keys++
		}
		if keys == 1 {
			return fmt.Sprintf("%v", lone), true, nil
		}
		return "", false, fmt.Errorf("discussionPoints: object has no usable field")
	default:
		return "", false, fmt.Errorf("discussionPoints: unsupported element type %T", raw)
	}
}
