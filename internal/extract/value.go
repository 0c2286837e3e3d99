package extract

// Unwrap returns the "value" payload of an extraction container, or def when
// the container is absent, not an object, or holds no payload. Absence at any
// nesting level short-circuits to def; it never panics on odd shapes.
func Unwrap(container, def any) any {
	m, ok := container.(map[string]any)
	if !ok {
		return def
	}
	v, ok := m["value"]
	if !ok || v == nil {
		return def
	}
	return v
}

// Field looks up name on an already-unwrapped section object and unwraps the
// container found there. A missing section or field yields nil, so callers
// never distinguish "section absent" from "field absent".
func Field(section any, name string) any {
	m, ok := section.(map[string]any)
	if !ok {
		return nil
	}
	return Unwrap(m[name], nil)
}
