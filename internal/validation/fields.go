package validation

// FieldErrors collects per-field validation messages so the form can attach
// each failure to its input instead of showing one opaque error.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Has() bool {
	return len(e) > 0
}
