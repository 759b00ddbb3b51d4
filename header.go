package httpmsg

import (
	"sort"
	"strings"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/net/http/httpguts"
)

// HeaderField is a header name with its values, used to build a Header.
type HeaderField struct {
	Name   string
	Values []string
}

// headerKV is a single stored field. name keeps the casing the field was
// most recently set or appended with; lower is the lookup key.
type headerKV struct {
	name   string
	lower  string
	values []string
}

// Header is an ordered, case-insensitive, multi-valued collection of
// header fields.
//
// Header is an immutable value: Set, Add and Del return a new Header and
// never modify the receiver, so a Header may be shared freely, including
// between goroutines. The zero value is an empty Header.
//
// Fields are kept in the order of their most recent Set or Add. The
// casing of the most recent Set or Add becomes the field's canonical
// name, as reported by Names, All and VisitAll.
type Header struct {
	h []headerKV
}

// NewHeader returns a Header holding fields applied in order. A name
// seen for the first time is set; a name already present, in any
// casing, is appended to.
//
// All fields are validated before any is applied.
func NewHeader(fields ...HeaderField) (Header, error) {
	for _, f := range fields {
		if err := validateHeaderField(f.Name, f.Values); err != nil {
			return Header{}, err
		}
	}
	var h Header
	for _, f := range fields {
		h = h.add(f.Name, f.Values)
	}
	return h, nil
}

// HeaderFromMap returns a Header holding the fields of m.
//
// Names are applied in sorted order, so case variants of one name in m
// are merged deterministically.
func HeaderFromMap(m map[string][]string) (Header, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make([]HeaderField, 0, len(names))
	for _, name := range names {
		fields = append(fields, HeaderField{Name: name, Values: m[name]})
	}
	return NewHeader(fields...)
}

// Len returns the number of fields in h.
func (h Header) Len() int {
	return len(h.h)
}

// Has reports whether a field named name exists, ignoring case.
func (h Header) Has(name string) bool {
	return h.index(name) >= 0
}

// Get returns the values of the field named name, ignoring case.
//
// An empty slice is returned when the field is absent. The returned
// slice is a copy.
func (h Header) Get(name string) []string {
	i := h.index(name)
	if i < 0 {
		return []string{}
	}
	return append(make([]string, 0, len(h.h[i].values)), h.h[i].values...)
}

// Line returns the values of the field named name joined with ", ".
func (h Header) Line(name string) string {
	i := h.index(name)
	if i < 0 {
		return ""
	}
	values := h.h[i].values
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	}
	b := bytebufferpool.Get()
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v)
	}
	s := b.String()
	bytebufferpool.Put(b)
	return s
}

// Names returns the canonical field names in order.
func (h Header) Names() []string {
	names := make([]string, len(h.h))
	for i := range h.h {
		names[i] = h.h[i].name
	}
	return names
}

// All returns a map from canonical field name to values.
//
// Use Names or VisitAll when the field order matters.
func (h Header) All() map[string][]string {
	m := make(map[string][]string, len(h.h))
	for _, kv := range h.h {
		m[kv.name] = append(make([]string, 0, len(kv.values)), kv.values...)
	}
	return m
}

// VisitAll calls f for each field in order.
//
// f must not retain or modify values.
func (h Header) VisitAll(f func(name string, values []string)) {
	for _, kv := range h.h {
		f(kv.name, kv.values)
	}
}

// Set returns a copy of h where the field named name holds exactly
// values. Any prior field with that name, in any casing, is replaced and
// name's casing becomes canonical.
func (h Header) Set(name string, values ...string) (Header, error) {
	if err := validateHeaderField(name, values); err != nil {
		return h, err
	}
	return h.set(name, values), nil
}

// Add returns a copy of h with values appended to the field named name.
//
// When the field is absent Add behaves like Set. Otherwise the prior
// values are kept as a prefix and the field is re-keyed under name's
// casing.
func (h Header) Add(name string, values ...string) (Header, error) {
	if err := validateHeaderField(name, values); err != nil {
		return h, err
	}
	return h.add(name, values), nil
}

// Del returns a copy of h without the field named name, ignoring case.
func (h Header) Del(name string) Header {
	i := h.index(name)
	if i < 0 {
		return h
	}
	return Header{h: h.without(i, 0)}
}

func (h Header) index(name string) int {
	lower := strings.ToLower(name)
	for i := range h.h {
		if h.h[i].lower == lower {
			return i
		}
	}
	return -1
}

// without returns a fresh copy of the fields minus position i, with extra
// spare capacity for a field about to be appended.
func (h Header) without(i, extra int) []headerKV {
	dst := make([]headerKV, 0, len(h.h)-1+extra)
	dst = append(dst, h.h[:i]...)
	return append(dst, h.h[i+1:]...)
}

func (h Header) set(name string, values []string) Header {
	kv := headerKV{
		name:   name,
		lower:  strings.ToLower(name),
		values: trimHeaderValues(nil, values),
	}
	var dst []headerKV
	if i := h.index(name); i >= 0 {
		dst = h.without(i, 1)
	} else {
		dst = make([]headerKV, 0, len(h.h)+1)
		dst = append(dst, h.h...)
	}
	return Header{h: append(dst, kv)}
}

func (h Header) add(name string, values []string) Header {
	i := h.index(name)
	if i < 0 {
		return h.set(name, values)
	}
	prior := h.h[i].values
	kv := headerKV{
		name:   name,
		lower:  h.h[i].lower,
		values: trimHeaderValues(append(make([]string, 0, len(prior)+len(values)), prior...), values),
	}
	return Header{h: append(h.without(i, 1), kv)}
}

func trimHeaderValues(dst, values []string) []string {
	if dst == nil {
		dst = make([]string, 0, len(values))
	}
	for _, v := range values {
		dst = append(dst, strings.Trim(v, " \t"))
	}
	return dst
}

func validateHeaderField(name string, values []string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return invalidInput("header name %q is not a token", name)
	}
	for _, v := range values {
		if !httpguts.ValidHeaderFieldValue(v) {
			return invalidInput("header %q has a malformed value %q", name, v)
		}
	}
	return nil
}
