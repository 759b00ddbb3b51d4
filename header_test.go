package httpmsg

import (
	"errors"
	"testing"

	"github.com/gookit/goutil/testutil/assert"
)

func TestHeaderSetAndGet(t *testing.T) {
	h, err := Header{}.Set("a", "aaa")
	assert.NoErr(t, err)
	h, err = h.Set("b", "bb", "bbb")
	assert.NoErr(t, err)

	assert.Eq(t, []string{"aaa"}, h.Get("a"))
	assert.Eq(t, []string{"bb", "bbb"}, h.Get("B"))
	assert.Eq(t, []string{}, h.Get("c"))
	assert.True(t, h.Has("A"))
	assert.False(t, h.Has("c"))
	assert.Eq(t, 2, h.Len())
}

func TestHeaderSetReplacesCasing(t *testing.T) {
	h, _ := Header{}.Set("a", "aaa")
	h, _ = h.Set("b", "bb")
	h, _ = h.Set("B", "bbb")

	assert.Eq(t, []string{"aaa"}, h.Get("A"))
	assert.Eq(t, []string{"bbb"}, h.Get("b"))
	assert.Eq(t, []string{"a", "B"}, h.Names())
	assert.Eq(t, map[string][]string{"a": {"aaa"}, "B": {"bbb"}}, h.All())
}

func TestHeaderAdd(t *testing.T) {
	h, _ := Header{}.Add("a", "aaa")
	h, _ = h.Add("b", "bb")
	h, _ = h.Add("B", "bbb")

	assert.Eq(t, []string{"aaa"}, h.Get("A"))
	assert.Eq(t, []string{"bb", "bbb"}, h.Get("b"))
	assert.Eq(t, map[string][]string{"a": {"aaa"}, "B": {"bb", "bbb"}}, h.All())
}

func TestHeaderAddOnAbsentFieldIsSet(t *testing.T) {
	added, _ := Header{}.Add("X-Foo", "1", "2")
	set, _ := Header{}.Set("X-Foo", "1", "2")
	assert.Eq(t, set.All(), added.All())
	assert.Eq(t, set.Names(), added.Names())
}

func TestHeaderMutationMovesFieldToEnd(t *testing.T) {
	h, _ := NewHeader(
		HeaderField{Name: "Accept", Values: []string{"*/*"}},
		HeaderField{Name: "Host", Values: []string{"a.b"}},
	)
	h2, _ := h.Add("accept", "text/html")
	assert.Eq(t, []string{"Host", "accept"}, h2.Names())
	assert.Eq(t, []string{"*/*", "text/html"}, h2.Get("ACCEPT"))

	h3, _ := h2.Set("HOST", "c.d")
	assert.Eq(t, []string{"accept", "HOST"}, h3.Names())
}

func TestHeaderCaseVariantsResolveToSameValues(t *testing.T) {
	h, _ := Header{}.Set("Content-Type", "text/plain")
	h, _ = h.Add("CONTENT-TYPE", "charset=utf-8")
	h, _ = h.Add("content-type", "q=1")
	for _, name := range []string{"content-type", "Content-Type", "CONTENT-TYPE", "cOnTeNt-TyPe"} {
		assert.Eq(t, []string{"text/plain", "charset=utf-8", "q=1"}, h.Get(name))
	}
	assert.Eq(t, []string{"content-type"}, h.Names())
}

func TestHeaderImmutable(t *testing.T) {
	h, _ := Header{}.Set("a", "1")
	h2, _ := h.Add("A", "2")
	h3 := h2.Del("a")

	assert.Eq(t, []string{"1"}, h.Get("a"))
	assert.Eq(t, []string{"a"}, h.Names())
	assert.Eq(t, []string{"1", "2"}, h2.Get("a"))
	assert.Eq(t, 0, h3.Len())
}

func TestHeaderTrimsValues(t *testing.T) {
	h, err := Header{}.Set("a", " \tfoo bar\t ", "baz  ")
	assert.NoErr(t, err)
	assert.Eq(t, []string{"foo bar", "baz"}, h.Get("a"))
}

func TestHeaderLine(t *testing.T) {
	h, _ := Header{}.Set("a")
	h, _ = h.Set("b", "bb", "bbb")

	assert.Eq(t, "", h.Line("a"))
	assert.Eq(t, "bb, bbb", h.Line("B"))
	assert.Eq(t, "", h.Line("missing"))
}

func TestHeaderDel(t *testing.T) {
	h, _ := Header{}.Set("a", "aaa")
	h = h.Del("A")
	assert.Eq(t, 0, h.Len())
	assert.Eq(t, map[string][]string{}, h.All())

	// no-op when absent
	h2 := h.Del("missing")
	assert.Eq(t, 0, h2.Len())
}

func TestHeaderVisitAllInOrder(t *testing.T) {
	h, _ := NewHeader(
		HeaderField{Name: "c", Values: []string{"3"}},
		HeaderField{Name: "a", Values: []string{"1"}},
		HeaderField{Name: "b", Values: []string{"2"}},
	)
	var names, values []string
	h.VisitAll(func(name string, vs []string) {
		names = append(names, name)
		values = append(values, vs...)
	})
	assert.Eq(t, []string{"c", "a", "b"}, names)
	assert.Eq(t, []string{"3", "1", "2"}, values)
}

func TestNewHeaderMergesCaseVariants(t *testing.T) {
	h, err := NewHeader(
		HeaderField{Name: "x-id", Values: []string{"1"}},
		HeaderField{Name: "X-Id", Values: []string{"2"}},
	)
	assert.NoErr(t, err)
	assert.Eq(t, map[string][]string{"X-Id": {"1", "2"}}, h.All())
}

func TestHeaderFromMap(t *testing.T) {
	h, err := HeaderFromMap(map[string][]string{
		"Host":   {"example.com"},
		"Accept": {"*/*"},
	})
	assert.NoErr(t, err)
	assert.Eq(t, []string{"Accept", "Host"}, h.Names())
}

func TestHeaderInvalidInput(t *testing.T) {
	h, _ := Header{}.Set("a", "1")
	for _, tc := range []struct {
		name   string
		values []string
	}{
		{"", []string{"v"}},
		{"bad name", []string{"v"}},
		{"bad:name", []string{"v"}},
		{"ok", []string{"line\r\nbreak"}},
		{"ok", []string{"fine", "nul\x00"}},
	} {
		_, err := h.Set(tc.name, tc.values...)
		assert.True(t, errors.Is(err, ErrInvalidInput))
		_, err = h.Add(tc.name, tc.values...)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	}
	// receiver untouched
	assert.Eq(t, map[string][]string{"a": {"1"}}, h.All())

	_, err := NewHeader(
		HeaderField{Name: "good", Values: []string{"v"}},
		HeaderField{Name: "bad name", Values: []string{"v"}},
	)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestHeaderGetReturnsCopy(t *testing.T) {
	h, _ := Header{}.Set("X", "original")
	h2, _ := h.Set("Y", "y")

	h.Get("x")[0] = "changed"
	assert.Eq(t, []string{"original"}, h.Get("X"))
	assert.Eq(t, []string{"original"}, h2.Get("X"))
	assert.Eq(t, "original", h2.Line("x"))
}
