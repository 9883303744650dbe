package middleware

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(name string, calls *[]string) Hooks {
	return Hooks{
		Name: Kind(name),
		OnLoad: func(markup string) string {
			*calls = append(*calls, name+".BeforeLoad")
			return markup + name
		},
		OnLoaded: func() { *calls = append(*calls, name+".AfterLoad") },
		OnSave:   func() { *calls = append(*calls, name+".BeforeSave") },
		OnSaved: func(markup string) string {
			*calls = append(*calls, name+".AfterSave")
			return markup + name
		},
	}
}

func TestPipeline_HookOrder(t *testing.T) {
	var calls []string
	p := NewPipeline([]Middleware{recorder("a", &calls), recorder("b", &calls)}, nil)

	assert.Equal(t, "xab", p.BeforeLoad("x"))
	p.AfterLoad()
	p.BeforeSave()
	assert.Equal(t, "yba", p.AfterSave("y"))

	assert.Equal(t, []string{
		"a.BeforeLoad", "b.BeforeLoad",
		"a.AfterLoad", "b.AfterLoad",
		"b.BeforeSave", "a.BeforeSave",
		"b.AfterSave", "a.AfterSave",
	}, calls)
}

func TestPipeline_SnapshotsChain(t *testing.T) {
	var calls []string
	chain := []Middleware{recorder("a", &calls)}
	p := NewPipeline(chain, nil)

	chain[0] = recorder("b", &calls)

	assert.Equal(t, "xa", p.BeforeLoad("x"))
	assert.Equal(t, 1, p.Len())
}

func TestPipeline_RecoversPanickingHook(t *testing.T) {
	logger, hook := test.NewNullLogger()

	broken := Hooks{
		Name:   "broken",
		OnLoad: func(string) string { panic("boom") },
	}
	upper := Hooks{
		Name:   "upper",
		OnLoad: strings.ToUpper,
	}

	p := NewPipeline([]Middleware{broken, upper}, logger)
	assert.Equal(t, "<P>X</P>", p.BeforeLoad("<p>x</p>"))

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, Kind("broken"), hook.LastEntry().Data["middleware"])
}

func TestWithout(t *testing.T) {
	chain := []Middleware{NewTrim(), NewBlankTag("script"), NewInjectDoctype(), NewBlankTag("style")}

	got := Without(chain, KindBlankTag)
	require.Len(t, got, 2)
	assert.Equal(t, KindTrim, got[0].Kind())
	assert.Equal(t, KindInjectDoctype, got[1].Kind())
	assert.Len(t, chain, 4, "source chain must not change")

	assert.Empty(t, Without(chain))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("blank-tag")
	require.NoError(t, err)
	assert.Equal(t, KindBlankTag, k)

	_, err = ParseKind("nope")
	assert.Error(t, err)
}

type fakeParser struct {
	collect bool
	cleared int
}

func (f *fakeParser) SetCollectDiagnostics(enabled bool) { f.collect = enabled }
func (f *fakeParser) ClearDiagnostics()                  { f.cleared++ }

func TestSuppressDiagnostics(t *testing.T) {
	parser := &fakeParser{collect: true}
	m := NewSuppressDiagnostics(parser)

	assert.Equal(t, "<p>", m.BeforeLoad("<p>"))
	assert.False(t, parser.collect)

	m.AfterLoad()
	assert.Equal(t, 1, parser.cleared)
	assert.Equal(t, "<p>", m.AfterSave("<p>"))
}

func countFixed(n int) RootCounter {
	return func(string) int { return n }
}

func TestWrapRoots(t *testing.T) {
	t.Run("single root is untouched", func(t *testing.T) {
		m := NewWrapRoots(countFixed(1))
		assert.Equal(t, "<div></div>", m.BeforeLoad("<div></div>"))
		assert.False(t, m.Wrapped())
		assert.Equal(t, "<htmldoc-wrapper><div></div></htmldoc-wrapper>",
			m.AfterSave("<htmldoc-wrapper><div></div></htmldoc-wrapper>"))
	})

	t.Run("multiple roots are wrapped and unwrapped", func(t *testing.T) {
		m := NewWrapRoots(countFixed(2))
		wrapped := m.BeforeLoad("<p></p><p></p>")
		assert.Equal(t, "<htmldoc-wrapper><p></p><p></p></htmldoc-wrapper>", wrapped)
		assert.True(t, m.Wrapped())
		assert.Equal(t, "<p></p><p></p>", m.AfterSave(wrapped))
		assert.Equal(t, "<p></p><p></p>", m.AfterSave(wrapped), "repeated saves unwrap too")
	})

	t.Run("state resets on the next load", func(t *testing.T) {
		n := 2
		m := NewWrapRoots(func(string) int { return n })
		m.BeforeLoad("<p></p><p></p>")
		n = 1
		m.BeforeLoad("<p></p>")
		assert.False(t, m.Wrapped())
	})

	t.Run("leading doctype stays outside the wrapper", func(t *testing.T) {
		m := NewWrapRoots(countFixed(2))
		wrapped := m.BeforeLoad("<!DOCTYPE html><p></p><p></p>")
		assert.Equal(t, "<!DOCTYPE html><htmldoc-wrapper><p></p><p></p></htmldoc-wrapper>", wrapped)
		assert.Equal(t, "<!DOCTYPE html><p></p><p></p>", m.AfterSave(wrapped))

		d := NewInjectDoctype()
		assert.Equal(t, wrapped, d.BeforeLoad(wrapped))
		assert.False(t, d.Injected())
	})

	t.Run("partial wrapper is left alone", func(t *testing.T) {
		m := NewWrapRoots(countFixed(2))
		m.BeforeLoad("<p></p><p></p>")
		assert.Equal(t, "<p></p></htmldoc-wrapper>", m.AfterSave("<p></p></htmldoc-wrapper>"))
	})
}

func TestWrapUnwrap(t *testing.T) {
	for _, markup := range []string{"", "<div></div>", "a<b>c</b>", "<htmldoc-wrapper></htmldoc-wrapper>"} {
		assert.Equal(t, markup, Unwrap(Wrap(markup)), markup)
	}
	assert.Equal(t, "<p></p>", Unwrap("  <htmldoc-wrapper><p></p></htmldoc-wrapper>\n"))
	assert.Equal(t, "<htmldoc-wrapper>", Unwrap("<htmldoc-wrapper>"))
}

func TestInjectDoctype(t *testing.T) {
	t.Run("injects and strips", func(t *testing.T) {
		m := NewInjectDoctype()
		assert.Equal(t, "<!DOCTYPE html><html></html>", m.BeforeLoad("<html></html>"))
		assert.True(t, m.Injected())
		assert.Equal(t, "<html></html>", m.AfterSave("<!DOCTYPE html><html></html>"))
	})

	t.Run("existing doctype is not doubled", func(t *testing.T) {
		m := NewInjectDoctype()
		for _, src := range []string{"<!DOCTYPE html><p></p>", "  <!doctype html><p></p>", "<!DocType html>"} {
			assert.Equal(t, src, m.BeforeLoad(src))
			assert.False(t, m.Injected())
		}
		assert.Equal(t, "<!DOCTYPE html><p></p>", m.AfterSave("<!DOCTYPE html><p></p>"))
	})

	t.Run("removes exactly one occurrence", func(t *testing.T) {
		m := NewInjectDoctype()
		m.BeforeLoad("<p></p>")
		assert.Equal(t, "<!DOCTYPE html><p></p>", m.AfterSave("<!DOCTYPE html><!DOCTYPE html><p></p>"))
		assert.Equal(t, "<p>x</p>", m.AfterSave("<p>x</p>"))
	})
}

func TestTrim(t *testing.T) {
	m := NewTrim()
	assert.Equal(t, "<p></p>", m.BeforeLoad("\n  <p></p>\t "))
	assert.Equal(t, " <p></p> ", m.AfterSave(" <p></p> "), "trim applies on load only")
}

func TestBlankTag(t *testing.T) {
	m := NewBlankTag("template")

	src := `<div><template id="t"><p>x</p></template><TEMPLATE>y</TEMPLATE></div>`
	blanked := m.BeforeLoad(src)
	assert.Equal(t,
		`<div><!-- htmldoc-blank tag="template" index="0" --><!-- htmldoc-blank tag="template" index="1" --></div>`,
		blanked)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, src, m.AfterSave(blanked))
}

func TestBlankTag_AccumulatesAcrossLoads(t *testing.T) {
	m := NewBlankTag("script")

	first := m.BeforeLoad(`<script>a()</script>`)
	second := m.BeforeLoad(`<script>b()</script><script>a()</script>`)

	assert.Equal(t, `<!-- htmldoc-blank tag="script" index="0" -->`, first)
	assert.Equal(t,
		`<!-- htmldoc-blank tag="script" index="1" --><!-- htmldoc-blank tag="script" index="0" -->`,
		second)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, `<script>a()</script>`, m.AfterSave(first))

	m.Reset()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, `<!-- htmldoc-blank tag="script" index="0" -->`, m.BeforeLoad(`<script>b()</script>`))
}

func TestBlankTag_InstancesDoNotCollide(t *testing.T) {
	script, style := NewBlankTag("script"), NewBlankTag("style")

	src := `<style>p{}</style><script>x</script>`
	out := style.BeforeLoad(script.BeforeLoad(src))
	assert.NotContains(t, out, "<style>")
	assert.NotContains(t, out, "<script>")

	assert.Equal(t, src, script.AfterSave(style.AfterSave(out)))
}

func TestIsPlaceholder(t *testing.T) {
	b := NewBlankTag("style")
	out := b.BeforeLoad(`<style>p{}</style>`)

	comment := strings.TrimSuffix(strings.TrimPrefix(out, "<!--"), "-->")
	assert.True(t, IsPlaceholder(comment))
	assert.False(t, IsPlaceholder(" note "))
	assert.False(t, IsPlaceholder(`htmldoc-blank tag="style" index="x"`))
}

func TestBlankTag_DoesNotMatchLongerNames(t *testing.T) {
	m := NewBlankTag("style")
	assert.Equal(t, `<styles>x</styles>`, m.BeforeLoad(`<styles>x</styles>`))
}

func TestBuild(t *testing.T) {
	chain := Default(&fakeParser{}, countFixed(1))

	kinds := make([]Kind, len(chain))
	for i, m := range chain {
		kinds[i] = m.Kind()
	}
	assert.Equal(t, []Kind{
		KindSuppressDiagnostics, KindWrapRoots, KindInjectDoctype, KindTrim,
		KindBlankTag, KindBlankTag, KindBlankTag, KindBlankTag,
	}, kinds)

	var tags []string
	for _, m := range chain[4:] {
		tags = append(tags, m.(*BlankTag).Tag())
	}
	assert.Equal(t, DefaultBlankTags, tags)

	assert.Empty(t, Build(Options{}, nil, nil))
}
