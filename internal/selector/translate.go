// Package selector translates CSS selectors into XPath 1.0 expressions.
//
// Selectors are validated with cascadia first, so syntax errors are reported
// the same way the rest of the goquery stack reports them. Valid selectors that
// have no XPath equivalent here (pseudo-elements, :has, :lang, namespaces)
// fail with ErrUnsupportedSelector.
package selector

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Axis is the XPath axis a translated selector starts from.
type Axis string

const (
	// DescendantOrSelf matches the context node and everything below it.
	DescendantOrSelf Axis = "descendant-or-self::"
	// Descendant matches only nodes below the context node.
	Descendant Axis = "descendant::"
)

var (
	// ErrInvalidSelector is returned for selectors that are not valid CSS.
	ErrInvalidSelector = errors.New("invalid CSS selector")
	// ErrUnsupportedSelector is returned for valid CSS that cannot be expressed as XPath.
	ErrUnsupportedSelector = errors.New("unsupported CSS selector")
)

var nthRegex = regexp.MustCompile(`^([+-]?\d*)n(?:\s*([+-])\s*(\d+))?$`)

const (
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"
)

// compound is a sequence of simple selectors applying to one element.
type compound struct {
	tag   string
	conds []string
}

func (c compound) String() string {
	var b strings.Builder
	b.WriteString(c.tag)
	for _, cond := range c.conds {
		b.WriteString("[")
		b.WriteString(cond)
		b.WriteString("]")
	}
	return b.String()
}

// complexSelector is a chain of compounds joined by combinators.
type complexSelector struct {
	parts       []compound
	combinators []byte
}

func (c complexSelector) xpath(axis Axis) string {
	var b strings.Builder
	b.WriteString(string(axis))
	b.WriteString(c.parts[0].String())

	for i, comb := range c.combinators {
		next := c.parts[i+1].String()
		switch comb {
		case '>':
			b.WriteString("/")
		case '+':
			b.WriteString("/following-sibling::*[1]/self::")
		case '~':
			b.WriteString("/following-sibling::")
		default:
			b.WriteString("/descendant::")
		}
		b.WriteString(next)
	}

	return b.String()
}

// Translate converts a CSS selector group into an XPath expression rooted at axis.
func Translate(css string, axis Axis) (string, error) {
	css = Normalize(css)
	if css == "" {
		return "", fmt.Errorf("%w: empty selector", ErrInvalidSelector)
	}

	if _, err := cascadia.ParseGroup(css); err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidSelector, css, err)
	}

	p := &parser{src: css}
	group, err := p.parseGroup()
	if err != nil {
		return "", err
	}

	paths := make([]string, len(group))
	for i, c := range group {
		paths[i] = c.xpath(axis)
	}

	return strings.Join(paths, " | "), nil
}

// MustTranslate is like Translate but panics on error. Use it for
// selectors fixed at compile time.
func MustTranslate(css string, axis Axis) string {
	xpath, err := Translate(css, axis)
	if err != nil {
		panic(err)
	}
	return xpath
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() bool {
	start := p.pos
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
	return p.pos > start
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrInvalidSelector, fmt.Sprintf(format, args...), p.pos, p.src)
}

func unsupported(what string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedSelector, what)
}

func (p *parser) parseGroup() ([]complexSelector, error) {
	var group []complexSelector

	for {
		p.skipSpace()
		c, err := p.parseComplex()
		if err != nil {
			return nil, err
		}
		group = append(group, c)

		p.skipSpace()
		if p.eof() {
			return group, nil
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseComplex() (complexSelector, error) {
	var c complexSelector

	first, err := p.parseCompound()
	if err != nil {
		return c, err
	}
	c.parts = append(c.parts, first)

	for {
		spaced := p.skipSpace()
		if p.eof() || p.peek() == ',' || p.peek() == ')' {
			return c, nil
		}

		comb := byte(' ')
		switch p.peek() {
		case '>', '+', '~':
			comb = p.peek()
			p.pos++
			p.skipSpace()
		default:
			if !spaced {
				return c, p.errorf("unexpected %q", p.peek())
			}
		}

		next, err := p.parseCompound()
		if err != nil {
			return c, err
		}
		c.combinators = append(c.combinators, comb)
		c.parts = append(c.parts, next)
	}
}

func (p *parser) parseCompound() (compound, error) {
	c := compound{tag: "*"}
	matched := false

	switch {
	case p.peek() == '*':
		p.pos++
		matched = true
	case isNameStart(p.peek()) || p.peek() == '-' || p.peek() == '\\':
		name, err := p.parseIdent()
		if err != nil {
			return c, err
		}
		c.tag = strings.ToLower(name)
		matched = true
	}

	if p.peek() == '|' {
		return c, unsupported("namespace prefixes")
	}

	for !p.eof() {
		var (
			cond string
			err  error
		)

		switch p.peek() {
		case '#':
			p.pos++
			var id string
			if id, err = p.parseName(); err == nil {
				cond = "@id = " + literal(id)
			}
		case '.':
			p.pos++
			var class string
			if class, err = p.parseIdent(); err == nil {
				cond = containsWord("@class", class)
			}
		case '[':
			cond, err = p.parseAttribute()
		case ':':
			cond, err = p.parsePseudo(c.tag)
		default:
			if !matched {
				return c, p.errorf("expected selector")
			}
			return c, nil
		}

		if err != nil {
			return c, err
		}
		c.conds = append(c.conds, cond)
		matched = true
	}

	if !matched {
		return c, p.errorf("expected selector")
	}
	return c, nil
}

func (p *parser) parseAttribute() (string, error) {
	p.pos++
	p.skipSpace()

	name, err := p.parseIdent()
	if err != nil {
		return "", err
	}
	if p.peek() == '|' && !strings.HasPrefix(p.src[p.pos:], "|=") {
		return "", unsupported("namespace prefixes")
	}
	name = strings.ToLower(name)
	p.skipSpace()

	if p.peek() == ']' {
		p.pos++
		return "@" + name, nil
	}

	var op string
	switch {
	case p.peek() == '=':
		op = "="
		p.pos++
	case p.pos+1 < len(p.src) && p.src[p.pos+1] == '=' && strings.IndexByte("~^$*|!", p.peek()) >= 0:
		op = p.src[p.pos : p.pos+2]
		p.pos += 2
	default:
		return "", p.errorf("expected attribute operator")
	}
	p.skipSpace()

	var value string
	if q := p.peek(); q == '"' || q == '\'' {
		value, err = p.parseString()
	} else {
		value, err = p.parseName()
	}
	if err != nil {
		return "", err
	}
	p.skipSpace()

	insensitive := false
	switch p.peek() {
	case 'i', 'I':
		insensitive = true
		p.pos++
		p.skipSpace()
	case 's', 'S':
		p.pos++
		p.skipSpace()
	}

	if err := p.expect(']'); err != nil {
		return "", err
	}

	return attributeCondition(name, op, value, insensitive), nil
}

func attributeCondition(name, op, value string, insensitive bool) string {
	attr := "@" + name
	ref := attr
	if insensitive {
		ref = lowerCase(attr)
		value = strings.ToLower(value)
	}

	switch op {
	case "~=":
		return containsWord(ref, value)
	case "^=":
		return fmt.Sprintf("%s and starts-with(%s, %s)", attr, ref, literal(value))
	case "$=":
		return fmt.Sprintf("%s and substring(%s, string-length(%s) - %d) = %s", attr, ref, ref, len(value)-1, literal(value))
	case "*=":
		return fmt.Sprintf("%s and contains(%s, %s)", attr, ref, literal(value))
	case "|=":
		return fmt.Sprintf("%s and (%s = %s or starts-with(%s, %s))", attr, ref, literal(value), ref, literal(value+"-"))
	case "!=":
		return fmt.Sprintf("not(%s) or %s != %s", attr, ref, literal(value))
	default:
		return fmt.Sprintf("%s = %s", ref, literal(value))
	}
}

func (p *parser) parsePseudo(tag string) (string, error) {
	p.pos++
	if p.peek() == ':' {
		return "", unsupported("pseudo-elements")
	}

	name, err := p.parseIdent()
	if err != nil {
		return "", err
	}
	name = strings.ToLower(name)

	if p.peek() == '(' {
		p.pos++
		return p.parseFunctionalPseudo(name, tag)
	}

	switch name {
	case "first-child":
		return "not(preceding-sibling::*)", nil
	case "last-child":
		return "not(following-sibling::*)", nil
	case "only-child":
		return "not(preceding-sibling::*) and not(following-sibling::*)", nil
	case "first-of-type", "last-of-type", "only-of-type":
		if tag == "*" {
			return "", unsupported(":" + name + " without an element name")
		}
		switch name {
		case "first-of-type":
			return "not(preceding-sibling::" + tag + ")", nil
		case "last-of-type":
			return "not(following-sibling::" + tag + ")", nil
		default:
			return "not(preceding-sibling::" + tag + ") and not(following-sibling::" + tag + ")", nil
		}
	case "empty":
		return "not(*) and not(text())", nil
	case "root":
		return "not(parent::*)", nil
	case "checked":
		return "(@checked and (name() = 'input' or name() = 'command')) or (@selected and name() = 'option')", nil
	case "disabled":
		return "@disabled", nil
	case "enabled":
		return "(name() = 'input' or name() = 'button' or name() = 'select' or name() = 'textarea' or name() = 'option') and not(@disabled)", nil
	}

	return "", unsupported(":" + name)
}

func (p *parser) parseFunctionalPseudo(name, tag string) (string, error) {
	switch name {
	case "not":
		p.skipSpace()
		inner, err := p.parseCompound()
		if err != nil {
			return "", err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return "", unsupported(":not() with more than one compound selector")
		}
		p.pos++
		return "not(self::" + inner.String() + ")", nil

	case "contains":
		p.skipSpace()
		var (
			text string
			err  error
		)
		if q := p.peek(); q == '"' || q == '\'' {
			text, err = p.parseString()
		} else {
			text, err = p.parseIdent()
		}
		if err != nil {
			return "", err
		}
		p.skipSpace()
		if err := p.expect(')'); err != nil {
			return "", err
		}
		return "contains(string(.), " + literal(text) + ")", nil

	case "nth-child", "nth-last-child", "nth-of-type", "nth-last-of-type":
		end := strings.IndexByte(p.src[p.pos:], ')')
		if end < 0 {
			return "", p.errorf("unterminated :%s()", name)
		}
		arg := p.src[p.pos : p.pos+end]
		p.pos += end + 1

		a, b, err := parseNth(arg)
		if err != nil {
			return "", p.errorf("%v", err)
		}

		sibling := "*"
		if strings.HasSuffix(name, "-of-type") {
			if tag == "*" {
				return "", unsupported(":" + name + " without an element name")
			}
			sibling = tag
		}

		axis := "preceding-sibling::"
		if strings.HasPrefix(name, "nth-last-") {
			axis = "following-sibling::"
		}

		return nthCondition(a, b, "count("+axis+sibling+")"), nil
	}

	return "", unsupported(":" + name + "()")
}

// parseNth parses the an+b micro syntax.
func parseNth(arg string) (int, int, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))

	switch arg {
	case "odd":
		return 2, 1, nil
	case "even":
		return 2, 0, nil
	}

	if b, err := strconv.Atoi(arg); err == nil {
		return 0, b, nil
	}

	m := nthRegex.FindStringSubmatch(arg)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid nth expression %q", arg)
	}

	var a int
	switch m[1] {
	case "", "+":
		a = 1
	case "-":
		a = -1
	default:
		a, _ = strconv.Atoi(m[1])
	}

	var b int
	if m[3] != "" {
		b, _ = strconv.Atoi(m[3])
		if m[2] == "-" {
			b = -b
		}
	}

	return a, b, nil
}

// nthCondition matches elements whose 1-based position, count+1, equals a*n+b for some n >= 0.
func nthCondition(a, b int, count string) string {
	if a == 0 {
		if b < 1 {
			return "false()"
		}
		return fmt.Sprintf("%s = %d", count, b-1)
	}

	offset := withOffset(count, 1-b)
	return fmt.Sprintf("(%s) mod %d = 0 and (%s) div %d >= 0", offset, a, offset, a)
}

func withOffset(expr string, k int) string {
	switch {
	case k > 0:
		return fmt.Sprintf("%s + %d", expr, k)
	case k < 0:
		return fmt.Sprintf("%s - %d", expr, -k)
	}
	return expr
}

func containsWord(ref, word string) string {
	return fmt.Sprintf("%s and contains(concat(' ', normalize-space(%s), ' '), %s)", ref, ref, literal(" "+word+" "))
}

func lowerCase(expr string) string {
	return fmt.Sprintf("translate(%s, '%s', '%s')", expr, upperLetters, lowerLetters)
}

// literal quotes s as an XPath string literal.
func literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}

	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

func (p *parser) parseIdent() (string, error) {
	start := p.pos
	var b strings.Builder

	if p.peek() == '-' {
		b.WriteByte('-')
		p.pos++
	}

	if p.eof() || !(isNameStart(p.peek()) || p.peek() == '\\') {
		p.pos = start
		return "", p.errorf("expected identifier")
	}

	if err := p.readName(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// parseName reads a run of name characters, which unlike an identifier
// may start with a digit.
func (p *parser) parseName() (string, error) {
	var b strings.Builder
	if err := p.readName(&b); err != nil {
		return "", err
	}
	if b.Len() == 0 {
		return "", p.errorf("expected name")
	}
	return b.String(), nil
}

func (p *parser) readName(b *strings.Builder) error {
	for !p.eof() {
		c := p.peek()
		switch {
		case c == '\\':
			r, err := p.parseEscape()
			if err != nil {
				return err
			}
			b.WriteString(r)
		case isNameChar(c):
			b.WriteByte(c)
			p.pos++
		default:
			return nil
		}
	}
	return nil
}

func (p *parser) parseEscape() (string, error) {
	p.pos++
	if p.eof() {
		return "", p.errorf("unterminated escape")
	}

	start := p.pos
	for p.pos < len(p.src) && p.pos-start < 6 && isHex(p.src[p.pos]) {
		p.pos++
	}

	if p.pos == start {
		c := p.src[p.pos]
		p.pos++
		return string(c), nil
	}

	code, err := strconv.ParseUint(p.src[start:p.pos], 16, 32)
	if err != nil {
		return "", p.errorf("invalid escape")
	}
	if !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
	return string(rune(code)), nil
}

func (p *parser) parseString() (string, error) {
	quote := p.peek()
	p.pos++

	var b strings.Builder
	for !p.eof() {
		c := p.peek()
		switch c {
		case quote:
			p.pos++
			return b.String(), nil
		case '\\':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n' {
				p.pos += 2
				continue
			}
			r, err := p.parseEscape()
			if err != nil {
				return "", err
			}
			b.WriteString(r)
		default:
			b.WriteByte(c)
			p.pos++
		}
	}

	return "", p.errorf("unterminated string")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c == '-' || (c >= '0' && c <= '9')
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
