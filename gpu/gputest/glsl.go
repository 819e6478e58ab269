package gputest

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"retained-renderer/gpu"
)

var (
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	structDecl   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}\s*;`)
	uniformDecl  = regexp.MustCompile(`\buniform\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+([^;]+);`)
	attribDecl   = regexp.MustCompile(`\b(?:attribute|in)\s+(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*;`)
	declarator   = regexp.MustCompile(`^\s*(\w+)\s*(?:\[\s*(\w+)\s*\])?\s*$`)
	fieldDecl    = regexp.MustCompile(`^\s*(?:(?:highp|mediump|lowp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\w+)\s*\])?\s*$`)
)

var glslTypes = map[string]gpu.Enum{
	"float":       gpu.FLOAT,
	"vec2":        gpu.FLOAT_VEC2,
	"vec3":        gpu.FLOAT_VEC3,
	"vec4":        gpu.FLOAT_VEC4,
	"int":         gpu.INT,
	"ivec2":       gpu.INT_VEC2,
	"ivec3":       gpu.INT_VEC3,
	"ivec4":       gpu.INT_VEC4,
	"bool":        gpu.BOOL,
	"bvec2":       gpu.BOOL_VEC2,
	"bvec3":       gpu.BOOL_VEC3,
	"bvec4":       gpu.BOOL_VEC4,
	"mat2":        gpu.FLOAT_MAT2,
	"mat3":        gpu.FLOAT_MAT3,
	"mat4":        gpu.FLOAT_MAT4,
	"sampler2D":   gpu.SAMPLER_2D,
	"samplerCube": gpu.SAMPLER_CUBE,
}

type structField struct {
	typ, name, size string
}

// reflection is what a linked program exposes.
type reflection struct {
	uniforms []gpu.ActiveInfo
	attribs  []gpu.ActiveInfo
}

// reflectProgram extracts active uniforms and vertex attributes the way a driver
// would after preprocessing. Every declared uniform counts as active.
func reflectProgram(vertex, fragment string) reflection {
	var r reflection
	seen := map[string]bool{}
	for i, src := range []string{vertex, fragment} {
		text, defines := preprocess(src)
		structs := map[string][]structField{}
		for _, m := range structDecl.FindAllStringSubmatch(text, -1) {
			var fields []structField
			for _, f := range strings.Split(m[2], ";") {
				if fm := fieldDecl.FindStringSubmatch(f); fm != nil {
					fields = append(fields, structField{fm[1], fm[2], fm[3]})
				}
			}
			structs[m[1]] = fields
		}
		text = structDecl.ReplaceAllString(text, "")

		for _, m := range uniformDecl.FindAllStringSubmatch(text, -1) {
			for _, d := range strings.Split(m[2], ",") {
				dm := declarator.FindStringSubmatch(d)
				if dm == nil {
					continue
				}
				for _, info := range expand(m[1], dm[1], dm[2], structs, defines) {
					if !seen[info.Name] {
						seen[info.Name] = true
						r.uniforms = append(r.uniforms, info)
					}
				}
			}
		}
		if i == 0 {
			for _, m := range attribDecl.FindAllStringSubmatch(text, -1) {
				if t, ok := glslTypes[m[1]]; ok {
					r.attribs = append(r.attribs, gpu.ActiveInfo{Name: m[2], Type: t, Size: 1})
				}
			}
		}
	}
	return r
}

func expand(typ, name, size string, structs map[string][]structField, defines map[string]string) []gpu.ActiveInfo {
	n := 0
	if size != "" {
		n = resolveInt(size, defines, 0)
		if n <= 0 {
			return nil
		}
	}
	if t, ok := glslTypes[typ]; ok {
		if size == "" {
			return []gpu.ActiveInfo{{Name: name, Type: t, Size: 1}}
		}
		return []gpu.ActiveInfo{{Name: name + "[0]", Type: t, Size: n}}
	}
	fields, ok := structs[typ]
	if !ok {
		return nil
	}
	var out []gpu.ActiveInfo
	prefixes := []string{name}
	if size != "" {
		prefixes = prefixes[:0]
		for i := 0; i < n; i++ {
			prefixes = append(prefixes, name+"["+strconv.Itoa(i)+"]")
		}
	}
	for _, p := range prefixes {
		for _, f := range fields {
			out = append(out, expand(f.typ, p+"."+f.name, f.size, structs, defines)...)
		}
	}
	return out
}

func stripComments(src string) string {
	return lineComment.ReplaceAllString(blockComment.ReplaceAllString(src, ""), "")
}

// preprocess evaluates conditional directives and collects object-like
// macros. Lines in inactive branches and all directives are dropped.
func preprocess(src string) (string, map[string]string) {
	type frame struct {
		parentActive bool
		taken        bool
	}
	defines := map[string]string{}
	var stack []frame
	active := true
	var out strings.Builder

	for _, line := range strings.Split(stripComments(src), "\n") {
		t := strings.TrimSpace(line)
		if !strings.HasPrefix(t, "#") {
			if active {
				out.WriteString(line)
				out.WriteByte('\n')
			}
			continue
		}
		dir, rest := splitDirective(t)
		switch dir {
		case "ifdef", "ifndef", "if":
			var cond bool
			switch dir {
			case "ifdef":
				_, cond = defines[firstWord(rest)]
			case "ifndef":
				_, ok := defines[firstWord(rest)]
				cond = !ok
			default:
				cond = evalCondition(rest, defines)
			}
			stack = append(stack, frame{parentActive: active, taken: cond})
			active = active && cond
		case "elif":
			if len(stack) == 0 {
				continue
			}
			f := &stack[len(stack)-1]
			if f.taken {
				active = false
				continue
			}
			cond := evalCondition(rest, defines)
			f.taken = cond
			active = f.parentActive && cond
		case "else":
			if len(stack) == 0 {
				continue
			}
			f := &stack[len(stack)-1]
			active = f.parentActive && !f.taken
			f.taken = true
		case "endif":
			if len(stack) == 0 {
				continue
			}
			active = stack[len(stack)-1].parentActive
			stack = stack[:len(stack)-1]
		case "define":
			if active {
				name, value := splitDefine(rest)
				if name != "" {
					defines[name] = value
				}
			}
		case "undef":
			if active {
				delete(defines, firstWord(rest))
			}
		}
	}
	return out.String(), defines
}

func splitDirective(line string) (string, string) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "#"))
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

func splitDefine(rest string) (string, string) {
	i := strings.IndexFunc(rest, func(r rune) bool { return unicode.IsSpace(r) || r == '(' })
	if i < 0 {
		return rest, ""
	}
	if rest[i] == '(' {
		// function-like macros are not needed for reflection
		return "", ""
	}
	return rest[:i], strings.TrimSpace(rest[i:])
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

func resolveInt(tok string, defines map[string]string, depth int) int {
	if n, err := strconv.Atoi(tok); err == nil {
		return n
	}
	if v, ok := defines[tok]; ok && depth < 8 {
		return resolveInt(strings.TrimSpace(v), defines, depth+1)
	}
	return 0
}

// evalCondition evaluates a #if / #elif expression over integer macros.
func evalCondition(expr string, defines map[string]string) bool {
	p := &condParser{toks: tokenize(expr), defines: defines}
	return p.or() != 0
}

func tokenize(s string) []string {
	var toks []string
	for i := 0; i < len(s); {
		c := s[i]
		if c == ' ' || c == '\t' {
			i++
			continue
		}
		if isIdent(c) {
			j := i
			for j < len(s) && isIdent(s[j]) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
			continue
		}
		if i+1 < len(s) {
			switch two := s[i : i+2]; two {
			case "&&", "||", "==", "!=", "<=", ">=":
				toks = append(toks, two)
				i += 2
				continue
			}
		}
		toks = append(toks, string(c))
		i++
	}
	return toks
}

func isIdent(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

type condParser struct {
	toks    []string
	pos     int
	defines map[string]string
}

func (p *condParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *condParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (p *condParser) or() int {
	v := p.and()
	for p.peek() == "||" {
		p.next()
		r := p.and()
		v = b2i(v != 0 || r != 0)
	}
	return v
}

func (p *condParser) and() int {
	v := p.equality()
	for p.peek() == "&&" {
		p.next()
		r := p.equality()
		v = b2i(v != 0 && r != 0)
	}
	return v
}

func (p *condParser) equality() int {
	v := p.relational()
	for {
		switch p.peek() {
		case "==":
			p.next()
			v = b2i(v == p.relational())
		case "!=":
			p.next()
			v = b2i(v != p.relational())
		default:
			return v
		}
	}
}

func (p *condParser) relational() int {
	v := p.additive()
	for {
		switch p.peek() {
		case "<":
			p.next()
			v = b2i(v < p.additive())
		case ">":
			p.next()
			v = b2i(v > p.additive())
		case "<=":
			p.next()
			v = b2i(v <= p.additive())
		case ">=":
			p.next()
			v = b2i(v >= p.additive())
		default:
			return v
		}
	}
}

func (p *condParser) additive() int {
	v := p.unary()
	for {
		switch p.peek() {
		case "+":
			p.next()
			v += p.unary()
		case "-":
			p.next()
			v -= p.unary()
		default:
			return v
		}
	}
}

func (p *condParser) unary() int {
	switch p.peek() {
	case "!":
		p.next()
		return b2i(p.unary() == 0)
	case "-":
		p.next()
		return -p.unary()
	}
	return p.primary()
}

func (p *condParser) primary() int {
	t := p.next()
	switch t {
	case "(":
		v := p.or()
		if p.peek() == ")" {
			p.next()
		}
		return v
	case "defined":
		paren := p.peek() == "("
		if paren {
			p.next()
		}
		_, ok := p.defines[p.next()]
		if paren && p.peek() == ")" {
			p.next()
		}
		return b2i(ok)
	}
	return resolveInt(t, p.defines, 0)
}
