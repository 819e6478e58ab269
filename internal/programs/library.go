package programs

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrIncludeCycle is returned when a chunk includes itself, directly or
	// through other chunks.
	ErrIncludeCycle = errors.New("programs: include cycle")
	// ErrUnknownChunk is returned for an #include of a chunk that does not
	// exist.
	ErrUnknownChunk = errors.New("programs: unknown shader chunk")
)

// Library holds the GLSL chunks and templates programs are assembled from.
type Library struct {
	Chunks    map[string]string
	Templates map[string]Template
}

// DefaultLibrary returns a fresh copy of the built-in chunks and templates.
func DefaultLibrary() *Library {
	return &Library{
		Chunks:    maps.Clone(shaderChunks),
		Templates: defaultTemplates(),
	}
}

// Validate resolves every chunk and template once so broken includes are
// reported before the first frame.
func (l *Library) Validate() error {
	for _, name := range slices.Sorted(maps.Keys(l.Chunks)) {
		if _, err := l.resolve(l.Chunks[name], []string{name}); err != nil {
			return fmt.Errorf("chunk %q: %w", name, err)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(l.Templates)) {
		t := l.Templates[name]
		if _, err := l.resolve(t.Vertex, nil); err != nil {
			return fmt.Errorf("template %q vertex: %w", name, err)
		}
		if _, err := l.resolve(t.Fragment, nil); err != nil {
			return fmt.Errorf("template %q fragment: %w", name, err)
		}
	}
	return nil
}

var includePattern = regexp.MustCompile(`(?m)^[ \t]*#include +<([\w\d./]+)>`)

// ResolveIncludes replaces every #include <name> with the chunk text,
// recursively.
func (l *Library) ResolveIncludes(src string) (string, error) {
	return l.resolve(src, nil)
}

func (l *Library) resolve(src string, stack []string) (string, error) {
	var err error
	out := includePattern.ReplaceAllStringFunc(src, func(m string) string {
		if err != nil {
			return ""
		}
		name := includePattern.FindStringSubmatch(m)[1]
		if slices.Contains(stack, name) {
			err = fmt.Errorf("%w: %s -> %s", ErrIncludeCycle, strings.Join(stack, " -> "), name)
			return ""
		}
		chunk, ok := l.Chunks[name]
		if !ok {
			err = fmt.Errorf("%w: %q", ErrUnknownChunk, name)
			return ""
		}
		var text string
		text, err = l.resolve(chunk, append(stack[:len(stack):len(stack)], name))
		return text
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

var unrollPattern = regexp.MustCompile(`(?s)#pragma unroll_loop\s+for \( int i = (\d+); i < (\d+); i \+\+ \) \{(.*?)\}`)

// unrollLoops expands loops marked "#pragma unroll_loop" whose bounds are
// integer literals, substituting the index into every "[ i ]".
func unrollLoops(src string) string {
	return unrollPattern.ReplaceAllStringFunc(src, func(m string) string {
		sm := unrollPattern.FindStringSubmatch(m)
		start, _ := strconv.Atoi(sm[1])
		end, _ := strconv.Atoi(sm[2])
		var b strings.Builder
		for i := start; i < end; i++ {
			b.WriteString(strings.ReplaceAll(sm[3], "[ i ]", "[ "+strconv.Itoa(i)+" ]"))
		}
		return b.String()
	})
}

func replaceLightNums(src string, p *Parameters) string {
	return strings.NewReplacer(
		"NUM_DIR_LIGHTS", strconv.Itoa(p.NumDirLights),
		"NUM_SPOT_LIGHTS", strconv.Itoa(p.NumSpotLights),
		"NUM_RECT_AREA_LIGHTS", strconv.Itoa(p.NumRectAreaLights),
		"NUM_POINT_LIGHTS", strconv.Itoa(p.NumPointLights),
		"NUM_HEMI_LIGHTS", strconv.Itoa(p.NumHemiLights),
	).Replace(src)
}

func replaceClippingPlaneNums(src string, p *Parameters) string {
	return strings.NewReplacer(
		"NUM_CLIPPING_PLANES", strconv.Itoa(p.NumClippingPlanes),
		"UNION_CLIPPING_PLANES", strconv.Itoa(p.NumClippingPlanes-p.NumClipIntersection),
	).Replace(src)
}
