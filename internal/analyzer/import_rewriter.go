package analyzer

import (
	"path"
	"regexp"
	"strings"
)

// relativeSpecifierRe matches the specifier string inside an ES module
// `from "..."` clause or a CommonJS `require("...")` call — the two
// shapes spec.md §4.1 names as import sources.
var relativeSpecifierRe = regexp.MustCompile(`(from\s+|require\(\s*)(['"` + "`" + `])([^'"` + "`" + `]+)(['"` + "`" + `])`)

// RewriteRelativeImports rewrites every relative import/require
// specifier in content so it still resolves correctly after its owning
// file moves from oldDir to newDir, computed as dirname(new) minus
// dirname(old) re-rooted (SPEC_FULL.md open question 1: this runs as a
// pre-pass over each staged file's own text, once, before C6/C7 ever
// compare or merge it). Non-relative specifiers (package imports) are
// left untouched.
func RewriteRelativeImports(content []byte, oldDir, newDir string) []byte {
	if oldDir == newDir {
		return content
	}
	return relativeSpecifierRe.ReplaceAllFunc(content, func(m []byte) []byte {
		sub := relativeSpecifierRe.FindSubmatch(m)
		prefix, quoteOpen, spec, quoteClose := sub[1], sub[2], string(sub[3]), sub[4]
		if !strings.HasPrefix(spec, ".") {
			return m
		}
		resolved := path.Join(oldDir, spec)
		rewritten := relImportPath(newDir, resolved)
		return append(append(append(append([]byte{}, prefix...), quoteOpen...), []byte(rewritten)...), quoteClose...)
	})
}

// relImportPath computes the "./"-or-"../"-prefixed specifier that
// reaches target from fromDir, using posix-style path segments (import
// specifiers always use "/" regardless of host OS).
func relImportPath(fromDir, target string) string {
	fromParts := splitPathSegments(fromDir)
	targetParts := splitPathSegments(target)

	i := 0
	for i < len(fromParts) && i < len(targetParts) && fromParts[i] == targetParts[i] {
		i++
	}

	up := strings.Repeat("../", len(fromParts)-i)
	down := strings.Join(targetParts[i:], "/")
	rel := up + down
	if rel == "" {
		return "."
	}
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

func splitPathSegments(p string) []string {
	clean := path.Clean(p)
	if clean == "." || clean == "" || clean == "/" {
		return nil
	}
	clean = strings.TrimPrefix(clean, "/")
	return strings.Split(clean, "/")
}
