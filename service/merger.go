package service

import (
	"sort"
	"strings"

	"github.com/ludo-technologies/refit/domain"
)

// mergeDelimiter marks the start of the block of exports appended from
// a staged file, so a human reviewing the merged file can see exactly
// what the engine added.
const mergeDelimiter = "// --- merged from reference file ---"

// MergeResult is the Merger's full output: the content to write (or
// the existing content unchanged, on refusal), plus the bookkeeping
// the Orchestrator and state store need (spec.md §4.7).
type MergeResult struct {
	Content          []byte
	AddedExports     []string
	PreservedExports []string
	Conflicts        []domain.Conflict
	Refused          bool
}

// Merge combines a staged file into an existing destination file per
// spec.md §4.7: union the import statements, keep the existing body,
// and append non-conflicting new exports. If the comparator found any
// conflict and policy.RequestUserInput is set, the merge is refused:
// the existing content is returned unchanged and the conflicts are
// surfaced for the caller to escalate.
func Merge(stagedContent, existingContent []byte, report ComparisonReport, policy domain.MergePolicy) MergeResult {
	if len(report.Conflicts) > 0 && policy.RequestUserInput {
		return MergeResult{
			Content:          existingContent,
			PreservedExports: report.PreservedOnly,
			Conflicts:        report.Conflicts,
			Refused:          true,
		}
	}

	imports := unionImportStatements(stagedContent, existingContent)
	body := stripImportLines(existingContent)

	var b strings.Builder
	for _, imp := range imports {
		b.WriteString(imp)
		b.WriteByte('\n')
	}
	if len(imports) > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteByte('\n')

	added := make([]string, 0, len(report.New))
	if policy.AddNewExports && len(report.New) > 0 {
		b.WriteByte('\n')
		b.WriteString(mergeDelimiter)
		b.WriteByte('\n')
		for _, name := range report.New {
			isDefault := name == "default"
			slice := ExtractDeclaration(stagedContent, name, isDefault)
			if slice == "" {
				continue
			}
			b.WriteString(slice)
			b.WriteString("\n\n")
			added = append(added, name)
		}
	}

	return MergeResult{
		Content:          []byte(strings.TrimRight(b.String(), "\n") + "\n"),
		AddedExports:     added,
		PreservedExports: append(report.Common, report.PreservedOnly...),
		Conflicts:        nil,
	}
}

var importLineRe = "import "

// unionImportStatements collects every top-level `import ...` source
// line from both files (one-line imports are the overwhelmingly
// common case; a multi-line import is kept as the single joined
// statement its terminating `;` closes), deduplicates by exact trimmed
// statement text, and returns them sorted for reproducibility
// (spec.md §4.7 step 2 — "deduplication is by the exact trimmed
// statement text, not semantic equivalence").
func unionImportStatements(a, b []byte) []string {
	seen := make(map[string]bool)
	var out []string
	for _, content := range [][]byte{a, b} {
		for _, stmt := range importStatements(content) {
			trimmed := strings.TrimSpace(stmt)
			if trimmed == "" || seen[trimmed] {
				continue
			}
			seen[trimmed] = true
			out = append(out, trimmed)
		}
	}
	sort.Strings(out)
	return out
}

// importStatements extracts each `import ...;` statement's full
// source text from content, joining continuation lines until the
// terminating semicolon is found.
func importStatements(content []byte) []string {
	lines := strings.Split(string(content), "\n")
	var out []string
	i := 0
	for i < len(lines) {
		line := lines[i]
		if !strings.HasPrefix(strings.TrimSpace(line), importLineRe) {
			i++
			continue
		}
		var stmt strings.Builder
		for i < len(lines) {
			stmt.WriteString(lines[i])
			terminated := strings.Contains(lines[i], ";")
			i++
			if terminated {
				break
			}
			stmt.WriteByte('\n')
		}
		out = append(out, stmt.String())
	}
	return out
}

// stripImportLines removes every top-level `import ...;` statement
// from content, leaving the remaining body (including blank lines)
// intact so the merger can re-prepend a deduplicated import block.
func stripImportLines(content []byte) string {
	lines := strings.Split(string(content), "\n")
	var out []string
	i := 0
	for i < len(lines) {
		line := lines[i]
		if strings.HasPrefix(strings.TrimSpace(line), importLineRe) {
			for i < len(lines) {
				terminated := strings.Contains(lines[i], ";")
				i++
				if terminated {
					break
				}
			}
			continue
		}
		out = append(out, line)
		i++
	}
	return strings.Join(out, "\n")
}
