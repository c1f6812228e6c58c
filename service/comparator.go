package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ludo-technologies/refit/domain"
)

// maxDeclarationLines bounds the raw-code-slice extractor so a
// malformed or deeply nested declaration can never run unbounded
// (spec.md §4.6).
const maxDeclarationLines = 50

// ComparisonReport is the File Comparator's full verdict: every export
// name bucketed by how it relates between the staged and existing
// files (spec.md §4.6).
type ComparisonReport struct {
	Common        []string
	New           []string
	PreservedOnly []string
	Conflicts     []domain.Conflict
}

// CompareExports buckets every export name appearing in staged and/or
// existing by the six-way rule in spec.md §4.6: same name + same kind
// + identical code is Common; same name + same kind + different code
// is a DuplicateExport conflict; same name + different kind is an
// IncompatibleKind conflict; both files' default exports differing is
// a DefaultExportCollision; name only in staged is New; name only in
// existing is PreservedOnly.
func CompareExports(stagedContent, existingContent []byte, staged, existing []domain.NamedExport) ComparisonReport {
	var report ComparisonReport

	existingByName := make(map[string]domain.NamedExport, len(existing))
	for _, e := range existing {
		existingByName[e.Name] = e
	}
	stagedByName := make(map[string]domain.NamedExport, len(staged))
	for _, e := range staged {
		stagedByName[e.Name] = e
	}

	var stagedDefault, existingDefault *domain.NamedExport
	for i := range staged {
		if staged[i].IsDefault {
			stagedDefault = &staged[i]
		}
	}
	for i := range existing {
		if existing[i].IsDefault {
			existingDefault = &existing[i]
		}
	}

	seen := make(map[string]bool)
	for _, s := range staged {
		seen[s.Name] = true
		e, inExisting := existingByName[s.Name]
		if !inExisting {
			report.New = append(report.New, s.Name)
			continue
		}
		if s.Kind != e.Kind {
			report.Conflicts = append(report.Conflicts, domain.Conflict{
				Kind:         domain.ConflictIncompatibleKind,
				Name:         s.Name,
				StagedCode:   ExtractDeclaration(stagedContent, s.Name, s.IsDefault),
				ExistingCode: ExtractDeclaration(existingContent, e.Name, e.IsDefault),
			})
			continue
		}
		stagedCode := ExtractDeclaration(stagedContent, s.Name, s.IsDefault)
		existingCode := ExtractDeclaration(existingContent, e.Name, e.IsDefault)
		if stagedCode == existingCode {
			report.Common = append(report.Common, s.Name)
		} else {
			report.Conflicts = append(report.Conflicts, domain.Conflict{
				Kind:         domain.ConflictDuplicateExport,
				Name:         s.Name,
				StagedCode:   stagedCode,
				ExistingCode: existingCode,
			})
		}
	}

	for _, e := range existing {
		if !seen[e.Name] {
			report.PreservedOnly = append(report.PreservedOnly, e.Name)
		}
	}

	if stagedDefault != nil && existingDefault != nil {
		stagedCode := ExtractDeclaration(stagedContent, stagedDefault.Name, true)
		existingCode := ExtractDeclaration(existingContent, existingDefault.Name, true)
		if stagedCode != existingCode {
			report.Conflicts = append(report.Conflicts, domain.Conflict{
				Kind:         domain.ConflictDefaultExportCollision,
				Name:         "default",
				StagedCode:   stagedCode,
				ExistingCode: existingCode,
			})
		}
	}

	return report
}

var declarationHeadRe = regexp.MustCompile(
	`^\s*export\s+(default\s+)?(async\s+)?(function\*?|class|const|let|var|type|interface|enum)\b`,
)

// ExtractDeclaration locates the line introducing name's declaration
// and extracts source text from there until brace/paren depth returns
// to zero and a terminator (`;` or the matching `}`) is seen, bounded
// at maxDeclarationLines with a truncation marker (spec.md §4.6).
func ExtractDeclaration(content []byte, name string, isDefault bool) string {
	lines := strings.Split(string(content), "\n")
	start := findDeclarationLine(lines, name, isDefault)
	if start == -1 {
		return ""
	}

	var b strings.Builder
	depth := 0
	sawOpen := false
	end := start
	for i := start; i < len(lines) && i < start+maxDeclarationLines; i++ {
		line := lines[i]
		for _, r := range line {
			switch r {
			case '{', '(':
				depth++
				sawOpen = true
			case '}', ')':
				depth--
			}
		}
		end = i
		trimmed := strings.TrimRight(line, " \t\r")
		terminated := depth <= 0 && (strings.HasSuffix(trimmed, ";") || strings.HasSuffix(trimmed, "}") || !sawOpen)
		if i > start && terminated {
			break
		}
		if i == start && terminated && depth <= 0 {
			break
		}
	}

	for i := start; i <= end && i < len(lines); i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	if end-start+1 >= maxDeclarationLines {
		b.WriteString("// ... truncated\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// findDeclarationLine returns the index of the first line that looks
// like it introduces name's declaration.
func findDeclarationLine(lines []string, name string, isDefault bool) int {
	nameRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	for i, line := range lines {
		if !declarationHeadRe.MatchString(line) {
			continue
		}
		if isDefault {
			if strings.Contains(line, "export default") {
				return i
			}
			continue
		}
		if nameRe.MatchString(line) {
			return i
		}
	}
	return -1
}

// String renders a human-readable one-line summary, used by `refit
// graph`/status output and tests.
func (r ComparisonReport) String() string {
	return fmt.Sprintf("common=%d new=%d preserved=%d conflicts=%d",
		len(r.Common), len(r.New), len(r.PreservedOnly), len(r.Conflicts))
}
