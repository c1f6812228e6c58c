package analyzer

import (
	"strings"

	"github.com/ludo-technologies/refit/domain"
)

// templatingExtensions names the extensions that can carry JSX.
var templatingExtensions = map[string]bool{".tsx": true, ".jsx": true}

// ClassifyRole decides a staged file's Role from its name and the
// Syntax Analyzer's output, applying the first-match precedence rules
// of spec.md §3. Deterministic; no I/O.
func ClassifyRole(sf *domain.SourceFile) domain.Role {
	if sf.InvalidAST {
		return domain.RoleUnknown
	}

	stem := sf.Stem()

	if hasUsePrefix(stem) && sf.HasFunctionLikeExport() {
		return domain.RoleHook
	}
	if templatingExtensions[sf.Extension] && sf.HasJSX && sf.HasFunctionLikeExport() {
		return domain.RoleComponent
	}
	if sf.AllExportsAreTypes() {
		return domain.RoleTypeDefs
	}
	if len(sf.Exports) > 0 && stemNamesService(stem) {
		return domain.RoleService
	}
	if sf.HasFunctionLikeExport() {
		return domain.RoleUtility
	}
	return domain.RoleUnknown
}

// hasUsePrefix reports whether stem begins with the literal,
// case-sensitive prefix "use" (the React hook naming convention).
func hasUsePrefix(stem string) bool {
	return len(stem) >= 3 && stem[:3] == "use"
}

func stemNamesService(stem string) bool {
	lower := strings.ToLower(stem)
	return strings.Contains(lower, "service") || strings.Contains(lower, "api") || strings.Contains(lower, "client")
}
