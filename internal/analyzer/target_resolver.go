package analyzer

import (
	"path"
	"regexp"
	"strings"

	"github.com/ludo-technologies/refit/domain"
)

// destinationByRole is the fixed role→directory map for every role
// except Component, which needs the name heuristic below (spec.md §4.3).
var destinationByRole = map[domain.Role]string{
	domain.RoleHook:     "hooks",
	domain.RoleService:  "services",
	domain.RoleUtility:  "utils",
	domain.RoleTypeDefs: "types",
}

var componentPageStems = map[string]bool{
	"App": true, "Main": true, "Root": true, "Page": true, "View": true, "Screen": true,
}

var singleCapitalizedWord = regexp.MustCompile(`^[A-Z][a-z]+$`)

var layoutHints = []string{
	"layout", "header", "footer", "sidebar", "nav", "navigation", "menu",
	"wrapper", "container", "shell", "frame",
}

// ResolveTarget maps a classified SourceFile to its destination
// directory, relative to the target tree's root. Unknown role yields
// "" — the Orchestrator treats that as "unresolved target" and forces
// the file to Skipped (spec.md §4.3).
func ResolveTarget(role Role) string {
	return resolveTarget(role.Role, role.Stem)
}

// Role is the minimal projection ResolveTarget needs, kept separate
// from domain.SourceFile so callers can resolve a target before the
// rest of the SourceFile is fully populated.
type Role struct {
	Role domain.Role
	Stem string
}

func resolveTarget(role domain.Role, stem string) string {
	if role == domain.RoleComponent {
		return componentDestination(stem)
	}
	return destinationByRole[role]
}

func componentDestination(stem string) string {
	lower := strings.ToLower(stem)
	for _, hint := range layoutHints {
		if strings.Contains(lower, hint) {
			return "layout"
		}
	}
	if singleCapitalizedWord.MatchString(stem) && componentPageStems[stem] {
		return "layout"
	}
	return "features"
}

// DestinationPath joins the resolved directory with the target tree
// root and the original filename. Returns "" when destDir is "" (the
// unresolved-target case).
func DestinationPath(targetRoot, destDir, filename string) string {
	if destDir == "" {
		return ""
	}
	return path.Join(targetRoot, destDir, filename)
}
