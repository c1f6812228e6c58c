package analyzer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/refit/domain"
)

// resolveExtensions is the extension-probe order the Dependency
// Resolver tries against a relative specifier before giving up
// (spec.md §3/§4.4).
var resolveExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".d.ts"}

// DependencyResolverConfig names where external packages are expected
// to live, so "is this package installed" can be answered without a
// package manager.
type DependencyResolverConfig struct {
	// PackageCacheDir is the root an external specifier's package name
	// is checked for existence under (e.g. a node_modules directory).
	PackageCacheDir string
}

// DependencyResolver turns a SourceFile's raw import specifiers into
// Dependency records: external vs internal, and — for internals —
// the resolved on-disk path, if any (spec.md §4.4).
type DependencyResolver struct {
	cfg DependencyResolverConfig
}

// NewDependencyResolver builds a resolver rooted at the given external
// package cache directory (typically "<project>/node_modules").
func NewDependencyResolver(cfg DependencyResolverConfig) *DependencyResolver {
	return &DependencyResolver{cfg: cfg}
}

// Resolve classifies and resolves every import specifier on sf,
// storing the result on sf.Dependencies and returning it.
func (r *DependencyResolver) Resolve(sf *domain.SourceFile) []domain.Dependency {
	deps := make([]domain.Dependency, 0, len(sf.Imports))
	dir := filepath.Dir(sf.Path)
	for _, spec := range sf.Imports {
		if isExternalSpecifier(spec) {
			deps = append(deps, domain.Dependency{
				Specifier: spec,
				External:  true,
				Resolved:  r.externalExists(spec),
			})
			continue
		}
		resolved, target := r.resolveInternal(dir, spec)
		deps = append(deps, domain.Dependency{
			Specifier:  spec,
			External:   false,
			Resolved:   resolved,
			SourceFile: target,
		})
	}
	sf.Dependencies = deps
	return deps
}

// isExternalSpecifier reports whether spec is external: it begins with
// neither "." nor "/" (spec.md §3/GLOSSARY).
func isExternalSpecifier(spec string) bool {
	return !strings.HasPrefix(spec, ".") && !strings.HasPrefix(spec, "/")
}

// resolveInternal relative-resolves spec against dir, probing
// resolveExtensions directly and then against an "index" file inside
// a directory candidate. The first existing candidate wins.
func (r *DependencyResolver) resolveInternal(dir, spec string) (bool, string) {
	base := filepath.Clean(filepath.Join(dir, spec))

	if path, ok := probeFile(base); ok {
		return true, path
	}
	if info, err := os.Stat(base); err == nil && info.IsDir() {
		if path, ok := probeFile(filepath.Join(base, "index")); ok {
			return true, path
		}
	}
	return false, ""
}

// probeFile tries base verbatim (it may already carry an extension)
// and base+ext for every extension in resolveExtensions, returning the
// first path that exists as a regular file.
func probeFile(base string) (string, bool) {
	if info, err := os.Stat(base); err == nil && !info.IsDir() {
		return base, true
	}
	for _, ext := range resolveExtensions {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// externalExists checks for the presence of the package root inside
// the configured package cache, honoring scoped-package syntax
// (`@scope/name`) by keeping only the first one or two path segments
// of the specifier as the package name (spec.md §4.4).
func (r *DependencyResolver) externalExists(spec string) bool {
	if r.cfg.PackageCacheDir == "" {
		return false
	}
	name := packageNameOf(spec)
	info, err := os.Stat(filepath.Join(r.cfg.PackageCacheDir, name))
	return err == nil && info.IsDir()
}

// packageNameOf strips any sub-path off an external specifier,
// keeping "@scope/name" intact for scoped packages and just the first
// segment otherwise.
func packageNameOf(spec string) string {
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
