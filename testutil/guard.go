// Package testutil provides reusable testing helpers for enforcing architectural
// boundaries across the repository.
package testutil

import (
	"go/parser"
	"go/token"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// AssertNoTransitiveDependency loads the packages matching pattern with their
// full dependency graph and fails if any dependency satisfies forbidden.
func AssertNoTransitiveDependency(t testing.TB, pattern string, forbidden func(path string) bool, reason string) {
	t.Helper()
	viols, err := transitiveDependencyViolations(pattern, forbidden)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	failIfTransitiveViolations(t, reason, viols)
}

// AssertImportersLimited fails if any package outside allowed, test variants
// included, imports a package under target. Packages under target itself are exempt.
func AssertImportersLimited(t testing.TB, pattern, target string, allowed ...string) {
	t.Helper()
	pkgs, err := loadPackages(packages.NeedName|packages.NeedImports, true, pattern)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		if underPrefix(pkg.PkgPath, target) || slices.ContainsFunc(allowed, func(p string) bool { return underPrefix(pkg.PkgPath, p) }) {
			continue
		}
		for importPath := range pkg.Imports {
			if underPrefix(importPath, target) {
				seen[pkg.PkgPath+" imports "+importPath] = struct{}{}
			}
		}
	}
	viols := slices.Sorted(maps.Keys(seen))
	if len(viols) > 0 {
		t.Fatalf("forbidden importers of %s:\n%s", target, strings.Join(viols, "\n"))
	}
}

// AssertNoDirectImports scans all non-test .go files in dir (typically "." from within the package)
// and fails if any import path satisfies the forbidden predicate. It does not follow build tags.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	failIfDirectViolations(t, reason, viols)
}

// DomainImportForbidden returns a predicate matching any import path that points to the domain package.
func DomainImportForbidden(path string) bool {
	return strings.HasSuffix(path, "/pkg/domain") || strings.Contains(path, "/pkg/domain@")
}

// InternalImportForbidden returns a predicate matching any import path containing /internal/.
func InternalImportForbidden(path string) bool {
	return strings.Contains(path, "/internal/") || strings.HasPrefix(path, "ohana/internal")
}

// ModuleInternalForbidden returns a predicate matching the internal packages of
// module only. Use it for transitive checks, where third-party and standard
// library internals are legitimately reachable.
func ModuleInternalForbidden(module string) func(path string) bool {
	return func(path string) bool {
		return underPrefix(path, module+"/internal")
	}
}

var loadPackages = func(mode packages.LoadMode, tests bool, pattern string) ([]*packages.Package, error) {
	return packages.Load(&packages.Config{Mode: mode, Tests: tests}, pattern)
}

func transitiveDependencyViolations(pattern string, forbidden func(path string) bool) ([]string, error) {
	roots, err := loadPackages(packages.NeedName|packages.NeedImports|packages.NeedDeps, false, pattern)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var viols []string
	packages.Visit(roots, func(pkg *packages.Package) bool {
		if _, ok := seen[pkg.PkgPath]; ok {
			return false
		}
		seen[pkg.PkgPath] = struct{}{}
		if forbidden(pkg.PkgPath) {
			viols = append(viols, pkg.PkgPath)
		}
		return true
	}, nil)
	slices.Sort(viols)
	return viols, nil
}

func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func directImportViolations(dir string, forbidden func(importPath string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	var viols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		fileAst, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ImportsOnly)
		if err != nil {
			return nil, err
		}
		for _, imp := range fileAst.Imports {
			ip := strings.Trim(imp.Path.Value, "\"")
			if forbidden(ip) {
				viols = append(viols, ip+" (in "+name+")")
			}
		}
	}
	return viols, nil
}

type fatalLogger interface {
	Fatalf(format string, args ...any)
}

func failIfTransitiveViolations(t fatalLogger, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("forbidden transitive dependency detected (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}

func failIfDirectViolations(t fatalLogger, reason string, viols []string) {
	if len(viols) > 0 {
		t.Fatalf("forbidden direct imports detected (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}
