// Package testutil provides helpers for enforcing import boundaries between
// the domain, service, and infrastructure layers.
package testutil

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// AssertNoDirectImports scans all non-test .go files in dir and fails if any
// import path satisfies the forbidden predicate. The reason string is
// appended to the failure message.
func AssertNoDirectImports(t testing.TB, dir string, forbidden func(importPath string) bool, reason string) {
	t.Helper()
	viols, err := directImportViolations(dir, forbidden)
	if err != nil {
		t.Fatalf("scan %s: %v", dir, err)
	}
	if len(viols) > 0 {
		t.Fatalf("forbidden imports detected (%s):\n%s", reason, strings.Join(viols, "\n"))
	}
}

// InternalImportForbidden matches any import of a plantcore internal package.
func InternalImportForbidden(path string) bool {
	return strings.Contains(path, "plantcore/internal")
}

// DriverImportForbidden matches imports of the concrete storage and blob
// driver packages. Layers above the service go through the factories.
func DriverImportForbidden(path string) bool {
	return strings.Contains(path, "plantcore/internal/infra/")
}

// ThirdPartyImportForbidden matches any import outside the module and the
// standard library.
func ThirdPartyImportForbidden(path string) bool {
	if strings.HasPrefix(path, "plantcore/") {
		return false
	}
	// Standard library paths have no dot in their first segment.
	first := path
	if i := strings.Index(path, "/"); i >= 0 {
		first = path[:i]
	}
	return strings.Contains(first, ".")
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
