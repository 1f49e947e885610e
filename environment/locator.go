package environment

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/simpleplanner/utils"
)

const (
	packageScheme = "package://"
	fileScheme    = "file://"
)

// A ResourceLocator turns a resource url, such as "package://iiwa_description/models/iiwa7.json", into a path on the
// local filesystem.
type ResourceLocator interface {
	LocateResource(url string) (string, error)
}

// LocateResourceFunc maps a url to a local path, returning the empty string when the url is unknown.
type LocateResourceFunc func(url string) string

// SimpleResourceLocator is a ResourceLocator backed by a single function.
type SimpleResourceLocator struct {
	locate LocateResourceFunc
}

// NewSimpleResourceLocator returns a locator that defers to fn.
func NewSimpleResourceLocator(fn LocateResourceFunc) *SimpleResourceLocator {
	return &SimpleResourceLocator{locate: fn}
}

// LocateResource returns the path fn produced for the url, or an error if it produced none.
func (l *SimpleResourceLocator) LocateResource(url string) (string, error) {
	if l.locate == nil {
		return "", errors.Errorf("failed to locate resource %q: no locate function", url)
	}
	path := l.locate(url)
	if path == "" {
		return "", errors.Errorf("failed to locate resource %q", url)
	}
	return path, nil
}

// PackageLocator resolves package://<pkg>/<path> urls against a table of package directories, falling back to the
// <PKG>_DIR environment variable. file:// urls and plain paths are resolved relative to a base directory.
type PackageLocator struct {
	baseDir  string
	packages map[string]string
}

// NewPackageLocator returns a locator rooted at baseDir. packages may be nil.
func NewPackageLocator(baseDir string, packages map[string]string) *PackageLocator {
	pkgs := make(map[string]string, len(packages))
	for name, dir := range packages {
		pkgs[name] = dir
	}
	return &PackageLocator{baseDir: baseDir, packages: pkgs}
}

// LocateResource resolves the url and checks that the resulting file exists.
func (l *PackageLocator) LocateResource(url string) (string, error) {
	var path string
	switch {
	case strings.HasPrefix(url, packageScheme):
		pkg, rel, found := strings.Cut(strings.TrimPrefix(url, packageScheme), "/")
		if !found || pkg == "" || rel == "" {
			return "", errors.Errorf("malformed package url %q", url)
		}
		dir, ok := l.packages[pkg]
		if !ok {
			dir, ok = utils.LookupPackageDir(pkg)
		}
		if !ok {
			return "", errors.Errorf("failed to locate package %q: not configured and %s is unset", pkg, utils.PackageDirEnvVar(pkg))
		}
		path = filepath.Join(l.resolveDir(dir), filepath.Clean("/"+rel))
	case strings.HasPrefix(url, fileScheme):
		path = l.resolveDir(strings.TrimPrefix(url, fileScheme))
	default:
		path = l.resolveDir(url)
	}

	if _, err := os.Stat(path); err != nil {
		return "", errors.Wrapf(err, "failed to locate resource %q", url)
	}
	return path, nil
}

func (l *PackageLocator) resolveDir(path string) string {
	if filepath.IsAbs(path) || l.baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(l.baseDir, path)
}
