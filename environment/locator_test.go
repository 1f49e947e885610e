package environment

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"go.viam.com/test"

	"go.viam.com/simpleplanner/utils"
)

func TestSimpleResourceLocator(t *testing.T) {
	supportDir := utils.ResolveFile("models")
	re := regexp.MustCompile(`^package://simpleplanner_support/(.*)$`)
	locator := NewSimpleResourceLocator(func(url string) string {
		match := re.FindStringSubmatch(url)
		if match == nil {
			return ""
		}
		return filepath.Join(supportDir, filepath.Clean(match[1]))
	})

	path, err := locator.LocateResource("package://simpleplanner_support/iiwa7.json")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldEqual, filepath.Join(supportDir, "iiwa7.json"))

	_, err = locator.LocateResource("package://other/iiwa7.json")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewSimpleResourceLocator(nil).LocateResource("anything")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPackageLocator(t *testing.T) {
	root := utils.ResolveFile("")
	want := filepath.Join(root, "models", "iiwa7.json")

	locator := NewPackageLocator(root, map[string]string{"support": "models"})
	path, err := locator.LocateResource("package://support/iiwa7.json")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldEqual, want)

	path, err = locator.LocateResource("models/iiwa7.json")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldEqual, want)

	path, err = locator.LocateResource("file://" + want)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldEqual, want)

	_, err = locator.LocateResource("package://support/missing.json")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = locator.LocateResource("package://support")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "malformed")

	// relative segments cannot escape the package directory
	_, err = locator.LocateResource("package://support/../go.mod")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPackageLocatorEnvFallback(t *testing.T) {
	locator := NewPackageLocator("", nil)
	_, err := locator.LocateResource("package://iiwa_support/iiwa7.json")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "IIWA_SUPPORT_DIR")

	t.Setenv("IIWA_SUPPORT_DIR", utils.ResolveFile("models"))
	path, err := locator.LocateResource("package://iiwa_support/iiwa7.json")
	test.That(t, err, test.ShouldBeNil)
	_, err = os.Stat(path)
	test.That(t, err, test.ShouldBeNil)
}
