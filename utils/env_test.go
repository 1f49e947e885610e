package utils

import (
	"testing"

	"go.viam.com/test"
)

func TestValidName(t *testing.T) {
	test.That(t, ValidNameRegex.MatchString("iiwa"), test.ShouldBeTrue)
	test.That(t, ValidNameRegex.MatchString("arm_1-left"), test.ShouldBeTrue)
	test.That(t, ValidNameRegex.MatchString("_arm"), test.ShouldBeFalse)
	test.That(t, ValidNameRegex.MatchString("arm/left"), test.ShouldBeFalse)

	long := "a123456789b123456789c123456789d123456789e123456789f123456789g"
	test.That(t, ErrInvalidName(long).Error(), test.ShouldContainSubstring, "60 characters or fewer")
	test.That(t, ErrInvalidName("_arm").Error(), test.ShouldContainSubstring, "must start with a letter or number")
}

func TestPackageDirEnv(t *testing.T) {
	test.That(t, PackageDirEnvVar("iiwa_description"), test.ShouldEqual, "IIWA_DESCRIPTION_DIR")
	test.That(t, PackageDirEnvVar("my-robot"), test.ShouldEqual, "MY_ROBOT_DIR")

	t.Setenv("SIMPLEPLAN_TEST_DIR", "/tmp/pkgs")
	dir, ok := LookupPackageDir("simpleplan_test")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, dir, test.ShouldEqual, "/tmp/pkgs")

	t.Setenv("SIMPLEPLAN_TEST_DIR", "")
	_, ok = LookupPackageDir("simpleplan_test")
	test.That(t, ok, test.ShouldBeFalse)

	t.Setenv("SIMPLEPLAN_FLAG", "yes")
	test.That(t, EnvFlagSet("SIMPLEPLAN_FLAG"), test.ShouldBeTrue)
	t.Setenv("SIMPLEPLAN_FLAG", "no")
	test.That(t, EnvFlagSet("SIMPLEPLAN_FLAG"), test.ShouldBeFalse)
}
