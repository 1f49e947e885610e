package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"go.viam.com/test"

	"go.viam.com/simpleplanner/utils"
)

func TestPlanCommand(t *testing.T) {
	envPath := utils.ResolveFile("cmd/simpleplan/testdata/env.json")
	reqPath := utils.ResolveFile("cmd/simpleplan/testdata/request.json")

	t.Run("table", func(t *testing.T) {
		var out bytes.Buffer
		err := newApp(&out).Run([]string{"simpleplan", "plan", "--env", envPath, "--request", reqPath})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.String(), test.ShouldContainSubstring, "TEST_PROFILE")
		test.That(t, out.String(), test.ShouldContainSubstring, "1.0000, 1.0000, 1.0000")
		// start, five lvs steps, two fixed steps
		test.That(t, out.String(), test.ShouldContainSubstring, "8 states, joint step mean")
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		err := newApp(&out).Run([]string{"simpleplan", "plan", "--env", envPath, "--request", reqPath, "--format", "json"})
		test.That(t, err, test.ShouldBeNil)
		var steps []map[string]interface{}
		test.That(t, json.Unmarshal(out.Bytes(), &steps), test.ShouldBeNil)
		test.That(t, len(steps), test.ShouldEqual, 8)
		test.That(t, steps[0]["type"], test.ShouldEqual, "start")
		test.That(t, steps[5]["position"], test.ShouldResemble, []interface{}{1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0})
		test.That(t, steps[7]["profile"], test.ShouldEqual, "")
	})

	t.Run("planner debug mode", func(t *testing.T) {
		t.Setenv(debugEnvVar, "true")
		var out bytes.Buffer
		err := newApp(&out).Run([]string{"simpleplan", "plan", "--env", envPath, "--request", reqPath})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, out.String(), test.ShouldContainSubstring, "8 states")
	})

	t.Run("bad format", func(t *testing.T) {
		var out bytes.Buffer
		err := newApp(&out).Run([]string{"simpleplan", "plan", "--env", envPath, "--request", reqPath, "--format", "yaml"})
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "yaml")
	})

	t.Run("missing env", func(t *testing.T) {
		var out bytes.Buffer
		err := newApp(&out).Run([]string{"simpleplan", "plan", "--env", "nope.json", "--request", reqPath})
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestSchemaCommand(t *testing.T) {
	var out bytes.Buffer
	err := newApp(&out).Run([]string{"simpleplan", "schema"})
	test.That(t, err, test.ShouldBeNil)
	var schemas map[string]interface{}
	test.That(t, json.Unmarshal(out.Bytes(), &schemas), test.ShouldBeNil)
	test.That(t, schemas, test.ShouldContainKey, "lvs")
	test.That(t, schemas, test.ShouldContainKey, "fixed_size")
}

func TestSummarize(t *testing.T) {
	summary, err := summarize(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary, test.ShouldEqual, "0 states")
}
