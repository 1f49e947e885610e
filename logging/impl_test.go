package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type planStats struct {
	Steps int
	Name  string
	cost  float64
}

func newBufferLogger(name string, level Level) (*impl, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &impl{name, NewAtomicLevelAt(level), true, []Appender{NewWriterAppender(buf)}}, buf
}

func readLogLine(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	line, err := buf.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	return strings.Split(strings.TrimSuffix(line, "\n"), "\t")
}

func TestConsoleOutputFormat(t *testing.T) {
	logger, buf := newBufferLogger("impl", DEBUG)

	logger.Infow("impl info log")
	parts := readLogLine(t, buf)
	test.That(t, len(parts), test.ShouldEqual, 5)
	test.That(t, len(parts[0]), test.ShouldEqual, len("2023-10-30T09:12:09.459Z"))
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "impl")
	test.That(t, parts[3], test.ShouldStartWith, "logging/impl_test.go:")
	test.That(t, parts[4], test.ShouldEqual, "impl info log")

	logger.Debugw("impl logw", "key", "value", "stats", planStats{Steps: 5, Name: "lvs", cost: 1})
	parts = readLogLine(t, buf)
	test.That(t, len(parts), test.ShouldEqual, 6)
	test.That(t, parts[1], test.ShouldEqual, "DEBUG")
	test.That(t, parts[3], test.ShouldStartWith, "logging/impl_test.go:")
	actual := map[string]any{}
	test.That(t, json.Unmarshal([]byte(parts[5]), &actual), test.ShouldBeNil)
	test.That(t, actual, test.ShouldResemble, map[string]any{
		"key":   "value",
		"stats": map[string]any{"Steps": 5.0, "Name": "lvs"},
	})

	// unpaired keys are reported instead of dropped
	logger.Errorw("impl logw", "dangling")
	parts = readLogLine(t, buf)
	test.That(t, parts[1], test.ShouldEqual, "ERROR")
	test.That(t, parts[5], test.ShouldContainSubstring, "unpaired log key")
}

func TestLevels(t *testing.T) {
	logger, buf := newBufferLogger("levels", INFO)
	logger.Debugw("hidden")
	logger.CDebugw(context.Background(), "hidden")
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, ERROR)
	logger.Warnw("hidden")
	test.That(t, buf.Len(), test.ShouldEqual, 0)
	logger.Errorw("shown")
	parts := readLogLine(t, buf)
	test.That(t, parts[1], test.ShouldEqual, "ERROR")
}

func TestDebugMode(t *testing.T) {
	test.That(t, DebugRunID(context.Background()), test.ShouldEqual, "")
	test.That(t, len(DebugRunID(EnableDebugMode(context.Background(), ""))), test.ShouldEqual, 6)

	logger, logs := NewObservedTestLogger(t)
	logger.SetLevel(ERROR)
	ctx := EnableDebugMode(context.Background(), "run-1")
	test.That(t, DebugRunID(ctx), test.ShouldEqual, "run-1")

	logger.CDebugw(context.Background(), "hidden", "steps", 3)
	logger.CDebugw(ctx, "shown", "steps", 3)
	test.That(t, logs.Len(), test.ShouldEqual, 1)
	entry := logs.All()[0]
	test.That(t, entry.Message, test.ShouldEqual, "shown")
	test.That(t, entry.ContextMap(), test.ShouldResemble, map[string]interface{}{"debug_run": "run-1", "steps": int64(3)})
}

func TestSublogger(t *testing.T) {
	logger, buf := newBufferLogger("planner", INFO)
	sub := logger.Sublogger("lvs")
	sub.Infow("from sub")
	parts := readLogLine(t, buf)
	test.That(t, parts[2], test.ShouldEqual, "planner.lvs")

	// levels are independent after creation
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)

	unnamed := &impl{level: NewAtomicLevelAt(INFO)}
	test.That(t, unnamed.Sublogger("x").(*impl).name, test.ShouldEqual, "x")
}

func TestLevelParsing(t *testing.T) {
	for _, tc := range []struct {
		in    string
		level Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.level)
	}
	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, WARN.AsZap(), test.ShouldEqual, zapcore.WarnLevel)

	data, err := json.Marshal(ERROR)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, `"error"`)
	var level Level
	test.That(t, json.Unmarshal([]byte(`"debug"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, DEBUG)
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("planned", "steps", 7)
	logger.Debugw("detail")

	test.That(t, logs.Len(), test.ShouldEqual, 2)
	entry := logs.FilterMessage("planned").All()
	test.That(t, len(entry), test.ShouldEqual, 1)
	test.That(t, entry[0].ContextMap()["steps"], test.ShouldEqual, int64(7))
	test.That(t, logger.Sync(), test.ShouldBeNil)
}
