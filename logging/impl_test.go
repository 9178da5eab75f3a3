package logging

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"
)

type User struct {
	Name string
}

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualTrimmed := strings.TrimSuffix(output, "\n")
	actualParts := strings.Split(actualTrimmed, "\t")
	expectedParts := strings.Split(expected, "\t")
	// The timestamp must parse in the appender format, whatever the local zone.
	_, err = time.Parse(DefaultTimeFormatStr, actualParts[0])
	test.That(t, err, test.ShouldBeNil)
	// Log level.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	// Logger name.
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	// Filename:line_number.
	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	// Log message.
	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])

	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	if len(actualParts) == 5 {
		return
	}

	expectedMap := make(map[string]any)
	err = json.Unmarshal([]byte(expectedParts[5]), &expectedMap)
	test.That(t, err, test.ShouldBeNil)

	actualMap := make(map[string]any)
	err = json.Unmarshal([]byte(actualParts[5]), &actualMap)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"dqkin", NewAtomicLevelAt(DEBUG), true, []Appender{NewWriterAppender(notStdout)}}

	logger.Info("impl Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	dqkin	logging/impl_test.go:67	impl Info log`)

	logger.Infof("impl %s log", "infof")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:45:20.764Z	INFO	dqkin	logging/impl_test.go:71	impl infof log`)

	logger.Infow("impl logw", "key", "value")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	dqkin	logging/impl_test.go:75	impl logw	{"key":"value"}`)

	logger.Infow("impl logw", "user", User{Name: "alice"}, "links", 7)
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	INFO	dqkin	logging/impl_test.go:79	impl logw	{"user":{"Name":"alice"},"links":7}`)

	// An unpaired key is reported rather than dropped.
	logger.Warnw("impl logw", "dangling")
	assertLogMatches(t, notStdout,
		`2023-10-30T13:19:45.806Z	WARN	dqkin	logging/impl_test.go:84	impl logw	{"dangling":"unpaired log key"}`)
}

func TestLevelFiltering(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"", NewAtomicLevelAt(WARN), false, []Appender{NewWriterAppender(notStdout)}}

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.Warn("kept")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "WARN")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "kept")

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
}

func TestSublogger(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"dqkin", NewAtomicLevelAt(INFO), false, []Appender{NewWriterAppender(notStdout)}}
	sub := logger.Sublogger("fkm")

	sub.Info("sub log")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "dqkin.fkm")

	// Levels are copied, not shared.
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)
}

func TestLevelFromString(t *testing.T) {
	for str, level := range map[string]Level{"debug": DEBUG, "INFO": INFO, "Warning": WARN, "error": ERROR} {
		parsed, err := LevelFromString(str)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, level)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Warnw("dummy links ignored", "links", 3)

	test.That(t, logs.FilterMessage("dummy links ignored").Len(), test.ShouldEqual, 1)
	test.That(t, logs.All()[0].ContextMap()["links"], test.ShouldEqual, int64(3))
}

func TestUTCTimestamps(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{"", NewAtomicLevelAt(INFO), true, []Appender{NewWriterAppender(notStdout)}}

	logger.Info("in utc")
	stamp, _, found := strings.Cut(notStdout.String(), "\t")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, stamp, test.ShouldEndWith, "Z")
	parsed, err := time.Parse(DefaultTimeFormatStr, stamp)
	test.That(t, err, test.ShouldBeNil)
	_, offset := parsed.Zone()
	test.That(t, offset, test.ShouldEqual, 0)
}
