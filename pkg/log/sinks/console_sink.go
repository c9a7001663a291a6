package sinks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/arnavsurve/rowpilot/pkg/log"
	"github.com/arnavsurve/rowpilot/pkg/types"
	"github.com/fatih/color"
)

type ConsoleSink struct {
	out io.Writer
}

func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{out: os.Stdout}
}

// NewConsoleSinkTo writes to w instead of stdout.
func NewConsoleSinkTo(w io.Writer) *ConsoleSink {
	return &ConsoleSink{out: w}
}

var levelColorMap = map[types.Level]*color.Color{
	types.DebugLevel: color.New(color.FgCyan),
	types.InfoLevel:  color.New(color.FgGreen),
	types.WarnLevel:  color.New(color.FgYellow),
	types.ErrorLevel: color.New(color.FgRed),
	types.FatalLevel: color.New(color.FgRed, color.Bold),
}

func (c *ConsoleSink) Write(event *log.LogEvent) error {
	msg := event.Message
	errorMsg := getStringField(event.Fields, "error")
	levelStr := strings.ToUpper(event.Level.String())
	timestampStr := event.Timestamp.Format(time.RFC3339)

	levelFmt := color.New(color.FgWhite).SprintFunc()
	if lc, ok := levelColorMap[event.Level]; ok {
		levelFmt = lc.SprintFunc()
	}
	timestampFmt := color.New(color.FgWhite).SprintFunc()

	commonPrefix := fmt.Sprintf("[%s %s] %s: ",
		levelFmt(levelStr),
		timestampFmt(timestampStr),
		color.CyanString(Label(event.Fields)),
	)

	var output string
	switch {
	case msg != "" && errorMsg != "":
		output = fmt.Sprintf("%s%s: %s", commonPrefix, msg, color.RedString(errorMsg))
	case errorMsg != "":
		output = fmt.Sprintf("%s%s", commonPrefix, errorMsg)
	case msg != "":
		output = fmt.Sprintf("%s%s", commonPrefix, msg)
	default:
		fieldsStr, _ := json.MarshalIndent(event.Fields, "", "  ")
		output = fmt.Sprintf("%s%s", commonPrefix, string(fieldsStr))
	}
	_, err := fmt.Fprintln(c.out, output)
	return err
}

// Label names where an event came from: "row 3/action 2", "action 2" for
// the pre and post loop sections, or "workflow".
func Label(fields map[string]any) string {
	row, hasRow := getIntField(fields, "row_index")
	action, hasAction := getIntField(fields, "action_index")
	switch {
	case hasRow && hasAction:
		return fmt.Sprintf("row %d/action %d", row+1, action+1)
	case hasRow:
		return fmt.Sprintf("row %d", row+1)
	case hasAction:
		return fmt.Sprintf("action %d", action+1)
	default:
		return "workflow"
	}
}

// Helper to safely get string field from LogEvent.Fields
func getStringField(fields map[string]any, key string) string {
	if val, ok := fields[key]; ok {
		if strVal, isStr := val.(string); isStr {
			return strVal
		}
	}
	return ""
}

// Numeric fields arrive as float64 after the router's JSON decode.
func getIntField(fields map[string]any, key string) (int, bool) {
	switch v := fields[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func (c *ConsoleSink) Close() error {
	return nil // Console doesn't need closing
}
