package browser

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/runtime"
)

// ConsoleLog collects console API calls and uncaught exceptions of a tab
type ConsoleLog struct {
	mu    sync.Mutex
	lines []string
}

func newConsoleLog() *ConsoleLog {
	return &ConsoleLog{}
}

// Lines returns a copy of the captured lines in arrival order
func (c *ConsoleLog) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func (c *ConsoleLog) add(line string) {
	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()
}

// listen is the chromedp target listener
func (c *ConsoleLog) listen(ev interface{}) {
	switch ev := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		c.add(formatConsoleCall(ev))
	case *runtime.EventExceptionThrown:
		c.add(formatException(ev))
	}
}

func formatConsoleCall(ev *runtime.EventConsoleAPICalled) string {
	parts := make([]string, 0, len(ev.Args))
	for _, arg := range ev.Args {
		parts = append(parts, remoteValue(arg))
	}

	line := fmt.Sprintf("[%s] %s", strings.ToUpper(ev.Type.String()), strings.Join(parts, " "))
	if ev.StackTrace != nil && len(ev.StackTrace.CallFrames) > 0 {
		frame := ev.StackTrace.CallFrames[0]
		line += fmt.Sprintf(" (%s:%d)", frame.URL, frame.LineNumber+1)
	}
	return line
}

func formatException(ev *runtime.EventExceptionThrown) string {
	details := ev.ExceptionDetails
	if details == nil {
		return "[EXCEPTION]"
	}

	text := details.Text
	if details.Exception != nil && details.Exception.Description != "" {
		text = details.Exception.Description
	}
	line := "[EXCEPTION] " + text
	if details.URL != "" {
		line += fmt.Sprintf(" (%s:%d)", details.URL, details.LineNumber+1)
	}
	return line
}

func remoteValue(arg *runtime.RemoteObject) string {
	if arg == nil {
		return ""
	}
	if len(arg.Value) > 0 {
		var s string
		if err := json.Unmarshal(arg.Value, &s); err == nil {
			return s
		}
		return string(arg.Value)
	}
	if arg.UnserializableValue != "" {
		return string(arg.UnserializableValue)
	}
	if arg.Description != "" {
		return arg.Description
	}
	return arg.Type.String()
}
