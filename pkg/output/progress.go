package output

import (
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"
)

// progressTemplate shows the command, a bar and the artifact being processed
const progressTemplate = `{{ string . "command" }} {{ counters . }} {{ bar . }} {{ percent . }} {{ string . "artifact" }}`

// ProgressFormatter draws a progress bar while artifacts are processed and
// hands the final summary to a human formatter
type ProgressFormatter struct {
	human *HumanFormatter

	mu  sync.Mutex
	bar *pb.ProgressBar
}

// NewProgressFormatter creates a progress bar formatter wrapping human
func NewProgressFormatter(human *HumanFormatter) *ProgressFormatter {
	return &ProgressFormatter{human: human}
}

// Start creates the bar
func (f *ProgressFormatter) Start(writer io.Writer, command string, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.human.Start(writer, command, total); err != nil {
		return err
	}
	f.bar = pb.New(total).SetTemplateString(progressTemplate).SetWriter(writer)
	f.bar.Set("command", command)
	f.bar.Start()
	return nil
}

// Progress advances the bar; errors are kept for the summary
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}
	switch update.Type {
	case "artifact_start":
		f.bar.Set("artifact", update.Artifact.Name)
	case "artifact_complete", "artifact_error":
		f.bar.Increment()
	}
	return nil
}

// Complete stops the bar and prints the summary
func (f *ProgressFormatter) Complete(report *Report) error {
	f.mu.Lock()
	if f.bar != nil {
		f.bar.Set("artifact", "")
		f.bar.Finish()
		f.bar = nil
	}
	f.mu.Unlock()
	return f.human.Complete(report)
}

// Error reports an error
func (f *ProgressFormatter) Error(err error) error {
	return f.human.Error(err)
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
