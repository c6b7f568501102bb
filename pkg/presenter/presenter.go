// Package presenter writes user facing CLI output: status lines, section
// headers, grade summaries and rendered markdown reports. Output is colored
// unless NO_COLOR or SKILLPORT_COLOR=never is set, and quiet mode keeps
// everything but errors off the terminal.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

// ColorMode selects whether output is colored.
type ColorMode int

const (
	// ColorAuto leaves the decision to terminal detection.
	ColorAuto ColorMode = iota
	// ColorAlways forces color.
	ColorAlways
	// ColorNever disables color.
	ColorNever
)

// Presenter is the output surface used by the commands.
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Field(name, value string)
	List(items []string)
	Score(score int, grade, label string)
	Markdown(markdown string)
	Separator()
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// TerminalPresenter writes to a terminal or any pair of writers.
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	colorMode   ColorMode
	quiet       bool
}

// New returns a presenter on stdout and stderr.
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewWithOptions returns a presenter on the given writers.
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}
	return &TerminalPresenter{output: output, errorOutput: errorOutput, colorMode: colorMode}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}
	switch os.Getenv("SKILLPORT_COLOR") {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error prints err to the error output. It is shown in quiet mode too.
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}
	c := color.New(color.FgRed, color.Bold)
	if context != "" {
		c.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
		return
	}
	c.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
}

// Success prints a check marked message.
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning prints a warning marked message.
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info prints a plain line.
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, message)
}

// Section prints an underlined header.
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}
	c := color.New(color.Bold)
	c.Fprintln(p.output, title)
	c.Fprintln(p.output, strings.Repeat("-", len(title)))
}

// Field prints an indented "name: value" line.
func (p *TerminalPresenter) Field(name, value string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.output, "  %s %s\n", color.New(color.Faint).Sprintf("%-14s", name+":"), value)
}

// List prints items as a bulleted list.
func (p *TerminalPresenter) List(items []string) {
	if p.quiet {
		return
	}
	for _, item := range items {
		fmt.Fprintf(p.output, "  - %s\n", item)
	}
}

// Score prints a quality score colored by its grade.
func (p *TerminalPresenter) Score(score int, grade, label string) {
	if p.quiet {
		return
	}
	c := color.New(color.FgRed, color.Bold)
	switch grade {
	case "A", "B":
		c = color.New(color.FgGreen, color.Bold)
	case "C", "D":
		c = color.New(color.FgYellow, color.Bold)
	}
	c.Fprintf(p.output, "Quality: %d/100 (Grade %s, %s)\n", score, grade, label)
}

// Markdown renders markdown for the terminal. Without color it uses the
// plain style, and if rendering fails the raw text is printed.
func (p *TerminalPresenter) Markdown(markdown string) {
	if p.quiet {
		return
	}
	style := glamour.WithAutoStyle()
	if p.colorMode == ColorNever || color.NoColor {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err == nil {
		if out, err := r.Render(markdown); err == nil {
			fmt.Fprint(p.output, out)
			return
		}
	}
	fmt.Fprint(p.output, markdown)
}

// Separator prints a faint horizontal rule.
func (p *TerminalPresenter) Separator() {
	if p.quiet {
		return
	}
	color.New(color.Faint).Fprintln(p.output, strings.Repeat("-", 60))
}

// SetQuiet toggles quiet mode.
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet reports whether quiet mode is on.
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

var defaultPresenter Presenter = New()

// Default returns the process wide presenter.
func Default() Presenter { return defaultPresenter }

// Error prints an error with the default presenter.
func Error(err error, context string) { defaultPresenter.Error(err, context) }

// Success prints a success message with the default presenter.
func Success(message string) { defaultPresenter.Success(message) }

// Warning prints a warning with the default presenter.
func Warning(message string) { defaultPresenter.Warning(message) }

// Info prints a line with the default presenter.
func Info(message string) { defaultPresenter.Info(message) }

// Section prints a header with the default presenter.
func Section(title string) { defaultPresenter.Section(title) }

// Field prints a name and value with the default presenter.
func Field(name, value string) { defaultPresenter.Field(name, value) }

// List prints a bulleted list with the default presenter.
func List(items []string) { defaultPresenter.List(items) }

// Score prints a quality score with the default presenter.
func Score(score int, grade, label string) { defaultPresenter.Score(score, grade, label) }

// Markdown renders markdown with the default presenter.
func Markdown(markdown string) { defaultPresenter.Markdown(markdown) }

// Separator prints a rule with the default presenter.
func Separator() { defaultPresenter.Separator() }

// SetQuiet toggles quiet mode on the default presenter.
func SetQuiet(quiet bool) { defaultPresenter.SetQuiet(quiet) }

// IsQuiet reports quiet mode of the default presenter.
func IsQuiet() bool { return defaultPresenter.IsQuiet() }
