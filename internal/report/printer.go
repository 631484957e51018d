// Package report renders validation results and analyses as console text.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chrisdamba/expcheck/internal/loader"
)

const ruleWidth = 60

var rule = strings.Repeat("=", ruleWidth)

// Printer writes report sections to w. Styling degrades to plain text when w is not a terminal.
type Printer struct {
	w   io.Writer
	err error

	heading lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		heading: r.NewStyle().Bold(true),
		good:    r.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("#e53935")),
	}
}

// Err returns the first write error, if any.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) println(s string) {
	p.printf("%s\n", s)
}

func (p *Printer) section(title string) {
	p.println(rule)
	p.println(p.heading.Render(title))
	p.println(rule)
}

// Title prints the program banner.
func (p *Printer) Title() {
	p.println("\n" + rule)
	p.println(p.heading.Render("EXPERIMENT ORDER DATA VALIDATOR & ANALYZER"))
	p.println(rule + "\n")
}

func (p *Printer) Loaded(name string) {
	p.println(p.good.Render("✓ Successfully loaded "+name) + "\n")
}

// LoadError explains why the dataset could not be read.
func (p *Printer) LoadError(name, location string, err error) {
	var notFound *loader.NotFoundError
	var parseErr *loader.ParseError
	switch {
	case errors.As(err, &notFound):
		p.println(p.bad.Render(fmt.Sprintf("❌ Error: %s not found", name)))
		p.printf("   Expected location: %s\n", location)
	case errors.As(err, &parseErr):
		p.println(p.bad.Render(fmt.Sprintf("❌ Error: Invalid JSON format - %v", parseErr.Err)))
	default:
		p.println(p.bad.Render(fmt.Sprintf("❌ Error: %v", err)))
	}
}

// Success prints the closing banner of a clean run.
func (p *Printer) Success(name string) {
	p.println(rule)
	p.println(p.good.Render("✅ VALIDATION COMPLETE - DATA IS READY FOR USE"))
	p.println(rule)
	p.println("\nNext steps:")
	p.printf("  1. Import %s in your game code\n", name)
	p.println("  2. Implement star (⭐) indicators for recommended orders")
	p.println("  3. Add round counter (1-20)")
	p.println("  4. Implement performance tracking")
	p.println("\nSee DEVELOPER_QUICK_REFERENCE.md for implementation guide.")
	p.println("")
}

// StructureValid closes a validate-only run.
func (p *Printer) StructureValid() {
	p.println(rule)
	p.println(p.good.Render("✅ STRUCTURE VALID - ANALYSIS SKIPPED"))
	p.println(rule)
	p.println("")
}

func (p *Printer) Failure() {
	p.println(rule)
	p.println(p.bad.Render("❌ VALIDATION FAILED - PLEASE FIX ERRORS ABOVE"))
	p.println(rule)
	p.println("")
}

// AnalysisError reports an analyzer that could not finish.
func (p *Printer) AnalysisError(name string, err error) {
	p.println(p.bad.Render(fmt.Sprintf("❌ %s failed: %v", name, err)))
	p.println("")
}

// number prints a float the way the dataset wrote it: 7 stays 7, 7.5 stays 7.5.
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func intList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
