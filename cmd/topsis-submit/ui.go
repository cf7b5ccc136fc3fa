package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/MikeSquared-Agency/Topsis/internal/form"
)

// termUI renders the form's elements on a terminal. Field values come from
// flags and messages go to msgs. Results are written by resultsPanel.
type termUI struct {
	file    *form.File
	weights string
	impacts string
	email   string

	label    string
	disabled bool

	msgs     io.Writer
	lastKind form.MessageKind
}

func (u *termUI) File() *form.File { return u.file }
func (u *termUI) Weights() string  { return u.weights }
func (u *termUI) Impacts() string  { return u.impacts }
func (u *termUI) Email() string    { return u.email }

func (u *termUI) Reset() {
	u.file, u.weights, u.impacts, u.email = nil, "", "", ""
}

func (u *termUI) SetDisabled(d bool) { u.disabled = d }
func (u *termUI) Label() string      { return u.label }

func (u *termUI) SetLabel(l string) {
	if l == form.LoadingLabel {
		fmt.Fprintln(u.msgs, "Processing...")
	}
	u.label = l
}

func (u *termUI) Show(text string, kind form.MessageKind) {
	u.lastKind = kind
	mark := "✓"
	if kind == form.MessageError {
		mark = "✗"
	}
	fmt.Fprintf(u.msgs, "%s %s\n", mark, text)
}

func (u *termUI) Hide()           {}
func (u *termUI) ScrollIntoView() {}

func (u *termUI) SetText(t string) {
	if strings.HasPrefix(t, form.SelectedPrefix) {
		fmt.Fprintf(u.msgs, "File: %s\n", strings.TrimPrefix(t, form.SelectedPrefix))
	}
}

func (u *termUI) SetColor(string) {}

// resultsPanel writes the rendered results once they are shown.
type resultsPanel struct {
	out  io.Writer
	html string
}

func (p *resultsPanel) SetHTML(h string) { p.html = h }
func (p *resultsPanel) ScrollIntoView()  {}

func (p *resultsPanel) Show() {
	fmt.Fprintln(p.out, p.html)
}
