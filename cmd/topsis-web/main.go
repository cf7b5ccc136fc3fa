//go:build js && wasm

// Command topsis-web binds the upload form controller to the page served by
// the TOPSIS server. Build with GOOS=js GOARCH=wasm and serve the output as
// /static/topsis.wasm next to wasm_exec.js.
package main

import (
	"context"
	"errors"
	"syscall/js"
	"time"

	"github.com/MikeSquared-Agency/Topsis/internal/client"
	"github.com/MikeSquared-Agency/Topsis/internal/form"
)

func main() {
	doc := js.Global().Get("document")
	byID := func(id string) js.Value { return doc.Call("getElementById", id) }

	page := &domPage{
		form:      byID("topsisForm"),
		fileInput: byID("fileInput"),
		submit:    byID("submitBtn"),
		message:   byID("messageBox"),
		section:   byID("resultsSection"),
		content:   byID("resultsContent"),
		label:     doc.Call("querySelector", ".file-input-label"),
	}

	origin := js.Global().Get("location").Get("origin").String()
	ctrl := form.NewController(form.Elements{
		Form:      page,
		Submit:    page,
		Messages:  page,
		Results:   (*domResults)(page),
		FileLabel: page,
	}, client.NewHTTPClient(origin, 0), form.WithDismissAfter(5*time.Second))

	ctrl.Bind(page)

	// keep the Go runtime alive for the callbacks
	select {}
}

// domPage adapts the page's elements to the controller's interfaces.
type domPage struct {
	form, fileInput, submit, message, section, content, label js.Value

	selection form.Selection
}

// File reads the picked file's bytes. It runs on the submit goroutine, so
// waiting for the browser here is allowed.
func (p *domPage) File() *form.File {
	f, err := p.selection.File()
	if err != nil {
		js.Global().Get("console").Call("error", "read file: "+err.Error())
		return nil
	}
	return f
}
func (p *domPage) Weights() string  { return p.field("weights") }
func (p *domPage) Impacts() string  { return p.field("impacts") }
func (p *domPage) Email() string    { return p.field("email") }

func (p *domPage) field(id string) string {
	return js.Global().Get("document").Call("getElementById", id).Get("value").String()
}

func (p *domPage) Reset() {
	p.form.Call("reset")
	p.selection.Clear()
}

func (p *domPage) SetDisabled(d bool) { p.submit.Set("disabled", d) }
func (p *domPage) Label() string      { return p.submit.Get("innerHTML").String() }
func (p *domPage) SetLabel(l string)  { p.submit.Set("innerHTML", l) }

func (p *domPage) Show(text string, kind form.MessageKind) {
	p.message.Set("textContent", text)
	p.message.Set("className", "message "+string(kind))
}

func (p *domPage) Hide() { p.message.Set("className", "message") }

func (p *domPage) ScrollIntoView() { scrollIntoView(p.message) }

func (p *domPage) SetText(t string) { p.label.Set("textContent", t) }

func (p *domPage) SetColor(c string) {
	style := p.label.Get("style")
	style.Set("borderColor", c)
	style.Set("color", c)
}

// OnFileChanged reports the picked file's name right away; its bytes are read
// at submit time. A cleared picker reports nil.
func (p *domPage) OnFileChanged(f func(*form.File)) {
	p.label.Call("addEventListener", "click", js.FuncOf(func(this js.Value, args []js.Value) any {
		p.fileInput.Call("click")
		return nil
	}))
	p.fileInput.Call("addEventListener", "change", js.FuncOf(func(this js.Value, args []js.Value) any {
		files := p.fileInput.Get("files")
		if files.Length() == 0 {
			p.selection.Clear()
			f(nil)
			return nil
		}
		picked := files.Index(0)
		f(p.selection.Pick(picked.Get("name").String(), func() ([]byte, error) {
			return readFile(picked)
		}))
		return nil
	}))
}

func readFile(file js.Value) ([]byte, error) {
	buf, err := await(file.Call("arrayBuffer"))
	if err != nil {
		return nil, err
	}
	data := make([]byte, buf.Get("byteLength").Int())
	js.CopyBytesToGo(data, js.Global().Get("Uint8Array").New(buf))
	return data, nil
}

func (p *domPage) OnSubmit(f func(ctx context.Context)) {
	p.form.Call("addEventListener", "submit", js.FuncOf(func(this js.Value, args []js.Value) any {
		args[0].Call("preventDefault")
		// callbacks must not block; the upload runs on its own goroutine
		go f(context.Background())
		return nil
	}))
}

type domResults domPage

func (r *domResults) SetHTML(h string) { r.content.Set("innerHTML", h) }
func (r *domResults) Show()           { r.section.Get("classList").Call("add", "show") }
func (r *domResults) ScrollIntoView() { scrollIntoView(r.section) }

func scrollIntoView(v js.Value) {
	opts := js.Global().Get("Object").New()
	opts.Set("behavior", "smooth")
	opts.Set("block", "nearest")
	v.Call("scrollIntoView", opts)
}

// await blocks the calling goroutine until p settles.
func await(p js.Value) (js.Value, error) {
	type result struct {
		v   js.Value
		err error
	}
	ch := make(chan result, 1)

	var onOK, onErr js.Func
	onOK = js.FuncOf(func(this js.Value, args []js.Value) any {
		ch <- result{v: args[0]}
		return nil
	})
	onErr = js.FuncOf(func(this js.Value, args []js.Value) any {
		ch <- result{err: errors.New(args[0].Call("toString").String())}
		return nil
	})
	defer onOK.Release()
	defer onErr.Release()

	p.Call("then", onOK, onErr)
	r := <-ch
	return r.v, r.err
}
