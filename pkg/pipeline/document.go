package pipeline

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/sneedgroup-holder/wink-browser/pkg/css"
	"github.com/sneedgroup-holder/wink-browser/pkg/diag"
	"github.com/sneedgroup-holder/wink-browser/pkg/dom"
	"github.com/sneedgroup-holder/wink-browser/pkg/html"
	"github.com/sneedgroup-holder/wink-browser/pkg/layout"
	"github.com/sneedgroup-holder/wink-browser/pkg/paint"
	"github.com/sneedgroup-holder/wink-browser/pkg/resource"
	"github.com/sneedgroup-holder/wink-browser/pkg/script"
	"github.com/sneedgroup-holder/wink-browser/pkg/text"
)

// DefaultViewportWidth is used when the caller does not size the page.
const DefaultViewportWidth = 800

// Config collects the collaborators a document pipeline needs. Zero
// values get sensible defaults: no fetcher means external resources
// are skipped, no filter means everything is allowed.
type Config struct {
	URL           string
	ViewportWidth float64
	Fetcher       resource.Fetcher
	Filter        resource.Filter
	Sink          diag.Sink
	TaskBudget    time.Duration
	FontPath      string
	BoldFontPath  string
}

// Document drives one page through the whole pipeline: streaming
// parse, stylesheet collection, script execution, and the
// style-layout-paint cycle behind every flush.
type Document struct {
	url  string
	sink diag.Sink

	dom      *dom.Document
	parser   *html.Parser
	resolver *css.Resolver
	engine   *layout.Engine
	coord    *Coordinator
	realm    *script.Realm
	fetcher  resource.Fetcher
	decoder  *resource.MediaDecoder

	boxRoot   *layout.Box
	layouts   int
	cancelled bool
	finished  bool
}

func New(cfg Config) *Document {
	sink := cfg.Sink
	if sink == nil {
		sink = diag.Nop{}
	}
	width := cfg.ViewportWidth
	if width <= 0 {
		width = DefaultViewportWidth
	}
	fetcher := cfg.Fetcher
	if fetcher != nil && cfg.Filter != nil {
		fetcher = &resource.FilteredFetcher{Fetcher: fetcher, Filter: cfg.Filter}
	}

	d := &Document{
		url:      cfg.URL,
		sink:     sink,
		dom:      dom.NewDocument(),
		resolver: css.NewResolver(),
		fetcher:  fetcher,
		decoder:  resource.NewMediaDecoder(),
	}
	measurer := text.NewMeasurer()
	measurer.RegularPath = cfg.FontPath
	measurer.BoldPath = cfg.BoldFontPath
	d.engine = layout.NewEngine(d.resolver, measurer, width)
	d.engine.SetMediaSizer(d.mediaSize)

	d.coord = NewCoordinator(d.dom, d.resolver, sink)
	d.coord.SetFlushHook(d.relayout)

	d.realm = script.NewRealm(d.dom, d.coord, sink)
	if cfg.TaskBudget > 0 {
		d.realm.TaskBudget = cfg.TaskBudget
	}
	d.realm.AfterTask = func() { d.coord.Flush() }
	d.coord.SetRemovalHook(d.realm.NodeRemoved)

	d.parser = html.NewParser(d.dom, sink)
	d.parser.SetObserver(d.coord)
	return d
}

// DOM returns the document tree.
func (d *Document) DOM() *dom.Document { return d.dom }

// Resolver returns the style resolver.
func (d *Document) Resolver() *css.Resolver { return d.resolver }

// Coordinator returns the mutation gate shared with the script realm.
func (d *Document) Coordinator() *Coordinator { return d.coord }

// Realm returns the script realm.
func (d *Document) Realm() *script.Realm { return d.realm }

// Layouts returns how many layout passes have run.
func (d *Document) Layouts() int { return d.layouts }

// BoxTree returns the current layout tree, nil before the first flush.
func (d *Document) BoxTree() *layout.Box { return d.boxRoot }

// Write feeds a chunk of markup to the incremental parser.
func (d *Document) Write(chunk []byte) {
	if d.cancelled || d.finished {
		return
	}
	d.parser.Write(chunk)
}

// WriteString feeds markup as a string.
func (d *Document) WriteString(s string) { d.Write([]byte(s)) }

// Load streams the document at rawURL through the parser and then
// finishes it. Requires a fetcher.
func (d *Document) Load(rawURL string) error {
	if d.fetcher == nil {
		return fmt.Errorf("load %s: no fetcher configured", rawURL)
	}
	stream, err := d.fetcher.Fetch(rawURL)
	if err != nil {
		return err
	}
	defer stream.Close()
	d.url = resource.ResolveURL(d.url, rawURL)

	decoded, err := html.DecodeReader(stream, stream.ContentType())
	if err != nil {
		return fmt.Errorf("load %s: %w", rawURL, err)
	}
	buf := make([]byte, 32*1024)
	for !d.cancelled {
		n, rerr := decoded.Read(buf)
		if n > 0 {
			d.Write(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("load %s: %w", rawURL, rerr)
		}
	}
	return d.Finish()
}

// Finish completes parsing, collects stylesheets, runs the initial
// style and layout pass, and then executes scripts in document order.
func (d *Document) Finish() error {
	if d.cancelled || d.finished {
		return nil
	}
	d.finished = true
	d.parser.Finish()

	d.collectStylesheets()
	d.resolver.RecomputeAll(d.dom)
	d.coord.Pending().Reset()
	d.relayout()

	d.runScripts()
	return nil
}

// Cancel abandons the document. Buffered input is discarded, pending
// script tasks will never run, and further feeding is ignored.
func (d *Document) Cancel() {
	if d.cancelled {
		return
	}
	d.cancelled = true
	d.realm.Close()
}

// Cancelled reports whether Cancel was called.
func (d *Document) Cancelled() bool { return d.cancelled }

// RunTasks runs all due script tasks (timers included) and returns how
// many ran. Each task that mutated the tree is followed by a flush.
func (d *Document) RunTasks() int {
	if d.cancelled {
		return 0
	}
	return d.realm.RunTasks()
}

// Snapshot builds a display list from the current layout tree.
func (d *Document) Snapshot() *paint.DisplayList {
	if d.boxRoot == nil {
		d.relayout()
	}
	return paint.Snapshot(d.boxRoot, d.imageFor)
}

// LoadImages fetches and decodes every img src in the document,
// reporting failures as diagnostics and flushing once per arrival so
// layout picks up the intrinsic sizes.
func (d *Document) LoadImages() int {
	if d.fetcher == nil || d.cancelled {
		return 0
	}
	loaded := 0
	for _, img := range d.dom.ElementsByTag("img") {
		src, ok := img.GetAttribute("src")
		if !ok || src == "" {
			continue
		}
		abs := resource.ResolveURL(d.url, src)
		if _, cached := d.decoder.Get(abs); cached {
			continue
		}
		if err := d.loadImage(img, abs); err != nil {
			d.sink.Report(diag.Diagnostic{
				Severity: diag.Warning,
				Stage:    diag.StageResource,
				Message:  err.Error(),
			})
			continue
		}
		loaded++
		d.coord.MediaArrived(img)
		d.coord.Flush()
	}
	return loaded
}

func (d *Document) loadImage(img *dom.Node, abs string) error {
	stream, err := d.fetcher.Fetch(abs)
	if err != nil {
		return err
	}
	defer stream.Close()
	data, err := io.ReadAll(stream)
	if err != nil {
		return fmt.Errorf("read %s: %w", abs, err)
	}
	_, err = d.decoder.Decode(abs, data)
	return err
}

func (d *Document) relayout() {
	d.boxRoot = d.engine.Layout(d.dom)
	d.layouts++
}

// mediaSize resolves an element's intrinsic size from decoded media.
func (d *Document) mediaSize(n *dom.Node) (w, h float64, ok bool) {
	m := d.mediaFor(n)
	if m == nil {
		return 0, 0, false
	}
	return float64(m.Width), float64(m.Height), true
}

func (d *Document) imageFor(n *dom.Node) image.Image {
	m := d.mediaFor(n)
	if m == nil {
		return nil
	}
	return m.Image
}

func (d *Document) mediaFor(n *dom.Node) *resource.Media {
	src, ok := n.GetAttribute("src")
	if !ok || src == "" {
		return nil
	}
	m, ok := d.decoder.Get(resource.ResolveURL(d.url, src))
	if !ok {
		return nil
	}
	return m
}

// collectStylesheets gathers inline style elements and linked sheets
// in document order, so later sheets win cascade ties.
func (d *Document) collectStylesheets() {
	var order []*dom.Node
	d.dom.Root.Walk(func(n *dom.Node) {
		if n.Kind != dom.ElementNode {
			return
		}
		switch n.Tag {
		case "style":
			order = append(order, n)
		case "link":
			if rel, _ := n.GetAttribute("rel"); rel == "stylesheet" {
				order = append(order, n)
			}
		}
	})
	for _, n := range order {
		if n.Tag == "style" {
			d.resolver.AddSheet(css.ParseStylesheet(n.TextContent(), d.sink))
			continue
		}
		href, ok := n.GetAttribute("href")
		if !ok || href == "" {
			continue
		}
		src, err := d.fetchText(resource.ResolveURL(d.url, href))
		if err != nil {
			d.sink.Report(diag.Diagnostic{
				Severity: diag.Warning,
				Stage:    diag.StageResource,
				Message:  fmt.Sprintf("stylesheet %s unavailable: %v", href, err),
			})
			continue
		}
		d.resolver.AddSheet(css.ParseStylesheet(src, d.sink))
	}
}

// runScripts executes script elements in document order. External
// scripts are fetched through the gated fetcher; a script that fails
// to load or to run is reported and skipped, never fatal.
func (d *Document) runScripts() {
	for i, n := range d.dom.ElementsByTag("script") {
		if d.cancelled {
			return
		}
		name := fmt.Sprintf("inline script #%d", i+1)
		src := n.TextContent()
		if ext, ok := n.GetAttribute("src"); ok && ext != "" {
			name = ext
			abs := resource.ResolveURL(d.url, ext)
			fetched, err := d.fetchText(abs)
			if err != nil {
				d.sink.Report(diag.Diagnostic{
					Severity: diag.Warning,
					Stage:    diag.StageResource,
					Message:  fmt.Sprintf("script %s unavailable: %v", ext, err),
				})
				continue
			}
			src = fetched
		}
		if src == "" {
			continue
		}
		d.realm.Execute(name, src)
	}
}

func (d *Document) fetchText(abs string) (string, error) {
	if d.fetcher == nil {
		return "", fmt.Errorf("no fetcher configured")
	}
	stream, err := d.fetcher.Fetch(abs)
	if err != nil {
		return "", err
	}
	defer stream.Close()
	data, err := io.ReadAll(stream)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
