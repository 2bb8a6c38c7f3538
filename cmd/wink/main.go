package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/sneedgroup-holder/wink-browser/pkg/diag"
	"github.com/sneedgroup-holder/wink-browser/pkg/paint"
	"github.com/sneedgroup-holder/wink-browser/pkg/pipeline"
	"github.com/sneedgroup-holder/wink-browser/pkg/resource"
)

const viewportWidth = 1024

func main() {
	a := app.New()
	w := a.NewWindow("wink browser")
	w.Resize(fyne.NewSize(viewportWidth, 768))

	sink := diag.NewDevelopmentSink()
	defer sink.Sync()
	raster := paint.NewRasterizer()

	canvasImg := canvas.NewImageFromImage(raster.Rasterize(&paint.DisplayList{Width: viewportWidth, Height: 700}))
	canvasImg.FillMode = canvas.ImageFillOriginal

	status := widget.NewLabel("Enter a URL and press Enter")

	// One document is live at a time; loading a new URL cancels the
	// previous one so its pending script timers never fire.
	var current *pipeline.Document

	urlEntry := widget.NewEntry()
	urlEntry.SetPlaceHolder("https://example.com")
	urlEntry.OnSubmitted = func(url string) {
		status.SetText("Loading " + url + "...")
		if current != nil {
			current.Cancel()
		}
		doc := pipeline.New(pipeline.Config{
			URL:           url,
			ViewportWidth: viewportWidth,
			Fetcher:       resource.NewHTTPFetcher(url),
			Sink:          sink,
		})
		current = doc
		go func() {
			if err := doc.Load(url); err != nil {
				status.SetText("Error: " + err.Error())
				return
			}
			doc.LoadImages()
			doc.RunTasks()

			canvasImg.Image = raster.Rasterize(doc.Snapshot())
			canvasImg.Refresh()
			status.SetText(url)
			w.SetTitle(fmt.Sprintf("wink %s", url))
		}()
	}

	topBar := container.NewBorder(nil, nil, nil, nil, urlEntry)
	content := container.NewBorder(topBar, status, nil, nil, canvasImg)
	w.SetContent(content)

	// Keep focus on the URL entry so Tab has somewhere to go.
	w.Canvas().Focus(urlEntry)

	w.ShowAndRun()
}
