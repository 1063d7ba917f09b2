package sink

import (
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-mrf/images"
	"github.com/nvr-ai/go-mrf/motion"
)

// WindowSink shows every grid in its own OpenCV window, titled by name.
type WindowSink struct {
	windows map[string]*gocv.Window
	order   []string
}

// NewWindowSink creates a sink with no windows open yet.
func NewWindowSink() *WindowSink {
	return &WindowSink{windows: make(map[string]*gocv.Window)}
}

// Write implements Sink. A window is opened the first time a name is seen
// and reused afterwards.
func (w *WindowSink) Write(name string, g motion.Grid) error {
	mat, err := images.GridToMat(g)
	if err != nil {
		return err
	}
	defer mat.Close()

	win, ok := w.windows[name]
	if !ok {
		win = gocv.NewWindow(name)
		w.windows[name] = win
		w.order = append(w.order, name)
	}
	win.IMShow(mat)
	win.WaitKey(1)
	return nil
}

// Wait blocks until a key is pressed in any window. It returns the key code,
// or -1 when no window is open.
func (w *WindowSink) Wait() int {
	if len(w.order) == 0 {
		return -1
	}
	return w.windows[w.order[0]].WaitKey(0)
}

// Close implements Sink.
func (w *WindowSink) Close() error {
	var first error
	for _, name := range w.order {
		if err := w.windows[name].Close(); err != nil && first == nil {
			first = err
		}
	}
	w.windows = make(map[string]*gocv.Window)
	w.order = nil
	return first
}
