package sink

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-mrf/images"
	"github.com/nvr-ai/go-mrf/motion"
)

// FileSink writes every grid as an image file named <prefix><name><ext> in Dir.
type FileSink struct {
	Dir    string
	Prefix string
	Ext    string
	Logger logrus.FieldLogger
}

// NewFileSink creates dir if needed. ext selects the encoder OpenCV uses;
// an empty ext writes PNG.
func NewFileSink(dir, prefix, ext string, logger logrus.FieldLogger) (*FileSink, error) {
	if ext == "" {
		ext = ".png"
	}
	if images.FormatFromExtension(ext) == images.FormatUnknown {
		return nil, errors.Errorf("unsupported output extension %q", ext)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output dir %s", dir)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FileSink{Dir: dir, Prefix: prefix, Ext: ext, Logger: logger}, nil
}

// Path returns the file a grid called name is written to.
func (f *FileSink) Path(name string) string {
	return filepath.Join(f.Dir, f.Prefix+name+f.Ext)
}

// Write implements Sink.
func (f *FileSink) Write(name string, g motion.Grid) error {
	mat, err := images.GridToMat(g)
	if err != nil {
		return err
	}
	defer mat.Close()

	path := f.Path(name)
	if ok := gocv.IMWrite(path, mat); !ok {
		return errors.Errorf("failed to save image: %s", path)
	}
	f.Logger.WithFields(logrus.Fields{
		"path":   path,
		"width":  g.Width,
		"height": g.Height,
	}).Debug("grid saved")
	return nil
}

// Close implements Sink.
func (f *FileSink) Close() error {
	return nil
}
