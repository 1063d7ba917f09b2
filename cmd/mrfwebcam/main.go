// Command mrfwebcam runs the 8-neighbour detector on consecutive frames of a
// capture device and shows the moving mask next to the camera image.
package main

import (
	"flag"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-mrf/images"
	"github.com/nvr-ai/go-mrf/motion"
)

// overlayColor is the opaque green of the "motion" label.
var overlayColor = color.RGBA{0, 255, 0, 255}

func main() {
	deviceID := flag.Int("device", 0, "video capture device")
	configPath := flag.String("config", "", "YAML config file")
	scale := flag.Float64("scale", 0.25, "resize captured frames by this factor before detection")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stdout)
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg := motion.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = motion.LoadConfig(*configPath); err != nil {
			log.WithError(err).Fatal("failed to load config")
		}
	}
	// Live frames are processed as they arrive, rows in parallel.
	cfg.Parallel = true
	engine, err := cfg.Engine()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	// open webcam
	webcam, err := gocv.OpenVideoCapture(*deviceID)
	if err != nil {
		log.WithError(err).Fatal("failed to open capture device")
	}
	defer webcam.Close()

	// open display windows
	window := gocv.NewWindow("Camera")
	defer window.Close()
	maskWindow := gocv.NewWindow("Motion")
	defer maskWindow.Close()

	img := gocv.NewMat()
	defer img.Close()

	var previous motion.Frame
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	log.WithField("device", *deviceID).Info("start reading camera device")
	for {
		if ok := webcam.Read(&img); !ok {
			log.WithField("device", *deviceID).Error("cannot read device")
			return
		}
		if img.Empty() {
			continue
		}

		frame, err := images.FrameFromMat(img)
		if err != nil {
			log.WithError(err).Error("failed to convert frame")
			continue
		}
		if frame, err = images.Scale(frame, *scale); err != nil {
			log.WithError(err).Error("failed to scale frame")
			continue
		}

		frameCount++
		currentTime := time.Now()
		elapsed := currentTime.Sub(lastTime).Seconds()
		if elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = currentTime
		}

		if previous.Pix != nil {
			mask, err := engine.VariableThreshold2(previous, frame, cfg.Iterations)
			if err != nil {
				// the device changed resolution; start over from this frame
				log.WithError(err).Warn("skipping frame")
				previous = frame
				continue
			}

			if mask.CountMoving() > 0 {
				gocv.PutText(&img, "motion", image.Pt(10, 30), gocv.FontHersheyPlain, 2, overlayColor, 2)
			}

			m, err := images.GridToMat(mask.Grid)
			if err != nil {
				log.WithError(err).Error("failed to convert mask")
				previous = frame
				continue
			}
			log.WithFields(logrus.Fields{
				"moving":   mask.MovingRatio(),
				"fps":      fps,
				"mask_md5": images.ComputeMatChecksum(m),
			}).Debug("frame processed")
			maskWindow.IMShow(m)
			m.Close()
		}
		previous = frame

		// show the image in the window, and wait 1 millisecond
		window.IMShow(img)
		if window.WaitKey(1) == 27 {
			return
		}
	}
}
