package recorder

import (
	"fmt"
	"image"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
)

// OpenCVSource opens camera streams through OpenCV VideoCapture.
type OpenCVSource struct {
	cfg *config.Config
}

func NewOpenCVSource(cfg *config.Config) *OpenCVSource {
	return &OpenCVSource{cfg: cfg}
}

func (s *OpenCVSource) Open(url string) (FrameStream, error) {
	cap, err := gocv.OpenVideoCapture(url)
	if err != nil {
		return nil, fmt.Errorf("open stream %s: %w", url, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("stream %s is not opened", url)
	}

	cap.Set(gocv.VideoCaptureBufferSize, float64(s.cfg.RecorderBuffer))
	cap.Set(gocv.VideoCaptureFPS, float64(s.cfg.RecorderFPS))
	cap.Set(gocv.VideoCaptureFrameWidth, float64(s.cfg.FrameWidth))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(s.cfg.FrameHeight))

	log.Info().
		Str("url", url).
		Int("width", s.cfg.FrameWidth).
		Int("height", s.cfg.FrameHeight).
		Msg("Camera stream opened for recording")

	return &openCVStream{cap: cap, cfg: s.cfg, img: gocv.NewMat()}, nil
}

type openCVStream struct {
	cap *gocv.VideoCapture
	cfg *config.Config
	img gocv.Mat
}

func (st *openCVStream) Read() (models.Frame, bool) {
	if ok := st.cap.Read(&st.img); !ok || st.img.Empty() {
		return models.Frame{}, false
	}

	// Normalize dimensions so every buffered frame matches the encoder.
	if st.img.Cols() != st.cfg.FrameWidth || st.img.Rows() != st.cfg.FrameHeight {
		resized := gocv.NewMat()
		gocv.Resize(st.img, &resized, image.Pt(st.cfg.FrameWidth, st.cfg.FrameHeight), 0, 0, gocv.InterpolationLinear)
		data := resized.ToBytes()
		resized.Close()
		return models.Frame{Data: data, Width: st.cfg.FrameWidth, Height: st.cfg.FrameHeight}, true
	}

	return models.Frame{
		Data:   st.img.ToBytes(),
		Width:  st.cfg.FrameWidth,
		Height: st.cfg.FrameHeight,
	}, true
}

func (st *openCVStream) Close() {
	st.img.Close()
	st.cap.Close()
}

// OpenCVEncoder writes frames into an MJPG AVI via OpenCV VideoWriter.
type OpenCVEncoder struct{}

func NewOpenCVEncoder() *OpenCVEncoder {
	return &OpenCVEncoder{}
}

func (e *OpenCVEncoder) Encode(frames []models.Frame, fps float64, path string) error {
	if len(frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}

	width, height := frames[0].Width, frames[0].Height
	writer, err := gocv.VideoWriterFile(path, "MJPG", fps, width, height, true)
	if err != nil {
		return fmt.Errorf("create video writer: %w", err)
	}
	defer writer.Close()

	written := 0
	for _, frame := range frames {
		mat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, frame.Data)
		if err != nil {
			log.Debug().Err(err).Msg("Skipping malformed frame")
			continue
		}
		if err := writer.Write(mat); err != nil {
			mat.Close()
			return fmt.Errorf("write frame: %w", err)
		}
		mat.Close()
		written++
	}

	log.Info().
		Str("path", path).
		Int("frames", written).
		Float64("fps", fps).
		Msg("Encoded video artifact")
	return nil
}

// FFmpegTranscoder converts raw AVI artifacts to faststart MP4.
type FFmpegTranscoder struct {
	timeout time.Duration
}

func NewFFmpegTranscoder(timeout time.Duration) *FFmpegTranscoder {
	return &FFmpegTranscoder{timeout: timeout}
}

func (t *FFmpegTranscoder) Transcode(inputPath, outputPath string) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-movflags", "+faststart",
		"-loglevel", "warning",
		outputPath,
	}

	cmd := exec.Command("ffmpeg", args...)
	done := make(chan error, 1)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("ffmpeg: %w", err)
		}
	case <-time.After(t.timeout):
		cmd.Process.Kill()
		return fmt.Errorf("ffmpeg timed out after %s", t.timeout)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("transcode produced no output: %w", err)
	}
	log.Info().Str("path", outputPath).Msg("Video converted to MP4")
	return nil
}
