package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"videofetch/pkg/logger"

	"go.uber.org/zap"
)

// YtDlp runs the yt-dlp binary as a subprocess.
type YtDlp struct {
	binary string

	probeOnce sync.Once
	available bool
}

// NewYtDlp creates an adapter for the given binary name or path.
func NewYtDlp(binary string) *YtDlp {
	return &YtDlp{binary: binary}
}

// Available reports whether the binary can be found. Probed once.
func (y *YtDlp) Available() bool {
	y.probeOnce.Do(func() {
		if _, err := exec.LookPath(y.binary); err != nil {
			logger.LogWarn("Extraction engine not found on PATH",
				zap.String("binary", y.binary), zap.Error(err))
			return
		}
		y.available = true
	})
	return y.available
}

// ExtractMetadata fetches video metadata without downloading.
func (y *YtDlp) ExtractMetadata(ctx context.Context, url string, opts Options) (*RawInfo, error) {
	args := buildArgs(url, opts, false)
	output, err := y.run(ctx, args)
	if err != nil {
		return nil, err
	}
	return decodeInfo(output)
}

// ExtractAndDownload downloads the requested format into the output
// template location and returns the engine-reported path plus metadata.
func (y *YtDlp) ExtractAndDownload(ctx context.Context, url string, opts Options) (string, *RawInfo, error) {
	args := buildArgs(url, opts, true)
	output, err := y.run(ctx, args)
	if err != nil {
		return "", nil, err
	}
	info, err := decodeInfo(output)
	if err != nil {
		return "", nil, err
	}
	return info.PreparedFilename(), info, nil
}

func (y *YtDlp) run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, y.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp: %w", ctx.Err())
		}
		return nil, fmt.Errorf("yt-dlp: %s: %w", stderrSummary(stderr.String()), err)
	}
	return stdout.Bytes(), nil
}

func decodeInfo(output []byte) (*RawInfo, error) {
	var info RawInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("yt-dlp: decode output: %w", err)
	}
	return &info, nil
}

// buildArgs assembles the yt-dlp argument list for one extraction call.
// Metadata calls use -J (simulate + dump JSON); downloads add
// --no-simulate so the same invocation downloads and prints metadata.
func buildArgs(url string, opts Options, download bool) []string {
	args := []string{"-J", "--no-warnings"}

	if download {
		args = append(args, "--no-simulate", "--no-progress")
		if opts.Format != "" {
			args = append(args, "-f", opts.Format)
		}
		if opts.OutputTemplate != "" {
			args = append(args, "-o", opts.OutputTemplate)
		}
		if opts.ExtractAudio {
			args = append(args, "-x",
				"--audio-format", opts.AudioFormat,
				"--audio-quality", opts.AudioQuality)
		}
	}

	if opts.NoPlaylist {
		args = append(args, "--no-playlist")
	}
	if opts.SocketTimeout > 0 {
		args = append(args, "--socket-timeout", strconv.Itoa(opts.SocketTimeout))
	}
	if opts.GeoBypass {
		args = append(args, "--geo-bypass")
		if opts.GeoBypassCountry != "" {
			args = append(args, "--geo-bypass-country", opts.GeoBypassCountry)
		}
	}
	if opts.PlayerClient != "" {
		args = append(args, "--extractor-args", "youtube:player_client="+opts.PlayerClient)
	}
	if opts.UserAgent != "" {
		args = append(args, "--user-agent", opts.UserAgent)
	}
	for _, h := range opts.Headers {
		args = append(args, "--add-header", h.Key+":"+h.Value)
	}
	if opts.CookiesFile != "" {
		args = append(args, "--cookies", opts.CookiesFile)
	}

	args = append(args, url)
	return args
}

// stderrSummary reduces yt-dlp stderr to its last ERROR line, or the last
// non-empty line when no ERROR line exists. The text is later matched
// against auth-failure markers, so it must survive intact.
func stderrSummary(stderr string) string {
	var lastError, lastNonEmpty string
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "ERROR") {
			lastError = line
		}
		lastNonEmpty = line
	}
	if lastError != "" {
		return lastError
	}
	if lastNonEmpty != "" {
		return lastNonEmpty
	}
	return "no error output"
}
