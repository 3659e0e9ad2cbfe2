package modules

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Commands holds the configured command line for each pipeline module.
// A value may carry an interpreter prefix, e.g.
// "python3 modules/tracklist_generator/cli.py".
type Commands struct {
	Tracklist   string
	YouTube     string
	VideoEditor string
	Thumbnail   string
}

type Client struct {
	tracklist   []string
	youtube     []string
	videoEditor []string
	thumbnail   []string
	runner      CommandRunner
}

func NewClient(commands Commands, runner CommandRunner) (*Client, error) {
	c := &Client{runner: runner}
	for _, m := range []struct {
		name string
		raw  string
		dst  *[]string
	}{
		{"tracklist", commands.Tracklist, &c.tracklist},
		{"youtube", commands.YouTube, &c.youtube},
		{"video editor", commands.VideoEditor, &c.videoEditor},
		{"thumbnail", commands.Thumbnail, &c.thumbnail},
	} {
		argv := strings.Fields(m.raw)
		if len(argv) == 0 {
			return nil, fmt.Errorf("%s module command is empty", m.name)
		}
		*m.dst = argv
	}
	return c, nil
}

// GenerateTracklist identifies the tracks in the mix video and writes the
// tracklist JSON artifact to outputPath.
func (c *Client) GenerateTracklist(ctx context.Context, videoPath, outputPath string) error {
	argv := append(append([]string{}, c.tracklist...), "identify", videoPath, "--output", outputPath)
	_, err := c.runner.Run(ctx, argv)
	return err
}

// CheckTracklist checks every tracklist entry for YouTube compatibility and
// writes the compatibility JSON artifact to outputPath.
func (c *Client) CheckTracklist(ctx context.Context, tracklistPath, outputPath string) error {
	argv := append(append([]string{}, c.youtube...), "check-tracklist", tracklistPath, "--output", outputPath)
	_, err := c.runner.Run(ctx, argv)
	return err
}

// EditVideo re-encodes the video guided by the compatibility artifact and
// writes the edited file to outputPath.
func (c *Client) EditVideo(ctx context.Context, videoPath, compatibilityPath, outputPath string) error {
	argv := append(append([]string{}, c.videoEditor...), "edit-from-tracklist", videoPath, compatibilityPath, "--output", outputPath)
	_, err := c.runner.Run(ctx, argv)
	return err
}

// GenerateThumbnails extracts count thumbnails into outputDir and returns
// the manifest the module emits on stdout.
func (c *Client) GenerateThumbnails(ctx context.Context, videoPath, compatibilityPath, outputDir string, count int) (*ThumbnailManifest, error) {
	argv := append(append([]string{}, c.thumbnail...),
		"generate-from-tracklist", videoPath, compatibilityPath,
		"--output", outputDir, "--count", strconv.Itoa(count))
	stdout, err := c.runner.Run(ctx, argv)
	if err != nil {
		return nil, err
	}
	return ParseThumbnailManifest(stdout)
}
