// Package artifact moves run artifacts between the launcher host and
// presigned object-storage URLs: upload a finished checkpoint, or download
// a dataset archive before a run.
package artifact

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/szhaofelicia/Basketball-GAN/internal/ctxlog"
	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	Action     string `tctl:"action"`
	SourcePath string `tctl:"source_path"`
	URL        string `tctl:"url"`
	DestPath   string `tctl:"dest_path"`
}

// Deps declares the shared HTTP client resource.
type Deps struct {
	Client *http.Client `tctl:"client"`
}

// OnRunArtifact is the handler for the 'artifact' launcher's on_run event.
func OnRunArtifact(ctx context.Context, deps *Deps, input *Input) (cty.Value, error) {
	client := deps.Client
	if client == nil {
		return cty.NilVal, fmt.Errorf("artifact launcher requires an http_client resource in its 'uses' block")
	}

	switch strings.ToLower(input.Action) {
	case "upload":
		return handleUpload(ctx, client, input)
	case "download":
		return handleDownload(ctx, client, input)
	default:
		return cty.NilVal, fmt.Errorf("unknown artifact action: '%s'", input.Action)
	}
}

// handleUpload PUTs a local file to a presigned URL.
func handleUpload(ctx context.Context, client *http.Client, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("action", "upload")

	file, err := os.Open(input.SourcePath)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to open source file '%s': %w", input.SourcePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to get file stats for '%s': %w", input.SourcePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, input.URL, file)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to create upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(input.SourcePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading artifact", "source", input.SourcePath, "size", stat.Size(), "contentType", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return cty.NilVal, fmt.Errorf("artifact upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded artifact", "status", resp.Status)
	return cty.ObjectVal(map[string]cty.Value{
		"success": cty.BoolVal(true),
		"status":  cty.StringVal(resp.Status),
		"path":    cty.StringVal(input.SourcePath),
	}), nil
}

// handleDownload GETs a presigned URL into a local file.
func handleDownload(ctx context.Context, client *http.Client, input *Input) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("action", "download")

	if input.DestPath == "" {
		return cty.NilVal, fmt.Errorf("artifact download requires dest_path")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to execute download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return cty.NilVal, fmt.Errorf("artifact download failed with status: %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(input.DestPath), 0o755); err != nil {
		return cty.NilVal, fmt.Errorf("failed to create destination directory: %w", err)
	}
	out, err := os.Create(input.DestPath)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to create destination file '%s': %w", input.DestPath, err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to write artifact to '%s': %w", input.DestPath, err)
	}

	logger.Info("Successfully downloaded artifact", "dest", input.DestPath, "size", written)
	return cty.ObjectVal(map[string]cty.Value{
		"success": cty.BoolVal(true),
		"status":  cty.StringVal(resp.Status),
		"path":    cty.StringVal(input.DestPath),
	}), nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterLauncher("OnRunArtifact", &registry.RegisteredLauncher{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunArtifact,
	})
}
