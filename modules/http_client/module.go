// Package http_client provides a shared *http.Client as a plan resource,
// reused by launchers that talk to artifact storage.
package http_client

import (
	"context"
	"net/http"
	"reflect"
	"time"

	"github.com/szhaofelicia/Basketball-GAN/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for creating an http_client resource.
type Input struct {
	Timeout string `tctl:"timeout"`
}

// CreateHTTPClient is the 'create' handler for the asset. It returns a live
// *http.Client that is shared by every launch that uses the resource.
func CreateHTTPClient(ctx context.Context, input *Input) (*http.Client, error) {
	timeout, err := time.ParseDuration(input.Timeout)
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return client, nil
}

// DestroyHTTPClient is the 'destroy' handler; it releases idle connections.
func DestroyHTTPClient(client *http.Client) error {
	client.CloseIdleConnections()
	return nil
}

// Register registers the asset handlers and interface with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAssetHandler("CreateHTTPClient", &registry.RegisteredAssetHandler{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		CreateFn:  CreateHTTPClient,
	})
	r.RegisterAssetHandler("DestroyHTTPClient", &registry.RegisteredAssetHandler{
		DestroyFn: DestroyHTTPClient,
	})
	r.RegisterAssetInterface("http_client", reflect.TypeOf((*http.Client)(nil)))
}
