package testutil

import "github.com/szhaofelicia/Basketball-GAN/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a single launcher or asset handler.
type SimpleModule struct {
	LauncherName string
	Launcher     *registry.RegisteredLauncher

	AssetName string
	Asset     *registry.RegisteredAssetHandler
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.LauncherName != "" && m.Launcher != nil {
		r.RegisterLauncher(m.LauncherName, m.Launcher)
	}
	if m.AssetName != "" && m.Asset != nil {
		r.RegisterAssetHandler(m.AssetName, m.Asset)
	}
}
