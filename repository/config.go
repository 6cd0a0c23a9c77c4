// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package repository

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Config holds repository behavior settings. It is pure data; the writer
// and layout consume it.
type Config struct {
	// BasePath is the root directory of the archive tree.
	BasePath string

	// LayoutVersion selects the naming scheme: 1 (legacy flat) or
	// 2 (nested by year, current).
	LayoutVersion int

	// EnableManifest appends a one-line audit record per write to the
	// entity's manifest.log.
	EnableManifest bool

	// CreateDirectories creates missing parent directories on write.
	CreateDirectories bool

	// AtomicWrites publishes files via temp-file-then-rename. Disabling it
	// forfeits the guarantee that readers never observe partial files.
	AtomicWrites bool

	// ComputeHashes records an algorithm-tagged content hash in metadata.
	ComputeHashes bool

	// HashAlgorithm names the digest used when ComputeHashes is set.
	// Supported: "blake2b" (default), "sha256".
	HashAlgorithm string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBasePath sets the archive root directory.
func WithBasePath(path string) ConfigOption {
	return func(c *Config) {
		c.BasePath = path
	}
}

// WithLayoutVersion selects the path layout version.
func WithLayoutVersion(version int) ConfigOption {
	return func(c *Config) {
		c.LayoutVersion = version
	}
}

// WithManifest toggles the per-entity manifest audit log.
func WithManifest(enabled bool) ConfigOption {
	return func(c *Config) {
		c.EnableManifest = enabled
	}
}

// WithCreateDirectories toggles creation of missing parent directories.
func WithCreateDirectories(enabled bool) ConfigOption {
	return func(c *Config) {
		c.CreateDirectories = enabled
	}
}

// WithAtomicWrites toggles the temp-file-then-rename write protocol.
func WithAtomicWrites(enabled bool) ConfigOption {
	return func(c *Config) {
		c.AtomicWrites = enabled
	}
}

// WithComputeHashes toggles content hashing.
func WithComputeHashes(enabled bool) ConfigOption {
	return func(c *Config) {
		c.ComputeHashes = enabled
	}
}

// WithHashAlgorithm sets the content digest algorithm.
func WithHashAlgorithm(name string) ConfigOption {
	return func(c *Config) {
		c.HashAlgorithm = name
	}
}

// DefaultConfig returns a Config with the current layout and safe write
// behavior. BasePath must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		LayoutVersion:     LayoutVersionCurrent,
		EnableManifest:    false,
		CreateDirectories: true,
		AtomicWrites:      true,
		ComputeHashes:     true,
		HashAlgorithm:     HashAlgorithmDefault,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options. This is the recommended way to create a Config.
//
// Example:
//
//	cfg := repository.NewConfig(
//	    repository.WithBasePath("/srv/archive"),
//	    repository.WithManifest(true),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is valid and complete.
func (c *Config) Validate() error {
	if c.BasePath == "" {
		return errors.New("repository config: BasePath is required")
	}
	if c.LayoutVersion != LayoutVersionFlat && c.LayoutVersion != LayoutVersionCurrent {
		return fmt.Errorf("repository config: unsupported layout version %d", c.LayoutVersion)
	}
	if c.ComputeHashes && !SupportedHashAlgorithm(c.HashAlgorithm) {
		return fmt.Errorf("repository config: unsupported hash algorithm %q", c.HashAlgorithm)
	}
	return nil
}

// AbsBase returns the cleaned absolute base path.
func (c *Config) AbsBase() (string, error) {
	return filepath.Abs(c.BasePath)
}
