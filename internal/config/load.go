package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/release-train/internal/messages"
)

// Workspace config file names probed at the repository root, in order.
var workspaceFileNames = []string{"release-train.toml", ".release-train.toml"}

// UserFileName is the per-user defaults file looked up in the home directory.
const UserFileName = ".release-train.toml"

// File is the on-disk shape of a configuration file: workspace-wide defaults
// plus per-package override tables.
type File struct {
	Workspace *Config            `toml:"workspace"`
	Package   map[string]*Config `toml:"package"`
}

// Args carries command-line overrides into config resolution.
type Args struct {
	// CustomConfig is an explicit config file path, highest-priority file.
	CustomConfig string
	// Isolated skips the implicit user and workspace files.
	Isolated    bool
	AllowBranch []string
	NoVerify    bool
	Registry    string
	Target      string
}

// overlay converts the args into a Config layer applied after all files.
func (a *Args) overlay() *Config {
	if a == nil {
		return nil
	}
	over := &Config{}
	if len(a.AllowBranch) > 0 {
		over.AllowBranch = a.AllowBranch
	}
	if a.NoVerify {
		verify := false
		over.Verify = &verify
	}
	if a.Registry != "" {
		over.Registry = &a.Registry
	}
	if a.Target != "" {
		over.Target = &a.Target
	}
	return over
}

// Resolver resolves effective per-package configuration from the layered
// config files. Construct it once per run with NewResolver.
type Resolver struct {
	layers []*File
	args   *Args
}

// NewResolverFrom builds a Resolver over already-parsed layers, lowest
// priority first. Used by callers that supply config directly.
func NewResolverFrom(args *Args, layers ...*File) *Resolver {
	if args == nil {
		args = &Args{}
	}
	return &Resolver{layers: layers, args: args}
}

// NewResolver loads every applicable config file for the workspace rooted at
// root. Missing implicit files are skipped; an explicit --config file must
// exist.
func NewResolver(args *Args, root string) (*Resolver, error) {
	if args == nil {
		args = &Args{}
	}
	resolver := &Resolver{args: args}

	if !args.Isolated {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf(messages.ConfigHomeDirFmt, err)
		}
		if file, err := loadOptionalFile(filepath.Join(home, UserFileName)); err != nil {
			return nil, err
		} else if file != nil {
			resolver.layers = append(resolver.layers, file)
		}

		for _, name := range workspaceFileNames {
			file, err := loadOptionalFile(filepath.Join(root, name))
			if err != nil {
				return nil, err
			}
			if file != nil {
				resolver.layers = append(resolver.layers, file)
				break
			}
		}
	}

	if args.CustomConfig != "" {
		file, err := loadFile(args.CustomConfig)
		if err != nil {
			return nil, err
		}
		resolver.layers = append(resolver.layers, file)
	}

	return resolver, nil
}

// Workspace returns the merged workspace-level configuration.
func (r *Resolver) Workspace() Config {
	merged := Config{}
	for _, layer := range r.layers {
		merged.Merge(layer.Workspace)
	}
	merged.Merge(r.args.overlay())
	return merged
}

// Package returns the effective configuration for the named package:
// workspace defaults overlaid with the package's own table and CLI overrides.
func (r *Resolver) Package(name string) Config {
	merged := Config{}
	for _, layer := range r.layers {
		merged.Merge(layer.Workspace)
		if layer.Package != nil {
			merged.Merge(layer.Package[name])
		}
	}
	merged.Merge(r.args.overlay())
	return merged
}

func loadOptionalFile(path string) (*File, error) {
	file, err := loadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return file, nil
}

func loadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf(messages.ConfigMissingFileFmt, path, err)
		}
		return nil, fmt.Errorf(messages.ConfigReadFileFmt, path, err)
	}
	return ParseFile(data, path)
}

// ParseFile decodes and validates config file contents. The path is used in
// error context only.
func ParseFile(data []byte, path string) (*File, error) {
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	var file File
	if err := decoder.Decode(&file); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf(messages.ConfigUnknownKeysFmt, path, strict.String())
		}
		return nil, fmt.Errorf(messages.ConfigInvalidFileFmt, path, err)
	}
	if err := validateFile(&file, path); err != nil {
		return nil, err
	}
	return &file, nil
}
