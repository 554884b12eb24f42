// Copyright 2026 Poiesic Systems
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


package hobbyfind

import (
	"log/slog"

	"github.com/poiesic/hobbyfind/ai"
	"github.com/poiesic/hobbyfind/ai/openai"
	"github.com/poiesic/hobbyfind/directory"
	"github.com/poiesic/hobbyfind/index"
	"github.com/poiesic/hobbyfind/pipeline"
	"github.com/poiesic/hobbyfind/storage"
	"github.com/poiesic/hobbyfind/storage/badger"
)

// Wizard owns the storage backend, the vector index, and the AI provider
// for one hobby-search deployment. It is the assembly point: everything
// below it takes its collaborators as arguments.
type Wizard struct {
	backend  *badger.Backend
	repo     storage.EntryRepository
	idx      *index.Index
	dir      directory.Directory
	provider ai.Provider
	logger   *slog.Logger
}

// WizardOption configures a Wizard.
type WizardOption func(*wizardOptions)

type wizardOptions struct {
	aiConfig *ai.Config
	inMemory bool
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) WizardOption {
	return func(o *wizardOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithInMemoryStorage keeps the index in memory instead of on disk.
// Useful for tests and throwaway sessions.
func WithInMemoryStorage() WizardOption {
	return func(o *wizardOptions) {
		o.inMemory = true
	}
}

// NewWizard opens the storage backend at filePath and assembles the index
// and AI provider around it. The directory is the authoritative source of
// user records; the wizard never modifies it.
func NewWizard(filePath string, dir directory.Directory, opts ...WizardOption) (*Wizard, error) {
	if dir == nil {
		return nil, index.ErrDirectoryRequired
	}

	options := &wizardOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	repo, err := badger.NewEntryRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, err
	}

	idx, err := index.New(repo, provider.Embedder())
	if err != nil {
		provider.Close()
		repo.Close()
		backend.Close()
		return nil, err
	}

	return &Wizard{
		backend:  backend,
		repo:     repo,
		idx:      idx,
		dir:      dir,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Index returns the vector index.
func (w *Wizard) Index() *index.Index {
	return w.idx
}

// Directory returns the authoritative user directory.
func (w *Wizard) Directory() directory.Directory {
	return w.dir
}

// EntryRepository returns the underlying vector entry store.
func (w *Wizard) EntryRepository() storage.EntryRepository {
	return w.repo
}

// NewPipeline builds a query pipeline over the wizard's index, directory,
// and provider.
func (w *Wizard) NewPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return pipeline.New(w.idx, w.dir, w.provider, opts...)
}

// Close releases the provider, the repository, and the backend, in that
// order.
func (w *Wizard) Close() error {
	if err := w.provider.Close(); err != nil {
		w.logger.Error("error closing AI provider", "err", err)
	}
	if err := w.repo.Close(); err != nil {
		w.logger.Error("error closing entry repository", "err", err)
		return err
	}
	if err := w.backend.Close(); err != nil {
		w.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
