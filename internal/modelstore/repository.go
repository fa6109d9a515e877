// Package modelstore loads and saves class models. The on-disk format is
// chosen by file extension: Ecore XMI (.ecore, .xmi) or YAML (.yaml, .yml).
package modelstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/project-hoist/internal/fsutil"
	"github.com/mvp-joe/project-hoist/internal/model"
)

// ErrUnsupportedFormat is returned for model files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// RefactoredSuffix is inserted before the extension of refactored outputs.
const RefactoredSuffix = "-refactored"

// Repository reads and writes class models.
type Repository interface {
	// Load reads the model at path.
	Load(path string) (*model.ClassModel, error)

	// Save writes m to path using atomic write pattern.
	Save(m *model.ClassModel, path string) error
}

// Codec converts between a class model and one serialization format.
type Codec interface {
	Decode(r io.Reader) (*model.ClassModel, error)
	Encode(w io.Writer, m *model.ClassModel) error
}

// fileRepository implements Repository on the local filesystem.
type fileRepository struct {
	codecs map[string]Codec // keyed by lower-case extension
}

// New creates a Repository that understands Ecore XMI and YAML models.
func New() Repository {
	ecore := EcoreCodec{}
	yml := YAMLCodec{}
	return &fileRepository{
		codecs: map[string]Codec{
			".ecore": ecore,
			".xmi":   ecore,
			".yaml":  yml,
			".yml":   yml,
		},
	}
}

// CodecFor returns the codec registered for path's extension.
func (r *fileRepository) CodecFor(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	codec, ok := r.codecs[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return codec, nil
}

// Load reads and decodes the model at path.
func (r *fileRepository) Load(path string) (*model.ClassModel, error) {
	codec, err := r.CodecFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	m, err := codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", path, err)
	}
	return m, nil
}

// Save encodes m into a temp file next to path and renames it into place.
func (r *fileRepository) Save(m *model.ClassModel, path string) error {
	codec, err := r.CodecFor(path)
	if err != nil {
		return err
	}

	err = fsutil.WriteAtomic(path, func(w io.Writer) error {
		if err := codec.Encode(w, m); err != nil {
			return fmt.Errorf("failed to encode model: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save model %s: %w", path, err)
	}
	return nil
}

// RefactoredPath derives the output path for a refactored model:
// dir/name.ext becomes dir/name-refactored.ext.
func RefactoredPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + RefactoredSuffix + ext
}
