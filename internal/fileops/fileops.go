// Package fileops implements the read-modify-write and delete primitives every
// scaffolding stage is built on. Single-file helpers return errors; batch
// helpers record per-item failures in a warnings.Log instead of stopping.
package fileops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/log"
	"github.com/jakoblorz/create-stack/internal/filesystem"
	"github.com/jakoblorz/create-stack/internal/output"
	"github.com/jakoblorz/create-stack/internal/warnings"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const defaultPerm fs.FileMode = 0644

// maxConcurrency bounds the number of in-flight filesystem operations of one batch
const maxConcurrency = 16

// Ops bundles the filesystem and logger used by the mutation helpers.
type Ops struct {
	fs     filesystem.FileSystem
	logger *log.Logger
}

// New creates Ops over fs. A nil logger discards output.
func New(fs filesystem.FileSystem, logger *log.Logger) *Ops {
	return &Ops{fs: fs, logger: output.OrDiscard(logger)}
}

// FS returns the underlying filesystem.
func (o *Ops) FS() filesystem.FileSystem {
	return o.fs
}

// Logger returns the logger the helpers write to.
func (o *Ops) Logger() *log.Logger {
	return o.logger
}

// IsNotExist reports whether err means the path does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// UpdateText reads path, applies fn and writes the result back when it
// changed. A missing file is reported as an error satisfying IsNotExist.
func (o *Ops) UpdateText(path string, fn func(string) (string, error)) (bool, error) {
	return o.update(path, func(data []byte) ([]byte, error) {
		out, err := fn(string(data))
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	})
}

// jsonStyle matches the two-space layout npm writes. Short arrays stay on one
// line.
var jsonStyle = &pretty.Options{Width: 80, Indent: "  ", SortKeys: false}

// UpdateJSON is UpdateText for JSON documents. Both the input and the result
// must be valid JSON; fn is expected to edit with sjson so key order
// survives. Changed documents are re-indented with jsonStyle.
func (o *Ops) UpdateJSON(path string, fn func([]byte) ([]byte, error)) (bool, error) {
	return o.update(path, func(data []byte) ([]byte, error) {
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("invalid JSON")
		}
		out, err := fn(data)
		if err != nil {
			return nil, err
		}
		if !gjson.ValidBytes(out) {
			return nil, fmt.Errorf("edit produced invalid JSON")
		}
		if bytes.Equal(data, out) {
			return data, nil
		}
		return pretty.PrettyOptions(out, jsonStyle), nil
	})
}

// UpdateYAML decodes path into a yaml.Node, applies fn to the document node
// and re-encodes it with two-space indentation. Comments are preserved.
func (o *Ops) UpdateYAML(path string, fn func(doc *yaml.Node) error) (bool, error) {
	return o.update(path, func(data []byte) ([]byte, error) {
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
			return data, nil
		}

		if err := fn(&doc); err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode YAML: %w", err)
		}
		return buf.Bytes(), nil
	})
}

func (o *Ops) update(path string, fn func([]byte) ([]byte, error)) (bool, error) {
	data, err := o.fs.ReadFile(path)
	if err != nil {
		return false, err
	}

	out, err := fn(data)
	if err != nil {
		return false, err
	}
	if bytes.Equal(data, out) {
		return false, nil
	}

	if err := o.fs.WriteFile(path, out, o.permOf(path)); err != nil {
		return false, fmt.Errorf("failed to write file: %w", err)
	}

	o.logDiff(path, string(data), string(out))
	return true, nil
}

// WriteText creates or replaces path, creating parent directories.
func (o *Ops) WriteText(path, content string) error {
	if err := o.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := o.fs.WriteFile(path, []byte(content), o.permOf(path)); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Copy copies the file at src to dst byte for byte.
func (o *Ops) Copy(src, dst string) error {
	data, err := o.fs.ReadFile(src)
	if err != nil {
		return err
	}
	if err := o.fs.WriteFile(dst, data, o.permOf(src)); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	o.logger.Debug("copied file", "from", src, "to", dst)
	return nil
}

// Delete removes path and everything below it. It returns false without an
// error when path does not exist.
func (o *Ops) Delete(path string) (bool, error) {
	if err := o.fs.RemoveAll(path); err != nil {
		if IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	o.logger.Debug("deleted", "path", path)
	return true, nil
}

// DeleteAll deletes paths concurrently. Missing paths are skipped silently;
// every other failure is recorded in warns under scope. It returns the paths
// that were actually deleted, in input order.
func (o *Ops) DeleteAll(ctx context.Context, warns *warnings.Log, scope string, paths []string) []string {
	deleted := make([]bool, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			ok, err := o.Delete(path)
			if err != nil {
				warns.AddError(scope, path, fmt.Errorf("failed to delete: %w", err))
				return nil
			}
			deleted[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	var out []string
	for i, ok := range deleted {
		if ok {
			out = append(out, paths[i])
		}
	}
	return out
}

func (o *Ops) permOf(path string) fs.FileMode {
	info, err := o.fs.Stat(path)
	if err != nil || info.IsDir() || info.Mode().Perm() == 0 {
		return defaultPerm
	}
	return info.Mode().Perm()
}

func (o *Ops) logDiff(path, before, after string) {
	if o.logger.GetLevel() > log.DebugLevel {
		return
	}
	name := filepath.Base(path)
	o.logger.Debug("updated file", "path", path)
	o.logger.Print(udiff.Unified("a/"+name, "b/"+name, before, after))
}

// EscapeKey escapes a single object key for use in a gjson/sjson path, so
// keys like "./server" or "@scope/pkg" address one member.
func EscapeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
