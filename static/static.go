// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package static serves the fixed documents and images of the server.
//
// Assets are embedded into the binary. An optional directory may be
// layered on top to override any of them without rebuilding.
package static

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/afero"
	"github.com/valyala/fasttemplate"
)

//go:embed assets
var embedded embed.FS

// Names of the known assets.
const (
	Index    = "index.html"
	Moby     = "moby.html"
	UTF8     = "utf8.html"
	JSON     = "json.json"
	Robots   = "robots.txt"
	Humans   = "humans.txt"
	AIPlugin = "ai-plugin.json"
	NotFound = "not_found.html"
	Favicon  = "favicon.ico"
	SVG      = "images/svg_logo.svg"
	PNG      = "images/pig_icon.png"
	JPEG     = "images/jackal.jpg"
	WEBP     = "images/wolf_1.webp"
)

const (
	contentTypeHtml = "text/html; charset=utf-8"
	contentTypeText = "text/plain"
	contentTypeJson = "application/json"
)

type entry struct {
	contentType string
	template    bool
}

var catalog = map[string]entry{
	Index:    {contentType: contentTypeHtml, template: true},
	Moby:     {contentType: contentTypeHtml, template: true},
	UTF8:     {contentType: contentTypeHtml},
	JSON:     {contentType: contentTypeJson},
	Robots:   {contentType: contentTypeText},
	Humans:   {contentType: contentTypeText},
	AIPlugin: {contentType: contentTypeJson},
	NotFound: {contentType: contentTypeHtml},
	Favicon:  {contentType: "image/vnd.microsoft.icon"},
	SVG:      {contentType: "image/svg+xml"},
	PNG:      {contentType: "image/png"},
	JPEG:     {contentType: "image/jpeg"},
	WEBP:     {contentType: "image/webp"},
}

// ContentTypeOf returns the media type the named asset is served with,
// or an empty string for unknown names.
func ContentTypeOf(name string) string {
	return catalog[name].contentType
}

// Asset is the content of a single static document or image.
type Asset struct {
	Type string
	Body []byte
}

// ContentType returns the media type of the asset.
func (a *Asset) ContentType() string {
	return a.Type
}

// WriteTo implements the [io.WriterTo] interface.
func (a *Asset) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, bytes.NewReader(a.Body))
}

// ErrNotFound is wrapped by every [NotFoundError].
var ErrNotFound = errors.New("static: asset not found")

// NotFoundError is returned when an asset is unknown or its file is missing.
type NotFoundError struct {
	Name string
}

// Error implements the [error] interface.
func (e NotFoundError) Error() string {
	return fmt.Sprintf("static: asset not found: %s", e.Name)
}

// Unwrap implements the implicit interface used by errors.Is and errors.As.
func (e NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Option configures a [Store].
type Option func(*Store)

// Base replaces the embedded assets with fsys.
func Base(fsys afero.Fs) Option {
	return func(s *Store) {
		s.base = fsys
	}
}

// Overlay layers fsys on top of the base assets. Files found in
// fsys take precedence over the base.
func Overlay(fsys afero.Fs) Option {
	return func(s *Store) {
		s.overlays = append(s.overlays, fsys)
	}
}

// Dir overlays the assets found in the OS directory dir.
// An empty dir is ignored.
func Dir(dir string) Option {
	return func(s *Store) {
		if dir == "" {
			return
		}
		Overlay(afero.NewBasePathFs(afero.NewOsFs(), dir))(s)
	}
}

// Prefix sets the value of the {{prefix}} placeholder in HTML templates.
func Prefix(p string) Option {
	return func(s *Store) {
		s.vars["prefix"] = p
	}
}

// Store looks up static assets. It is safe for concurrent use.
type Store struct {
	base     afero.Fs
	overlays []afero.Fs
	vars     map[string]any

	fs afero.Fs
}

// NewStore returns a [Store] serving the embedded assets.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{
		vars: map[string]any{
			"prefix": "",
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.base == nil {
		sub, err := fs.Sub(embedded, "assets")
		if err != nil {
			return nil, err
		}
		s.base = afero.FromIOFS{FS: sub}
	}

	fsys := s.base
	for _, overlay := range s.overlays {
		fsys = afero.NewCopyOnWriteFs(fsys, overlay)
	}
	s.fs = afero.NewReadOnlyFs(fsys)
	return s, nil
}

// Lookup returns the named asset. A [NotFoundError] is returned for
// unknown names and for known names whose file is missing.
func (s *Store) Lookup(name string) (*Asset, error) {
	e, ok := catalog[name]
	if !ok {
		return nil, NotFoundError{Name: name}
	}

	b, err := afero.ReadFile(s.fs, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NotFoundError{Name: name}
	}
	if err != nil {
		return nil, err
	}

	if e.template {
		b = []byte(fasttemplate.ExecuteStringStd(string(b), "{{", "}}", s.vars))
	}

	return &Asset{
		Type: e.contentType,
		Body: b,
	}, nil
}
