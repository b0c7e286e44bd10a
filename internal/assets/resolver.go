package assets

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"resumechat/internal/config"
	"resumechat/internal/core"
)

// Resolver maps request paths to files under a fixed root
type Resolver struct {
	root      string
	cleanURLs bool
	mimeTypes map[string]string
}

// Asset is an opened regular file ready to be streamed
type Asset struct {
	File        *os.File
	Path        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Close releases the underlying file
func (a *Asset) Close() error {
	return a.File.Close()
}

// NewResolver creates a resolver rooted at settings.Root.
// The root itself may be a symlink; it is resolved once here.
func NewResolver(settings config.StaticSettings) (*Resolver, error) {
	abs, err := filepath.Abs(settings.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve static root: %w", err)
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve static root: %w", err)
	}

	mimeTypes := make(map[string]string, len(settings.MimeTypes))
	for ext, contentType := range settings.MimeTypes {
		mimeTypes[strings.ToLower(ext)] = contentType
	}

	return &Resolver{
		root:      root,
		cleanURLs: settings.CleanURLs,
		mimeTypes: mimeTypes,
	}, nil
}

// Root returns the absolute static root
func (r *Resolver) Root() string {
	return r.root
}

// Resolve turns an escaped request path into an absolute file path under the root.
// Errors are *core.ChatError: 400 for a malformed escape, 403 for an escape
// from the root, 404 for hidden path segments.
func (r *Resolver) Resolve(rawPath string) (string, error) {
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		return "", core.ErrInvalidRequest(core.MsgBadRequest, err)
	}

	rel := path.Clean(strings.TrimLeft(decoded, "/"))
	if rel == "." || rel == ".." {
		rel = ""
	}

	if r.cleanURLs {
		if rel == "" {
			rel = core.DefaultDocument
		}
		if path.Ext(rel) == "" {
			rel += core.HTMLExtension
		}
	} else if rel == "" {
		rel = core.DefaultDocumentHTML
	}

	full := filepath.Join(r.root, filepath.FromSlash(rel))
	if !r.contains(full) {
		return "", core.ErrForbidden(decoded)
	}
	if hasHiddenSegment(rel) {
		return "", core.ErrNotFound(fmt.Errorf("hidden path %q", rel))
	}
	return full, nil
}

// Open resolves rawPath and opens the regular file behind it
func (r *Resolver) Open(rawPath string) (*Asset, error) {
	full, err := r.Resolve(rawPath)
	if err != nil {
		return nil, err
	}

	target, err := filepath.EvalSymlinks(full)
	if err != nil {
		return nil, core.ErrNotFound(err)
	}
	if !r.contains(target) {
		return nil, core.ErrForbidden(rawPath)
	}

	file, err := os.Open(target) //nolint:gosec // G304: target is confined to the static root above
	if err != nil {
		return nil, core.ErrNotFound(err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, core.ErrNotFound(err)
	}
	if !info.Mode().IsRegular() {
		_ = file.Close()
		return nil, core.ErrNotFound(fmt.Errorf("%s is not a regular file", full))
	}

	return &Asset{
		File:        file,
		Path:        full,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: r.ContentType(full),
	}, nil
}

func (r *Resolver) contains(p string) bool {
	rel, err := filepath.Rel(r.root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// hasHiddenSegment reports whether any segment of a cleaned relative path starts with a dot
func hasHiddenSegment(rel string) bool {
	for _, segment := range strings.Split(rel, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
	}
	return false
}
