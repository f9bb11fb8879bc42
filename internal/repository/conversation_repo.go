package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"webchat-backend/internal/models"
)

const fileExt = ".json"

var errOutsideDir = errors.New("path escapes conversations directory")

// ConversationRepo stores one <id>.json file per conversation in a flat
// directory. The directory listing is the only index.
type ConversationRepo struct {
	dir           string
	skipMalformed bool
	log           zerolog.Logger
}

type ConversationRepoOption func(*ConversationRepo)

// WithSkipMalformed makes List drop unreadable files with a warning instead
// of failing the whole listing.
func WithSkipMalformed(skip bool) ConversationRepoOption {
	return func(r *ConversationRepo) { r.skipMalformed = skip }
}

func WithLogger(log zerolog.Logger) ConversationRepoOption {
	return func(r *ConversationRepo) { r.log = log }
}

func NewConversationRepo(dir string, opts ...ConversationRepoOption) *ConversationRepo {
	r := &ConversationRepo{dir: dir, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ConversationRepo) ensureDir() error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return &FilesystemError{Op: "mkdir", Path: r.dir, Err: err}
	}
	return nil
}

var errInvalidJSON = errors.New("invalid JSON")

// List returns the content of every stored file in directory-entry order.
// Any valid JSON value is returned as-is; only Save insists on an object.
func (r *ConversationRepo) List(ctx context.Context) ([]json.RawMessage, error) {
	if err := r.ensureDir(); err != nil {
		return nil, err
	}

	d, err := os.Open(r.dir)
	if err != nil {
		return nil, &FilesystemError{Op: "open", Path: r.dir, Err: err}
	}
	// ReadDir on the handle keeps the order the OS yields; os.ReadDir sorts.
	entries, err := d.ReadDir(-1)
	d.Close()
	if err != nil {
		return nil, &FilesystemError{Op: "readdir", Path: r.dir, Err: err}
	}

	conversations := make([]json.RawMessage, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		c, err := r.readFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			if r.skipMalformed {
				r.log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable conversation file")
				continue
			}
			return nil, err
		}
		conversations = append(conversations, c)
	}

	return conversations, nil
}

func (r *ConversationRepo) readFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FilesystemError{Op: "read", Path: path, Err: err}
	}
	if !json.Valid(data) {
		return nil, &ParseError{Path: path, Err: errInvalidJSON}
	}
	return json.RawMessage(data), nil
}

// Save writes c to <stem>.json, replacing any previous file for the same id.
func (r *ConversationRepo) Save(ctx context.Context, c models.Conversation) error {
	if err := r.ensureDir(); err != nil {
		return err
	}

	path, err := r.pathFor(c.FileStem())
	if err != nil {
		return err
	}

	data, err := c.MarshalPretty()
	if err != nil {
		return &FilesystemError{Op: "encode", Path: path, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &FilesystemError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// pathFor joins the stem into the directory without escaping or validating
// it, refusing only results that land outside the directory.
func (r *ConversationRepo) pathFor(stem string) (string, error) {
	path := filepath.Join(r.dir, stem+fileExt)

	base, err := filepath.Abs(r.dir)
	if err != nil {
		return "", &FilesystemError{Op: "resolve", Path: r.dir, Err: err}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &FilesystemError{Op: "resolve", Path: path, Err: err}
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &FilesystemError{Op: "write", Path: path, Err: errOutsideDir}
	}
	return path, nil
}
