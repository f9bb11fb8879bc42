package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webchat-backend/internal/models"
)

func mustParse(t *testing.T, body string) models.Conversation {
	t.Helper()
	c, err := models.ParseConversation([]byte(body))
	require.NoError(t, err)
	return c
}

func TestConversationRepo_SaveThenList(t *testing.T) {
	repo := NewConversationRepo(t.TempDir())
	ctx := context.Background()

	body := `{"id":"abc","messages":[{"role":"user","content":"hi"}],"title":"x"}`
	require.NoError(t, repo.Save(ctx, mustParse(t, body)))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.JSONEq(t, body, string(list[0]))
}

func TestConversationRepo_SaveWritesPrettyFile(t *testing.T) {
	dir := t.TempDir()
	repo := NewConversationRepo(dir)

	require.NoError(t, repo.Save(context.Background(), mustParse(t, `{"id":"abc","messages":[]}`)))

	data, err := os.ReadFile(filepath.Join(dir, "abc.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"id\": \"abc\",\n  \"messages\": []\n}", string(data))
}

func TestConversationRepo_SaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	repo := NewConversationRepo(dir)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustParse(t, `{"id":"abc","messages":[{"role":"user","content":"first"},{"role":"assistant","content":"reply"}]}`)))
	second := `{"id":"abc","messages":[{"role":"user","content":"second"}]}`
	require.NoError(t, repo.Save(ctx, mustParse(t, second)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc.json", entries[0].Name())

	data, err := os.ReadFile(filepath.Join(dir, "abc.json"))
	require.NoError(t, err)
	assert.JSONEq(t, second, string(data))
}

func TestConversationRepo_ListEmptyAndAbsent(t *testing.T) {
	ctx := context.Background()

	list, err := NewConversationRepo(t.TempDir()).List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	absent := filepath.Join(t.TempDir(), "missing", "conversations")
	list, err = NewConversationRepo(absent).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	info, err := os.Stat(absent)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConversationRepo_ListFailsOnMalformedFile(t *testing.T) {
	dir := t.TempDir()
	repo := NewConversationRepo(dir)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustParse(t, `{"id":"good"}`)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	list, err := repo.List(ctx)
	require.Error(t, err)
	assert.Nil(t, list)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, filepath.Join(dir, "bad.json"), parseErr.Path)
}

func TestConversationRepo_ListSkipsMalformedWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	repo := NewConversationRepo(dir, WithSkipMalformed(true))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustParse(t, `{"id":"good"}`)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.JSONEq(t, `{"id":"good"}`, string(list[0]))
}

func TestConversationRepo_ListReturnsAnyJSONValue(t *testing.T) {
	dir := t.TempDir()
	repo := NewConversationRepo(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "arr.json"), []byte("[1,2]"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "str.json"), []byte(`"x"`), 0o644))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	got := []string{string(list[0]), string(list[1])}
	assert.ElementsMatch(t, []string{"[1,2]", `"x"`}, got)
}

func TestConversationRepo_ListFailsOnEmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), nil, 0o644))

	_, err := NewConversationRepo(dir).List(context.Background())
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestConversationRepo_ListIgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	repo := NewConversationRepo(dir)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConversationRepo_SaveIDPassthrough(t *testing.T) {
	dir := t.TempDir()
	repo := NewConversationRepo(dir)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustParse(t, `{"messages":[]}`)))
	require.NoError(t, repo.Save(ctx, mustParse(t, `{"id":42}`)))
	require.NoError(t, repo.Save(ctx, mustParse(t, `{"id":"with space"}`)))
	require.NoError(t, repo.Save(ctx, mustParse(t, `{"id":null}`)))
	require.NoError(t, repo.Save(ctx, mustParse(t, `{"id":1.0}`)))
	require.NoError(t, repo.Save(ctx, mustParse(t, `{"id":{"a":1}}`)))

	for _, name := range []string{"undefined.json", "42.json", "with space.json", "null.json", "1.json", "[object Object].json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	_, err := os.Stat(filepath.Join(dir, ".json"))
	assert.True(t, os.IsNotExist(err), "null id must not map to an empty stem")
}

func TestConversationRepo_SaveRefusesEscapingPath(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "conversations")
	repo := NewConversationRepo(dir)

	err := repo.Save(context.Background(), mustParse(t, `{"id":"../escaped"}`))
	require.Error(t, err)

	var fsErr *FilesystemError
	require.True(t, errors.As(err, &fsErr))
	assert.ErrorIs(t, err, errOutsideDir)

	_, statErr := os.Stat(filepath.Join(root, "escaped.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestConversationRepo_SaveFailsWhenDirIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err := NewConversationRepo(path).Save(context.Background(), mustParse(t, `{"id":"abc"}`))
	var fsErr *FilesystemError
	require.True(t, errors.As(err, &fsErr))
	assert.Equal(t, "mkdir", fsErr.Op)
}
