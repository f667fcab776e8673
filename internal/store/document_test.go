package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/versets/internal/ir"
)

var revPattern = regexp.MustCompile(`^[0-9]+-[0-9a-f]{32}$`)

func TestSave_NewDocument(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	doc, err := s.Save(ctx, "plant/Location", "", body("Location 0.0", "a"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc.Seq)
	assert.Regexp(t, revPattern, doc.Rev)
	assert.Equal(t, "1-", doc.Rev[:2])

	loaded, err := s.Load(ctx, "plant/Location")
	require.NoError(t, err)
	assert.Equal(t, doc.Rev, loaded.Rev)
	assert.Equal(t, body("Location 0.0", "a"), loaded.Body)
	assert.False(t, loaded.Deleted)
}

func TestSave_ChainsRevisions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, "doc", "", body("v0"))
	require.NoError(t, err)
	second, err := s.Save(ctx, "doc", first.Rev, body("v1"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Seq)
	assert.NotEqual(t, first.Rev, second.Rev)

	revs, err := s.ListRevisions(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, []Revision{
		{Rev: first.Rev, Seq: 1},
		{Rev: second.Rev, Seq: 2, ParentRev: first.Rev},
	}, revs)

	old, err := s.LoadRevision(ctx, "doc", first.Rev)
	require.NoError(t, err)
	assert.Equal(t, body("v0"), old.Body)
}

func TestSave_SameBodyDifferentParent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, "doc", "", body("same"))
	require.NoError(t, err)
	second, err := s.Save(ctx, "doc", first.Rev, body("same"))
	require.NoError(t, err)
	assert.NotEqual(t, first.Rev, second.Rev)
}

func TestSave_Conflict(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, "doc", "", body("v0"))
	require.NoError(t, err)
	_, err = s.Save(ctx, "doc", first.Rev, body("theirs"))
	require.NoError(t, err)

	_, err = s.Save(ctx, "doc", first.Rev, body("ours"))
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Contains(t, err.Error(), ErrCodeConflict)

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, first.Rev, ce.Expected)

	_, err = s.Save(ctx, "fresh", "1-deadbeef", body("x"))
	assert.True(t, IsConflict(err), "expected revision on a missing document")

	loaded, err := s.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("theirs"), loaded.Body["name"], "conflicting save wrote nothing")
}

func TestDelete_Tombstone(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	doc, err := s.Save(ctx, "doc", "", body("v0"))
	require.NoError(t, err)
	tomb, err := s.Delete(ctx, "doc", doc.Rev)
	require.NoError(t, err)
	assert.True(t, tomb.Deleted)
	assert.Equal(t, int64(2), tomb.Seq)

	_, err = s.Load(ctx, "doc")
	assert.True(t, IsNotFound(err))

	revs, err := s.ListRevisions(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.True(t, revs[1].Deleted)

	old, err := s.LoadRevision(ctx, "doc", doc.Rev)
	require.NoError(t, err)
	assert.Equal(t, body("v0"), old.Body)

	_, err = s.Delete(ctx, "doc", tomb.Rev)
	assert.True(t, IsNotFound(err), "deleting a tombstone")

	revived, err := s.Save(ctx, "doc", tomb.Rev, body("v2"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), revived.Seq)
}

func TestDelete_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Delete(ctx, "missing", "1-abc")
	assert.True(t, IsNotFound(err))
	_, err = s.Delete(ctx, "missing", "")
	assert.True(t, IsNotFound(err))

	_, err = s.Save(ctx, "doc", "", body("v0"))
	require.NoError(t, err)
	_, err = s.Delete(ctx, "doc", "1-stale")
	assert.True(t, IsConflict(err))
	_, err = s.Load(ctx, "doc")
	require.NoError(t, err, "document survives a conflicting delete")
}

func TestLoad_NotFound(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)

	_, err = s.LoadRevision(ctx, "missing", "1-abc")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "revision 1-abc")

	_, err = s.ListRevisions(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

func TestListDocuments(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"b/Location", "a/Shift", "a/Component", "a/Location"} {
		_, err := s.Save(ctx, id, "", body(id))
		require.NoError(t, err)
	}
	loc, err := s.Load(ctx, "a/Location")
	require.NoError(t, err)
	_, err = s.Delete(ctx, "a/Location", loc.Rev)
	require.NoError(t, err)

	ids, err := s.ListDocuments(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/Component", "a/Shift"}, ids)

	ids, err = s.ListDocuments(ctx, "zzz/")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSave_LargeIntegersRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	b := ir.IRObject{"n": ir.IRInt(1 << 60)}
	_, err := s.Save(ctx, "doc", "", b)
	require.NoError(t, err)
	loaded, err := s.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, b, loaded.Body)
}
