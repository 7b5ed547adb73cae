package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docpress/internal/autosave"
	"docpress/internal/cache"
	"docpress/internal/content"
	"docpress/internal/model"
	"docpress/internal/repository"
	repoMocks "docpress/internal/repository/mocks"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockIndex struct {
	mock.Mock
}

func (m *mockIndex) Public(ctx context.Context, q string) ([]model.DocumentSummary, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentSummary), args.Error(1)
}

func (m *mockIndex) Sync(ctx context.Context, doc *model.Document) { m.Called(ctx, doc) }

func (m *mockIndex) Remove(ctx context.Context, id string) { m.Called(ctx, id) }

type docFixture struct {
	svc        *documentService
	docs       *repoMocks.MockDocumentRepository
	users      *repoMocks.MockUserRepository
	changelogs *repoMocks.MockChangelogRepository
	index      *mockIndex
}

func newDocFixture(t *testing.T, c cache.Cache) docFixture {
	t.Helper()
	f := docFixture{
		docs:       new(repoMocks.MockDocumentRepository),
		users:      new(repoMocks.MockUserRepository),
		changelogs: new(repoMocks.MockChangelogRepository),
		index:      new(mockIndex),
	}
	if c == nil {
		c = cache.Noop{}
	}
	f.svc = NewDocumentService(f.docs, f.users, f.changelogs, f.index, c, discardLogger()).(*documentService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func newMiniredisCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	c, err := cache.NewRedis(context.Background(), s.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, s
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestDocumentService_Create(t *testing.T) {
	f := newDocFixture(t, nil)
	ctx := context.Background()

	f.docs.On("Create", ctx, mock.MatchedBy(func(d *model.Document) bool {
		return strings.HasPrefix(d.Slug, "untitled-document-") &&
			len(d.Slug) == len("untitled-document-")+8 &&
			d.Title == "Untitled Document" &&
			d.Category == model.CategoryFormElement &&
			!d.IsPublic &&
			d.OwnerID == "user-1"
	})).Return(&model.Document{ID: "doc-1", Slug: "untitled-document-abcd1234"}, nil)

	doc, err := f.svc.Create(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)
	f.docs.AssertExpectations(t)
}

func TestDocumentService_CreateSlugsDiffer(t *testing.T) {
	assert.NotEqual(t, newSlug(), newSlug())
}

func TestDocumentService_ListMine(t *testing.T) {
	tests := []struct {
		name      string
		in        ListDocumentsInput
		wantQuery repository.DocumentQuery
	}{
		{"defaults", ListDocumentsInput{}, repository.DocumentQuery{PageQuery: repository.PageQuery{Limit: 10, Offset: 0}}},
		{"clamped", ListDocumentsInput{Limit: 500, Offset: -3, Search: "  intro "}, repository.DocumentQuery{PageQuery: repository.PageQuery{Limit: 100, Offset: 0}, Search: "intro"}},
		{"passthrough", ListDocumentsInput{Limit: 5, Offset: 20}, repository.DocumentQuery{PageQuery: repository.PageQuery{Limit: 5, Offset: 20}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocFixture(t, nil)
			f.docs.On("ListByOwner", mock.Anything, "user-1", tt.wantQuery).
				Return(&repository.PageResult[model.DocumentSummary]{Total: 0}, nil)

			res, err := f.svc.ListMine(context.Background(), "user-1", tt.in)
			require.NoError(t, err)
			assert.NotNil(t, res.Items)
			assert.Equal(t, tt.wantQuery.Limit, res.Limit)
			assert.Equal(t, tt.wantQuery.Offset, res.Offset)
			f.docs.AssertExpectations(t)
		})
	}
}

func TestDocumentService_GetForEditor(t *testing.T) {
	body := `[{"type":"heading","props":{"level":1},"content":[{"type":"text","text":"Getting Started"}]},` +
		`{"type":"heading","props":{"level":2},"content":[{"type":"text","text":"Getting Started"}]}]`

	t.Run("owner gets blocks and toc", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.docs.On("FindBySlug", mock.Anything, "intro").
			Return(&model.Document{ID: "doc-1", Slug: "intro", OwnerID: "user-1", Content: &body}, nil)

		got, err := f.svc.GetForEditor(context.Background(), "user-1", "intro")
		require.NoError(t, err)
		assert.Len(t, got.Content, 2)
		assert.Equal(t, []content.TocItem{
			{ID: "getting-started", Text: "Getting Started", Level: 1},
			{ID: "getting-started-2", Text: "Getting Started", Level: 2},
		}, got.TOC)
	})

	t.Run("malformed body is empty", func(t *testing.T) {
		f := newDocFixture(t, nil)
		bad := `{"not":"a list"}`
		f.docs.On("FindBySlug", mock.Anything, "intro").
			Return(&model.Document{ID: "doc-1", OwnerID: "user-1", Content: &bad}, nil)

		got, err := f.svc.GetForEditor(context.Background(), "user-1", "intro")
		require.NoError(t, err)
		assert.Empty(t, got.Content)
		assert.NotNil(t, got.Content)
	})

	t.Run("other owner", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.docs.On("FindBySlug", mock.Anything, "intro").
			Return(&model.Document{ID: "doc-1", OwnerID: "user-2"}, nil)

		_, err := f.svc.GetForEditor(context.Background(), "user-1", "intro")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.docs.On("FindBySlug", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

		_, err := f.svc.GetForEditor(context.Background(), "user-1", "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentService_Update(t *testing.T) {
	ctx := context.Background()
	stamp := fixedNow.Add(-time.Hour)

	tests := []struct {
		name     string
		in       UpdateDocumentInput
		setup    func(f docFixture)
		wantErr  error
		repoCall bool
	}{
		{
			name: "title and category",
			in:   UpdateDocumentInput{Title: strPtr("Intro"), Category: strPtr("Tutorial")},
			setup: func(f docFixture) {
				cat := model.CategoryTutorial
				f.docs.On("Update", ctx, "doc-1", "user-1", model.DocumentPatch{Title: strPtr("Intro"), Category: &cat}, fixedNow).
					Return(&model.Document{ID: "doc-1", Slug: "intro"}, nil)
				f.index.On("Sync", ctx, mock.Anything).Return()
			},
			repoCall: true,
		},
		{
			name: "content as serialized string",
			in:   UpdateDocumentInput{Content: json.RawMessage(`"[{\"type\":\"paragraph\"}]"`)},
			setup: func(f docFixture) {
				f.docs.On("Update", ctx, "doc-1", "user-1", mock.MatchedBy(func(p model.DocumentPatch) bool {
					return p.Content != nil && *p.Content == `[{"type":"paragraph"}]`
				}), fixedNow).Return(&model.Document{ID: "doc-1", Slug: "intro"}, nil)
				f.index.On("Sync", ctx, mock.Anything).Return()
			},
			repoCall: true,
		},
		{
			name:    "content not a block list",
			in:      UpdateDocumentInput{Content: json.RawMessage(`{"type":"paragraph"}`)},
			wantErr: ErrValidation,
		},
		{
			name:    "unknown category",
			in:      UpdateDocumentInput{Category: strPtr("Recipes")},
			wantErr: ErrValidation,
		},
		{
			name: "cleared title falls back to the default",
			in:   UpdateDocumentInput{Title: strPtr("  ")},
			setup: func(f docFixture) {
				f.docs.On("Update", ctx, "doc-1", "user-1", model.DocumentPatch{Title: strPtr(model.DefaultTitle)}, fixedNow).
					Return(&model.Document{ID: "doc-1", Slug: "intro", Title: model.DefaultTitle}, nil)
				f.index.On("Sync", ctx, mock.Anything).Return()
			},
			repoCall: true,
		},
		{
			name:    "title too long",
			in:      UpdateDocumentInput{Title: strPtr(strings.Repeat("t", 256))},
			wantErr: ErrValidation,
		},
		{
			name:    "nothing to update",
			in:      UpdateDocumentInput{UpdatedAt: &stamp},
			wantErr: ErrValidation,
		},
		{
			name: "stale token",
			in:   UpdateDocumentInput{IsPublic: boolPtr(true), UpdatedAt: &stamp},
			setup: func(f docFixture) {
				f.docs.On("Update", ctx, "doc-1", "user-1", model.DocumentPatch{IsPublic: boolPtr(true), ExpectedUpdatedAt: &stamp}, fixedNow).
					Return(nil, repository.ErrStale)
			},
			wantErr:  ErrConflict,
			repoCall: true,
		},
		{
			name: "not owned",
			in:   UpdateDocumentInput{IsPublic: boolPtr(false)},
			setup: func(f docFixture) {
				f.docs.On("Update", ctx, "doc-1", "user-1", mock.Anything, fixedNow).Return(nil, repository.ErrNotFound)
			},
			wantErr:  ErrNotFound,
			repoCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocFixture(t, nil)
			if tt.setup != nil {
				tt.setup(f)
			}

			doc, err := f.svc.Update(ctx, "user-1", "doc-1", tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "doc-1", doc.ID)
			}
			if !tt.repoCall {
				f.docs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			f.docs.AssertExpectations(t)
			f.index.AssertExpectations(t)
		})
	}
}

func TestDocumentService_UpdateInvalidatesCache(t *testing.T) {
	c, s := newMiniredisCache(t)
	f := newDocFixture(t, c)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, publicDocKey("intro"), PublicDocument{Slug: "intro"}))
	require.NoError(t, c.Set(ctx, cacheKeySidebar, []CategoryGroup{}))

	f.docs.On("Update", ctx, "doc-1", "user-1", mock.Anything, fixedNow).
		Return(&model.Document{ID: "doc-1", Slug: "intro", IsPublic: false}, nil)
	f.index.On("Sync", ctx, mock.Anything).Return()

	_, err := f.svc.Update(ctx, "user-1", "doc-1", UpdateDocumentInput{IsPublic: boolPtr(false)})
	require.NoError(t, err)

	assert.False(t, s.Exists("docpress:public:doc:intro"))
	assert.False(t, s.Exists("docpress:public:sidebar"))
}

func TestDocumentService_UpdateField(t *testing.T) {
	ctx := context.Background()

	t.Run("visibility", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.docs.On("Update", ctx, "doc-1", "user-1", model.DocumentPatch{IsPublic: boolPtr(true)}, fixedNow).
			Return(&model.Document{ID: "doc-1", Slug: "intro", IsPublic: true}, nil)
		f.index.On("Sync", ctx, mock.Anything).Return()

		require.NoError(t, f.svc.UpdateField(ctx, "user-1", "doc-1", autosave.FieldVisibility, json.RawMessage(`true`)))
		f.docs.AssertExpectations(t)
	})

	t.Run("wrong value type", func(t *testing.T) {
		f := newDocFixture(t, nil)
		err := f.svc.UpdateField(ctx, "user-1", "doc-1", autosave.FieldVisibility, json.RawMessage(`"yes"`))
		assert.ErrorIs(t, err, ErrValidation)
		f.docs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFieldInput(t *testing.T) {
	in, err := FieldInput(autosave.FieldTitle, json.RawMessage(`"Intro"`))
	require.NoError(t, err)
	assert.Equal(t, "Intro", *in.Title)

	in, err = FieldInput(autosave.FieldCategory, json.RawMessage(`"Helper"`))
	require.NoError(t, err)
	assert.Equal(t, "Helper", *in.Category)

	in, err = FieldInput(autosave.FieldContent, json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(in.Content))

	in, err = FieldInput(autosave.FieldTitle, json.RawMessage(`""`))
	require.NoError(t, err)
	assert.Equal(t, "", *in.Title)

	_, err = FieldInput(autosave.FieldCategory, json.RawMessage(`"Nope"`))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = FieldInput(autosave.Field("slug"), json.RawMessage(`"x"`))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", Slug: "intro", OwnerID: "user-1"}, nil)
		f.docs.On("Delete", ctx, "doc-1", "user-1").Return(nil)
		f.index.On("Remove", ctx, "doc-1").Return()

		require.NoError(t, f.svc.Delete(ctx, "user-1", "doc-1"))
		f.docs.AssertExpectations(t)
		f.index.AssertExpectations(t)
	})

	t.Run("other owner", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.docs.On("FindByID", ctx, "doc-1").Return(&model.Document{ID: "doc-1", OwnerID: "user-2"}, nil)

		assert.ErrorIs(t, f.svc.Delete(ctx, "user-1", "doc-1"), ErrNotFound)
		f.docs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.docs.On("FindByID", ctx, "doc-1").Return(nil, repository.ErrNotFound)

		assert.ErrorIs(t, f.svc.Delete(ctx, "user-1", "doc-1"), ErrNotFound)
	})
}

func TestDocumentService_PublicList(t *testing.T) {
	ctx := context.Background()
	items := []model.DocumentSummary{
		{Slug: "misc", Title: "Misc", Category: ""},
		{Slug: "app", Title: "App", Category: model.CategoryApp},
		{Slug: "hooks", Title: "Hooks", Category: model.CategoryHelper},
		{Slug: "strings", Title: "Strings", Category: model.CategoryHelper},
	}

	t.Run("groups in order with uncategorized last", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.index.On("Public", ctx, "").Return(items, nil)

		groups, err := f.svc.PublicList(ctx, "  ")
		require.NoError(t, err)
		require.Len(t, groups, 3)
		assert.Equal(t, "App", groups[0].Category)
		assert.Equal(t, "Helper", groups[1].Category)
		assert.Len(t, groups[1].Documents, 2)
		assert.Equal(t, UncategorizedLabel, groups[2].Category)
		assert.Equal(t, "misc", groups[2].Documents[0].Slug)
	})

	t.Run("unfiltered sidebar is cached", func(t *testing.T) {
		c, _ := newMiniredisCache(t)
		f := newDocFixture(t, c)
		f.index.On("Public", ctx, "").Return(items, nil).Once()

		first, err := f.svc.PublicList(ctx, "")
		require.NoError(t, err)
		second, err := f.svc.PublicList(ctx, "")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		f.index.AssertNumberOfCalls(t, "Public", 1)
	})

	t.Run("search is not cached", func(t *testing.T) {
		c, s := newMiniredisCache(t)
		f := newDocFixture(t, c)
		f.index.On("Public", ctx, "hooks").Return(items[2:3], nil)

		groups, err := f.svc.PublicList(ctx, "hooks")
		require.NoError(t, err)
		assert.Len(t, groups, 1)
		assert.False(t, s.Exists("docpress:public:sidebar"))
	})

	t.Run("index error", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.index.On("Public", ctx, "x").Return(nil, errors.New("db down"))

		_, err := f.svc.PublicList(ctx, "x")
		assert.Error(t, err)
	})
}

func TestDocumentService_PublicGet(t *testing.T) {
	ctx := context.Background()
	body := `[{"type":"heading","props":{"level":1},"content":[{"type":"text","text":"Getting Started"}]},` +
		`{"type":"paragraph","content":[{"type":"text","text":"Hello"}]}]`
	public := &model.Document{
		ID: "doc-1", Slug: "intro", Title: "Intro", Category: model.CategoryTutorial,
		IsPublic: true, OwnerID: "user-1", Content: &body, CreatedAt: fixedNow,
	}

	t.Run("private document is not found", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.docs.On("FindBySlug", ctx, "draft").Return(&model.Document{ID: "doc-2", Slug: "draft", IsPublic: false}, nil)

		_, err := f.svc.PublicGet(ctx, "draft")
		assert.ErrorIs(t, err, ErrNotFound)
		f.users.AssertNotCalled(t, "FindAuthor", mock.Anything, mock.Anything)
	})

	t.Run("missing document", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.docs.On("FindBySlug", ctx, "nope").Return(nil, repository.ErrNotFound)

		_, err := f.svc.PublicGet(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("renders and re-sanitizes", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.docs.On("FindBySlug", ctx, "intro").Return(public, nil)
		f.users.On("FindAuthor", ctx, "user-1").Return(&model.Author{Email: "ada@example.com"}, nil)
		f.changelogs.On("ListByDocument", ctx, "doc-1").Return([]model.ChangelogEntry{
			{ID: "c1", Version: "1.0.0", Description: `<p onclick="x()">Init<script>alert(1)</script></p>`},
		}, nil)

		got, err := f.svc.PublicGet(ctx, "intro")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", got.Author)
		assert.Contains(t, got.HTML, `<h1 id="getting-started">Getting Started</h1>`)
		assert.Equal(t, []content.TocItem{{ID: "getting-started", Text: "Getting Started", Level: 1}}, got.TOC)
		assert.Equal(t, "<p>Init</p>", got.Changelogs[0].Description)
	})

	t.Run("missing author still renders", func(t *testing.T) {
		f := newDocFixture(t, nil)
		f.docs.On("FindBySlug", ctx, "intro").Return(public, nil)
		f.users.On("FindAuthor", ctx, "user-1").Return(nil, repository.ErrNotFound)
		f.changelogs.On("ListByDocument", ctx, "doc-1").Return(nil, nil)

		got, err := f.svc.PublicGet(ctx, "intro")
		require.NoError(t, err)
		assert.Empty(t, got.Author)
		assert.NotNil(t, got.Changelogs)
	})

	t.Run("served from cache", func(t *testing.T) {
		c, _ := newMiniredisCache(t)
		f := newDocFixture(t, c)
		f.docs.On("FindBySlug", ctx, "intro").Return(public, nil).Once()
		f.users.On("FindAuthor", ctx, "user-1").Return(&model.Author{FullName: "Ada"}, nil).Once()
		f.changelogs.On("ListByDocument", ctx, "doc-1").Return([]model.ChangelogEntry{}, nil).Once()

		first, err := f.svc.PublicGet(ctx, "intro")
		require.NoError(t, err)
		second, err := f.svc.PublicGet(ctx, "intro")
		require.NoError(t, err)

		assert.Equal(t, first.HTML, second.HTML)
		assert.Equal(t, "Ada", second.Author)
		f.docs.AssertNumberOfCalls(t, "FindBySlug", 1)
	})
}
