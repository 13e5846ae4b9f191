package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/adlinkton/internal/bookmark"
	"github.com/MrSnakeDoc/adlinkton/internal/domain"
	"github.com/MrSnakeDoc/adlinkton/internal/logger"
	"github.com/MrSnakeDoc/adlinkton/internal/store/sqlstore"
)

const userID int64 = 1

var dbSeq int64

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:importer_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	s, err := sqlstore.Open(context.Background(), sqlstore.Options{
		Driver:       sqlstore.DriverSQLite,
		DSN:          dsn,
		MaxOpenConns: 1,
	}, logger.New("error", false))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// stubFavicons never touches the network.
type stubFavicons struct {
	resolved int
	inline   int
	fail     bool
}

func (f *stubFavicons) Resolve(_ context.Context, rawURL string, timeout time.Duration) (string, bool) {
	f.resolved++
	if f.fail || domain.Domain(rawURL) == "" {
		return "", false
	}
	return "/favicons/" + domain.Domain(rawURL) + ".svg", true
}

func (f *stubFavicons) SaveDataURL(dataURL, pageURL string) (string, bool) {
	if !strings.Contains(dataURL, ";base64,") {
		return "", false
	}
	f.inline++
	return "/favicons/" + domain.Domain(pageURL) + ".png", true
}

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newImporter(s *sqlstore.Store, fav FaviconResolver) *Importer {
	return New(NewSQLTransactor(s), fav, Options{
		Now: func() time.Time { return fixedNow },
	}, logger.New("error", false))
}

func parse(t *testing.T, doc string) []bookmark.Node {
	t.Helper()
	nodes, err := bookmark.ParseNetscape(strings.NewReader(doc))
	require.NoError(t, err)
	return nodes
}

// categoryByName indexes the user's categories by name.
func categoryByName(t *testing.T, s *sqlstore.Store) map[string]domain.Category {
	t.Helper()
	cats, err := s.ListCategories(context.Background(), userID)
	require.NoError(t, err)

	out := make(map[string]domain.Category, len(cats))
	for _, c := range cats {
		out[c.Name] = c
	}
	return out
}

// linkCategory returns the single category a link (by URL) is attached to.
func linkCategory(t *testing.T, s *sqlstore.Store, url string) int64 {
	t.Helper()
	ctx := context.Background()

	links, err := s.ListLinks(ctx, userID)
	require.NoError(t, err)
	for _, l := range links {
		if l.URL != url {
			continue
		}
		ids, err := s.LinkCategoryIDs(ctx, l.ID)
		require.NoError(t, err)
		require.Len(t, ids, 1)
		return ids[0]
	}
	t.Fatalf("link %s not found", url)
	return 0
}

const nestedDoc = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<DL><p>
    <DT><H3>Folder A</H3>
    <DL><p>
        <DT><A HREF="https://a.example.com/1" ADD_DATE="1234567890">link1</A>
        <DT><H3>Folder B</H3>
        <DL><p>
            <DT><A HREF="https://b.example.com/2">link2</A>
        </DL><p>
    </DL><p>
    <DT><A HREF="https://c.example.com/3">link3</A>
</DL><p>
`

func TestResolveCategory_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := ResolveCategory(ctx, s, userID, "Work", nil)
	require.NoError(t, err)
	second, err := ResolveCategory(ctx, s, userID, "  Work ", nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	amp, err := ResolveCategory(ctx, s, userID, "Tom & Jerry", &first)
	require.NoError(t, err)
	again, err := ResolveCategory(ctx, s, userID, "Tom & Jerry", &first)
	require.NoError(t, err)
	assert.Equal(t, amp, again)

	// case-sensitive
	upper, err := ResolveCategory(ctx, s, userID, "WORK", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, upper)

	cats := categoryByName(t, s)
	require.Len(t, cats, 3)
	assert.Contains(t, cats, "Tom &amp; Jerry")
	assert.Equal(t, domain.DisplayTab, cats["Work"].DisplayMode)
	assert.Equal(t, domain.DefaultCount, cats["Work"].DefaultCount)
	assert.Equal(t, 0, cats["Work"].SortOrder)

	_, err = ResolveCategory(ctx, s, userID, "   ", nil)
	require.ErrorIs(t, err, domain.ErrEmptyName)
}

func TestImport_NestingRoundTrip(t *testing.T) {
	s := newTestStore(t)
	fav := &stubFavicons{}

	stats, err := newImporter(s, fav).Import(context.Background(), userID, parse(t, nestedDoc))
	require.NoError(t, err)
	assert.Equal(t, domain.ImportStats{Folders: 3, Links: 3, Skipped: 0, FaviconsFetched: 3}, stats)

	cats := categoryByName(t, s)
	require.Len(t, cats, 3)

	root := cats[domain.ImportRootName]
	a := cats["Folder A"]
	b := cats["Folder B"]

	assert.Nil(t, root.ParentID)
	require.NotNil(t, a.ParentID)
	assert.Equal(t, root.ID, *a.ParentID)
	require.NotNil(t, b.ParentID)
	assert.Equal(t, a.ID, *b.ParentID)

	assert.Equal(t, a.ID, linkCategory(t, s, "https://a.example.com/1"))
	assert.Equal(t, b.ID, linkCategory(t, s, "https://b.example.com/2"))
	assert.Equal(t, root.ID, linkCategory(t, s, "https://c.example.com/3"))
}

func TestImport_SiblingListLayout(t *testing.T) {
	doc := `<DL>
<DT><H3>Parent</H3></DT>
<DL>
  <DT><A HREF="https://inner.example.com/">inner</A></DT>
</DL>
<DT><A HREF="https://outer.example.com/">outer</A></DT>
</DL>`

	s := newTestStore(t)
	stats, err := newImporter(s, &stubFavicons{}).Import(context.Background(), userID, parse(t, doc))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Folders)
	assert.Equal(t, 2, stats.Links)

	cats := categoryByName(t, s)
	parent := cats["Parent"]
	require.NotNil(t, parent.ParentID)
	assert.Equal(t, cats[domain.ImportRootName].ID, *parent.ParentID)

	assert.Equal(t, parent.ID, linkCategory(t, s, "https://inner.example.com/"))
	assert.Equal(t, cats[domain.ImportRootName].ID, linkCategory(t, s, "https://outer.example.com/"))
}

func TestImport_DuplicateURLIsSkipped(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	firstID, err := s.InsertLink(ctx, &domain.Link{
		UserID:    userID,
		URL:       "https://c.example.com/3",
		Name:      "created by hand",
		CreatedAt: fixedNow,
	})
	require.NoError(t, err)

	stats, err := newImporter(s, &stubFavicons{}).Import(ctx, userID, parse(t, nestedDoc))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Links)
	assert.Equal(t, 1, stats.Skipped)

	links, err := s.ListLinks(ctx, userID)
	require.NoError(t, err)
	for _, l := range links {
		if l.URL == "https://c.example.com/3" {
			assert.Equal(t, firstID, l.ID)
			assert.Equal(t, "created by hand", l.Name)
		}
	}
}

func TestImport_ReimportReusesCategories(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	im := newImporter(s, &stubFavicons{})

	_, err := im.Import(ctx, userID, parse(t, nestedDoc))
	require.NoError(t, err)

	stats, err := im.Import(ctx, userID, parse(t, nestedDoc))
	require.NoError(t, err)

	// folders counts resolved folder nodes, reused or not
	assert.Equal(t, domain.ImportStats{Folders: 3, Links: 0, Skipped: 3}, stats)
	assert.Len(t, categoryByName(t, s), 3)
}

func TestImport_EntryErrorsAreSkipped(t *testing.T) {
	doc := `<DL>
<DT><A HREF="not a url">bad</A>
<DT><A HREF="https://nameless.example.com/"></A>
<DT><A>no href</A>
<DT><A HREF="https://ok.example.com/">  ok &amp; "fine"  </A>
<DT><H3>   </H3>
<DL>
  <DT><A HREF="https://orphan.example.com/">orphan</A>
</DL>
</DL>`

	ctx := context.Background()
	s := newTestStore(t)

	stats, err := newImporter(s, &stubFavicons{}).Import(ctx, userID, parse(t, doc))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Folders)
	assert.Equal(t, 2, stats.Links)
	assert.Equal(t, 4, stats.Skipped)

	links, err := s.ListLinks(ctx, userID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "ok &amp; &#34;fine&#34;", links[0].Name)

	// children of an unnamed folder stay in its parent
	root := categoryByName(t, s)[domain.ImportRootName]
	assert.Equal(t, root.ID, linkCategory(t, s, "https://orphan.example.com/"))
}

func TestImport_AddDateAndFavicons(t *testing.T) {
	doc := `<DL>
<DT><A HREF="https://dated.example.com/" ADD_DATE="1234567890" ICON="data:image/png;base64,iVBORw0KGgo=">dated</A>
<DT><A HREF="https://undated.example.com/" ADD_DATE="yesterday">undated</A>
</DL>`

	ctx := context.Background()
	s := newTestStore(t)
	fav := &stubFavicons{}

	stats, err := newImporter(s, fav).Import(ctx, userID, parse(t, doc))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FaviconsFetched)
	assert.Equal(t, 1, fav.inline)
	assert.Equal(t, 1, fav.resolved, "inline icon skips the network")

	links, err := s.ListLinks(ctx, userID)
	require.NoError(t, err)
	require.Len(t, links, 2)

	assert.True(t, links[0].CreatedAt.Equal(time.Unix(1234567890, 0)))
	assert.Equal(t, "/favicons/dated.example.com.png", links[0].FaviconPath.String)

	assert.True(t, links[1].CreatedAt.Equal(fixedNow))
	assert.Equal(t, "/favicons/undated.example.com.svg", links[1].FaviconPath.String)
}

func TestImport_UnresolvedFaviconIsNull(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	stats, err := newImporter(s, &stubFavicons{fail: true}).Import(ctx, userID, parse(t, nestedDoc))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FaviconsFetched)
	assert.Equal(t, 3, stats.Links)

	links, err := s.ListLinks(ctx, userID)
	require.NoError(t, err)
	for _, l := range links {
		assert.False(t, l.FaviconPath.Valid)
	}
}

// failingRepo fails the failAt-th InsertLink with a storage error.
type failingRepo struct {
	Repository
	inserts *int
	failAt  int
}

func (r *failingRepo) InsertLink(ctx context.Context, l *domain.Link) (int64, error) {
	*r.inserts++
	if *r.inserts == r.failAt {
		return 0, errors.New("connection lost")
	}
	return r.Repository.InsertLink(ctx, l)
}

type failingTx struct {
	Transactor
	failAt int
}

func (f *failingTx) InTx(ctx context.Context, fn func(repo Repository) error) error {
	inserts := 0
	return f.Transactor.InTx(ctx, func(repo Repository) error {
		return fn(&failingRepo{Repository: repo, inserts: &inserts, failAt: f.failAt})
	})
}

func TestImport_RollsBackOnStorageError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	im := New(&failingTx{Transactor: NewSQLTransactor(s), failAt: 2}, &stubFavicons{}, Options{}, logger.New("error", false))

	stats, err := im.Import(ctx, userID, parse(t, nestedDoc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection lost")
	assert.Equal(t, domain.ImportStats{}, stats)

	cats, err := s.ListCategories(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cats)

	links, err := s.ListLinks(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestCreatedAt(t *testing.T) {
	im := New(nil, &stubFavicons{}, Options{Now: func() time.Time { return fixedNow }}, logger.New("error", false))

	tests := []struct {
		addDate string
		want    time.Time
	}{
		{"1234567890", time.Unix(1234567890, 0)},
		{" 1234567890 ", time.Unix(1234567890, 0)},
		{"1234567890.75", time.Unix(1234567890, 0)},
		{"253402300799", time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)},
		{"", fixedNow},
		{"0", fixedNow},
		{"-5", fixedNow},
		{"yesterday", fixedNow},
		{"99999999999999", fixedNow},
		{"253402300800", fixedNow},
		{"1e300", fixedNow},
		{"NaN", fixedNow},
		{"+Inf", fixedNow},
	}

	for _, tt := range tests {
		t.Run(tt.addDate, func(t *testing.T) {
			got := im.createdAt(tt.addDate)
			assert.True(t, got.Equal(tt.want), "createdAt(%q) = %v, want %v", tt.addDate, got, tt.want)
		})
	}
}
