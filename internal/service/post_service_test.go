package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SumireDoi/LocaConne/internal/extract"
	"github.com/SumireDoi/LocaConne/internal/model"
	"github.com/SumireDoi/LocaConne/internal/repository"
	"github.com/SumireDoi/LocaConne/internal/storage"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Post{}, &model.LocationDetail{}))
	return db
}

// mappingTokenizer returns canned morphemes per input text.
type mappingTokenizer struct {
	byText map[string][]extract.Token
}

func (m *mappingTokenizer) Tokenize(text string) []extract.Token { return m.byText[text] }

// fakeDetector misses until hitOn (1-based attempt number); hitOn 0 never hits.
type fakeDetector struct {
	hitOn    int
	landmark string
	calls    int
}

func (d *fakeDetector) Detect(_ context.Context, imageURL string) (string, bool) {
	d.calls++
	if d.hitOn > 0 && d.calls >= d.hitOn {
		return d.landmark, true
	}
	return "", false
}

// fakePerturber yields a fresh reference each call, or always fails.
type fakePerturber struct {
	fail  bool
	calls int
}

func (p *fakePerturber) Perturb(_ context.Context, imageURL string) (string, bool) {
	p.calls++
	if p.fail {
		return "", false
	}
	return fmt.Sprintf("mem://perturbed-%d.jpg", p.calls), true
}

type fixture struct {
	svc       PostService
	db        *gorm.DB
	detector  *fakeDetector
	perturber *fakePerturber
	kb        *fakeKB
	store     *storage.MemoryStorage
}

func newFixture(t *testing.T, tok extract.Tokenizer, detector *fakeDetector, perturber *fakePerturber) *fixture {
	t.Helper()
	db := setupTestDB(t)
	store := storage.NewMemoryStorage()
	kb := &fakeKB{echo: true, coord: "Point(139.0 35.0)"}
	enricher := NewEnricher(kb, &fakeWiki{summary: "概要。"}, nil, 0, "ja")
	svc := NewPostService(
		repository.NewPostRepository(db),
		repository.NewLocationDetailRepository(db),
		extract.NewExtractor(tok),
		detector,
		perturber,
		store,
		enricher,
	)
	return &fixture{svc: svc, db: db, detector: detector, perturber: perturber, kb: kb, store: store}
}

func hotSpringTokens() map[string][]extract.Token {
	return map[string][]extract.Token{
		"箱根温泉に行った": {
			{Surface: "箱根温泉", Features: []string{"名詞", "一般", "*"}},
			{Surface: "に", Features: []string{"助詞", "格助詞", "一般"}},
			{Surface: "行っ", Features: []string{"動詞", "自立", "*"}},
			{Surface: "た", Features: []string{"助動詞", "*", "*"}},
		},
	}
}

func TestSubmitTextOnlyCreatesLocationDetail(t *testing.T) {
	f := newFixture(t, &mappingTokenizer{byText: hotSpringTokens()}, &fakeDetector{}, &fakePerturber{})

	id, err := f.svc.Submit(context.Background(), SubmitInput{Username: "sumire", Text: "箱根温泉に行った"})
	require.NoError(t, err)
	require.NotZero(t, id)

	var details []model.LocationDetail
	require.NoError(t, f.db.Where("post_id = ?", id).Find(&details).Error)
	require.Len(t, details, 1)
	assert.Equal(t, "箱根温泉", details[0].Location)
	require.NotNil(t, details[0].Coordinate)
	assert.Equal(t, "Point(139.0 35.0)", *details[0].Coordinate)
	require.NotNil(t, details[0].WikipediaSummary)

	// no image, so the detection loop never ran
	assert.Zero(t, f.detector.calls)
}

func TestSubmitWithoutAnySignalStoresBarePost(t *testing.T) {
	f := newFixture(t, &mappingTokenizer{byText: map[string][]extract.Token{}}, &fakeDetector{}, &fakePerturber{})

	id, err := f.svc.Submit(context.Background(), SubmitInput{Username: "sumire", Text: "ただのつぶやき"})
	require.NoError(t, err)

	var posts []model.Post
	require.NoError(t, f.db.Find(&posts).Error)
	assert.Len(t, posts, 1)

	var count int64
	require.NoError(t, f.db.Model(&model.LocationDetail{}).Where("post_id = ?", id).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitRunsExactlyTenDetectionAttempts(t *testing.T) {
	detector := &fakeDetector{} // never hits
	f := newFixture(t, &mappingTokenizer{byText: map[string][]extract.Token{}}, detector, &fakePerturber{})

	_, err := f.svc.Submit(context.Background(), SubmitInput{
		Username: "sumire",
		Text:     "画像だけ",
		Image:    &ImageUpload{Filename: "x.jpg", ContentType: "image/jpeg", Data: []byte("fake-jpeg")},
	})
	require.NoError(t, err)
	assert.Equal(t, maxLandmarkAttempts, detector.calls)
	// every miss asked for a new variant
	assert.Equal(t, maxLandmarkAttempts, f.perturber.calls)
}

func TestSubmitLandmarkHitStopsLoop(t *testing.T) {
	detector := &fakeDetector{hitOn: 3, landmark: "東京タワー"}
	f := newFixture(t, &mappingTokenizer{byText: map[string][]extract.Token{}}, detector, &fakePerturber{})

	id, err := f.svc.Submit(context.Background(), SubmitInput{
		Username: "sumire",
		Text:     "画像だけ",
		Image:    &ImageUpload{Filename: "x.jpg", ContentType: "image/jpeg", Data: []byte("fake-jpeg")},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, detector.calls)

	var detail model.LocationDetail
	require.NoError(t, f.db.Where("post_id = ?", id).First(&detail).Error)
	assert.Equal(t, "東京タワー", detail.Location)
}

func TestSubmitLandmarkOutranksTextCandidates(t *testing.T) {
	detector := &fakeDetector{hitOn: 1, landmark: "東京タワー"}
	f := newFixture(t, &mappingTokenizer{byText: hotSpringTokens()}, detector, &fakePerturber{})

	id, err := f.svc.Submit(context.Background(), SubmitInput{
		Username: "sumire",
		Text:     "箱根温泉に行った",
		Image:    &ImageUpload{Filename: "x.jpg", ContentType: "image/jpeg", Data: []byte("fake-jpeg")},
	})
	require.NoError(t, err)

	var detail model.LocationDetail
	require.NoError(t, f.db.Where("post_id = ?", id).First(&detail).Error)
	assert.Equal(t, "東京タワー", detail.Location)
}

func TestSubmitFailedPerturbationTerminatesUsefulWorkEarly(t *testing.T) {
	detector := &fakeDetector{}
	f := newFixture(t, &mappingTokenizer{byText: map[string][]extract.Token{}}, detector, &fakePerturber{fail: true})

	_, err := f.svc.Submit(context.Background(), SubmitInput{
		Username: "sumire",
		Text:     "画像だけ",
		Image:    &ImageUpload{Filename: "x.jpg", ContentType: "image/jpeg", Data: []byte("fake-jpeg")},
	})
	require.NoError(t, err)
	// the loop still runs its budget; attempts after the first run against an
	// empty reference and miss immediately
	assert.Equal(t, maxLandmarkAttempts, detector.calls)
}

func TestSubmitKeepsOriginalImageURL(t *testing.T) {
	detector := &fakeDetector{} // misses, so perturbation produces variants
	f := newFixture(t, &mappingTokenizer{byText: map[string][]extract.Token{}}, detector, &fakePerturber{})

	id, err := f.svc.Submit(context.Background(), SubmitInput{
		Username: "sumire",
		Text:     "画像だけ",
		Image:    &ImageUpload{Filename: "x.jpg", ContentType: "image/jpeg", Data: []byte("fake-jpeg")},
	})
	require.NoError(t, err)

	var post model.Post
	require.NoError(t, f.db.First(&post, id).Error)
	assert.Contains(t, post.ImageURL, "mem://")
	assert.NotContains(t, post.ImageURL, "perturbed")
}

func TestTimelineNewestFirstAndIdempotent(t *testing.T) {
	f := newFixture(t, &mappingTokenizer{byText: hotSpringTokens()}, &fakeDetector{}, &fakePerturber{})
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		post := &model.Post{Username: "sumire", Text: fmt.Sprintf("post %d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, f.db.Create(post).Error)
	}

	first, err := f.svc.Timeline(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, "post 2", first[0].Text)
	assert.Equal(t, "post 0", first[2].Text)

	second, err := f.svc.Timeline(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTimelineJoinsSummary(t *testing.T) {
	f := newFixture(t, &mappingTokenizer{byText: hotSpringTokens()}, &fakeDetector{}, &fakePerturber{})
	ctx := context.Background()

	id, err := f.svc.Submit(ctx, SubmitInput{Username: "sumire", Text: "箱根温泉に行った"})
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&model.Post{Username: "sumire", Text: "場所なし", CreatedAt: time.Now().Add(time.Minute)}).Error)

	items, err := f.svc.Timeline(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Nil(t, items[0].WikipediaSummary)
	require.Equal(t, id, items[1].ID)
	require.NotNil(t, items[1].WikipediaSummary)
	assert.Equal(t, "概要。", *items[1].WikipediaSummary)
}

func TestDetail(t *testing.T) {
	f := newFixture(t, &mappingTokenizer{byText: hotSpringTokens()}, &fakeDetector{}, &fakePerturber{})
	ctx := context.Background()

	id, err := f.svc.Submit(ctx, SubmitInput{Username: "sumire", Text: "箱根温泉に行った"})
	require.NoError(t, err)

	detail, err := f.svc.Detail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "箱根温泉に行った", detail.Post.Text)
	require.NotNil(t, detail.Coordinate)
	assert.Equal(t, "Point(139.0 35.0)", *detail.Coordinate)
	require.NotNil(t, detail.WikipediaSummary)

	_, err = f.svc.Detail(ctx, id+100)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDetailWithoutLocationDetail(t *testing.T) {
	f := newFixture(t, &mappingTokenizer{byText: map[string][]extract.Token{}}, &fakeDetector{}, &fakePerturber{})
	ctx := context.Background()

	id, err := f.svc.Submit(ctx, SubmitInput{Username: "sumire", Text: "ただのつぶやき"})
	require.NoError(t, err)

	detail, err := f.svc.Detail(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, detail.Description)
	assert.Nil(t, detail.Coordinate)
	assert.Nil(t, detail.WikipediaSummary)
}
