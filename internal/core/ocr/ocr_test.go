package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/deal-scanner/internal/common"
)

type stubRunner struct {
	calls []string
	fn    func(name string, args []string) ([]byte, []byte, error)
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, name+" "+strings.Join(args, " "))
	return s.fn(name, args)
}

// fakeRecognizer returns canned tokens keyed by file base name.
type fakeRecognizer struct {
	byName   map[string][]Token
	errs     map[string]error
	availErr error
	seen     []string
}

func (f *fakeRecognizer) Recognize(_ context.Context, p string) (Recognition, error) {
	f.seen = append(f.seen, p)
	base := filepath.Base(p)
	if err, ok := f.errs[base]; ok {
		return Recognition{}, err
	}
	return Recognition{Tokens: f.byName[base]}, nil
}

func (f *fakeRecognizer) Available(context.Context) error { return f.availErr }

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("not really an image"), 0o644))
	return p
}

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t800\t600\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t50\t20\t96.5\tAsking\n" +
	"5\t1\t1\t1\t1\t2\t70\t10\t50\t20\t91\t$4,500,000\n" +
	"5\t1\t1\t1\t1\t3\t130\t10\t50\t20\t12\t~~\n"

func TestParseTSV(t *testing.T) {
	tokens, err := ParseTSV(sampleTSV)
	require.NoError(t, err)
	assert.Equal(t, []Token{
		{Text: "Asking", Confidence: 96.5},
		{Text: "$4,500,000", Confidence: 91},
		{Text: "~~", Confidence: 12},
	}, tokens)

	_, err = ParseTSV("garbage\nrow")
	assert.Error(t, err)

	tokens, err = ParseTSV("")
	assert.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestTesseract_Recognize(t *testing.T) {
	r := &stubRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return []byte(sampleTSV), nil, nil
	}}
	tess := NewTesseract(TesseractConfig{TessdataDir: "/data"}, r, nil)

	rec, err := tess.Recognize(context.Background(), "/tmp/a.png")
	require.NoError(t, err)
	assert.Len(t, rec.Tokens, 3)
	require.Len(t, r.calls, 1)
	assert.Equal(t, "tesseract /tmp/a.png stdout --oem 3 --psm 6 -l eng --tessdata-dir /data tsv", r.calls[0])
}

func TestTesseract_Failures(t *testing.T) {
	r := &stubRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("boom"), errors.New("exit status 1")
	}}
	tess := NewTesseract(TesseractConfig{}, r, nil)

	_, err := tess.Recognize(context.Background(), "x.png")
	assert.ErrorIs(t, err, common.ErrRecognizer)
	assert.ErrorIs(t, tess.Available(context.Background()), common.ErrRecognizer)
}

func TestPool(t *testing.T) {
	text, conf, n := Pool([]Token{
		{Text: "Cap", Confidence: 90},
		{Text: "rate", Confidence: 30}, // not above the floor
		{Text: "  ", Confidence: 99},
		{Text: "6.25%", Confidence: 70},
	}, DefaultTokenMinConfidence)
	assert.Equal(t, "Cap 6.25%", text)
	assert.Equal(t, 80.0, conf)
	assert.Equal(t, 2, n)

	text, conf, n = Pool(nil, DefaultTokenMinConfidence)
	assert.Equal(t, "", text)
	assert.Equal(t, 0.0, conf)
	assert.Zero(t, n)
}

func TestAggregator_OrderAndFailures(t *testing.T) {
	dir := t.TempDir()
	first := touch(t, dir, "first.png")
	broken := touch(t, dir, "broken.jpg")
	blurry := touch(t, dir, "blurry.gif")
	notes := touch(t, dir, "notes.txt")
	missing := filepath.Join(dir, "missing.png")

	rec := &fakeRecognizer{
		byName: map[string][]Token{
			"first.png":  {{Text: "Office", Confidence: 88}, {Text: "Tower", Confidence: 92}},
			"blurry.gif": {{Text: "x", Confidence: 10}},
		},
		errs: map[string]error{"broken.jpg": common.RecognizerError("tesseract", errors.New("bad image"))},
	}
	agg := NewAggregator(Config{SkipPreprocess: true, ScratchDir: dir}, rec, &stubRunner{}, nil)

	results := agg.Run(context.Background(), []string{first, missing, broken, blurry, notes})
	require.Len(t, results, 5)

	assert.Equal(t, first, results[0].SourceRef)
	assert.Equal(t, "Office Tower", results[0].Text)
	assert.Equal(t, 90.0, results[0].Confidence.OrElse(-1))
	assert.Equal(t, 2, results[0].WordCount)

	assert.True(t, results[1].Failed())
	assert.Equal(t, ErrMsgFileNotFound, results[1].Error)

	assert.True(t, results[2].Failed())
	assert.Empty(t, results[2].Text)
	assert.Contains(t, results[2].Error, "bad image")

	// ran, kept nothing: present zero confidence, not a failure
	assert.False(t, results[3].Failed())
	assert.Equal(t, "", results[3].Text)
	assert.Equal(t, 0.0, results[3].Confidence.OrElse(-1))

	assert.Equal(t, ErrMsgUnsupported, results[4].Error)
}

func TestAggregator_RecognizerUnavailable(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.png")
	b := touch(t, dir, "b.png")

	rec := &fakeRecognizer{availErr: errors.New("no tesseract")}
	agg := NewAggregator(Config{SkipPreprocess: true}, rec, &stubRunner{}, nil)

	results := agg.Run(context.Background(), []string{a, b})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Failed())
		assert.Equal(t, ErrMsgNotAvailable, r.Error)
	}
	assert.Empty(t, rec.seen)

	nilAgg := NewAggregator(Config{}, nil, &stubRunner{}, nil)
	assert.Equal(t, ErrMsgNotAvailable, nilAgg.Run(context.Background(), []string{a})[0].Error)
}

func TestAggregator_PDFPoolsPages(t *testing.T) {
	dir := t.TempDir()
	pdf := touch(t, dir, "brochure.pdf")

	runner := &stubRunner{fn: func(name string, args []string) ([]byte, []byte, error) {
		prefix := args[len(args)-1]
		for _, page := range []string{"-1.png", "-2.png"} {
			if err := os.WriteFile(prefix+page, []byte("png"), 0o644); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	}}
	rec := &fakeRecognizer{byName: map[string][]Token{
		"page-1.png": {{Text: "Page", Confidence: 60}, {Text: "one", Confidence: 80}},
		"page-2.png": {{Text: "two", Confidence: 100}},
	}}
	agg := NewAggregator(Config{SkipPreprocess: true, ScratchDir: dir}, rec, runner, nil)

	results := agg.Run(context.Background(), []string{pdf})
	require.Len(t, results, 1)
	assert.Equal(t, "Page one two", results[0].Text)
	assert.Equal(t, 80.0, results[0].Confidence.OrElse(-1))
	require.Len(t, runner.calls, 1)
	assert.True(t, strings.HasPrefix(runner.calls[0], "pdftoppm -r 300 -png "+pdf))

	// scratch dirs are removed after each file
	leftovers, _ := filepath.Glob(filepath.Join(dir, "ocr-*"))
	assert.Empty(t, leftovers)
}

func TestAggregator_PDFRasterizeFailure(t *testing.T) {
	dir := t.TempDir()
	pdf := touch(t, dir, "scan.pdf")
	runner := &stubRunner{fn: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error"), errors.New("exit status 1")
	}}
	agg := NewAggregator(Config{SkipPreprocess: true}, &fakeRecognizer{}, runner, nil)

	res := agg.Run(context.Background(), []string{pdf})[0]
	assert.True(t, res.Failed())
	assert.Equal(t, ErrMsgNoPagesRendered, res.Error)
}

func TestAggregator_PreprocessFallsBackToOriginal(t *testing.T) {
	dir := t.TempDir()
	p := touch(t, dir, "corrupt.png")
	rec := &fakeRecognizer{byName: map[string][]Token{"corrupt.png": {{Text: "ok", Confidence: 75}}}}
	agg := NewAggregator(Config{}, rec, &stubRunner{}, nil)

	res := agg.Run(context.Background(), []string{p})[0]
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, []string{p}, rec.seen)
}
