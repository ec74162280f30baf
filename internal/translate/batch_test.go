package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
)

func items(n int) []TranslationItem {
	out := make([]TranslationItem, n)
	for i := range out {
		out[i] = TranslationItem{Index: i, Text: fmt.Sprintf("line %d", i)}
	}
	return out
}

func upper(_ context.Context, in []TranslationItem) ([]TranslationResult, error) {
	out := make([]TranslationResult, len(in))
	for i := len(in) - 1; i >= 0; i-- {
		out[len(in)-1-i] = TranslationResult{Index: in[i].Index, Text: strings.ToUpper(in[i].Text)}
	}
	return out, nil
}

func TestSplitBatches(t *testing.T) {
	batches := splitBatches(items(7), 3)
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	if len(batches[2]) != 1 || batches[2][0].Index != 6 {
		t.Errorf("last batch = %+v", batches[2])
	}
}

func TestTranslateBatchesOrdersResults(t *testing.T) {
	got, err := translateBatches(context.Background(), items(10), 3, 4, upper)
	if err != nil {
		t.Fatalf("translateBatches error: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("got %d results", len(got))
	}
	for i, r := range got {
		if r.Index != i || r.Text != fmt.Sprintf("LINE %d", i) {
			t.Errorf("result %d = %+v", i, r)
		}
	}
}

func TestTranslateBatchesRespectsConcurrency(t *testing.T) {
	var active, peak int32
	fn := func(ctx context.Context, in []TranslationItem) ([]TranslationResult, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		defer atomic.AddInt32(&active, -1)
		return upper(ctx, in)
	}

	if _, err := translateBatches(context.Background(), items(20), 2, 3, fn); err != nil {
		t.Fatalf("translateBatches error: %v", err)
	}
	if peak > 3 {
		t.Errorf("peak concurrency %d exceeds limit 3", peak)
	}
}

func TestTranslateBatchesFailsOnBatchError(t *testing.T) {
	boom := errors.New("quota exceeded")
	fn := func(ctx context.Context, in []TranslationItem) ([]TranslationResult, error) {
		if in[0].Index == 4 {
			return nil, boom
		}
		return upper(ctx, in)
	}

	_, err := translateBatches(context.Background(), items(8), 2, 2, fn)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped batch error, got %v", err)
	}
	if !strings.Contains(err.Error(), "batch 2 failed") {
		t.Errorf("error should name the batch: %v", err)
	}
}

func TestTranslateBatchesEmpty(t *testing.T) {
	got, err := translateBatches(context.Background(), nil, 3, 1, func(context.Context, []TranslationItem) ([]TranslationResult, error) {
		t.Fatal("fn should not be called")
		return nil, nil
	})
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
}

// fakeTranslator records the options it was built with and prefixes text.
type fakeTranslator struct {
	mu     sync.Mutex
	prefix string
	calls  int
}

func (f *fakeTranslator) Translate(_ context.Context, in []TranslationItem) ([]TranslationResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	out := make([]TranslationResult, len(in))
	for i, it := range in {
		out[i] = TranslationResult{Index: it.Index, Text: f.prefix + it.Text}
	}
	return out, nil
}

func TestSegmentTranslatorKeepsTiming(t *testing.T) {
	var gotOpts Options
	fake := &fakeTranslator{prefix: "de:"}
	st, err := NewSegmentTranslator(func(_ context.Context, opts Options) (Translator, error) {
		gotOpts = opts
		return fake, nil
	}, Options{InputLanguage: "Turkish"}, 2, nil)
	if err != nil {
		t.Fatalf("NewSegmentTranslator error: %v", err)
	}

	info, err := language.Lookup("de")
	if err != nil {
		t.Fatal(err)
	}

	segs := []subtitle.Segment{
		{Start: 0, End: 2e9, Text: "merhaba"},
		{Start: 2e9, End: 3e9, Text: "  "},
		{Start: 3e9, End: 5e9, Text: "dünya"},
	}
	out, err := st.TranslateSegments(context.Background(), segs, info)
	if err != nil {
		t.Fatalf("TranslateSegments error: %v", err)
	}

	if gotOpts.TargetLanguage != "German" || gotOpts.InputLanguage != "Turkish" {
		t.Errorf("translator options = %+v", gotOpts)
	}
	if out[0].Text != "de:merhaba" || out[1].Text != "  " || out[2].Text != "de:dünya" {
		t.Errorf("texts = %q, %q, %q", out[0].Text, out[1].Text, out[2].Text)
	}
	for i := range segs {
		if out[i].Start != segs[i].Start || out[i].End != segs[i].End {
			t.Errorf("segment %d timing changed", i)
		}
	}
	if segs[0].Text != "merhaba" {
		t.Error("input segments were mutated")
	}
}

func TestSegmentTranslatorSameLanguageIsCopy(t *testing.T) {
	st, err := NewSegmentTranslator(func(context.Context, Options) (Translator, error) {
		t.Fatal("no translator expected for the source language")
		return nil, nil
	}, Options{InputLanguage: "english"}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	info, _ := language.Lookup("en")

	out, err := st.TranslateSegments(context.Background(), []subtitle.Segment{{End: 1e9, Text: "hi"}}, info)
	if err != nil || len(out) != 1 || out[0].Text != "hi" {
		t.Fatalf("got %+v, %v", out, err)
	}
}

func TestNewSegmentTranslatorRequiresConstructor(t *testing.T) {
	if _, err := NewSegmentTranslator(nil, Options{}, 1, nil); err == nil {
		t.Fatal("expected error")
	}
}
