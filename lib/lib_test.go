package lib

import (
	"testing"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

func TestFilterPageTargets(t *testing.T) {
	got := filterPageTargets([]ChromeTarget{
		{ID: "1", Type: "page", URL: "http://localhost:8000/"},
		{ID: "2", Type: "page", URL: "chrome://newtab/"},
		{ID: "3", Type: "service_worker", URL: "http://localhost:8000/sw.js"},
		{ID: "4", Type: "page", URL: "chrome-untrusted://new-tab-page/"},
		{ID: "5", Type: "page", URL: "https://example.com/"},
	})
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "5" {
		t.Fatalf("unexpected pages: %+v", got)
	}
}

func TestMatchTargetBySelector(t *testing.T) {
	pages := []ChromeTarget{
		{ID: "1", URL: "https://example.com/docs"},
		{ID: "2", URL: "http://localhost:8000/app"},
		{ID: "3", URL: "http://localhost:8000/admin"},
	}
	cases := []struct {
		selector string
		want     string
	}{
		{"", ""},
		{"http://LOCALHOST:8000", "2"},
		{"http://localhost:8000/ad", "3"},
		{"https://example", "1"},
		{"localhost", ""},
	}
	for _, c := range cases {
		if got := matchTargetBySelector(pages, c.selector); got != c.want {
			t.Errorf("%q: got %q want %q", c.selector, got, c.want)
		}
	}
}

func TestSelectPreferredFromInfo(t *testing.T) {
	pages := []ChromeTarget{{ID: "a"}, {ID: "b"}}

	infos := []*target.Info{
		nil,
		{TargetID: "x", Type: "page", Attached: true},
		{TargetID: "a", Type: "page"},
		{TargetID: "b", Type: "page", Attached: true},
	}
	if got := selectPreferredFromInfo(pages, infos); got != "b" {
		t.Fatalf("attached page should win, got %q", got)
	}

	infos = []*target.Info{
		{TargetID: "b", Type: "iframe", Attached: true},
		{TargetID: "b", Type: "page"},
		{TargetID: "a", Type: "page"},
	}
	if got := selectPreferredFromInfo(pages, infos); got != "b" {
		t.Fatalf("first known page should win, got %q", got)
	}

	if got := selectPreferredFromInfo(nil, infos); got != "" {
		t.Fatalf("no pages, got %q", got)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("1234"); got != "1234" {
		t.Fatal(got)
	}
	if got := shortID("0123456789ABCDEF"); got != "01234567" {
		t.Fatal(got)
	}
}

func TestTargetArgsSelector(t *testing.T) {
	if got := (TargetArgs{Target: "  http://localhost:8000 "}).Selector(); got != "http://localhost:8000" {
		t.Fatalf("got %q", got)
	}
}

func TestSetupContextAlwaysRemote(t *testing.T) {
	ctx, cancel := SetupContextWithTimeout(time.Second)
	defer cancel()
	c := chromedp.FromContext(ctx)
	if c == nil {
		t.Fatal("no chromedp context")
	}
	if _, ok := c.Allocator.(*chromedp.RemoteAllocator); !ok {
		t.Fatalf("allocator %T, want a remote allocator", c.Allocator)
	}
}
