package ticketdive

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"nextlive/internal/event"
	"nextlive/internal/filter"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/artist_page.html")
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	return string(data)
}

func TestExtractEventsFixture(t *testing.T) {
	candidates := ExtractEvents(loadFixture(t))

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(candidates), candidates)
	}

	first := candidates[0]
	if first.ID != "abc123" {
		t.Errorf("expected first candidate id abc123, got %q", first.ID)
	}
	if first.Name != "春の単独公演" {
		t.Errorf("expected name 春の単独公演, got %q", first.Name)
	}
	if first.Date != "2026/3/15" {
		t.Errorf("expected date 2026/3/15, got %q", first.Date)
	}
	if first.Venue != "Zepp Tokyo" {
		t.Errorf("expected venue Zepp Tokyo, got %q", first.Venue)
	}
	if first.URL != "https://ticketdive.com/event/abc123" {
		t.Errorf("expected constructed event URL, got %q", first.URL)
	}

	// The second card's name carries the 受付中『...』 wrapper; cleanup must
	// strip it and keep the candidate.
	second := candidates[1]
	if second.Name != "冬のアンコール公演" {
		t.Errorf("expected cleaned name 冬のアンコール公演, got %q", second.Name)
	}
	if second.Date != "2026/2/1" {
		t.Errorf("expected date 2026/2/1, got %q", second.Date)
	}
	if second.Venue != "大阪城ホール" {
		t.Errorf("expected venue 大阪城ホール, got %q", second.Venue)
	}
}

func TestExtractEventsDateIsMandatory(t *testing.T) {
	// The nodate99 card in the fixture has no date token in its window and
	// must be absent from the output.
	for _, c := range ExtractEvents(loadFixture(t)) {
		if c.ID == "nodate99" {
			t.Fatalf("candidate without a date was emitted: %+v", c)
		}
	}
}

func TestExtractEventsNoAnchors(t *testing.T) {
	inputs := []string{
		"",
		"<html><body><p>2026/3/15 Zepp Tokyo</p></body></html>",
		"<html><body><a href=\"/artist/foo\">link</a></body></html>",
	}
	for _, html := range inputs {
		if got := ExtractEvents(html); len(got) != 0 {
			t.Errorf("expected no candidates for %q, got %+v", html, got)
		}
	}
}

func TestExtractEventsFilterIdempotence(t *testing.T) {
	// Re-running the validity filters on accepted values must pass.
	for _, c := range ExtractEvents(loadFixture(t)) {
		if c.Name == "" || c.Venue == "" {
			t.Fatalf("emitted candidate with empty field: %+v", c)
		}
		if !filter.ValidEventName(c.Name) {
			t.Errorf("accepted name %q fails re-validation", c.Name)
		}
		if !filter.ValidVenue(c.Venue) {
			t.Errorf("accepted venue %q fails re-validation", c.Venue)
		}
	}
}

func TestExtractEventsRejectsBoilerplateName(t *testing.T) {
	html := `<html><body>
<a href="/event/bp1">リンク</a>
<div>受付中</div>
<p>2026/5/10</p>
<span class="venue">Zepp Nagoya</span>
</body></html>`

	if got := ExtractEvents(html); len(got) != 0 {
		t.Fatalf("boilerplate-only name should drop the candidate, got %+v", got)
	}
}

func TestExtractEventsRejectsCSSLeakName(t *testing.T) {
	html := `<html><body>
<a href="/event/css1">リンク</a>
<div>padding: 10px solid</div>
<p>2026/5/10</p>
<span class="venue">Zepp Nagoya</span>
</body></html>`

	for _, c := range ExtractEvents(html) {
		if strings.Contains(c.Name, "padding") {
			t.Fatalf("CSS leak emitted as event name: %+v", c)
		}
	}
}

func TestExtractEventsVenueFallback(t *testing.T) {
	// No class-labeled venue element: the positional fallback should take the
	// first plausible chunk after the date.
	html := `<html><body>
<a href="/event/fb1">リンク</a>
<h3>夏のホールツアー初日</h3>
<p>2026/7/20</p>
<br>名古屋ダイアモンドホール<br>
</body></html>`

	got := ExtractEvents(html)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Venue != "名古屋ダイアモンドホール" {
		t.Errorf("expected fallback venue 名古屋ダイアモンドホール, got %q", got[0].Venue)
	}
}

func TestExtractEventsVenuePlaceholderDropped(t *testing.T) {
	html := `<html><body>
<a href="/event/tbd1">リンク</a>
<h3>秋のスペシャルライブ</h3>
<p>2026/9/5</p>
<span class="venue">会場未定</span>
</body></html>`

	if got := ExtractEvents(html); len(got) != 0 {
		t.Fatalf("placeholder venue should drop the candidate, got %+v", got)
	}
}

func TestExtractEventsSVGPollutionStripped(t *testing.T) {
	// Digit runs inside SVG markup must not be mistaken for dates, and SVG
	// fragments must not leak into names or venues.
	html := `<html><body>
<a href="/event/svg1">リンク</a>
<svg viewBox="0 0 24 24"><path fill-rule="evenodd" d="M2024/1/1 0h24v24H0z"></path></svg>
<h3>記念ワンマンライブ</h3>
<p>2026/6/1</p>
<span class="venue">日本武道館</span>
</body></html>`

	got := ExtractEvents(html)
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d: %+v", len(got), got)
	}
	if got[0].Date != "2026/6/1" {
		t.Errorf("SVG digits picked up as date: got %q", got[0].Date)
	}
	if got[0].Venue != "日本武道館" {
		t.Errorf("expected venue 日本武道館, got %q", got[0].Venue)
	}
}

func TestExtractEventsIsPure(t *testing.T) {
	html := loadFixture(t)
	a := ExtractEvents(html)
	b := ExtractEvents(html)
	if len(a) != len(b) {
		t.Fatalf("extraction is not repeatable: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("candidate %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestExtractEventsForwardWindowBound(t *testing.T) {
	// The context windows are byte offsets into the document, not rune
	// counts. 2400 three-byte runes of padding push the date token past the
	// 7000-byte forward window even though it sits well inside 7000 runes.
	const page = `<html><body><a href="/event/%s">リンク</a><p>%s</p><h3>%s</h3><p>2026/8/1</p><span class="venue">Zepp Sapporo</span></body></html>`

	t.Run("date beyond the window drops the candidate", func(t *testing.T) {
		html := fmt.Sprintf(page, "far1", strings.Repeat("あ", 2400), "遠い公演の告知")
		if got := ExtractEvents(html); len(got) != 0 {
			t.Fatalf("expected no candidates past the forward window, got %+v", got)
		}
	})

	t.Run("date inside the window survives", func(t *testing.T) {
		html := fmt.Sprintf(page, "near1", strings.Repeat("あ", 2000), "近い公演の告知")
		got := ExtractEvents(html)
		if len(got) != 1 {
			t.Fatalf("expected 1 candidate, got %d: %+v", len(got), got)
		}
		if got[0].Date != "2026/8/1" {
			t.Errorf("unexpected date %q", got[0].Date)
		}
		if got[0].Name != "近い公演の告知" {
			t.Errorf("unexpected name %q", got[0].Name)
		}
	})
}

func TestExtractEventsNameLengthBounds(t *testing.T) {
	const page = `<html><body>
<a href="/event/len1">リンク</a>
<h3>%s</h3>
<p>2026/8/1</p>
<span class="venue">Zepp Sapporo</span>
</body></html>`

	tests := []struct {
		name  string
		title string
		want  int
	}{
		{"4 runes rejected", "四字名前", 0},
		{"5 runes accepted", "五字の名前", 1},
		{"100 runes accepted", strings.Repeat("長", 99) + "祭", 1},
		{"101 runes rejected", strings.Repeat("長", 101), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractEvents(fmt.Sprintf(page, tt.title))
			if len(got) != tt.want {
				t.Fatalf("expected %d candidates, got %d: %+v", tt.want, len(got), got)
			}
			if tt.want == 1 && got[0].Name != tt.title {
				t.Errorf("expected name %q, got %q", tt.title, got[0].Name)
			}
		})
	}
}

func TestExtractEventsVenueFallbackLengthBounds(t *testing.T) {
	// No class-labeled element, so the positional fallback and its 3-99
	// bounds apply.
	const page = `<html><body>
<a href="/event/vb1">リンク</a>
<h3>夏のホール公演</h3>
<p>2026/8/1</p>
<br>%s<br>
</body></html>`

	tests := []struct {
		name  string
		venue string
		want  int
	}{
		{"2 runes rejected", "堂島", 0},
		{"3 runes accepted", "武道館", 1},
		{"99 runes accepted", strings.Repeat("会", 98) + "館", 1},
		{"100 runes rejected", strings.Repeat("会", 100), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractEvents(fmt.Sprintf(page, tt.venue))
			if len(got) != tt.want {
				t.Fatalf("expected %d candidates, got %d: %+v", tt.want, len(got), got)
			}
			if tt.want == 1 && got[0].Venue != tt.venue {
				t.Errorf("expected venue %q, got %q", tt.venue, got[0].Venue)
			}
		})
	}
}

func TestNearestSelection(t *testing.T) {
	candidates := []event.Candidate{
		{ID: "a", Date: "2026/3/15"},
		{ID: "b", Date: "2026/2/01"},
	}
	nearest, ok := event.Nearest(candidates)
	if !ok {
		t.Fatal("expected a selection")
	}
	if nearest.ID != "b" {
		t.Errorf("expected nearest 2026/2/01, got %q (%s)", nearest.Date, nearest.ID)
	}
}

func TestEventURL(t *testing.T) {
	if got := EventURL("abc123"); got != "https://ticketdive.com/event/abc123" {
		t.Errorf("unexpected event URL %q", got)
	}
}
