package segment

import (
	"reflect"
	"strings"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \n\n\t  ", ""},
		{"single line unchanged", "La capital es Bogotá.", "La capital es Bogotá."},
		{"collapses newline runs", "a\n\n\nb", "a\nb"},
		{"collapses space runs", "a    b", "a b"},
		{"trims edges", "  hola  ", "hola"},
		{"mixed", "  primero\n\n\nsegundo   tercero ", "primero\nsegundo tercero"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBySection_EmptyInput(t *testing.T) {
	s := NewSplitter(1000, 200)

	if got := s.BySection("", "src"); len(got) != 0 {
		t.Errorf("BySection(\"\") = %v, want empty", got)
	}
	if got := s.BySection("   \n\t ", "src"); len(got) != 0 {
		t.Errorf("BySection(whitespace) = %v, want empty", got)
	}
}

func TestBySection_IntroAndHeading(t *testing.T) {
	s := NewSplitter(1000, 200)
	text := "Intro text. == History ==\nColombia declared independence in 1810."

	chunks := s.BySection(text, "wiki/Colombia")

	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %+v", len(chunks), chunks)
	}
	if chunks[0].Section != IntroSection {
		t.Errorf("first section = %q, want %q", chunks[0].Section, IntroSection)
	}
	if chunks[0].Text != "Intro text." {
		t.Errorf("intro text = %q", chunks[0].Text)
	}
	if chunks[1].Section != "History" {
		t.Errorf("second section = %q, want History", chunks[1].Section)
	}
	if !strings.Contains(chunks[1].Text, "1810") {
		t.Errorf("history text = %q", chunks[1].Text)
	}
	for _, c := range chunks {
		if c.SourceID != "wiki/Colombia" {
			t.Errorf("source = %q", c.SourceID)
		}
	}
}

func TestBySection_NoHeadings(t *testing.T) {
	s := NewSplitter(1000, 200)
	chunks := s.BySection("Texto sin encabezados.", "src")

	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Section != IntroSection {
		t.Errorf("section = %q, want %q", chunks[0].Section, IntroSection)
	}
}

func TestBySection_HeadingWithoutBodySkipped(t *testing.T) {
	s := NewSplitter(1000, 200)
	text := "Intro.\n== Vacía ==\n== Geografía ==\nLos Andes cruzan el país."

	chunks := s.BySection(text, "src")

	sections := make([]string, len(chunks))
	for i, c := range chunks {
		sections[i] = c.Section
	}
	want := []string{IntroSection, "Geografía"}
	if !reflect.DeepEqual(sections, want) {
		t.Errorf("sections = %v, want %v", sections, want)
	}
}

func TestBySection_SectionFidelity(t *testing.T) {
	s := NewSplitter(80, 20)
	text := "Preámbulo corto.\n" +
		"== Historia ==\n" + strings.Repeat("La independencia se consolidó en batallas sucesivas. ", 6) +
		"== Cultura ==\n" + strings.Repeat("El vallenato y la cumbia son géneros tradicionales. ", 6)

	chunks := s.BySection(text, "src")

	if len(chunks) < 5 {
		t.Fatalf("expected multiple chunks per section, got %d", len(chunks))
	}
	for _, c := range chunks {
		switch c.Section {
		case IntroSection:
			if !strings.Contains(c.Text, "Preámbulo") {
				t.Errorf("intro chunk carries wrong text: %q", c.Text)
			}
		case "Historia":
			if strings.Contains(c.Text, "vallenato") {
				t.Errorf("history chunk leaked culture text: %q", c.Text)
			}
		case "Cultura":
			if strings.Contains(c.Text, "independencia") {
				t.Errorf("culture chunk leaked history text: %q", c.Text)
			}
		default:
			t.Errorf("unexpected section %q", c.Section)
		}
	}
}

func TestBySection_ChunkSizeBound(t *testing.T) {
	s := NewSplitter(100, 30)
	text := strings.Repeat("palabra corta aquí ", 60) // ~1140 chars, one section

	chunks := s.BySection(text, "src")

	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := len([]rune(c.Text)); n > s.ChunkSize {
			t.Errorf("chunk %d has %d runes, exceeds %d", i, n, s.ChunkSize)
		}
	}
}

func TestBySection_OverlapWithinSection(t *testing.T) {
	s := NewSplitter(100, 30)
	text := strings.Repeat("palabra corta aquí ", 60)

	chunks := s.BySection(text, "src")

	for i := 1; i < len(chunks); i++ {
		// The start of each subsequent chunk must repeat text from the
		// previous chunk when overlap is configured.
		prefix := chunks[i].Text
		if len(prefix) > 15 {
			prefix = prefix[:15]
		}
		if !strings.Contains(chunks[i-1].Text, prefix) {
			t.Errorf("chunk %d does not overlap its predecessor:\nprev: %q\ncurr: %q",
				i, chunks[i-1].Text, chunks[i].Text)
		}
	}
}

func TestBySection_NoOverlapAcrossSections(t *testing.T) {
	s := NewSplitter(60, 20)
	text := "== Primera ==\n" + strings.Repeat("uno dos tres cuatro ", 10) +
		"== Segunda ==\nTexto distinto por completo."

	chunks := s.BySection(text, "src")

	var last string
	for _, c := range chunks {
		if c.Section == "Segunda" {
			last = c.Text
		}
	}
	if strings.Contains(last, "cuatro") {
		t.Errorf("second section chunk contains first section text: %q", last)
	}
}

func TestBySection_Deterministic(t *testing.T) {
	s := NewSplitter(90, 25)
	text := "Inicio.\n== Economía ==\n" + strings.Repeat("El café es una exportación clave. ", 12)

	first := s.BySection(text, "src")
	for i := 0; i < 5; i++ {
		again := s.BySection(text, "src")
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\nfirst: %+v\nagain: %+v", i, first, again)
		}
	}
}

func TestSplit_UnsplittableTokenHardCut(t *testing.T) {
	s := NewSplitter(20, 5)
	text := strings.Repeat("x", 50) // no spaces anywhere

	chunks := s.BySection(text, "src")

	if len(chunks) < 2 {
		t.Fatalf("expected hard-cut chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c.Text)) > s.ChunkSize {
			t.Errorf("chunk %d exceeds size after hard cut: %d", i, len(c.Text))
		}
	}
}

func TestNewSplitter_Defaults(t *testing.T) {
	s := NewSplitter(0, -1)
	if s.ChunkSize != DefaultChunkSize {
		t.Errorf("ChunkSize = %d, want %d", s.ChunkSize, DefaultChunkSize)
	}
	if s.ChunkOverlap != 0 {
		t.Errorf("ChunkOverlap = %d, want 0", s.ChunkOverlap)
	}

	s = NewSplitter(100, 100) // overlap >= size is invalid
	if s.ChunkOverlap != 0 {
		t.Errorf("ChunkOverlap = %d, want 0 for overlap >= size", s.ChunkOverlap)
	}
}
