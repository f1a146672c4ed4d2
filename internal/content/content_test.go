package content

import (
	"testing"

	"github.com/teamcollar/stem-assessment/internal/model"
)

func TestSectionLayout(t *testing.T) {
	sections := Sections()
	if len(sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(sections))
	}

	titles := []string{"Science", "Technology", "Engineering Awareness", "Mathematics"}
	for i, section := range sections {
		if section.ID != i+1 {
			t.Fatalf("section %d has id %d", i, section.ID)
		}
		if section.Title != titles[i] {
			t.Fatalf("section %d titled %q, want %q", section.ID, section.Title, titles[i])
		}
		if section.QuestionCount != 20 {
			t.Fatalf("section %d has %d questions", section.ID, section.QuestionCount)
		}
		if section.Completed {
			t.Fatalf("section %d seeded as completed", section.ID)
		}
	}
}

func TestQuestionSeeding(t *testing.T) {
	sections := Sections()
	questions := Questions(sections)

	if len(questions) != 80 {
		t.Fatalf("expected 80 questions, got %d", len(questions))
	}
	for i, q := range questions {
		if q.ID != i+1 {
			t.Fatalf("question ids not contiguous: index %d has id %d", i, q.ID)
		}
		wantSection := i/20 + 1
		if q.SectionID != wantSection {
			t.Fatalf("question %d assigned to section %d, want %d", q.ID, q.SectionID, wantSection)
		}
		wantStatus := model.StatusNotVisited
		if q.ID == 1 {
			wantStatus = model.StatusCurrent
		}
		if q.Status != wantStatus {
			t.Fatalf("question %d seeded as %s", q.ID, q.Status)
		}
		if q.Answer != nil {
			t.Fatalf("question %d seeded with an answer", q.ID)
		}
	}
}
