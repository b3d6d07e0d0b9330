package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
)

func openTestTemplates(t *testing.T) *TemplateStore {
	t.Helper()
	s, err := OpenTemplates(filepath.Join(t.TempDir(), "templates.db"))
	if err != nil {
		t.Fatalf("OpenTemplates: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTemplate(id, label string) *classify.Template {
	tpl := &classify.Template{
		ID:        id,
		Label:     label,
		Tolerance: 0.5,
	}
	for i := 0; i < detector.NumHandLandmarks; i++ {
		tpl.Landmarks = append(tpl.Landmarks, detector.Point3D{
			X: float64(i) * 0.1,
			Y: float64(i) * 0.2,
			Z: float64(i) * 0.01,
		})
	}
	return tpl
}

func TestTemplateStoreSaveAndList(t *testing.T) {
	s := openTestTemplates(t)

	want := sampleTemplate("tpl-1", "Hello")
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	templates, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("List returned %d templates, want 1", len(templates))
	}

	got := templates[0]
	if got.ID != want.ID || got.Label != want.Label || got.Tolerance != want.Tolerance {
		t.Errorf("got %+v, want id=%s label=%s tolerance=%v", got, want.ID, want.Label, want.Tolerance)
	}
	if len(got.Landmarks) != detector.NumHandLandmarks {
		t.Fatalf("landmark count = %d, want %d", len(got.Landmarks), detector.NumHandLandmarks)
	}
	for i, p := range got.Landmarks {
		if p != want.Landmarks[i] {
			t.Errorf("landmark %d = %+v, want %+v", i, p, want.Landmarks[i])
		}
	}
}

func TestTemplateStoreDelete(t *testing.T) {
	s := openTestTemplates(t)

	if err := s.Save(sampleTemplate("tpl-1", "Hello")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete("tpl-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	templates, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("List after delete returned %d templates, want 0", len(templates))
	}

	if err := s.Delete("tpl-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete missing template error = %v, want ErrNotFound", err)
	}
}

func TestTemplateStoreDuplicateID(t *testing.T) {
	s := openTestTemplates(t)

	if err := s.Save(sampleTemplate("tpl-1", "Hello")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(sampleTemplate("tpl-1", "Stop")); err == nil {
		t.Error("saving a duplicate id should fail")
	}
}

func TestTemplateStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.db")

	s, err := OpenTemplates(path)
	if err != nil {
		t.Fatalf("OpenTemplates: %v", err)
	}
	if err := s.Save(sampleTemplate("tpl-1", "Yes")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenTemplates(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	templates, err := reopened.List()
	if err != nil {
		t.Fatalf("List after reopen: %v", err)
	}
	if len(templates) != 1 || templates[0].Label != "Yes" {
		t.Errorf("reopened store returned %+v, want one template labeled Yes", templates)
	}
}
