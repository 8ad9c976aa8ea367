package anki

import (
	"strings"
	"testing"
)

func field(mid ModelID, ord Ordinal, name string) RawField {
	return RawField{ModelID: mid, Ord: ord, Name: name}
}

func template(mid ModelID, ord Ordinal, name string) RawTemplate {
	return RawTemplate{ModelID: mid, Ord: ord, Name: name}
}

func TestReconcileBasicModel(t *testing.T) {
	models := []RawModel{{ID: 1, Name: "Basic"}}
	fields := []RawField{field(1, 0, "Front"), field(1, 1, "Back")}
	templates := []RawTemplate{template(1, 0, "Card 1"), template(1, 1, "Card 2")}

	resolved, warnings := Reconcile(models, fields, templates)
	if len(warnings) != 0 {
		t.Errorf("Reconcile() warnings = %v, want none", warnings)
	}
	m, ok := resolved[1]
	if !ok {
		t.Fatal("Reconcile() dropped model 1")
	}
	if m.Name != "Basic" {
		t.Errorf("model name = %q, want %q", m.Name, "Basic")
	}
	if len(m.Slots) != 2 {
		t.Fatalf("len(Slots) = %d, want 2", len(m.Slots))
	}
	ordered := m.FieldsInOrder()
	if ordered[0].Name != "Front" || ordered[1].Name != "Back" {
		t.Errorf("FieldsInOrder() = %v, want Front then Back", ordered)
	}
}

func TestReconcileOrdinalIntersection(t *testing.T) {
	// Two field ordinals but only one template ordinal: the join keeps
	// the shared ordinal and warns about the orphan.
	models := []RawModel{{ID: 7, Name: "Lopsided"}}
	fields := []RawField{field(7, 0, "Front"), field(7, 1, "Back")}
	templates := []RawTemplate{template(7, 0, "Card 1")}

	resolved, warnings := Reconcile(models, fields, templates)
	m, ok := resolved[7]
	if !ok {
		t.Fatal("Reconcile() dropped model 7")
	}
	if len(m.Slots) != 1 {
		t.Fatalf("len(Slots) = %d, want 1", len(m.Slots))
	}
	if _, ok := m.Slots[0]; !ok {
		t.Error("Slots missing ordinal 0")
	}
	if !containsWarning(warnings, "ordinal 1") {
		t.Errorf("warnings = %v, want a dropped-slot warning for ordinal 1", warnings)
	}
}

func TestReconcileDropsPartialModels(t *testing.T) {
	tests := []struct {
		name      string
		models    []RawModel
		fields    []RawField
		templates []RawTemplate
		wantWarn  string
	}{
		{
			name:     "fields but no templates",
			models:   []RawModel{{ID: 2, Name: "NoTemplates"}},
			fields:   []RawField{field(2, 0, "Front")},
			wantWarn: "fields but no templates",
		},
		{
			name:      "templates but no fields",
			models:    []RawModel{{ID: 3, Name: "NoFields"}},
			templates: []RawTemplate{template(3, 0, "Card 1")},
			wantWarn:  "templates but no fields",
		},
		{
			name:     "model row with no children",
			models:   []RawModel{{ID: 4, Name: "Bare"}},
			wantWarn: "no field and template pairing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, warnings := Reconcile(tt.models, tt.fields, tt.templates)
			if len(resolved) != 0 {
				t.Errorf("Reconcile() = %v, want empty", resolved)
			}
			if !containsWarning(warnings, tt.wantWarn) {
				t.Errorf("warnings = %v, want one containing %q", warnings, tt.wantWarn)
			}
		})
	}
}

func TestReconcileDuplicateOrdinalKeepsLastRow(t *testing.T) {
	models := []RawModel{{ID: 5, Name: "Dup"}}
	fields := []RawField{field(5, 0, "First"), field(5, 0, "Second")}
	templates := []RawTemplate{template(5, 0, "Card 1")}

	resolved, warnings := Reconcile(models, fields, templates)
	m, ok := resolved[5]
	if !ok {
		t.Fatal("Reconcile() dropped model 5")
	}
	if got := m.Slots[0].Field.Name; got != "Second" {
		t.Errorf("slot 0 field = %q, want %q", got, "Second")
	}
	if !containsWarning(warnings, "duplicate field ordinal 0") {
		t.Errorf("warnings = %v, want a duplicate-ordinal warning", warnings)
	}
}

func TestReconcileIgnoresChildlessRowsQuietly(t *testing.T) {
	// Field and template rows for a model id with no notetypes row still
	// produce a join, but only models present in the notetypes table come
	// out resolved.
	fields := []RawField{field(9, 0, "Front")}
	templates := []RawTemplate{template(9, 0, "Card 1")}

	resolved, _ := Reconcile(nil, fields, templates)
	if len(resolved) != 0 {
		t.Errorf("Reconcile() = %v, want empty", resolved)
	}
}

func containsWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
