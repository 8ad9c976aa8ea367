package anki

import (
	"fmt"
	"sort"
)

// Reconcile joins raw model, field, and template rows into resolved
// Models keyed by model id.
//
// A model's slots are the ordinal-wise intersection of its field rows and
// template rows. Models that appear on only one side of the join, and
// models with no row in the notetypes table, are dropped entirely. Every
// dropped model, dropped slot, and duplicate ordinal produces a warning;
// nothing fails.
func Reconcile(models []RawModel, fields []RawField, templates []RawTemplate) (map[ModelID]Model, []string) {
	var warnings []string

	fieldsByModel := make(map[ModelID]map[Ordinal]RawField)
	for _, f := range fields {
		group, ok := fieldsByModel[f.ModelID]
		if !ok {
			group = make(map[Ordinal]RawField)
			fieldsByModel[f.ModelID] = group
		}
		if _, dup := group[f.Ord]; dup {
			warnings = append(warnings, fmt.Sprintf("model %d: duplicate field ordinal %d, keeping the last row", f.ModelID, f.Ord))
		}
		group[f.Ord] = f
	}

	templatesByModel := make(map[ModelID]map[Ordinal]RawTemplate)
	for _, t := range templates {
		group, ok := templatesByModel[t.ModelID]
		if !ok {
			group = make(map[Ordinal]RawTemplate)
			templatesByModel[t.ModelID] = group
		}
		if _, dup := group[t.Ord]; dup {
			warnings = append(warnings, fmt.Sprintf("model %d: duplicate template ordinal %d, keeping the last row", t.ModelID, t.Ord))
		}
		group[t.Ord] = t
	}

	// Warnings come out in model id order so runs are reproducible.
	seen := make(map[ModelID]bool)
	var mids []ModelID
	for mid := range fieldsByModel {
		seen[mid] = true
		mids = append(mids, mid)
	}
	for mid := range templatesByModel {
		if !seen[mid] {
			mids = append(mids, mid)
		}
	}
	sort.Slice(mids, func(i, j int) bool { return mids[i] < mids[j] })

	joined := make(map[ModelID]map[Ordinal]Slot)
	for _, mid := range mids {
		fieldGroup, hasFields := fieldsByModel[mid]
		templateGroup, hasTemplates := templatesByModel[mid]
		if !hasTemplates {
			warnings = append(warnings, fmt.Sprintf("model %d: fields but no templates, dropping model", mid))
			continue
		}
		if !hasFields {
			warnings = append(warnings, fmt.Sprintf("model %d: templates but no fields, dropping model", mid))
			continue
		}
		slots := make(map[Ordinal]Slot)
		for _, ord := range sortedOrdinals(fieldGroup, templateGroup) {
			f, inFields := fieldGroup[ord]
			tmpl, inTemplates := templateGroup[ord]
			switch {
			case inFields && inTemplates:
				slots[ord] = Slot{Field: f, Template: tmpl}
			case inFields:
				warnings = append(warnings, fmt.Sprintf("model %d: field %q (ordinal %d) has no matching template, dropping slot", mid, f.Name, ord))
			default:
				warnings = append(warnings, fmt.Sprintf("model %d: template %q (ordinal %d) has no matching field, dropping slot", mid, tmpl.Name, ord))
			}
		}
		joined[mid] = slots
	}

	resolved := make(map[ModelID]Model, len(joined))
	for _, m := range models {
		slots, ok := joined[m.ID]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("model %q (%d): no field and template pairing, dropping model", m.Name, m.ID))
			continue
		}
		resolved[m.ID] = Model{ID: m.ID, Name: m.Name, Slots: slots}
	}
	return resolved, warnings
}

// sortedOrdinals returns the union of the two groups' ordinals in
// ascending order.
func sortedOrdinals(fields map[Ordinal]RawField, templates map[Ordinal]RawTemplate) []Ordinal {
	seen := make(map[Ordinal]bool, len(fields))
	var ords []Ordinal
	for ord := range fields {
		seen[ord] = true
		ords = append(ords, ord)
	}
	for ord := range templates {
		if !seen[ord] {
			ords = append(ords, ord)
		}
	}
	sort.Slice(ords, func(i, j int) bool { return ords[i] < ords[j] })
	return ords
}
