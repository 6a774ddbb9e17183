package survey

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/nickmarkin/AAA-Summarizer/core"
)

// REDCap-style wide CSV contract. One row per (faculty, quarter) submission:
//
//	email, first_name, last_name, quarter, complete
//	<category>__<subsection>__trig                  yes/no trigger
//	<category>__<subsection>__<n>__<field>          n-th entry field (1-based)
//
// Unrecognized columns pass through as display-only entry metadata; columns
// that match no pattern at all are ignored.

var requiredImportColumns = []string{"email", "quarter"}

type (
	// ParsedFaculty is one faculty member's accumulated import data.
	ParsedFaculty struct {
		Email         string
		DisplayName   string
		Quarters      []string
		Submissions   []QuarterSubmission
		Activities    Tree // union across quarters, for storage
		Totals        map[string]int
		Total         int
		ActivityCount int
		HasIncomplete bool
	}

	// ParsedImport is the outcome of parsing one survey CSV, pending review
	// and confirmation.
	ParsedImport struct {
		Faculty map[string]*ParsedFaculty // by lowercased email
	}
)

// ParseCSV parses a REDCap survey export. Totals are computed per quarter at
// parse time with the supplied aggregator and summed across quarters, so the
// stored totals count every subsection exactly once no matter how many
// quarters re-display carried entries.
// A missing required column rejects the whole file with a ValidationError
// naming the missing columns.
func ParseCSV(r io.Reader, cfg *Config, agg *Aggregator) (*ParsedImport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "reading CSV header")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[normalizeHeader(name)] = i
	}

	var missing []core.FieldError
	for _, req := range requiredImportColumns {
		if _, ok := cols[req]; !ok {
			missing = append(missing, core.FieldError{Field: req, Error: "missing required column"})
		}
	}
	if len(missing) > 0 {
		return nil, core.NewValidationError(errors.New("survey CSV is missing required columns"), missing...)
	}

	parsed := &ParsedImport{Faculty: make(map[string]*ParsedFaculty)}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "reading CSV row")
		}

		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		email := core.CleanString(get("email"), true /* lower */)
		quarter := get("quarter")
		if email == "" || quarter == "" {
			continue
		}

		fac := parsed.Faculty[email]
		if fac == nil {
			fac = &ParsedFaculty{
				Email:      email,
				Activities: make(Tree),
				Totals:     make(map[string]int),
			}
			parsed.Faculty[email] = fac
		}
		if name := displayName(get("last_name"), get("first_name")); name != "" {
			fac.DisplayName = name
		}
		if isIncomplete(get("complete")) {
			fac.HasIncomplete = true
		}

		tree := parseRowTree(header, row, cols)
		fac.Submissions = append(fac.Submissions, QuarterSubmission{Quarter: quarter, Data: tree})
		if !containsString(fac.Quarters, quarter) {
			fac.Quarters = append(fac.Quarters, quarter)
		}
	}

	// accumulate per-quarter totals and the stored activity union
	for _, fac := range parsed.Faculty {
		sort.SliceStable(fac.Submissions, func(i, j int) bool {
			return QuarterBefore(fac.Submissions[i].Quarter, fac.Submissions[j].Quarter)
		})
		sort.SliceStable(fac.Quarters, func(i, j int) bool {
			return QuarterBefore(fac.Quarters[i], fac.Quarters[j])
		})
		for _, qs := range fac.Submissions {
			totals, grand := agg.Totals(qs.Data)
			for cat, pts := range totals {
				fac.Totals[cat] += pts
			}
			fac.Total += grand
			mergeQuarterIntoUnion(fac.Activities, qs, cfg)
		}
		for _, subs := range fac.Activities {
			for _, data := range subs {
				fac.ActivityCount += len(data.Entries)
			}
		}
	}
	return parsed, nil
}

func normalizeHeader(name string) string {
	return strings.ReplaceAll(core.CleanString(name, true /* lower */), " ", "_")
}

func displayName(last, first string) string {
	if last == "" && first == "" {
		return ""
	}
	return fmt.Sprintf("%s, %s", last, first)
}

func isIncomplete(v string) bool {
	switch core.CleanString(v, true /* lower */) {
	case "0", "incomplete", "false":
		return true
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// parseRowTree assembles one row's activity tree from its trigger and entry
// columns.
func parseRowTree(header, row []string, cols map[string]int) Tree {
	tree := make(Tree)

	type entryKey struct {
		cat, sub string
		n        int
	}
	entries := make(map[entryKey]*Entry)

	for i, rawName := range header {
		if i >= len(row) {
			break
		}
		val := strings.TrimSpace(row[i])
		if val == "" {
			continue
		}
		parts := strings.Split(normalizeHeader(rawName), "__")
		switch {
		case len(parts) == 3 && parts[2] == "trig":
			cat, sub := parts[0], parts[1]
			if tree[cat] == nil {
				tree[cat] = make(CategoryData)
			}
			data := tree[cat][sub]
			data.Trigger = normalizeTrigger(val)
			tree[cat][sub] = data
		case len(parts) == 4:
			n, err := strconv.Atoi(parts[2])
			if err != nil || n < 1 {
				continue
			}
			key := entryKey{parts[0], parts[1], n}
			e := entries[key]
			if e == nil {
				e = &Entry{Source: SourceImported}
				entries[key] = e
			}
			setEntryField(e, parts[3], val)
		}
	}

	// attach entries in positional order
	keys := make([]entryKey, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.cat != b.cat {
			return a.cat < b.cat
		}
		if a.sub != b.sub {
			return a.sub < b.sub
		}
		return a.n < b.n
	})
	for _, k := range keys {
		if tree[k.cat] == nil {
			tree[k.cat] = make(CategoryData)
		}
		data := tree[k.cat][k.sub]
		if data.Trigger == "" {
			data.Trigger = "yes"
		}
		data.Entries = append(data.Entries, *entries[k])
		tree[k.cat][k.sub] = data
	}
	return tree
}

func normalizeTrigger(v string) string {
	switch core.CleanString(v, true /* lower */) {
	case "1", "yes", "y", "true":
		return "yes"
	case "0", "no", "n", "false":
		return "no"
	}
	return v
}

func setEntryField(e *Entry, field, val string) {
	switch field {
	case "type", "role":
		e.Type = val
	case "count":
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			e.Count = n
		}
	case "impact_factor":
		if f, err := strconv.ParseFloat(val, 64); err == nil && f > 0 {
			e.ImpactFactor = f
		}
	case "doi":
		e.DOI = val
	default:
		if e.Fields == nil {
			e.Fields = make(map[string]string)
		}
		e.Fields[field] = val
	}
}

// mergeQuarterIntoUnion folds one quarter's tree into the stored union.
// Carry-forward subsections keep only the latest owning quarter's entries
// (earlier quarters' copies are superseded); everything else concatenates.
func mergeQuarterIntoUnion(union Tree, qs QuarterSubmission, cfg *Config) {
	for cat, subs := range qs.Data {
		for sub, data := range subs {
			if len(data.Entries) == 0 && data.Trigger == "" {
				continue
			}
			if union[cat] == nil {
				union[cat] = make(CategoryData)
			}
			existing := union[cat][sub]
			if subCfg, ok := cfg.Subsection(cat, sub); ok && subCfg.CarryForward {
				// report-once subsection: the latest quarter that actually
				// reports entries supersedes earlier ones; a quarter that adds
				// nothing leaves the earlier report in place.
				if len(data.Entries) > 0 {
					union[cat][sub] = Subsection{Trigger: data.Trigger, Entries: append([]Entry(nil), data.Entries...)}
				}
				continue
			}
			if data.Trigger != "" {
				existing.Trigger = data.Trigger
			}
			existing.Entries = append(existing.Entries, data.Entries...)
			union[cat][sub] = existing
		}
	}
}
