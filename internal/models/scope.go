package models

import "strings"

// ScopeKind tags how a lecturer's review scope was resolved.
type ScopeKind string

const (
	// ScopeExplicit means the lecturer has an explicit teaching-subject
	// (or programme) assignment; review rights are a set-membership test.
	ScopeExplicit ScopeKind = "EXPLICIT"
	// ScopeLegacy means only the pre-migration single programme field is
	// set; review rights fall back to programme equality.
	ScopeLegacy ScopeKind = "LEGACY"
	// ScopeUnassigned is the data-quality failure state: the lecturer can
	// review nothing, and UIs must show this distinctly from an empty
	// pending queue.
	ScopeUnassigned ScopeKind = "UNASSIGNED"
)

// legacyProgrammeSentinel marks records whose legacy field was filled with a
// placeholder rather than a real programme.
const legacyProgrammeSentinel = "N/A"

// ReviewerScope is the resolved set of subjects/programmes a lecturer may
// approve materials for. It is computed once when the lecturer profile is
// loaded, never re-derived ad hoc inside authorization checks.
type ReviewerScope struct {
	Kind         ScopeKind
	SubjectCodes map[string]struct{}
	ProgrammeIDs map[string]struct{}
	// LegacyProgrammeID is set only for Kind == ScopeLegacy.
	LegacyProgrammeID string
}

// ResolveReviewerScope applies the two-path resolution rule: an explicit
// subject/programme assignment wins; otherwise a usable legacy programme
// value; otherwise unassigned.
func ResolveReviewerScope(subjectCodes, programmeIDs []string, legacyProgramme *string) ReviewerScope {
	if len(subjectCodes) > 0 || len(programmeIDs) > 0 {
		scope := ReviewerScope{
			Kind:         ScopeExplicit,
			SubjectCodes: make(map[string]struct{}, len(subjectCodes)),
			ProgrammeIDs: make(map[string]struct{}, len(programmeIDs)),
		}
		for _, code := range subjectCodes {
			scope.SubjectCodes[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
		}
		for _, id := range programmeIDs {
			scope.ProgrammeIDs[strings.TrimSpace(id)] = struct{}{}
		}
		return scope
	}
	if legacyProgramme != nil {
		value := strings.TrimSpace(*legacyProgramme)
		if value != "" && !strings.EqualFold(value, legacyProgrammeSentinel) {
			return ReviewerScope{Kind: ScopeLegacy, LegacyProgrammeID: value}
		}
	}
	return ReviewerScope{Kind: ScopeUnassigned}
}

// Covers reports whether the scope authorizes review of a material keyed by
// subject code and owning programme.
func (s ReviewerScope) Covers(subjectCode, programmeID string) bool {
	switch s.Kind {
	case ScopeExplicit:
		if _, ok := s.SubjectCodes[strings.ToUpper(strings.TrimSpace(subjectCode))]; ok {
			return true
		}
		_, ok := s.ProgrammeIDs[programmeID]
		return ok
	case ScopeLegacy:
		return s.LegacyProgrammeID == programmeID
	default:
		return false
	}
}

// Empty reports whether the scope authorizes nothing.
func (s ReviewerScope) Empty() bool {
	return s.Kind == ScopeUnassigned
}
