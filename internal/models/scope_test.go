package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestResolveReviewerScopePrefersExplicit(t *testing.T) {
	scope := ResolveReviewerScope([]string{"dpp20023", " DPP20033 "}, nil, strPtr("prog-1"))
	require.Equal(t, ScopeExplicit, scope.Kind)
	require.True(t, scope.Covers("DPP20023", "prog-9"))
	require.True(t, scope.Covers("dpp20033", "prog-9"))
	require.False(t, scope.Covers("DPP20099", "prog-9"))
}

func TestResolveReviewerScopeExplicitProgrammes(t *testing.T) {
	scope := ResolveReviewerScope(nil, []string{"prog-1"}, nil)
	require.Equal(t, ScopeExplicit, scope.Kind)
	require.True(t, scope.Covers("ANY123", "prog-1"))
	require.False(t, scope.Covers("ANY123", "prog-2"))
}

func TestResolveReviewerScopeLegacyFallback(t *testing.T) {
	scope := ResolveReviewerScope(nil, nil, strPtr("prog-1"))
	require.Equal(t, ScopeLegacy, scope.Kind)
	require.True(t, scope.Covers("DPP20023", "prog-1"))
	require.False(t, scope.Covers("DPP20023", "prog-2"))
}

func TestResolveReviewerScopeUnassigned(t *testing.T) {
	for _, legacy := range []*string{nil, strPtr(""), strPtr("  "), strPtr("N/A"), strPtr("n/a")} {
		scope := ResolveReviewerScope(nil, nil, legacy)
		require.Equal(t, ScopeUnassigned, scope.Kind)
		require.True(t, scope.Empty())
		require.False(t, scope.Covers("DPP20023", "prog-1"))
	}
}
