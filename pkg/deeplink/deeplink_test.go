package deeplink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaterialURL(t *testing.T) {
	b := NewBuilder("https://edushare.example.edu/")
	require.Equal(t, "https://edushare.example.edu/materials/mat-1", b.Material("mat-1"))
}

func TestCommentURLAnchorsComment(t *testing.T) {
	b := NewBuilder("https://edushare.example.edu")
	require.Equal(t, "https://edushare.example.edu/materials/mat-1?comment=cmt-9", b.Comment("mat-1", "cmt-9"))
}

func TestPendingQueueURL(t *testing.T) {
	b := NewBuilder("http://localhost:8080")
	require.Equal(t, "http://localhost:8080/review/pending", b.PendingQueue(""))
	require.Equal(t, "http://localhost:8080/review/pending?subject=DPP20023", b.PendingQueue("DPP20023"))
}

func TestEscapesUnsafeIdentifiers(t *testing.T) {
	b := NewBuilder("http://localhost:8080")
	require.Equal(t, "http://localhost:8080/materials/a%2Fb", b.Material("a/b"))
}
