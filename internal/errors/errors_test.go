package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildError_MessageFormat(t *testing.T) {
	err := New(CategoryResolve, SeverityWarning, "no handler matched")
	require.Equal(t, "resolve (warning): no handler matched", err.Error())
}

func TestBuildError_WrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(cause, CategoryFileSystem, SeverityFatal, "write failed")
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "disk full")
}

func TestIsCategory_ThroughWrapping(t *testing.T) {
	inner := New(CategoryGit, SeverityError, "push rejected")
	outer := fmt.Errorf("deploy: %w", inner)
	require.True(t, IsCategory(outer, CategoryGit))
	require.False(t, IsCategory(outer, CategoryBuild))
}

func TestGetCategory_DefaultsToInternal(t *testing.T) {
	require.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
}

func TestExtensionCollisionSentinel(t *testing.T) {
	err := fmt.Errorf("register md: %w", ErrExtensionCollision)
	require.ErrorIs(t, err, ErrExtensionCollision)
}
