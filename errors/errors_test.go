package errors

import (
	"fmt"
	"testing"
)

func TestError(t *testing.T) {
	// Test basic error creation
	err := New(ErrCodeRecipeNotFound, "recipe not found")
	if err.Code != ErrCodeRecipeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeRecipeNotFound, err.Code)
	}

	// Test error wrapping
	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrCodeCommandFailed, "command failed")

	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}

	// Test Is function
	if !Is(wrapped, ErrCodeCommandFailed) {
		t.Error("Is should return true for matching code")
	}

	if Is(wrapped, ErrCodeRecipeNotFound) {
		t.Error("Is should return false for non-matching code")
	}

	// Test WithDetail
	detailed := err.WithDetail("recipe", "build").WithDetail("exitCode", 2)
	if detailed.Details["recipe"] != "build" {
		t.Error("WithDetail should add details")
	}
}

func TestIsThroughFmtWrapping(t *testing.T) {
	inner := RecipeNotFound("deploy")
	outer := fmt.Errorf("selecting: %w", inner)

	if !Is(outer, ErrCodeRecipeNotFound) {
		t.Error("Is should see through fmt.Errorf wrapping")
	}
	if GetCode(outer) != ErrCodeRecipeNotFound {
		t.Errorf("GetCode = %q, want %q", GetCode(outer), ErrCodeRecipeNotFound)
	}
	if GetCode(fmt.Errorf("plain")) != "" {
		t.Error("GetCode should be empty for plain errors")
	}
	if GetCode(nil) != "" {
		t.Error("GetCode should be empty for nil")
	}
}

func TestErrorConstructors(t *testing.T) {
	err := RecipeNotFound("build")
	if err.Code != ErrCodeRecipeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeRecipeNotFound, err.Code)
	}
	if err.Details["recipe"] != "build" {
		t.Error("RecipeNotFound should include recipe detail")
	}

	err = RuntimeFailure("test", 3)
	if err.Code != ErrCodeRuntimeFailure {
		t.Errorf("expected code %s, got %s", ErrCodeRuntimeFailure, err.Code)
	}
	if err.Details["exitCode"] != 3 {
		t.Error("RuntimeFailure should include exit code detail")
	}

	problems := []string{`missing required parameter "env"`, `unknown parameter "bogus"`}
	err = ValidationFailed("deploy", problems)
	if err.Code != ErrCodeValidation {
		t.Errorf("expected code %s, got %s", ErrCodeValidation, err.Code)
	}
	got, ok := err.Details["errors"].([]string)
	if !ok || len(got) != 2 {
		t.Fatalf("ValidationFailed should carry the error list, got %v", err.Details["errors"])
	}

	if DiscoveryFailed("bad json", nil).Cause != nil {
		t.Error("DiscoveryFailed without cause should not wrap")
	}
}
