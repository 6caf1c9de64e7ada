package command

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestValidateRecipeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "build", false},
		{"with hyphen", "build-all", false},
		{"with underscore", "_private_helper", false},
		{"with digits", "test2", false},
		{"empty", "", true},
		{"flag injection", "--set", true},
		{"leading hyphen", "-build", true},
		{"spaces", "build all", true},
		{"shell metacharacters", "build;rm", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRecipeName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRecipeName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "just-build", false},
		{"valid with underscore", "just_build", false},
		{"empty name", "", true},
		{"colon", "just:build", true},
		{"dot", "just.build", true},
		{"too long", "this-is-a-very-long-session-name-that-exceeds-the-maximum", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSessionName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSessionName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBinaryPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"bare name", "just", false},
		{"absolute path", "/usr/local/bin/just", false},
		{"path with spaces", "/opt/my tools/just", false},
		{"empty", "", true},
		{"semicolon", "just; rm -rf /", true},
		{"pipe", "just | cat", true},
		{"dollar", "$(whoami)", true},
		{"backtick", "`whoami`", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBinaryPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateBinaryPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSafeBuilder_Build(t *testing.T) {
	sb := NewSafeBuilder()
	ctx := context.Background()

	t.Run("valid command", func(t *testing.T) {
		cmd, err := sb.Build(ctx, "echo", "hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer cmd.Release()
		if cmd.name != "echo" {
			t.Errorf("expected command name 'echo', got %q", cmd.name)
		}
		if len(cmd.args) != 1 || cmd.args[0] != "hello" {
			t.Errorf("expected args ['hello'], got %v", cmd.args)
		}
		if cmd.String() != "echo hello" {
			t.Errorf("String() = %q", cmd.String())
		}
	})

	t.Run("empty command name", func(t *testing.T) {
		_, err := sb.Build(ctx, "")
		if err == nil {
			t.Error("expected error for empty command name")
		}
	})

	t.Run("unsafe command name", func(t *testing.T) {
		_, err := sb.Build(ctx, "just;id")
		if err == nil {
			t.Error("expected error for unsafe command name")
		}
	})

	t.Run("working directory", func(t *testing.T) {
		dir := t.TempDir()
		cmd, err := sb.Build(ctx, "echo")
		if err != nil {
			t.Fatal(err)
		}
		defer cmd.Release()
		if got := cmd.InDir(dir).Exec().Dir; got != dir {
			t.Errorf("Exec().Dir = %q, want %q", got, dir)
		}
	})
}

func TestSafeBuilder_Validate(t *testing.T) {
	sb := NewSafeBuilder()

	t.Run("valid recipe name", func(t *testing.T) {
		if err := sb.Validate("recipeName", "deploy"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid parameter name", func(t *testing.T) {
		if err := sb.Validate("parameterName", "--env"); err == nil {
			t.Error("expected error for invalid parameter name")
		}
	})

	t.Run("unknown validator type", func(t *testing.T) {
		if err := sb.Validate("unknownType", "value"); err == nil {
			t.Error("expected error for unknown validator type")
		}
	})
}

func TestCommand_WithTimeout(t *testing.T) {
	sb := NewSafeBuilder()
	ctx := context.Background()

	cmd, err := sb.Build(ctx, "sleep", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cmd.Release()

	t.Run("custom timeout", func(t *testing.T) {
		customTimeout := 1 * time.Second
		cmd = cmd.WithTimeout(customTimeout)
		if cmd.timeout != customTimeout {
			t.Errorf("expected timeout %v, got %v", customTimeout, cmd.timeout)
		}
	})

	t.Run("exceeds max timeout", func(t *testing.T) {
		cmd = cmd.WithTimeout(20 * time.Minute)
		if cmd.timeout != MaxTimeout {
			t.Errorf("expected timeout to be capped at %v, got %v", MaxTimeout, cmd.timeout)
		}
	})

	t.Run("without timeout", func(t *testing.T) {
		cmd = cmd.WithoutTimeout(ctx)
		if cmd.timeout != 0 {
			t.Errorf("expected no timeout, got %v", cmd.timeout)
		}
		if _, ok := cmd.ctx.Deadline(); ok {
			t.Error("expected context without deadline")
		}
	})
}

func TestCommandTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sleep binary")
	}
	sb := NewSafeBuilder()
	ctx := context.Background()

	// Create a command that will timeout
	cmd, err := sb.Build(ctx, "sleep", "10")
	if err != nil {
		t.Fatal(err)
	}

	// Set a short timeout
	cmd = cmd.WithTimeout(100 * time.Millisecond)
	defer cmd.Release()

	start := time.Now()
	err = cmd.Exec().Run()
	duration := time.Since(start)

	if err == nil {
		t.Error("expected timeout error")
	}

	// Allow some margin for execution overhead
	if duration > 500*time.Millisecond {
		t.Errorf("command took too long to timeout: %v", duration)
	}
}
