package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

// findJustrunBinary finds the justrun binary under test.
// It relies on the Makefile setting the PATH to include the local ./bin directory.
func findJustrunBinary() (string, error) {
	path, err := exec.LookPath("justrun")
	if err != nil {
		return "", fmt.Errorf("could not find 'justrun' binary in PATH. Build it and add its directory to PATH")
	}
	return path, nil
}

const recipesDump = `{"recipes":{
  "build": {"name":"build","doc":"Build it","parameters":[],"attributes":[{"group":"dev"}],"private":false},
  "deploy": {"name":"deploy","doc":"Deploy","parameters":[{"name":"env","kind":"singular","default":null}],"attributes":[{"confirm":"Deploy to prod?"}],"private":false},
  "_setup": {"name":"_setup","doc":"","parameters":[],"attributes":[],"private":true}
}}`

// setupProject creates a project with a stand-in just binary that prints the
// recipe dump for --dump and otherwise echoes its arguments and exits with
// exitCode. A justrun.yml points justrun at it.
func setupProject(ctx *harness.Context, name string, exitCode int) (string, error) {
	projectDir := ctx.NewDir(name)

	dumpPath := filepath.Join(projectDir, "dump.json")
	if err := fs.WriteString(dumpPath, recipesDump); err != nil {
		return "", err
	}

	justPath := filepath.Join(projectDir, "fake-just")
	script := fmt.Sprintf(`#!/bin/sh
for a in "$@"; do
  if [ "$a" = "--dump" ]; then
    cat %q
    exit 0
  fi
done
echo "ran: $*"
exit %d
`, dumpPath, exitCode)
	if err := fs.WriteString(justPath, script); err != nil {
		return "", err
	}
	if err := os.Chmod(justPath, 0755); err != nil {
		return "", err
	}

	config := fmt.Sprintf(`version: "1.0"
just:
  path: %s
dispatch:
  mode: detached
session:
  backend: shell
`, justPath)
	if err := fs.WriteString(filepath.Join(projectDir, "justrun.yml"), config); err != nil {
		return "", err
	}

	ctx.Set("project_dir", projectDir)
	return projectDir, nil
}
