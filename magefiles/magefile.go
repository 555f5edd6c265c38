//go:build mage

// Package main provides build targets for quotebook using Mage.
//
// Usage:
//
//	mage build              Compile quotebook and quotectl to bin/
//	mage test:unit          Run unit tests with the race detector
//	mage test:integration   Run the godog feature suite
//	mage test:all           Run unit and integration tests
//	mage bench              Run the benchmarks
//	mage lint               Run golangci-lint
//	mage mocks              Regenerate mocks with mockery
//	mage clean              Remove build artifacts
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryDir  = "bin"
	modulePath = "github.com/jsamuelsen/quotebook"
	coverFile  = "coverage.out"
)

// binaries maps each output name to its main package.
var binaries = map[string]string{
	"quotebook": "./cmd/quotebook",
	"quotectl":  "./cmd/quotectl",
}

// Default runs when mage is invoked without a target.
var Default = Build

// Build compiles both binaries into bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}

	ldflags := versionFlags()
	for name, pkg := range binaries {
		out := binaryDir + "/" + name
		if err := sh.RunV(binGo, "build", "-ldflags", ldflags, "-o", out, pkg); err != nil {
			return fmt.Errorf("build %s: %w", name, err)
		}
	}

	return nil
}

// versionFlags stamps the CLI with the git description and commit.
func versionFlags() string {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}

	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil || commit == "" {
		commit = "unknown"
	}

	return strings.Join([]string{
		"-s -w",
		"-X main.Version=" + version,
		"-X main.Commit=" + commit,
	}, " ")
}

// Test groups the test targets.
type Test mg.Namespace

// Unit runs every package except the integration and benchmark suites.
func (Test) Unit() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}

	var unit []string
	for pkg := range strings.SplitSeq(pkgs, "\n") {
		if pkg == "" || strings.HasPrefix(pkg, modulePath+"/test/") {
			continue
		}
		unit = append(unit, pkg)
	}

	args := append([]string{"test", "-race", "-coverprofile=" + coverFile}, unit...)

	return sh.RunV(binGo, args...)
}

// Integration runs the feature suite under test/integration.
func (Test) Integration() error {
	return sh.RunV(binGo, "test", "-race", "-tags", "integration", "./test/integration/...")
}

// All runs unit then integration tests.
func (Test) All() {
	mg.SerialDeps(Test.Unit, Test.Integration)
}

// Bench runs the benchmarks with allocation stats.
func Bench() error {
	return sh.RunV(binGo, "test", "-run", "^$", "-bench", ".", "-benchmem", "./test/benchmark/...")
}

// Lint runs golangci-lint from the module's tool set.
func Lint() error {
	return sh.RunV(binGo, "tool", "golangci-lint", "run", "./...")
}

// Mocks regenerates the port mocks.
func Mocks() error {
	return sh.RunV(binGo, "tool", "mockery")
}

// Clean removes build and coverage artifacts.
func Clean() error {
	for _, p := range []string{binaryDir, coverFile} {
		if err := sh.Rm(p); err != nil {
			return err
		}
	}

	return nil
}
