//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "denglish"

var Default = Build

// Build compiles the worker binary.
func Build() error {
	return sh.RunV("go", "build", "-o", binary, "./cmd/denglish")
}

// Test runs all unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet on every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check vets and tests.
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Install installs the binary into GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", "./cmd/denglish")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binary)
}
