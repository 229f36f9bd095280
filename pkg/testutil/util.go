/*
Copyright 2019 The Skaffold Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package testutil

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// T wraps testing.T with helpers for table-driven tests
type T struct {
	*testing.T
}

// Run runs f as a subtest of t called name
func Run(t *testing.T, name string, f func(t *T)) {
	t.Run(name, func(t *testing.T) {
		t.Helper()
		f(&T{T: t})
	})
}

// CheckError fails the test if the presence of err does not match
// shouldErr
func (t *T) CheckError(shouldErr bool, err error) {
	t.Helper()
	if shouldErr && err == nil {
		t.Fatal("expected error, but returned none")
	}
	if !shouldErr && err != nil {
		t.Fatalf("unexpected error: %s", err.Error())
	}
}

// Override sets the variable pointed to by dest to value, restoring its
// original value once the test completes
func (t *T) Override(dest, value interface{}) {
	t.Helper()
	d := reflect.ValueOf(dest).Elem()
	prev := reflect.ValueOf(d.Interface())
	d.Set(reflect.ValueOf(value))
	t.Cleanup(func() { d.Set(prev) })
}

// TempDir is a temporary directory removed upon test completion
type TempDir struct {
	t    *T
	root string
}

// NewTempDir creates a temporary directory
func (t *T) NewTempDir() *TempDir {
	return &TempDir{t: t, root: t.TempDir()}
}

// Root returns the path to the directory
func (d *TempDir) Root() string {
	return d.root
}

// Path returns the absolute path of a file relative to the directory
func (d *TempDir) Path(file string) string {
	return filepath.Join(d.root, file)
}

// Write writes content to file, creating parent directories as necessary
func (d *TempDir) Write(file, content string) *TempDir {
	d.t.Helper()
	path := d.Path(file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		d.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		d.t.Fatal(err)
	}
	return d
}

// ReadFile returns the content of file, failing the test if it is missing
func (d *TempDir) ReadFile(file string) string {
	d.t.Helper()
	content, err := os.ReadFile(d.Path(file))
	if err != nil {
		d.t.Fatal(err)
	}
	return string(content)
}
