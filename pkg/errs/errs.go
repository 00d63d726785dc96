// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errs defines the error kinds surfaced by tb.
//
// Every error carries its own structured payload. Rendering for the terminal
// lives in pkg/log, one function per kind.
package errs

import (
	"fmt"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind identifies the family an error belongs to
type Kind int

const (
	KindUnknown Kind = iota
	KindArgument
	KindValidation
	KindSourceValidation
	KindTemplateExists
	KindTemplateNotFound
	KindNoTemplates
	KindFileSystem
	KindNoMatchingPattern
	KindAggregate
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindArgument:
		return "argument"
	case KindValidation:
		return "validation"
	case KindSourceValidation:
		return "source_validation"
	case KindTemplateExists:
		return "template_exists"
	case KindTemplateNotFound:
		return "template_not_found"
	case KindNoTemplates:
		return "no_templates"
	case KindFileSystem:
		return "file_system"
	case KindNoMatchingPattern:
		return "no_matching_pattern"
	case KindAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// 🎯 Kinded is implemented by every error in this package
type Kinded interface {
	error
	Kind() Kind
}

// 🔍 KindOf returns the kind of the first Kinded error in the chain
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// ArgumentError reports a malformed argument passed to a component.
type ArgumentError struct {
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument error: %s %s", e.Argument, e.Reason)
}

func (e *ArgumentError) Kind() Kind { return KindArgument }

// ValidationError reports user input that failed validation.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Kind() Kind { return KindValidation }

// SourceValidationError lists source paths that do not exist or are empty directories.
type SourceValidationError struct {
	EmptyDirs    []string
	InvalidPaths []string
}

func (e *SourceValidationError) Total() int {
	return len(e.EmptyDirs) + len(e.InvalidPaths)
}

func (e *SourceValidationError) Error() string {
	total := e.Total()
	return fmt.Sprintf("found %d invalid source path%s", total, plural(total))
}

func (e *SourceValidationError) Kind() Kind { return KindSourceValidation }

// TemplateExistsError is returned when saving over an existing template without force.
type TemplateExistsError struct {
	Name string
}

func (e *TemplateExistsError) Error() string {
	return fmt.Sprintf("template exists: %s", e.Name)
}

func (e *TemplateExistsError) Kind() Kind { return KindTemplateExists }

// TemplateNotFoundError is returned when a named template is not in storage.
type TemplateNotFoundError struct {
	Name string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("template not found: %s", e.Name)
}

func (e *TemplateNotFoundError) Kind() Kind { return KindTemplateNotFound }

// NoTemplatesFoundError signals an empty or absent storage root.
type NoTemplatesFoundError struct{}

func (e *NoTemplatesFoundError) Error() string { return "no templates found" }

func (e *NoTemplatesFoundError) Kind() Kind { return KindNoTemplates }

// 📂 Operation names a filesystem operation for FileSystemOperationError
type Operation string

const (
	OperationCopy   Operation = "copy assets"
	OperationMkdir  Operation = "create directory"
	OperationDelete Operation = "delete template"
	OperationRename Operation = "rename template"
	OperationList   Operation = "list templates"
)

// FileSystemOperationError wraps an I/O failure with the path it happened on.
type FileSystemOperationError struct {
	Operation   Operation
	Destination string
	Cause       error
}

func (e *FileSystemOperationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("filesystem operation failed: %s: %s", e.Operation, e.Destination)
	}
	return fmt.Sprintf("filesystem operation failed: %s: %s: %v", e.Operation, e.Destination, e.Cause)
}

func (e *FileSystemOperationError) Unwrap() error { return e.Cause }

func (e *FileSystemOperationError) Kind() Kind { return KindFileSystem }

// NoMatchingPatternError means a path was resolved against patterns that never produced it.
type NoMatchingPatternError struct {
	Target   string
	Patterns []string
}

func (e *NoMatchingPatternError) Error() string {
	return fmt.Sprintf("no matching pattern found for %q. Tried patterns: %s", e.Target, strings.Join(e.Patterns, ", "))
}

func (e *NoMatchingPatternError) Kind() Kind { return KindNoMatchingPattern }

// AggregateError bundles the failures of a batch operation.
type AggregateError struct {
	Message string
	Errors  []error
}

func (e *AggregateError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

func (e *AggregateError) Kind() Kind { return KindAggregate }

// 🔍 NotFound returns the template-not-found failures of the batch
func (e *AggregateError) NotFound() []*TemplateNotFoundError {
	var out []*TemplateNotFoundError
	for _, err := range e.Errors {
		var nf *TemplateNotFoundError
		if errors.As(err, &nf) {
			out = append(out, nf)
		}
	}
	return out
}

// 🚨 Critical returns every failure that is not a template-not-found
func (e *AggregateError) Critical() []error {
	var out []error
	for _, err := range e.Errors {
		var nf *TemplateNotFoundError
		if !errors.As(err, &nf) {
			out = append(out, err)
		}
	}
	return out
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
