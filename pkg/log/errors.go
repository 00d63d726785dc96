package log

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tb/pkg/errs"
)

const (
	bullet      = "•"
	angleQuote  = "›"
	errorSymbol = "✖"
	warnSymbol  = "⚠"
	infoSymbol  = "ℹ"
)

var (
	important = color.New(color.Bold).SprintFunc()
	info      = color.New(color.FgCyan).SprintFunc()
	failure   = color.New(color.FgRed).SprintFunc()
	warning   = color.New(color.FgYellow).SprintFunc()
)

// 🎨 RenderError formats err with a message and, where one exists, a solution section
func RenderError(err error) string {
	if err == nil {
		return ""
	}

	var (
		argErr        *errs.ArgumentError
		validationErr *errs.ValidationError
		sourceErr     *errs.SourceValidationError
		existsErr     *errs.TemplateExistsError
		notFoundErr   *errs.TemplateNotFoundError
		noTemplates   *errs.NoTemplatesFoundError
		fsErr         *errs.FileSystemOperationError
		noMatchErr    *errs.NoMatchingPatternError
		aggErr        *errs.AggregateError
	)

	switch {
	case errors.As(err, &aggErr):
		return renderAggregate(aggErr)
	case errors.As(err, &sourceErr):
		return renderSourceValidation(sourceErr)
	case errors.As(err, &existsErr):
		return withSolutions(
			fmt.Sprintf("Template exists: %s", important(existsErr.Name)),
			fmt.Sprintf("Use %s to overwrite entire template", info("--force")),
		)
	case errors.As(err, &notFoundErr):
		return withSolutions(
			fmt.Sprintf("Template not found: %s", important(notFoundErr.Name)),
			fmt.Sprintf("Verify template name with %s command", info("list")),
		)
	case errors.As(err, &noTemplates):
		return withSolutions(
			"No templates found",
			fmt.Sprintf("Run %s to add a new template", info("tb save")),
		)
	case errors.As(err, &fsErr):
		msg := fmt.Sprintf("Filesystem operation failed: %s\n\n%s Original message:\n  %s %s",
			fsErr.Operation, failure(errorSymbol), angleQuote, cause(fsErr))
		return withSolutions(msg,
			"Verify source paths exist and are accessible",
			"Use --force to skip/overwrite conflicting files",
		)
	case errors.As(err, &noMatchErr):
		return fmt.Sprintf("%s %s", failure(errorSymbol), noMatchErr.Error())
	case errors.As(err, &validationErr):
		return fmt.Sprintf("%s %s", failure(errorSymbol), validationErr.Error())
	case errors.As(err, &argErr):
		return fmt.Sprintf("%s %s", failure(errorSymbol), argErr.Error())
	default:
		return fmt.Sprintf("%s Fatal error: %s", failure(errorSymbol), err.Error())
	}
}

func cause(err *errs.FileSystemOperationError) string {
	if err.Cause == nil {
		return err.Destination
	}
	return err.Cause.Error()
}

func withSolutions(msg string, solutions ...string) string {
	var b strings.Builder
	b.WriteString(msg)
	b.WriteString("\n\n")
	if len(solutions) == 1 {
		b.WriteString(info("Solution:"))
	} else {
		b.WriteString(info("Solutions:"))
	}
	for _, s := range solutions {
		fmt.Fprintf(&b, "\n  %s %s", bullet, s)
	}
	return b.String()
}

func renderSourceValidation(err *errs.SourceValidationError) string {
	total := err.Total()
	suffix := "s"
	if total == 1 {
		suffix = ""
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Validation failed: %d invalid source path%s\n", total, suffix))

	if len(err.EmptyDirs) > 0 {
		parts = append(parts, fmt.Sprintf("%s Empty directories (%d):", failure(errorSymbol), len(err.EmptyDirs)))
		for _, p := range err.EmptyDirs {
			parts = append(parts, fmt.Sprintf("  %s %s", angleQuote, p))
		}
	}

	if len(err.InvalidPaths) > 0 {
		if len(err.EmptyDirs) > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, fmt.Sprintf("%s Invalid paths (%d):", failure(errorSymbol), len(err.InvalidPaths)))
		for _, p := range err.InvalidPaths {
			parts = append(parts, fmt.Sprintf("  %s %s", angleQuote, p))
		}
	}

	var solutions []string
	if len(err.EmptyDirs) > 0 {
		solutions = append(solutions, "Remove empty directories from source", "Use --force to skip empty directories")
	}
	if len(err.InvalidPaths) > 0 {
		solutions = append(solutions, "Verify invalid paths exist and are accessible")
	}

	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("%s %s", info(infoSymbol), info("Solutions:")))
	for _, s := range solutions {
		parts = append(parts, fmt.Sprintf("  %s %s", bullet, s))
	}

	return strings.Join(parts, "\n")
}

func renderAggregate(err *errs.AggregateError) string {
	var lines []string

	critical := err.Critical()
	notFound := err.NotFound()

	if len(critical) > 0 {
		lines = append(lines, failure(err.Message+":"))
		for _, c := range critical {
			lines = append(lines, fmt.Sprintf("  %s %s", failure(errorSymbol), c.Error()))
		}
	}

	if len(notFound) > 0 {
		names := make([]string, 0, len(notFound))
		for _, nf := range notFound {
			names = append(names, important(nf.Name))
		}
		label := "Template"
		if len(names) > 1 {
			label = "Templates"
		}
		msg := fmt.Sprintf("%s not found: %s", label, strings.Join(names, ", "))
		if len(critical) > 0 {
			lines = append(lines, fmt.Sprintf("  %s %s", warning(warnSymbol), msg))
		} else {
			lines = append(lines, fmt.Sprintf("%s %s", warning(warnSymbol), msg))
		}

		lines = append(lines, "", info("Solution:"))
		lines = append(lines, fmt.Sprintf("  %s Verify template name with %s command", bullet, info("list")))
	}

	return strings.Join(lines, "\n")
}
