package entities

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks input rejected before any store mutation.
	ErrValidation = errors.New("validation failed")
	// ErrPrecondition marks an operation whose inputs are incomplete.
	ErrPrecondition = errors.New("precondition not met")
	// ErrNotFound marks a missing entity or document.
	ErrNotFound = errors.New("not found")
	// ErrNothingToOrder is returned when no record is low or out of stock.
	ErrNothingToOrder = errors.New("nothing to order")
	// ErrCancelled is returned when the confirmer declines an operation.
	ErrCancelled = errors.New("cancelled")
)

// FieldError is a single validation message tied to a field or row.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects field errors.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

// Add appends a message for field.
func (v *ValidationErrors) Add(field, message string) {
	v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
}

// Addf appends a formatted message for field.
func (v *ValidationErrors) Addf(field, format string, args ...any) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any message was collected.
func (v *ValidationErrors) HasErrors() bool {
	return v != nil && len(v.Errors) > 0
}

// Messages returns the collected messages in order.
func (v *ValidationErrors) Messages() []string {
	messages := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		messages = append(messages, e.Message)
	}
	return messages
}

func (v *ValidationErrors) Error() string {
	parts := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		if e.Field == "" {
			parts = append(parts, e.Message)
			continue
		}
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// Is lets errors.Is match ErrValidation.
func (v *ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

// Err returns v as an error, or nil when nothing was collected.
func (v *ValidationErrors) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

func RequiredMessage(label string) string { return label + "は必須項目です" }

func MaxLengthMessage(label string, n int) string {
	return fmt.Sprintf("%sは%d文字以下で入力してください", label, n)
}

func MinMessage(label string, n int) string {
	return fmt.Sprintf("%sは%d以上で入力してください", label, n)
}

func NumberMessage(label string) string { return label + "は数値で入力してください" }

func DateMessage(label string) string { return label + "の日付形式が正しくありません" }

func FutureDateMessage(label string) string { return label + "は今日以降の日付を選択してください" }

func UniqueMessage(label string) string { return "この" + label + "は既に使用されています" }
