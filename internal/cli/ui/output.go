package ui

import (
	"fmt"
	"os"
)

// Print functions for consistent output

// Error prints an error message to stderr
func Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s\n", ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Printf("%s\n", SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

// Info prints an informational message
func Info(format string, args ...interface{}) {
	fmt.Printf("%s\n", InfoStyle.Render(fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Printf("%s\n", WarningStyle.Render(fmt.Sprintf(format, args...)))
}

// OutputLine prints a plain formatted line to stdout
func OutputLine(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// Conflict prints the conflict notice on stdout; scripts driving the merge
// command grep for this line
func Conflict() {
	fmt.Printf("%s\n", ConflictStyle.Render("Conflict detected"))
}
