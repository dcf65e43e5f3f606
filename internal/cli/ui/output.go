package ui

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	// Color definitions for terminal output
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
)

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	successColor.Printf("✓ %s\n", fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	errorColor.Printf("✗ %s\n", fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	warningColor.Printf("⚠ %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	infoColor.Printf("ℹ %s\n", fmt.Sprintf(format, args...))
}

// PrintBold prints a bold message
func PrintBold(format string, args ...interface{}) {
	boldColor.Println(fmt.Sprintf(format, args...))
}

// PrintErrorBox prints an error message in a box
func PrintErrorBox(title, content string) {
	boxContent := fmt.Sprintf("%s\n\n%s",
		errorColor.Sprint(title),
		content,
	)
	fmt.Println(Styles.ErrorBox.Render(boxContent))
}
