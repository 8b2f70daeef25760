package main

import (
	"fmt"
	"os"
	"unicode"
)

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	a := []rune(s)
	a[0] = unicode.ToUpper(a[0])
	return string(a)
}

func main() {
	defer syncLogger()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, capitalize(err.Error()))
		syncLogger()
		os.Exit(1)
	}
}
