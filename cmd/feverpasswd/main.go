package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"fevergolang/internal/auth"
)

// feverpasswd prints a passwords-file line for one user. Append the output to
// the file named by server.passwordsFile.
func main() {
	if len(os.Args) != 2 || strings.TrimSpace(os.Args[1]) == "" {
		fmt.Fprintln(os.Stderr, "usage: feverpasswd <username>")
		os.Exit(2)
	}
	username := os.Args[1]
	if strings.Contains(username, ":") {
		fmt.Fprintln(os.Stderr, "feverpasswd: username must not contain ':'")
		os.Exit(2)
	}

	password, err := readPassword()
	if err != nil {
		fmt.Fprintf(os.Stderr, "feverpasswd: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(auth.Entry(username, password))
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Piped input: one password per line, for scripting.
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return "", fmt.Errorf("no password on stdin")
		}
		return scanner.Text(), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Retype password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("empty password")
	}
	return string(first), nil
}
