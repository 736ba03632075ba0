package ui

import "strings"

const (
	reset       = "\033[0m"
	bold        = "\033[1m"
	dim         = "\033[2m"
	mint        = "\033[38;5;121m"
	seafoam     = "\033[38;5;49m"
	teal        = "\033[38;5;37m"
	sky         = "\033[38;5;39m"
	cobalt      = "\033[38;5;33m"
	deepIndigo  = "\033[38;5;61m"
	fuchsia     = "\033[38;5;177m"
	honeyOrange = "\033[38;5;214m"
)

var wordmark = [][]string{
	{"██████╗ ", "██╔══██╗", "██████╔╝", "██╔═══╝ ", "██║     ", "╚═╝     "},
	{"██████╗ ", "██╔══██╗", "██████╔╝", "██╔══██╗", "██║  ██║", "╚═╝  ╚═╝"},
	{" ██████╗ ", "██╔═══██╗", "██║   ██║", "██║   ██║", "╚██████╔╝", " ╚═════╝ "},
	{" ██████╗", "██╔════╝", "██║     ", "██║     ", "╚██████╗", " ╚═════╝"},
	{"██╗    ██╗", "██║    ██║", "██║ █╗ ██║", "██║███╗██║", "╚███╔███╔╝", " ╚══╝╚══╝ "},
	{" █████╗ ", "██╔══██╗", "███████║", "██╔══██║", "██║  ██║", "╚═╝  ╚═╝"},
	{"████████╗", "╚══██╔══╝", "   ██║   ", "   ██║   ", "   ██║   ", "   ╚═╝   "},
	{" ██████╗", "██╔════╝", "██║     ", "██║     ", "╚██████╗", " ╚═════╝"},
	{"██╗  ██╗", "██║  ██║", "███████║", "██╔══██║", "██║  ██║", "╚═╝  ╚═╝"},
}

var gradient = []string{mint, seafoam, teal, sky, cobalt, deepIndigo, fuchsia}

// Banner renders a colored procwatch wordmark.
func Banner() string {
	var b strings.Builder

	rows := make([]string, len(wordmark[0]))
	for i, letter := range wordmark {
		color := gradient[i%len(gradient)]
		for row := range letter {
			rows[row] += color + letter[row] + " "
		}
	}
	for _, line := range rows {
		b.WriteString(bold + line + reset + "\n")
	}

	b.WriteString("\n")
	b.WriteString(bold + honeyOrange + "procwatch" + reset + dim + "  •  process memory inventory" + reset + "\n\n")

	return b.String()
}
