package cmd

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var judgeGreetings = [...]string{
	"Your session is as empty as an unsubmitted solution.",
	"The judge cannot grade what it cannot see. Log in first.",
	"Time limit exceeded: waiting for you to sign in.",
	"Wrong Answer. Expected: a logged-in user. Found: nobody.",
	"Every accepted solution started with a login.",
	"The test cases are ready. You are not.",
	"Runtime error: user is null.",
	"Compilation succeeded. Authentication did not.",
	"The leaderboard has a slot with your name on it. Almost.",
	"No cookie, no verdict.",
	"Memory limit fine. Session limit zero.",
	"You brought the algorithm. Now bring the credentials.",
}

func printGreeting(w io.Writer) {
	msg := judgeGreetings[rand.IntN(len(judgeGreetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#60a5fa")).
		Bold(true).
		Render("OJCLI")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	attrib := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#D4A017")).
		Render("- The Judge")

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To enter: ojcli login")

	fmt.Fprintf(w, "\n%s\n\n%s\n%s\n\n%s\n\n", title, quote, attrib, hint) //nolint:errcheck
}
