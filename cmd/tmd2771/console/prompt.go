package console

import (
	"strings"

	"github.com/chzyer/readline"
)

const (
	Yes = "y"
	No  = "n"
)

// YesOrNo asks a question defaulting to no.
func YesOrNo(question string) (string, error) {
	return Prompt(question, No, Yes)
}

// Prompt reads a single answer. With constraints the first one is the
// default and any answer outside of them falls back to it.
func Prompt(question string, constraints ...string) (string, error) {
	var prompt strings.Builder
	prompt.WriteString(question)
	if len(constraints) > 0 {
		prompt.WriteString(" [")
		for i, c := range constraints {
			if i > 0 {
				prompt.WriteString("/")
			} else {
				c = strings.ToUpper(c)
			}
			prompt.WriteString(c)
		}
		prompt.WriteString("]")
	}
	prompt.WriteString(": ")
	rl, err := readline.NewEx(&readline.Config{
		Prompt: prompt.String(),
		Stdout: writer,
		Stderr: errWriter,
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = rl.Close() }()
	response, err := rl.Readline()
	if err != nil {
		return "", err
	}
	return matchAnswer(response, constraints), nil
}

func matchAnswer(response string, constraints []string) string {
	if len(constraints) == 0 {
		return response
	}
	normalized := strings.ToLower(strings.TrimSpace(response))
	for _, c := range constraints {
		if normalized == c {
			return normalized
		}
	}
	return constraints[0]
}
